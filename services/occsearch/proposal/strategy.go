// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package proposal

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// Strategy produces proposal batches for one generation of the search.
//
// Description:
//
//	Generate returns exactly count proposals or fails; it never returns a
//	partial batch. The seed pool carries the successful configurations the
//	controller scoped for this generation (the whole run in holistic mode,
//	the previous generation in Markovian mode). Strategies that do not
//	derive proposals from the pool may still use it for shape validation.
//
// Thread Safety: Generate is called from a single controller goroutine.
// Implementations carrying an RNG are not safe for concurrent Generate
// calls.
type Strategy interface {
	// Name returns the mode tag of the strategy.
	Name() string

	// Generate produces count proposals seeded from pool.
	Generate(ctx context.Context, count int, pool []datatypes.Occupation) (datatypes.ProposalBatch, error)
}

// Mode identifies a proposal strategy.
type Mode string

const (
	// ModeRandom generates trace-targeted randomly rotated proposals.
	ModeRandom Mode = "random"

	// ModeRead replays proposals from an external source.
	ModeRead Mode = "read"
)

// String returns the mode tag.
func (m Mode) String() string { return string(m) }

// ParseMode resolves a mode tag, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRandom:
		return ModeRandom, nil
	case ModeRead:
		return ModeRead, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
