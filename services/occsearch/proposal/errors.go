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

import "errors"

var (
	// ErrInvalidCount indicates a requested batch size below 1.
	ErrInvalidCount = errors.New("proposal count must be at least 1")

	// ErrEmptySeedPool indicates generation was asked to infer shape or
	// targets from an empty seed pool.
	ErrEmptySeedPool = errors.New("seed pool is empty")

	// ErrSourceExhausted indicates a read source with fewer entries than
	// the requested batch size.
	ErrSourceExhausted = errors.New("read source has too few entries")

	// ErrNilSource indicates a read strategy constructed without a source.
	ErrNilSource = errors.New("read source is nil")

	// ErrUnknownMode indicates an unrecognized proposal mode tag.
	ErrUnknownMode = errors.New("unknown proposal mode")
)
