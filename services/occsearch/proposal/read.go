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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// Read replays proposals from an external source instead of generating
// them. Generation k consumes the entries after generation k-1; the source
// cursor never rewinds and entries are never shuffled.
type Read struct {
	src Source
}

// NewRead creates a Read strategy over the given source.
func NewRead(src Source) (*Read, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	return &Read{src: src}, nil
}

// Name returns the mode tag.
func (r *Read) Name() string { return ModeRead.String() }

// Generate consumes the next count source entries in order.
//
// Description:
//
//	Checks availability before consuming anything: a source with fewer
//	than count remaining entries fails with ErrSourceExhausted and leaves
//	the cursor untouched. Consumed entries are validated against the seed
//	pool's shape when a pool is present, and against the first consumed
//	entry otherwise.
//
// Outputs:
//
//	datatypes.ProposalBatch - Exactly count entries, in source order.
//	error - ErrInvalidCount, ErrSourceExhausted, or a shape failure.
func (r *Read) Generate(ctx context.Context, count int, pool []datatypes.Occupation) (datatypes.ProposalBatch, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if remaining := r.src.Remaining(); remaining < count {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrSourceExhausted, count, remaining)
	}

	var shape datatypes.Occupation
	if len(pool) > 0 {
		shape = pool[0]
	}

	ctx, span := otel.Tracer("occsearch").Start(ctx, "proposal.Read.Generate",
		trace.WithAttributes(
			attribute.Int("proposal.count", count),
			attribute.Int("proposal.remaining", r.src.Remaining()),
		))
	defer span.End()

	batch := make(datatypes.ProposalBatch, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		occ, err := r.src.Next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := occ.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if shape == nil {
			shape = occ
		} else if !shape.SameShape(occ) {
			err := fmt.Errorf("%w: entry %d does not match the expected shape", datatypes.ErrShapeMismatch, i)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		batch = append(batch, occ)
	}
	return batch, nil
}

var _ Strategy = (*Read)(nil)
