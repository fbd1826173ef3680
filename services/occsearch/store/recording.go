// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// Submitter evaluates a batch of proposals.
type Submitter interface {
	SubmitBatch(ctx context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error)
}

// Recording forwards batches to an inner Submitter and persists every
// successful record.
//
// Description:
//
//	A persistence failure fails the whole call: the caller must never see
//	a success it cannot later resolve from the store.
//
// Thread Safety: Safe for concurrent use.
type Recording struct {
	inner Submitter
	store *Store
}

// NewRecording wraps a Submitter with result persistence.
//
// Inputs:
//
//	inner - The submitter doing the actual evaluations. Must not be nil.
//	st - The store receiving successful results. Must not be nil.
func NewRecording(inner Submitter, st *Store) (*Recording, error) {
	if inner == nil {
		return nil, errors.New("inner submitter must not be nil")
	}
	if st == nil {
		return nil, errors.New("store must not be nil")
	}
	return &Recording{inner: inner, store: st}, nil
}

// SubmitBatch submits the batch and stores each successful result under its
// job ID.
func (r *Recording) SubmitBatch(ctx context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error) {
	records, err := r.inner.SubmitBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	stored := 0
	for _, rec := range records {
		if !rec.Success {
			continue
		}
		if err := r.store.Put(ctx, rec.JobID, rec.Occupation); err != nil {
			return nil, fmt.Errorf("persist result %s: %w", rec.JobID, err)
		}
		stored++
	}
	r.store.logger.DebugContext(ctx, "results persisted",
		"submitted", len(batch),
		"stored", stored,
	)
	return records, nil
}

var _ controller.Executor = (*Recording)(nil)
