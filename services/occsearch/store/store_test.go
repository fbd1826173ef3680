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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// openInMemory opens an in-memory store and closes it with the test.
func openInMemory(t *testing.T) *Store {
	t.Helper()
	st, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// testOccupation builds a one-site configuration from diagonal entries.
func testOccupation(t *testing.T, up, down []float64) datatypes.Occupation {
	t.Helper()
	u, err := datatypes.DiagonalReal(up)
	require.NoError(t, err)
	d, err := datatypes.DiagonalReal(down)
	require.NoError(t, err)
	return datatypes.Occupation{{Up: u, Down: d}}
}

// TestStore_PutGetRoundTrip verifies a stored occupation resolves back intact.
func TestStore_PutGetRoundTrip(t *testing.T) {
	st := openInMemory(t)
	ctx := context.Background()

	occ := testOccupation(t, []float64{1, 0.5, 0}, []float64{1, 0, 0})
	require.NoError(t, st.Put(ctx, "job-a", occ))

	got, err := st.Get(ctx, "job-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Up.EqualWithin(occ[0].Up, 1e-15))
	assert.True(t, got[0].Down.EqualWithin(occ[0].Down, 1e-15))
}

// TestStore_GetMissing verifies a missing key maps to ErrNotFound.
func TestStore_GetMissing(t *testing.T) {
	st := openInMemory(t)

	_, err := st.Get(context.Background(), "no-such-job")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestStore_PutValidation verifies bad inputs are rejected before writing.
func TestStore_PutValidation(t *testing.T) {
	st := openInMemory(t)
	ctx := context.Background()

	err := st.Put(ctx, "", testOccupation(t, []float64{1}, []float64{0}))
	assert.ErrorIs(t, err, ErrEmptyJobID)

	err = st.Put(ctx, "job-b", datatypes.Occupation{})
	require.Error(t, err)
	assert.ErrorIs(t, err, datatypes.ErrShapeMismatch)

	_, err = st.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyJobID)
}

// TestStore_Jobs verifies stored IDs list in key order.
func TestStore_Jobs(t *testing.T) {
	st := openInMemory(t)
	ctx := context.Background()

	occ := testOccupation(t, []float64{1}, []float64{0})
	for _, id := range []string{"job-c", "job-a", "job-b"} {
		require.NoError(t, st.Put(ctx, id, occ))
	}

	ids, err := st.Jobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-a", "job-b", "job-c"}, ids)
}

// TestStore_Persistent verifies results survive a close and reopen.
func TestStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Dir = dir
	st, err := Open(cfg)
	require.NoError(t, err)

	occ := testOccupation(t, []float64{1, 1}, []float64{1, 0})
	require.NoError(t, st.Put(ctx, "job-persist", occ))
	require.NoError(t, st.Close())

	st2, err := Open(cfg)
	require.NoError(t, err)
	defer st2.Close()

	got, err := st2.Get(ctx, "job-persist")
	require.NoError(t, err)
	assert.True(t, got[0].Up.EqualWithin(occ[0].Up, 1e-15))
}

// TestOpen_MissingDir verifies a persistent store requires a directory.
func TestOpen_MissingDir(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dir is required")
}

// scriptedSubmitter succeeds or fails jobs according to its pattern.
type scriptedSubmitter struct {
	failures map[int]bool
	err      error
}

func (s *scriptedSubmitter) SubmitBatch(_ context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	records := make([]datatypes.ResultRecord, len(batch))
	for i := range batch {
		records[i] = datatypes.ResultRecord{JobID: fmt.Sprintf("job-%d", i)}
		if !s.failures[i] {
			records[i].Success = true
			records[i].Occupation = batch[i]
		}
	}
	return records, nil
}

// TestRecording_PersistsSuccesses verifies only successful records land in
// the store and the records pass through unchanged.
func TestRecording_PersistsSuccesses(t *testing.T) {
	st := openInMemory(t)
	ctx := context.Background()

	inner := &scriptedSubmitter{failures: map[int]bool{1: true}}
	rec, err := NewRecording(inner, st)
	require.NoError(t, err)

	batch := datatypes.ProposalBatch{
		testOccupation(t, []float64{1, 0}, []float64{0, 0}),
		testOccupation(t, []float64{1, 1}, []float64{0, 0}),
		testOccupation(t, []float64{1, 1}, []float64{1, 0}),
	}
	records, err := rec.SubmitBatch(ctx, batch)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].Success)
	assert.False(t, records[1].Success)
	assert.True(t, records[2].Success)

	ids, err := st.Jobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-0", "job-2"}, ids)

	got, err := st.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.True(t, got[0].Up.EqualWithin(batch[2][0].Up, 1e-15))

	_, err = st.Get(ctx, "job-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestRecording_InnerError verifies submission failures propagate untouched.
func TestRecording_InnerError(t *testing.T) {
	st := openInMemory(t)

	inner := &scriptedSubmitter{err: errors.New("solver offline")}
	rec, err := NewRecording(inner, st)
	require.NoError(t, err)

	_, err = rec.SubmitBatch(context.Background(), datatypes.ProposalBatch{
		testOccupation(t, []float64{1}, []float64{0}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "solver offline")

	ids, err := st.Jobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// TestNewRecording_Validation verifies nil dependencies are rejected.
func TestNewRecording_Validation(t *testing.T) {
	st := openInMemory(t)

	_, err := NewRecording(nil, st)
	require.Error(t, err)

	_, err = NewRecording(&scriptedSubmitter{}, nil)
	require.Error(t, err)
}
