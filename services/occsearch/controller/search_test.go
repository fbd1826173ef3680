// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
	"github.com/AleutianAI/LordCapulet/services/occsearch/proposal"
)

// oneSite builds a single-site occupation with a 1x1 matrix per channel.
func oneSite(t *testing.T, up, down float64) datatypes.Occupation {
	t.Helper()
	u, err := datatypes.DiagonalReal([]float64{up})
	require.NoError(t, err)
	d, err := datatypes.DiagonalReal([]float64{down})
	require.NoError(t, err)
	return datatypes.Occupation{{Up: u, Down: d}}
}

// explorationRecords builds a generation with the given success and failure
// counts, every success carrying the template occupation.
func explorationRecords(template datatypes.Occupation, succeeded, failed int) []datatypes.ResultRecord {
	records := make([]datatypes.ResultRecord, 0, succeeded+failed)
	for i := 0; i < succeeded; i++ {
		records = append(records, datatypes.ResultRecord{
			JobID:      fmt.Sprintf("exp-%d", i),
			Success:    true,
			Occupation: template,
		})
	}
	for i := 0; i < failed; i++ {
		records = append(records, datatypes.ResultRecord{
			JobID: fmt.Sprintf("exp-fail-%d", i),
		})
	}
	return records
}

// fakeStrategy returns count copies of a template and records the pool size
// seen by every Generate call.
type fakeStrategy struct {
	template  datatypes.Occupation
	poolSizes []int
	err       error
}

func (f *fakeStrategy) Name() string { return "fake" }

func (f *fakeStrategy) Generate(_ context.Context, count int, pool []datatypes.Occupation) (datatypes.ProposalBatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.poolSizes = append(f.poolSizes, len(pool))
	batch := make(datatypes.ProposalBatch, count)
	for i := range batch {
		batch[i] = f.template
	}
	return batch, nil
}

// fakeExecutor scripts the number of successes per call. Calls beyond the
// script succeed wholesale. shortBy trims the returned record count to break
// the batch contract on purpose.
type fakeExecutor struct {
	script  []int
	call    int
	sizes   []int
	shortBy int
	err     error
}

func (f *fakeExecutor) SubmitBatch(_ context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sizes = append(f.sizes, len(batch))

	succeeded := len(batch)
	if f.call < len(f.script) {
		succeeded = f.script[f.call]
	}
	f.call++

	records := make([]datatypes.ResultRecord, 0, len(batch))
	for i := 0; i < len(batch)-f.shortBy; i++ {
		rec := datatypes.ResultRecord{JobID: fmt.Sprintf("job-%d-%d", f.call, i)}
		if i < succeeded {
			rec.Success = true
			rec.Occupation = batch[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

type fakeExplorer struct {
	records []datatypes.ResultRecord
	err     error
}

func (f *fakeExplorer) Explore(context.Context) ([]datatypes.ResultRecord, error) {
	return f.records, f.err
}

func TestNew_Validation(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{}

	_, err := New(Config{BatchSize: 0, MaxEvaluations: 10}, strategy, executor, explorer)
	assert.ErrorIs(t, err, ErrInvalidBudget)

	_, err = New(Config{BatchSize: 4, MaxEvaluations: 0}, strategy, executor, explorer)
	assert.ErrorIs(t, err, ErrInvalidBudget)

	_, err = New(Config{BatchSize: 4, MaxEvaluations: 10}, nil, executor, explorer)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, nil, explorer)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, nil)
	assert.ErrorIs(t, err, ErrNilDependency)
}

func TestRun_BatchSizesExhaustBudget(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 1)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, []int{4, 4, 2}, executor.sizes)
	assert.Equal(t, StateTerminatedBudget, out.State)
	assert.Equal(t, 10, out.Evaluated)

	// Exploration is generation 0, then three constrained generations.
	require.Len(t, out.Generations, 4)
	assert.Equal(t, datatypes.RoundExploration, out.Generations[0].Type)
	assert.Equal(t, 3, out.Generations[0].Submitted)
	assert.Equal(t, 2, out.Generations[0].Succeeded)
	for i, gen := range out.Generations {
		assert.Equal(t, i, gen.Index)
		if i > 0 {
			assert.Equal(t, datatypes.RoundConstrained, gen.Type)
		}
	}

	// Flat outputs carry every record, failures included.
	assert.Len(t, out.Records, 3+10)
	assert.Len(t, out.JobIDs, 3+10)
	assert.Len(t, out.Successful, 2+10)
}

func TestRun_SingleBatchWhenCapBelowSize(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{records: explorationRecords(template, 1, 0)}

	s, err := New(Config{BatchSize: 5, MaxEvaluations: 3}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{3}, executor.sizes)
	assert.Equal(t, StateTerminatedBudget, out.State)
	assert.Equal(t, 3, out.Evaluated)
}

func TestRun_AllFailedTerminates(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{script: []int{0}}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllEvaluationsFailed)

	// The outcome still reports the history of the failed run.
	require.NotNil(t, out)
	assert.Equal(t, StateTerminatedAllFailed, out.State)
	assert.Equal(t, 4, out.Evaluated)
	require.Len(t, out.Generations, 2)
	assert.Equal(t, 0, out.Generations[1].Succeeded)
	assert.Equal(t, 4, out.Generations[1].Failed)

	// No further batch after the wholesale failure.
	assert.Equal(t, 1, executor.call)
}

func TestRun_HolisticPoolAccumulates(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{script: []int{4, 3}}
	explorer := &fakeExplorer{records: explorationRecords(template, 3, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 8}, strategy, executor, explorer)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	// First batch seeds from exploration (3), the second from every success
	// so far (3 exploration + 4 from generation 1).
	assert.Equal(t, []int{3, 7}, strategy.poolSizes)
}

func TestRun_MarkovianPoolIsLatestGeneration(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{script: []int{4, 3}}
	explorer := &fakeExplorer{records: explorationRecords(template, 3, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 8, Markovian: true}, strategy, executor, explorer)
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	// The second batch seeds only from generation 1's successes.
	assert.Equal(t, []int{3, 4}, strategy.poolSizes)
}

func TestRun_ExplorationError(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{err: errors.New("engine unreachable")}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "exploration")
}

func TestRun_ExplorationAllFailed(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{records: explorationRecords(template, 0, 3)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExplorationFailed)
	assert.Nil(t, out)

	// Nothing was ever submitted.
	assert.Equal(t, 0, executor.call)
}

func TestRun_BatchContractViolation(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{shortBy: 1}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchContract)
	assert.Nil(t, out)
}

func TestRun_ExecutorFatalError(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{err: errors.New("scheduler down")}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "scheduler down")
}

func TestRun_StrategyError(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template, err: proposal.ErrSourceExhausted}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, proposal.ErrSourceExhausted)
	assert.Nil(t, out)
}

func TestRun_ContextCancelled(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 0)}

	s, err := New(Config{BatchSize: 4, MaxEvaluations: 10}, strategy, executor, explorer)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestRun_JobIDsPreserveSubmissionOrder(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := &fakeStrategy{template: template}
	executor := &fakeExecutor{script: []int{1}}
	explorer := &fakeExplorer{records: explorationRecords(template, 1, 0)}

	s, err := New(Config{BatchSize: 2, MaxEvaluations: 2}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.NoError(t, err)

	// Failed jobs keep their IDs in the flat listing.
	assert.Equal(t, []string{"exp-0", "job-1-0", "job-1-1"}, out.JobIDs)
	require.Len(t, out.Records, 3)
	assert.True(t, out.Records[1].Success)
	assert.False(t, out.Records[2].Success)
}

func TestRun_WithRandomStrategy(t *testing.T) {
	template := oneSite(t, 1, 0)
	strategy := proposal.NewRandom(
		proposal.WithSeed(7),
		proposal.WithRotation(false),
		proposal.WithOxidationJitter(false),
	)
	executor := &fakeExecutor{}
	explorer := &fakeExplorer{records: explorationRecords(template, 2, 0)}

	s, err := New(Config{BatchSize: 2, MaxEvaluations: 4}, strategy, executor, explorer)
	require.NoError(t, err)

	out, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateTerminatedBudget, out.State)
	assert.Equal(t, 4, out.Evaluated)
	for _, occ := range out.Successful {
		require.Len(t, occ, 1)
		assert.InDelta(t, 1.0, occ[0].SummedTrace(), 1e-10)
	}
}
