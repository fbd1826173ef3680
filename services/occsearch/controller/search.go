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
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
	"github.com/AleutianAI/LordCapulet/services/occsearch/proposal"
	"github.com/AleutianAI/LordCapulet/services/occsearch/telemetry"
)

// Executor submits proposal batches for evaluation.
//
// SubmitBatch blocks until every job in the batch finishes and returns
// exactly one record per proposal, in submission order. A failed evaluation
// is a record with Success=false, not an error; an error return is fatal to
// the run (context cancelled, engine unreachable).
type Executor interface {
	SubmitBatch(ctx context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error)
}

// Explorer produces the exploration generation whose successes seed the
// pool for the first constrained batch.
type Explorer interface {
	Explore(ctx context.Context) ([]datatypes.ResultRecord, error)
}

// Config holds the knobs for one search run.
type Config struct {
	// BatchSize is the number of proposals per constrained generation.
	BatchSize int

	// MaxEvaluations caps the constrained evaluations across the run.
	// The final batch is trimmed so the cap is never overshot.
	MaxEvaluations int

	// Markovian scopes the seed pool to the latest generation's successes.
	// When false the pool is holistic: every success so far, exploration
	// included.
	Markovian bool
}

// Validate checks the run knobs.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be >= 1, got %d", ErrInvalidBudget, c.BatchSize)
	}
	if c.MaxEvaluations < 1 {
		return fmt.Errorf("%w: evaluation cap must be >= 1, got %d", ErrInvalidBudget, c.MaxEvaluations)
	}
	return nil
}

// SearchState is the mutable bookkeeping of one run: current state,
// generation counter, and the accumulated records. It is owned by the run
// loop goroutine; within one generation every proposal shares the same
// seed-pool snapshot.
type SearchState struct {
	state       RunState
	generation  int
	records     []datatypes.ResultRecord
	jobIDs      []string
	successful  []datatypes.Occupation
	generations []datatypes.GenerationRecord
}

func newSearchState() *SearchState {
	return &SearchState{state: StateInit}
}

// State returns the current run state.
func (s *SearchState) State() RunState {
	return s.state
}

func (s *SearchState) setState(to RunState) {
	s.state = to
}

// recordGeneration appends one generation's results to the bookkeeping and
// returns the successful occupations of that generation.
func (s *SearchState) recordGeneration(round datatypes.RoundType, records []datatypes.ResultRecord) []datatypes.Occupation {
	var successes []datatypes.Occupation
	jobIDs := make([]string, 0, len(records))
	for _, rec := range records {
		jobIDs = append(jobIDs, rec.JobID)
		if rec.Success {
			successes = append(successes, rec.Occupation)
		}
	}

	s.generations = append(s.generations, datatypes.GenerationRecord{
		Index:      s.generation,
		Type:       round,
		Submitted:  len(records),
		Succeeded:  len(successes),
		Failed:     len(records) - len(successes),
		JobIDs:     jobIDs,
		Successful: successes,
	})
	s.records = append(s.records, records...)
	s.jobIDs = append(s.jobIDs, jobIDs...)
	s.successful = append(s.successful, successes...)
	s.generation++
	return successes
}

// Outcome aggregates a run that reached a terminal state.
type Outcome struct {
	// State is the terminal run state.
	State RunState `json:"state"`

	// Evaluated counts the constrained evaluations charged to the budget.
	Evaluated int `json:"evaluated"`

	// Records holds every result of the run in submission order,
	// exploration included. Job IDs are present even for failures.
	Records []datatypes.ResultRecord `json:"records"`

	// JobIDs lists every job of the run in submission order.
	JobIDs []string `json:"job_ids"`

	// Successful holds references to every successful occupation of the
	// run. The controller passes references around, never deep copies.
	Successful []datatypes.Occupation `json:"-"`

	// Generations summarizes the run generation by generation.
	Generations []datatypes.GenerationRecord `json:"generations"`
}

// Search drives a generational run against an Executor and an Explorer.
//
// Description:
//
//	Run explores once to seed the pool, then repeatedly generates a batch
//	of min(BatchSize, remaining budget) proposals, submits it, and records
//	the generation, until the budget is spent or a whole generation fails.
//	The seed pool is refreshed after every generation according to the
//	Markovian flag.
//
// Thread Safety: Run is single-goroutine; do not call it concurrently on
// the same Search.
type Search struct {
	cfg      Config
	strategy proposal.Strategy
	executor Executor
	explorer Explorer
	machine  *StateMachine
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// Option customizes a Search.
type Option func(*Search)

// WithLogger routes run progress to a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Search) { s.logger = logger }
}

// WithMetrics records run counters and gauges on the given bundle.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Search) { s.metrics = m }
}

// New creates a Search.
//
// Inputs:
//
//	cfg - Run knobs, validated here
//	strategy - Proposal generator (random or read mode)
//	executor - Batch evaluation backend
//	explorer - Producer of the exploration generation
//	opts - Optional logger and metrics
//
// Outputs:
//
//	*Search - Ready to Run
//	error - ErrInvalidBudget or ErrNilDependency
func New(cfg Config, strategy proposal.Strategy, executor Executor, explorer Explorer, opts ...Option) (*Search, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy", ErrNilDependency)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: executor", ErrNilDependency)
	}
	if explorer == nil {
		return nil, fmt.Errorf("%w: explorer", ErrNilDependency)
	}

	s := &Search{
		cfg:      cfg,
		strategy: strategy,
		executor: executor,
		explorer: explorer,
		machine:  NewStateMachine(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run executes the full generational search.
//
// Outputs:
//
//	*Outcome - Aggregated run results. Nil when the run aborts before the
//	  first constrained generation completes; non-nil together with
//	  ErrAllEvaluationsFailed when a generation fails wholesale.
//	error - ErrExplorationFailed, ErrAllEvaluationsFailed, ErrBatchContract,
//	  a strategy error, or a fatal executor error.
func (s *Search) Run(ctx context.Context) (*Outcome, error) {
	ctx, span := otel.Tracer("occsearch").Start(ctx, "controller.Search.Run",
		trace.WithAttributes(
			attribute.Int("search.batch_size", s.cfg.BatchSize),
			attribute.Int("search.max_evaluations", s.cfg.MaxEvaluations),
			attribute.Bool("search.markovian", s.cfg.Markovian),
			attribute.String("search.strategy", s.strategy.Name()),
		))
	defer span.End()

	budget, err := NewBudget(s.cfg.MaxEvaluations)
	if err != nil {
		return nil, err
	}
	run := newSearchState()

	pool, err := s.explore(ctx, run, budget)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.transition(ctx, run, StateExplorationDone); err != nil {
		return nil, err
	}

	for !budget.Exhausted() {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		size := budget.NextBatch(s.cfg.BatchSize)
		batch, err := s.strategy.Generate(ctx, size, pool)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("generation %d: %w", run.generation, err)
		}
		if s.metrics != nil {
			s.metrics.Proposals.Add(ctx, int64(len(batch)),
				metric.WithAttributes(attribute.String("mode", s.strategy.Name())))
		}

		if err := s.transition(ctx, run, StateBatchRunning); err != nil {
			return nil, err
		}
		start := time.Now()
		records, err := s.executor.SubmitBatch(ctx, batch)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("generation %d: %w", run.generation, err)
		}
		if len(records) != len(batch) {
			err := fmt.Errorf("%w: submitted %d proposals, got %d records",
				ErrBatchContract, len(batch), len(records))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := s.transition(ctx, run, StateBatchDone); err != nil {
			return nil, err
		}

		budget.Record(len(batch))
		successes := run.recordGeneration(datatypes.RoundConstrained, records)
		s.observeGeneration(ctx, run, budget, time.Since(start))

		if len(successes) == 0 {
			if err := s.transition(ctx, run, StateTerminatedAllFailed); err != nil {
				return nil, err
			}
			span.RecordError(ErrAllEvaluationsFailed)
			span.SetStatus(codes.Error, ErrAllEvaluationsFailed.Error())
			return s.outcome(run, budget), ErrAllEvaluationsFailed
		}

		if s.cfg.Markovian {
			pool = successes
		} else {
			pool = run.successful
		}
	}

	if err := s.transition(ctx, run, StateTerminatedBudget); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "search complete",
		"state", run.State().String(),
		"evaluated", budget.Used(),
		"successful", len(run.successful),
		"generations", len(run.generations),
	)
	return s.outcome(run, budget), nil
}

// explore runs the exploration generation and returns the initial pool.
func (s *Search) explore(ctx context.Context, run *SearchState, budget *Budget) ([]datatypes.Occupation, error) {
	start := time.Now()
	records, err := s.explorer.Explore(ctx)
	if err != nil {
		return nil, fmt.Errorf("exploration: %w", err)
	}

	successes := run.recordGeneration(datatypes.RoundExploration, records)
	s.observeGeneration(ctx, run, budget, time.Since(start))
	if len(successes) == 0 {
		return nil, ErrExplorationFailed
	}
	return successes, nil
}

// transition moves the run to a new state, logging the reason.
func (s *Search) transition(ctx context.Context, run *SearchState, to RunState) error {
	from := run.State()
	if err := s.machine.Transition(run, to); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "state transition",
		"from", from.String(),
		"to", to.String(),
		"reason", s.machine.TransitionReason(from, to),
	)
	return nil
}

// observeGeneration emits the per-generation log line and metrics for the
// most recently recorded generation.
func (s *Search) observeGeneration(ctx context.Context, run *SearchState, budget *Budget, elapsed time.Duration) {
	gen := run.generations[len(run.generations)-1]

	s.logger.InfoContext(ctx, "generation complete",
		"generation", gen.Index,
		"round", gen.Type.String(),
		"submitted", gen.Submitted,
		"succeeded", gen.Succeeded,
		"failed", gen.Failed,
		"budget_remaining", budget.Remaining(),
	)

	if s.metrics == nil {
		return
	}
	roundAttr := metric.WithAttributes(attribute.String("round", gen.Type.String()))
	s.metrics.Generations.Add(ctx, 1, roundAttr)
	if gen.Succeeded > 0 {
		s.metrics.Evaluations.Add(ctx, int64(gen.Succeeded),
			metric.WithAttributes(attribute.String("status", "ok")))
	}
	if gen.Failed > 0 {
		s.metrics.Evaluations.Add(ctx, int64(gen.Failed),
			metric.WithAttributes(attribute.String("status", "failed")))
	}
	s.metrics.GenerationDuration.Record(ctx, elapsed.Seconds(), roundAttr)
	s.metrics.SeedPoolSize.Record(ctx, int64(len(run.successful)))
	s.metrics.BudgetRemaining.Record(ctx, int64(budget.Remaining()))
}

// outcome snapshots the run bookkeeping.
func (s *Search) outcome(run *SearchState, budget *Budget) *Outcome {
	return &Outcome{
		State:       run.State(),
		Evaluated:   budget.Used(),
		Records:     run.records,
		JobIDs:      run.jobIDs,
		Successful:  run.successful,
		Generations: run.generations,
	}
}
