// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package executor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// SimulatorConfig configures the simulated solver.
type SimulatorConfig struct {
	// NoiseAmplitude scales the Hermitian perturbation applied to each
	// proposal to mimic convergence away from the seed. Must be >= 0.
	NoiseAmplitude float64

	// FailureRate is the probability in [0, 1] that an evaluation is
	// reported as failed.
	FailureRate float64

	// MaxConcurrent bounds the evaluations in flight.
	// Default: 4
	MaxConcurrent int

	// SubmitRate throttles job submissions per second. Zero disables
	// throttling.
	SubmitRate float64

	// Seed fixes the noise and failure draws. Zero seeds from the clock.
	Seed int64

	// Logger for per-batch debug output.
	Logger *slog.Logger
}

// DefaultSimulatorConfig returns sensible defaults.
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{
		NoiseAmplitude: 0.05,
		FailureRate:    0,
		MaxConcurrent:  4,
		SubmitRate:     0,
		Logger:         slog.Default(),
	}
}

// job carries the randomness drawn for one evaluation before the workers
// start, so results depend only on the seed and submission order, never on
// goroutine scheduling.
type job struct {
	id     string
	seed   int64
	failed bool
}

// Simulator is a mock solver implementing the batch evaluation contract.
//
// Description:
//
//	For each proposal the Simulator derives a "converged" occupation: the
//	proposal plus seeded trace-neutral symmetric noise, re-symmetrized so
//	Hermiticity is exact and each channel's trace is preserved. Failures
//	are injected with the configured probability and reported as records
//	with Success=false. Evaluations run concurrently under an errgroup
//	bounded by MaxConcurrent, with an optional rate limiter pacing
//	submissions. Records come back in submission order regardless of
//	completion order.
//
// Thread Safety: Safe for concurrent use.
type Simulator struct {
	cfg     SimulatorConfig
	logger  *slog.Logger
	limiter *rate.Limiter

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator.
//
// Inputs:
//
//	cfg - Simulator knobs. Use DefaultSimulatorConfig() for defaults.
//
// Outputs:
//
//	*Simulator - Ready for SubmitBatch.
//	error - ErrInvalidFailureRate or ErrInvalidNoise.
func NewSimulator(cfg SimulatorConfig) (*Simulator, error) {
	if cfg.FailureRate < 0 || cfg.FailureRate > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidFailureRate, cfg.FailureRate)
	}
	if cfg.NoiseAmplitude < 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidNoise, cfg.NoiseAmplitude)
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 4
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Simulator{
		cfg:    cfg,
		logger: cfg.Logger,
		rng:    rand.New(rand.NewSource(seed)),
	}
	if cfg.SubmitRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.SubmitRate), 1)
	}
	return s, nil
}

// SubmitBatch evaluates every proposal in the batch.
//
// Outputs:
//
//	[]datatypes.ResultRecord - Exactly one record per proposal, in
//	  submission order. Failed evaluations carry a job ID and a nil
//	  occupation.
//	error - Invalid batch, or context cancellation.
func (s *Simulator) SubmitBatch(ctx context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error) {
	if err := batch.Validate(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	ctx, span := otel.Tracer("occsearch").Start(ctx, "executor.Simulator.SubmitBatch",
		trace.WithAttributes(
			attribute.Int("batch.size", len(batch)),
			attribute.Float64("simulator.failure_rate", s.cfg.FailureRate),
		))
	defer span.End()

	jobs := make([]job, len(batch))
	s.mu.Lock()
	for i := range batch {
		jobs[i] = job{
			id:     uuid.NewString(),
			seed:   s.rng.Int63(),
			failed: s.rng.Float64() < s.cfg.FailureRate,
		}
	}
	s.mu.Unlock()

	records := make([]datatypes.ResultRecord, len(batch))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)

	for i, prop := range batch {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
		}

		i, prop := i, prop
		g.Go(func() error {
			rec, err := s.evaluate(gCtx, jobs[i], prop)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	succeeded := 0
	for _, rec := range records {
		if rec.Success {
			succeeded++
		}
	}
	span.SetAttributes(attribute.Int("batch.succeeded", succeeded))
	s.logger.DebugContext(ctx, "batch evaluated",
		"submitted", len(batch),
		"succeeded", succeeded,
	)
	return records, nil
}

// evaluate produces the record for one job.
func (s *Simulator) evaluate(ctx context.Context, j job, prop datatypes.Occupation) (datatypes.ResultRecord, error) {
	if err := ctx.Err(); err != nil {
		return datatypes.ResultRecord{}, err
	}
	if j.failed {
		return datatypes.ResultRecord{JobID: j.id}, nil
	}

	rng := rand.New(rand.NewSource(j.seed))
	converged := make(datatypes.Occupation, len(prop))
	for site, atom := range prop {
		up, err := s.perturb(rng, atom.Up)
		if err != nil {
			return datatypes.ResultRecord{}, fmt.Errorf("site %d up: %w", site, err)
		}
		down, err := s.perturb(rng, atom.Down)
		if err != nil {
			return datatypes.ResultRecord{}, fmt.Errorf("site %d down: %w", site, err)
		}
		converged[site] = datatypes.AtomOccupation{Up: up, Down: down}
	}
	return datatypes.ResultRecord{JobID: j.id, Success: true, Occupation: converged}, nil
}

// perturb adds trace-neutral symmetric noise to one spin channel and
// re-symmetrizes the result. The channel's trace is preserved exactly.
func (s *Simulator) perturb(rng *rand.Rand, m *datatypes.StateMatrix) (*datatypes.StateMatrix, error) {
	if s.cfg.NoiseAmplitude == 0 {
		return m.Clone(), nil
	}

	dim := m.Dim()
	noise, err := datatypes.NewStateMatrix(dim)
	if err != nil {
		return nil, err
	}
	for i := 0; i < dim; i++ {
		for k := i; k < dim; k++ {
			v := complex(s.cfg.NoiseAmplitude*rng.NormFloat64(), 0)
			noise.Set(i, k, v)
			noise.Set(k, i, v)
		}
	}

	// Shift the diagonal so the noise is traceless.
	shift := complex(noise.RealTrace()/float64(dim), 0)
	for i := 0; i < dim; i++ {
		noise.Set(i, i, noise.At(i, i)-shift)
	}

	out, err := m.Add(noise)
	if err != nil {
		return nil, err
	}
	sym, err := out.Add(out.Dagger())
	if err != nil {
		return nil, err
	}
	return sym.Scale(0.5), nil
}

var _ controller.Executor = (*Simulator)(nil)
