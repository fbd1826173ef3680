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
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
	"github.com/AleutianAI/LordCapulet/services/occsearch/qm"
)

// Random generates proposals by perturbing per-site electron-count targets
// and rotating shuffled diagonal seeds.
//
// Description:
//
//	For every proposal and site, the target electron count (the mean summed
//	trace over the seed pool, or an explicit per-site override) is rounded,
//	optionally jittered by one electron to sample adjacent oxidation
//	states, and clamped into [0, 2*dim]. The electrons are laid out as a
//	shuffled 0/1 diagonal across both spin channels, then both channels are
//	rotated by the same random rotation (angle uniform in [0, 2*pi), axis
//	uniform on the sphere) and projected real.
//
//	All randomness flows from one seeded RNG, so a seed fixes the full
//	batch sequence. Rotation is defined only for the d manifold; disable it
//	for other orbital dimensions.
//
// Thread Safety: Not safe for concurrent Generate calls (shared RNG).
type Random struct {
	rng          *rand.Rand
	targetTraces []float64
	jitter       bool
	rotate       bool
}

// RandomOption customizes a Random strategy.
type RandomOption func(*Random)

// WithSeed fixes the RNG seed for reproducible batches.
func WithSeed(seed int64) RandomOption {
	return func(r *Random) { r.rng = rand.New(rand.NewSource(seed)) }
}

// WithTargetTraces overrides the pool-derived targets with explicit
// per-site electron counts. Length must match the pool's site count at
// generation time.
func WithTargetTraces(traces []float64) RandomOption {
	return func(r *Random) {
		r.targetTraces = append([]float64(nil), traces...)
	}
}

// WithOxidationJitter toggles the +/-1 electron perturbation. Default on.
func WithOxidationJitter(enabled bool) RandomOption {
	return func(r *Random) { r.jitter = enabled }
}

// WithRotation toggles the shared random rotation. Default on. Disabling
// keeps proposals diagonal, which pins the summed trace exactly to the
// target.
func WithRotation(enabled bool) RandomOption {
	return func(r *Random) { r.rotate = enabled }
}

// NewRandom creates a Random strategy. Without WithSeed the RNG is seeded
// from the clock.
func NewRandom(opts ...RandomOption) *Random {
	r := &Random{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		jitter: true,
		rotate: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the mode tag.
func (r *Random) Name() string { return ModeRandom.String() }

// Generate produces count proposals shaped like the seed pool.
//
// Outputs:
//
//	datatypes.ProposalBatch - Exactly count proposals.
//	error - ErrInvalidCount, ErrEmptySeedPool, datatypes.ErrShapeMismatch
//	  on inconsistent pool entries or target-trace length, or a rotation
//	  failure.
func (r *Random) Generate(ctx context.Context, count int, pool []datatypes.Occupation) (datatypes.ProposalBatch, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	if len(pool) == 0 {
		// Even with explicit targets the site count and orbital dimension
		// come from the pool.
		return nil, ErrEmptySeedPool
	}
	shape := pool[0]
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("seed entry 0: %w", err)
	}
	for i, occ := range pool[1:] {
		if !shape.SameShape(occ) {
			return nil, fmt.Errorf("%w: seed entry %d differs from entry 0", datatypes.ErrShapeMismatch, i+1)
		}
	}

	targets, err := r.resolveTargets(pool, shape.NumSites())
	if err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("occsearch").Start(ctx, "proposal.Random.Generate",
		trace.WithAttributes(
			attribute.Int("proposal.count", count),
			attribute.Int("proposal.sites", shape.NumSites()),
			attribute.Bool("proposal.rotate", r.rotate),
		))
	defer span.End()

	batch := make(datatypes.ProposalBatch, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		occ, err := r.generateOne(shape, targets)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("proposal %d: %w", i, err)
		}
		batch = append(batch, occ)
	}
	return batch, nil
}

// resolveTargets returns the per-site electron targets.
func (r *Random) resolveTargets(pool []datatypes.Occupation, sites int) ([]float64, error) {
	if r.targetTraces != nil {
		if len(r.targetTraces) != sites {
			return nil, fmt.Errorf("%w: %d target traces for %d sites",
				datatypes.ErrShapeMismatch, len(r.targetTraces), sites)
		}
		return append([]float64(nil), r.targetTraces...), nil
	}

	targets := make([]float64, sites)
	for _, occ := range pool {
		for i, site := range occ {
			targets[i] += site.SummedTrace()
		}
	}
	for i := range targets {
		targets[i] /= float64(len(pool))
	}
	return targets, nil
}

// generateOne builds a single proposal configuration.
func (r *Random) generateOne(shape datatypes.Occupation, targets []float64) (datatypes.Occupation, error) {
	occ := make(datatypes.Occupation, shape.NumSites())
	for site := 0; site < shape.NumSites(); site++ {
		dim := shape[site].Dim()

		target := int(math.Round(targets[site]))
		if r.jitter {
			target += r.rng.Intn(3) - 1
		}
		if target < 0 {
			target = 0
		}
		if target > 2*dim {
			target = 2 * dim
		}

		// Shuffled 0/1 split across both spin channels: the first dim slots
		// become the up diagonal, the rest the down diagonal.
		slots := make([]float64, 2*dim)
		for k := 0; k < target; k++ {
			slots[k] = 1
		}
		r.rng.Shuffle(len(slots), func(a, b int) { slots[a], slots[b] = slots[b], slots[a] })

		up, err := datatypes.DiagonalReal(slots[:dim])
		if err != nil {
			return nil, err
		}
		down, err := datatypes.DiagonalReal(slots[dim:])
		if err != nil {
			return nil, err
		}

		if r.rotate {
			angle := r.rng.Float64() * 2 * math.Pi
			axis := r.uniformAxis()

			// One rotation per site, applied to both spin channels.
			up, err = qm.RotateInCubicBasis(up, angle, axis)
			if err != nil {
				return nil, fmt.Errorf("site %d: %w", site, err)
			}
			down, err = qm.RotateInCubicBasis(down, angle, axis)
			if err != nil {
				return nil, fmt.Errorf("site %d: %w", site, err)
			}
			up = up.Real()
			down = down.Real()
		}

		occ[site] = datatypes.AtomOccupation{Up: up, Down: down}
	}
	return occ, nil
}

// uniformAxis draws a direction uniformly on the unit sphere from three
// normal deviates.
func (r *Random) uniformAxis() [3]float64 {
	for {
		x, y, z := r.rng.NormFloat64(), r.rng.NormFloat64(), r.rng.NormFloat64()
		n := math.Sqrt(x*x + y*y + z*z)
		if n > 1e-12 {
			return [3]float64{x / n, y / n, z / n}
		}
	}
}

var _ Strategy = (*Random)(nil)
