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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// Submitter evaluates a batch of proposals. The Simulator satisfies it, as
// does any wrapper that forwards batches to a real solver.
type Submitter interface {
	SubmitBatch(ctx context.Context, batch datatypes.ProposalBatch) ([]datatypes.ResultRecord, error)
}

// SweepConfig describes the collinear sign patterns to explore.
type SweepConfig struct {
	// Sites is the number of correlated atoms.
	Sites int

	// OrbitalDim is the orbital dimension per spin channel.
	OrbitalDim int

	// Electrons holds the electron count per site, length Sites.
	// Each entry must lie in [0, 2*OrbitalDim].
	Electrons []int

	// MaxPatterns caps the enumerated sign patterns. The full sweep over
	// Sites sites has 2^Sites patterns; MaxPatterns truncates it.
	MaxPatterns int

	// Logger for sweep progress.
	Logger *slog.Logger
}

// DefaultSweepConfig returns a single d-shell site with five electrons.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Sites:       1,
		OrbitalDim:  5,
		Electrons:   []int{5},
		MaxPatterns: 16,
		Logger:      slog.Default(),
	}
}

// SignSweep seeds a search by evaluating every collinear spin sign pattern.
//
// Description:
//
//	Each site gets an integer occupation: the majority spin channel takes
//	min(electrons, dim) orbitals at occupancy one, the minority channel
//	takes the remainder. A pattern is a bitmask over sites choosing which
//	channel is the majority, so Sites sites yield up to 2^Sites distinct
//	collinear configurations. The whole enumeration goes to the Submitter
//	as one batch.
//
// Thread Safety: Safe for concurrent use once constructed.
type SignSweep struct {
	cfg       SweepConfig
	logger    *slog.Logger
	submitter Submitter
}

// NewSignSweep creates a SignSweep explorer.
//
// Inputs:
//
//	cfg - Sweep shape. Use DefaultSweepConfig() for defaults.
//	submitter - Evaluates the enumerated batch. Must not be nil.
//
// Outputs:
//
//	*SignSweep - Ready for Explore.
//	error - ErrInvalidSweep or ErrNilSubmitter.
func NewSignSweep(cfg SweepConfig, submitter Submitter) (*SignSweep, error) {
	if submitter == nil {
		return nil, ErrNilSubmitter
	}
	if cfg.Sites < 1 {
		return nil, fmt.Errorf("%w: sites must be >= 1, got %d", ErrInvalidSweep, cfg.Sites)
	}
	if cfg.OrbitalDim < 1 {
		return nil, fmt.Errorf("%w: orbital dimension must be >= 1, got %d", ErrInvalidSweep, cfg.OrbitalDim)
	}
	if len(cfg.Electrons) != cfg.Sites {
		return nil, fmt.Errorf("%w: need %d electron counts, got %d", ErrInvalidSweep, cfg.Sites, len(cfg.Electrons))
	}
	for site, n := range cfg.Electrons {
		if n < 0 || n > 2*cfg.OrbitalDim {
			return nil, fmt.Errorf("%w: site %d electron count %d outside [0, %d]", ErrInvalidSweep, site, n, 2*cfg.OrbitalDim)
		}
	}
	if cfg.MaxPatterns < 1 {
		return nil, fmt.Errorf("%w: max patterns must be >= 1, got %d", ErrInvalidSweep, cfg.MaxPatterns)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &SignSweep{cfg: cfg, logger: cfg.Logger, submitter: submitter}, nil
}

// patternCount returns the number of sign patterns to enumerate: 2^Sites
// capped at MaxPatterns, doubling instead of shifting so wide site counts
// cannot overflow.
func (e *SignSweep) patternCount() int {
	total := 1
	for i := 0; i < e.cfg.Sites && total < e.cfg.MaxPatterns; i++ {
		total *= 2
	}
	if total > e.cfg.MaxPatterns {
		total = e.cfg.MaxPatterns
	}
	return total
}

// pattern builds the occupation for sign pattern k. Bit `site` of k flips
// which channel holds the majority on that site.
func (e *SignSweep) pattern(k int) (datatypes.Occupation, error) {
	dim := e.cfg.OrbitalDim
	occ := make(datatypes.Occupation, e.cfg.Sites)
	for site := 0; site < e.cfg.Sites; site++ {
		n := e.cfg.Electrons[site]
		major := n
		if major > dim {
			major = dim
		}
		minor := n - major

		majorDiag := make([]float64, dim)
		for i := 0; i < major; i++ {
			majorDiag[i] = 1
		}
		minorDiag := make([]float64, dim)
		for i := 0; i < minor; i++ {
			minorDiag[i] = 1
		}

		up, err := datatypes.DiagonalReal(majorDiag)
		if err != nil {
			return nil, err
		}
		down, err := datatypes.DiagonalReal(minorDiag)
		if err != nil {
			return nil, err
		}
		if k>>site&1 == 1 {
			up, down = down, up
		}
		occ[site] = datatypes.AtomOccupation{Up: up, Down: down}
	}
	return occ, nil
}

// Explore enumerates the sign patterns and submits them as one batch.
//
// Outputs:
//
//	[]datatypes.ResultRecord - One record per pattern, in pattern order.
//	error - Submission failure.
func (e *SignSweep) Explore(ctx context.Context) ([]datatypes.ResultRecord, error) {
	count := e.patternCount()

	ctx, span := otel.Tracer("occsearch").Start(ctx, "executor.SignSweep.Explore",
		trace.WithAttributes(
			attribute.Int("sweep.sites", e.cfg.Sites),
			attribute.Int("sweep.patterns", count),
		))
	defer span.End()

	batch := make(datatypes.ProposalBatch, 0, count)
	for k := 0; k < count; k++ {
		occ, err := e.pattern(k)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("pattern %d: %w", k, err)
		}
		batch = append(batch, occ)
	}

	records, err := e.submitter.SubmitBatch(ctx, batch)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("sign sweep: %w", err)
	}

	succeeded := 0
	for _, rec := range records {
		if rec.Success {
			succeeded++
		}
	}
	e.logger.InfoContext(ctx, "sign sweep complete",
		"patterns", count,
		"succeeded", succeeded,
	)
	return records, nil
}

var _ controller.Explorer = (*SignSweep)(nil)
