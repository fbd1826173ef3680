// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the occupation search.
//
// Description:
//
//	Provides counters, histograms, and gauges for generations, evaluation
//	results, proposal throughput, and budget consumption. All metrics use
//	the "occsearch_" prefix for consistent naming.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// Generations counts completed generations by round type
	// (exploration, constrained).
	Generations metric.Int64Counter

	// Evaluations counts evaluation results by status (ok, failed).
	Evaluations metric.Int64Counter

	// Proposals counts generated proposals by strategy mode.
	Proposals metric.Int64Counter

	// GenerationDuration records wall time per generation in seconds.
	GenerationDuration metric.Float64Histogram

	// SeedPoolSize tracks the successful occupations accumulated as
	// candidate seeds.
	SeedPoolSize metric.Int64Gauge

	// BudgetRemaining tracks evaluations left before the cap.
	BudgetRemaining metric.Int64Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
//
// Inputs:
//
//	meter - The OTel meter to use for metric registration.
//
// Outputs:
//
//	*Metrics - The metrics instance with all instruments initialized.
//	error - Non-nil if metric registration fails.
//
// Example:
//
//	meter := otel.Meter("occsearch")
//	metrics, err := telemetry.NewMetrics(meter)
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
//	metrics.Generations.Add(ctx, 1, ...)
//
// Thread Safety: Safe for concurrent use after creation.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.Generations, err = meter.Int64Counter(
		"occsearch_generations_total",
		metric.WithDescription("Total generations completed"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create generations_total: %w", err)
	}

	m.Evaluations, err = meter.Int64Counter(
		"occsearch_evaluations_total",
		metric.WithDescription("Total evaluation results by status"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create evaluations_total: %w", err)
	}

	m.Proposals, err = meter.Int64Counter(
		"occsearch_proposals_total",
		metric.WithDescription("Total proposals generated"),
		metric.WithUnit("{proposal}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create proposals_total: %w", err)
	}

	m.GenerationDuration, err = meter.Float64Histogram(
		"occsearch_generation_duration_seconds",
		metric.WithDescription("Generation wall time in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation_duration: %w", err)
	}

	m.SeedPoolSize, err = meter.Int64Gauge(
		"occsearch_seed_pool_size",
		metric.WithDescription("Successful occupations available as seeds"),
		metric.WithUnit("{occupation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create seed_pool_size: %w", err)
	}

	m.BudgetRemaining, err = meter.Int64Gauge(
		"occsearch_budget_remaining",
		metric.WithDescription("Evaluations left before the run cap"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create budget_remaining: %w", err)
	}

	return m, nil
}
