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

import "errors"

var (
	// ErrInvalidTransition indicates a run-state transition outside the
	// allowed graph.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidBudget indicates a non-positive batch size or evaluation cap.
	ErrInvalidBudget = errors.New("invalid budget")

	// ErrNilDependency indicates a nil strategy, executor, or explorer.
	ErrNilDependency = errors.New("nil dependency")

	// ErrExplorationFailed indicates the exploration generation produced no
	// successful result, leaving nothing to seed the pool.
	ErrExplorationFailed = errors.New("exploration produced no successful result")

	// ErrAllEvaluationsFailed indicates a constrained generation in which
	// every evaluation failed. The run terminates and is reported as failed.
	ErrAllEvaluationsFailed = errors.New("all evaluations in generation failed")

	// ErrBatchContract indicates an Executor that returned a record count
	// different from the submitted batch size.
	ErrBatchContract = errors.New("executor broke the batch contract")
)
