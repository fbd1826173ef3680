// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package controller runs the generational occupation-matrix search.
//
// A run starts with one exploration generation that seeds the pool, then
// submits constrained batches of proposals until the evaluation budget is
// spent or a whole generation fails. A StateMachine enforces the run states,
// a Budget sizes every batch to min(batch size, remaining evaluations), and
// the seed pool is refreshed per generation in either Markovian scope (only
// the latest generation's successes) or holistic scope (every success so
// far).
//
// The run loop is single-goroutine; parallelism belongs to Executor
// implementations.
package controller
