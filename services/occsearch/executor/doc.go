// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package executor provides the evaluation backends the search controller
// drives.
//
// Simulator is a self-contained mock solver: it perturbs each proposal with
// seeded trace-neutral Hermitian noise, optionally injects failures at a
// configured rate, and evaluates batches concurrently while preserving
// submission order. SignSweep is the matching explorer: it enumerates
// collinear spin-sign patterns (up-majority vs down-majority per site) and
// runs them through a Submitter to produce the exploration generation.
//
// Both satisfy the controller contracts, so a run works end to end without
// an external solver.
package executor
