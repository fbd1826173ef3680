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
	"fmt"
	"sync/atomic"
)

// Budget tracks evaluation consumption against the run's hard cap.
//
// Exploration results do not count against the budget; only constrained
// evaluations are charged.
//
// Thread Safety: Safe for concurrent use.
type Budget struct {
	max  int64
	used int64
}

// NewBudget creates a budget with the given evaluation cap.
//
// Inputs:
//
//	max: Total constrained evaluations allowed, must be >= 1
//
// Outputs:
//
//	*Budget: Budget tracker, ready to use
//	error: ErrInvalidBudget if max < 1
func NewBudget(max int) (*Budget, error) {
	if max < 1 {
		return nil, fmt.Errorf("%w: evaluation cap must be >= 1, got %d", ErrInvalidBudget, max)
	}
	return &Budget{max: int64(max)}, nil
}

// Max returns the evaluation cap.
func (b *Budget) Max() int {
	return int(b.max)
}

// Used returns the evaluations charged so far.
func (b *Budget) Used() int {
	return int(atomic.LoadInt64(&b.used))
}

// Record charges n evaluations and returns the new cumulative count.
func (b *Budget) Record(n int) int {
	return int(atomic.AddInt64(&b.used, int64(n)))
}

// Remaining returns the evaluations left before the cap.
func (b *Budget) Remaining() int {
	r := int(b.max - atomic.LoadInt64(&b.used))
	if r < 0 {
		return 0
	}
	return r
}

// Exhausted returns whether the cap has been reached.
func (b *Budget) Exhausted() bool {
	return atomic.LoadInt64(&b.used) >= b.max
}

// NextBatch returns the size of the next batch: the requested size capped
// at the remaining budget, so the final batch never overshoots.
func (b *Budget) NextBatch(requested int) int {
	if r := b.Remaining(); requested > r {
		return r
	}
	return requested
}

// String returns a human-readable budget status.
func (b *Budget) String() string {
	return fmt.Sprintf("Budget{used=%d/%d}", b.Used(), b.Max())
}
