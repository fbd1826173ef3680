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

import "errors"

var (
	// ErrInvalidFailureRate indicates a failure probability outside [0, 1].
	ErrInvalidFailureRate = errors.New("failure rate outside [0, 1]")

	// ErrInvalidNoise indicates a negative noise amplitude.
	ErrInvalidNoise = errors.New("noise amplitude must be non-negative")

	// ErrInvalidSweep indicates an unusable sign-sweep configuration.
	ErrInvalidSweep = errors.New("invalid sweep configuration")

	// ErrNilSubmitter indicates a sweep built without an evaluation backend.
	ErrNilSubmitter = errors.New("nil submitter")
)
