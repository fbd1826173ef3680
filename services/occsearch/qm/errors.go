// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package qm

import "errors"

var (
	// ErrInvalidL indicates an angular momentum that is not a non-negative
	// integer or half-integer.
	ErrInvalidL = errors.New("angular momentum must be a non-negative integer or half-integer")

	// ErrUnsupportedDim indicates a matrix dimension with no cubic
	// transform. Only the d manifold (dim 5) is supported.
	ErrUnsupportedDim = errors.New("no spherical-to-cubic transform for this dimension")

	// ErrZeroAxis indicates a rotation axis with near-zero length.
	ErrZeroAxis = errors.New("rotation axis has zero length")
)
