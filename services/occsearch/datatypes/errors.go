// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "errors"

var (
	// ErrInvalidDim indicates a matrix dimension below 1.
	ErrInvalidDim = errors.New("matrix dimension must be at least 1")

	// ErrShapeMismatch indicates matrices or configurations whose shapes
	// disagree where agreement is required.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrNilMatrix indicates a nil matrix where a value is required.
	ErrNilMatrix = errors.New("matrix is nil")

	// ErrNotSquare indicates row data that does not form a square matrix.
	ErrNotSquare = errors.New("matrix is not square")
)
