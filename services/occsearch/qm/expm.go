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

import (
	"math"
	"math/cmplx"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

const (
	// expmTargetNorm is the per-step norm the scaled matrix is brought
	// under before the Taylor expansion.
	expmTargetNorm = 0.5

	// expmMaxTerms bounds the Taylor expansion. With the scaled norm under
	// 0.5 the series reaches machine precision in well under 25 terms.
	expmMaxTerms = 40

	// expmTermTol stops the expansion once a term is negligible.
	expmTermTol = 1e-18
)

// normInf returns the induced infinity norm (max absolute row sum).
func normInf(m *datatypes.StateMatrix) float64 {
	var max float64
	dim := m.Dim()
	for i := 0; i < dim; i++ {
		var row float64
		for j := 0; j < dim; j++ {
			row += cmplx.Abs(m.At(i, j))
		}
		if row > max {
			max = row
		}
	}
	return max
}

// expm computes the matrix exponential by scaling and squaring around a
// Taylor expansion.
func expm(a *datatypes.StateMatrix) (*datatypes.StateMatrix, error) {
	dim := a.Dim()

	// Scale the matrix down until its norm is small enough for the series.
	squarings := 0
	if n := normInf(a); n > expmTargetNorm {
		squarings = int(math.Ceil(math.Log2(n / expmTargetNorm)))
	}
	scaled := a.Scale(complex(1/math.Pow(2, float64(squarings)), 0))

	sum, err := datatypes.Identity(dim)
	if err != nil {
		return nil, err
	}
	term, err := datatypes.Identity(dim)
	if err != nil {
		return nil, err
	}

	for k := 1; k <= expmMaxTerms; k++ {
		term, err = term.Mul(scaled)
		if err != nil {
			return nil, err
		}
		term = term.Scale(complex(1/float64(k), 0))
		sum, err = sum.Add(term)
		if err != nil {
			return nil, err
		}
		if term.MaxAbs() < expmTermTol {
			break
		}
	}

	for s := 0; s < squarings; s++ {
		sum, err = sum.Mul(sum)
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}
