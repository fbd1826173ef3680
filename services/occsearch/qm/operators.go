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
	"fmt"
	"math"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// lEpsilon is the tolerance for deciding whether 2l is an integer.
const lEpsilon = 1e-9

// Operators bundles the angular momentum matrices for one l value, all of
// dimension 2l+1 over the |l,m> basis ordered m = -l .. +l.
type Operators struct {
	// L is the angular momentum quantum number the operators were built for.
	L float64

	// Dim is 2l+1.
	Dim int

	// Lx, Ly, Lz are the Cartesian components. Lz is diagonal with entries
	// m; Lx and Ly are the Hermitian combinations of the ladder operators.
	Lx *datatypes.StateMatrix
	Ly *datatypes.StateMatrix
	Lz *datatypes.StateMatrix

	// Raising and Lowering are the ladder operators L+ and L-.
	Raising  *datatypes.StateMatrix
	Lowering *datatypes.StateMatrix
}

// AngularMomentum builds the angular momentum operators for the given l.
//
// Description:
//
//	Constructs Lz, the ladder operators L+ and L-, and the Cartesian
//	components Lx = (L+ + L-)/2 and Ly = (L+ - L-)/(2i) over the basis
//	|l,-l> .. |l,+l>. Ladder elements follow
//	<m±1|L±|m> = sqrt(l(l+1) - m(m±1)).
//
// Inputs:
//
//	l - Angular momentum quantum number. Must be >= 0 with 2l integral
//	  (integers and half-integers are both valid; l = 0 yields 1x1 zero
//	  operators).
//
// Outputs:
//
//	*Operators - The operator bundle.
//	error - ErrInvalidL for negative, NaN, or non-half-integral l.
//
// Example:
//
//	ops, err := qm.AngularMomentum(2)
//	if err != nil {
//	    return err
//	}
//	// ops.Lz.At(4, 4) == 2 (the m = +2 state)
func AngularMomentum(l float64) (*Operators, error) {
	if math.IsNaN(l) || math.IsInf(l, 0) || l < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidL, l)
	}
	twoL := 2 * l
	if math.Abs(twoL-math.Round(twoL)) > lEpsilon {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidL, l)
	}

	dim := int(math.Round(twoL)) + 1
	lz, err := datatypes.NewStateMatrix(dim)
	if err != nil {
		return nil, err
	}
	raising, err := datatypes.NewStateMatrix(dim)
	if err != nil {
		return nil, err
	}
	lowering, err := datatypes.NewStateMatrix(dim)
	if err != nil {
		return nil, err
	}

	// Index i corresponds to m = -l + i.
	for i := 0; i < dim; i++ {
		m := -l + float64(i)
		lz.Set(i, i, complex(m, 0))
		if i+1 < dim {
			raising.Set(i+1, i, complex(math.Sqrt(l*(l+1)-m*(m+1)), 0))
		}
		if i-1 >= 0 {
			lowering.Set(i-1, i, complex(math.Sqrt(l*(l+1)-m*(m-1)), 0))
		}
	}

	sum, err := raising.Add(lowering)
	if err != nil {
		return nil, err
	}
	diff, err := raising.Add(lowering.Scale(-1))
	if err != nil {
		return nil, err
	}

	return &Operators{
		L:        l,
		Dim:      dim,
		Lx:       sum.Scale(0.5),
		Ly:       diff.Scale(complex(0, -0.5)),
		Lz:       lz,
		Raising:  raising,
		Lowering: lowering,
	}, nil
}
