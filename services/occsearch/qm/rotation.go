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

// axisEpsilon is the minimum axis length accepted for normalization.
const axisEpsilon = 1e-12

// RotationOperator builds the rotation exp(-i*angle*(n . L)) for the given
// generators.
//
// Description:
//
//	Normalizes the axis, forms the Hermitian generator
//	H = nx*Lx + ny*Ly + nz*Lz, and exponentiates -i*angle*H. For Hermitian
//	generators the result is unitary.
//
// Inputs:
//
//	angle - Rotation angle in radians. Any finite value; 0 yields the
//	  identity.
//	axis - Rotation axis. Need not be normalized; near-zero length fails.
//	lx, ly, lz - Angular momentum components of equal dimension, typically
//	  from AngularMomentum.
//
// Outputs:
//
//	*datatypes.StateMatrix - The rotation operator.
//	error - ErrZeroAxis, datatypes.ErrNilMatrix, or
//	  datatypes.ErrShapeMismatch on invalid inputs.
func RotationOperator(angle float64, axis [3]float64, lx, ly, lz *datatypes.StateMatrix) (*datatypes.StateMatrix, error) {
	if lx == nil || ly == nil || lz == nil {
		return nil, fmt.Errorf("%w: all three generators are required", datatypes.ErrNilMatrix)
	}
	if lx.Dim() != ly.Dim() || lx.Dim() != lz.Dim() {
		return nil, fmt.Errorf("%w: generators have dims %d, %d, %d",
			datatypes.ErrShapeMismatch, lx.Dim(), ly.Dim(), lz.Dim())
	}

	norm := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if norm < axisEpsilon {
		return nil, fmt.Errorf("%w: |axis| = %g", ErrZeroAxis, norm)
	}

	h := lx.Scale(complex(axis[0]/norm, 0))
	h, err := h.Add(ly.Scale(complex(axis[1]/norm, 0)))
	if err != nil {
		return nil, err
	}
	h, err = h.Add(lz.Scale(complex(axis[2]/norm, 0)))
	if err != nil {
		return nil, err
	}

	return expm(h.Scale(complex(0, -angle)))
}

// RotateInCubicBasis rotates a cubic-basis occupation matrix.
//
// Description:
//
//	Infers l = (dim-1)/2 from the input, builds the spherical rotation for
//	that l, conjugates it into the cubic basis through the fixed transform
//	(R_c = T * R * dagger(T)), and returns R_c * m * dagger(R_c). Since the
//	fixed transform exists only for the d manifold, the input must be 5x5.
//	Hermiticity and trace of the input are preserved to 1e-10.
//
// Inputs:
//
//	m - Occupation matrix in the cubic basis. Must be 5x5.
//	angle - Rotation angle in radians.
//	axis - Rotation axis, normalized internally.
//
// Outputs:
//
//	*datatypes.StateMatrix - The rotated matrix.
//	error - ErrUnsupportedDim for non-5x5 inputs, plus the
//	  RotationOperator failure modes.
//
// Example:
//
//	rotated, err := qm.RotateInCubicBasis(occ, math.Pi/3, [3]float64{0, 0, 1})
func RotateInCubicBasis(m *datatypes.StateMatrix, angle float64, axis [3]float64) (*datatypes.StateMatrix, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no matrix to rotate", datatypes.ErrNilMatrix)
	}

	t, err := SphericalToCubic(m.Dim())
	if err != nil {
		return nil, err
	}

	ops, err := AngularMomentum(float64(m.Dim()-1) / 2)
	if err != nil {
		return nil, err
	}
	r, err := RotationOperator(angle, axis, ops.Lx, ops.Ly, ops.Lz)
	if err != nil {
		return nil, err
	}

	rc, err := t.Mul(r)
	if err != nil {
		return nil, err
	}
	rc, err = rc.Mul(t.Dagger())
	if err != nil {
		return nil, err
	}

	out, err := rc.Mul(m)
	if err != nil {
		return nil, err
	}
	return out.Mul(rc.Dagger())
}
