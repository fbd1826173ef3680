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

// dManifoldDim is the only dimension with a defined cubic transform.
const dManifoldDim = 5

// SphericalToCubic returns the unitary mapping the spherical harmonic basis
// to the cubic d-orbital basis.
//
// Description:
//
//	Rows are the cubic orbitals in Quantum ESPRESSO order z^2, xz, yz, xy,
//	x^2-y^2; columns are the spherical states m = -2 .. +2. The matrix is
//	unitary: T * dagger(T) = I to 1e-10.
//
// Inputs:
//
//	dim - Requested dimension. Only 5 is supported.
//
// Outputs:
//
//	*datatypes.StateMatrix - The fixed transform.
//	error - ErrUnsupportedDim for any dim other than 5.
func SphericalToCubic(dim int) (*datatypes.StateMatrix, error) {
	if dim != dManifoldDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedDim, dim, dManifoldDim)
	}

	r := 1 / math.Sqrt2
	return datatypes.FromRows([][]complex128{
		{0, 0, 1, 0, 0},
		{0, complex(0, -r), 0, complex(0, r), 0},
		{0, complex(r, 0), 0, complex(r, 0), 0},
		{complex(0, -r), 0, 0, 0, complex(0, r)},
		{complex(r, 0), 0, 0, 0, complex(r, 0)},
	})
}
