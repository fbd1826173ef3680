// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package qm implements the quantum mechanical machinery behind occupation
// matrix proposals: angular momentum operator algebra for integer and
// half-integer l, rotation operators exp(-i*angle*(axis . L)), and the fixed
// unitary connecting the spherical harmonic basis to the cubic d-orbital
// basis used by plane-wave DFT codes.
//
// # Basis conventions
//
// Spherical operators act on the |l,m> basis ordered by ascending m, from
// -l to +l. The cubic transform follows the Quantum ESPRESSO d-manifold
// ordering z^2, xz, yz, xy, x^2-y^2 and exists only for dim 5; rotating an
// occupation matrix expressed in the cubic basis conjugates the spherical
// rotation through that fixed transform.
//
// # Numerical contract
//
// Rotation operators of Hermitian generators are unitary to 1e-10, and
// conjugation preserves Hermiticity and trace to the same tolerance. The
// matrix exponential uses scaling-and-squaring with a Taylor expansion,
// which is accurate far beyond that for the small generator norms seen
// here (dim <= 6, |angle| <= 2*pi).
package qm
