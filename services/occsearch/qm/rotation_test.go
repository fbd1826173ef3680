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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// randomHermitian builds a seeded random Hermitian matrix.
func randomHermitian(t *testing.T, dim int, seed int64) *datatypes.StateMatrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]complex128, dim)
	for i := range rows {
		rows[i] = make([]complex128, dim)
		for j := range rows[i] {
			rows[i][j] = complex(rng.Float64()-0.5, rng.Float64()-0.5)
		}
	}
	m, err := datatypes.FromRows(rows)
	require.NoError(t, err)

	herm, err := m.Add(m.Dagger())
	require.NoError(t, err)
	return herm.Scale(0.5)
}

func TestRotationOperator_Unitary(t *testing.T) {
	ops, err := AngularMomentum(2)
	require.NoError(t, err)

	r, err := RotationOperator(1.234, [3]float64{1, -2, 0.5}, ops.Lx, ops.Ly, ops.Lz)
	require.NoError(t, err)

	prod, err := r.Mul(r.Dagger())
	require.NoError(t, err)

	id, err := datatypes.Identity(5)
	require.NoError(t, err)
	assert.True(t, prod.EqualWithin(id, 1e-10))
}

func TestRotationOperator_ZeroAngle(t *testing.T) {
	ops, err := AngularMomentum(1)
	require.NoError(t, err)

	r, err := RotationOperator(0, [3]float64{0, 0, 1}, ops.Lx, ops.Ly, ops.Lz)
	require.NoError(t, err)

	id, err := datatypes.Identity(3)
	require.NoError(t, err)
	assert.True(t, r.EqualWithin(id, 1e-12))
}

func TestRotationOperator_ZeroAxis(t *testing.T) {
	ops, err := AngularMomentum(1)
	require.NoError(t, err)

	_, err = RotationOperator(1, [3]float64{0, 0, 0}, ops.Lx, ops.Ly, ops.Lz)
	assert.ErrorIs(t, err, ErrZeroAxis)
}

func TestRotationOperator_GeneratorMismatch(t *testing.T) {
	small, err := AngularMomentum(1)
	require.NoError(t, err)
	big, err := AngularMomentum(2)
	require.NoError(t, err)

	_, err = RotationOperator(1, [3]float64{0, 0, 1}, small.Lx, small.Ly, big.Lz)
	assert.ErrorIs(t, err, datatypes.ErrShapeMismatch)

	_, err = RotationOperator(1, [3]float64{0, 0, 1}, nil, small.Ly, small.Lz)
	assert.ErrorIs(t, err, datatypes.ErrNilMatrix)
}

func TestRotateInCubicBasis_PreservesHermiticityAndTrace(t *testing.T) {
	occ := randomHermitian(t, 5, 42)
	wantTrace := real(occ.Trace())

	rotated, err := RotateInCubicBasis(occ, 0.77, [3]float64{0.3, -1.2, 2})
	require.NoError(t, err)

	assert.True(t, rotated.IsHermitian(1e-10))
	assert.InDelta(t, wantTrace, real(rotated.Trace()), 1e-10)
	assert.InDelta(t, 0, imag(rotated.Trace()), 1e-10)
}

func TestRotateInCubicBasis_RoundTrip(t *testing.T) {
	occ := randomHermitian(t, 5, 7)
	axis := [3]float64{1, 1, -0.5}

	forward, err := RotateInCubicBasis(occ, 1.9, axis)
	require.NoError(t, err)
	back, err := RotateInCubicBasis(forward, -1.9, axis)
	require.NoError(t, err)

	assert.True(t, back.EqualWithin(occ, 1e-9))
}

func TestRotateInCubicBasis_FullTurn(t *testing.T) {
	occ := randomHermitian(t, 5, 11)

	turned, err := RotateInCubicBasis(occ, 2*math.Pi, [3]float64{0, 1, 0})
	require.NoError(t, err)

	// Integer l: a 2*pi rotation is the identity.
	assert.True(t, turned.EqualWithin(occ, 1e-9))
}

func TestRotateInCubicBasis_WrongDim(t *testing.T) {
	occ := randomHermitian(t, 3, 3)

	_, err := RotateInCubicBasis(occ, 1, [3]float64{0, 0, 1})
	assert.ErrorIs(t, err, ErrUnsupportedDim)

	_, err = RotateInCubicBasis(nil, 1, [3]float64{0, 0, 1})
	assert.ErrorIs(t, err, datatypes.ErrNilMatrix)
}
