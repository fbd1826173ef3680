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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite(t *testing.T, upDiag, downDiag []float64) AtomOccupation {
	t.Helper()
	up, err := DiagonalReal(upDiag)
	require.NoError(t, err)
	down, err := DiagonalReal(downDiag)
	require.NoError(t, err)
	return AtomOccupation{Up: up, Down: down}
}

func TestAtomOccupation_Validate(t *testing.T) {
	site := testSite(t, []float64{1, 0}, []float64{0, 1})
	assert.NoError(t, site.Validate())

	missing := AtomOccupation{Up: site.Up}
	assert.ErrorIs(t, missing.Validate(), ErrNilMatrix)

	down3, err := DiagonalReal([]float64{1, 0, 0})
	require.NoError(t, err)
	mismatched := AtomOccupation{Up: site.Up, Down: down3}
	assert.ErrorIs(t, mismatched.Validate(), ErrShapeMismatch)
}

func TestAtomOccupation_SummedTrace(t *testing.T) {
	site := testSite(t, []float64{1, 1, 1, 0, 0}, []float64{1, 1, 0, 0, 0})
	assert.InDelta(t, 5, site.SummedTrace(), 1e-12)
}

func TestOccupation_SameShape(t *testing.T) {
	a := Occupation{testSite(t, []float64{1, 0}, []float64{0, 1})}
	b := Occupation{testSite(t, []float64{0, 0}, []float64{1, 1})}
	c := Occupation{testSite(t, []float64{1, 0, 0}, []float64{0, 1, 0})}

	assert.True(t, a.SameShape(b))
	assert.False(t, a.SameShape(c))
	assert.False(t, a.SameShape(append(b, b[0])))
}

func TestOccupationNumbers_RoundTrip(t *testing.T) {
	occ := Occupation{
		testSite(t, []float64{1, 1, 0, 0, 0}, []float64{1, 0, 0, 0, 0}),
		testSite(t, []float64{0, 1}, []float64{1, 1}),
	}
	require.NoError(t, occ.Validate())

	nums := occ.OccupationNumbers()
	require.Len(t, nums, 2)
	require.Len(t, nums[0], 2)

	back, err := OccupationFromNumbers(nums)
	require.NoError(t, err)
	assert.True(t, occ.SameShape(back))
	assert.InDelta(t, occ[0].SummedTrace(), back[0].SummedTrace(), 1e-12)
}

func TestOccupationFromNumbers_BadSpinCount(t *testing.T) {
	nums := [][][][]float64{
		{{{1, 0}, {0, 1}}}, // one spin channel only
	}
	_, err := OccupationFromNumbers(nums)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestProposalBatch_Validate(t *testing.T) {
	p1 := Occupation{testSite(t, []float64{1, 0}, []float64{0, 1})}
	p2 := Occupation{testSite(t, []float64{0, 1}, []float64{1, 0})}
	p3 := Occupation{testSite(t, []float64{1, 0, 0}, []float64{0, 0, 1})}

	assert.NoError(t, ProposalBatch{p1, p2}.Validate())
	assert.Error(t, ProposalBatch{}.Validate())
	assert.ErrorIs(t, ProposalBatch{p1, p3}.Validate(), ErrShapeMismatch)
}

func TestRoundType_JSON(t *testing.T) {
	rec := GenerationRecord{Index: 1, Type: RoundConstrained}
	assert.Equal(t, "constrained", rec.Type.String())
	assert.Equal(t, "exploration", RoundExploration.String())

	b, err := rec.Type.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"constrained"`, string(b))

	var rt RoundType
	require.NoError(t, rt.UnmarshalJSON([]byte(`"exploration"`)))
	assert.Equal(t, RoundExploration, rt)
	assert.Error(t, rt.UnmarshalJSON([]byte(`"bogus"`)))
}
