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
	"encoding/json"
	"fmt"
	"math"
	"math/cmplx"
)

// StateMatrix is a dense square complex matrix holding one spin channel of
// an occupation or operator matrix.
//
// Description:
//
//	Storage is a flat row-major []complex128. Occupation payloads are
//	Hermitian with trace equal to the electron count of the channel;
//	operator payloads (rotation generators, unitaries) are general complex.
//	All arithmetic methods return new matrices; a StateMatrix is never
//	mutated by another matrix's method.
//
// Thread Safety: Safe for concurrent reads. Set must not race with any
// other access; callers that share a matrix across goroutines must copy.
type StateMatrix struct {
	dim  int
	data []complex128
}

// NewStateMatrix creates a zero matrix of the given dimension.
//
// Inputs:
//
//	dim - Matrix dimension, must be >= 1.
//
// Outputs:
//
//	*StateMatrix - The zero matrix.
//	error - ErrInvalidDim if dim < 1.
func NewStateMatrix(dim int) (*StateMatrix, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDim, dim)
	}
	return &StateMatrix{dim: dim, data: make([]complex128, dim*dim)}, nil
}

// Identity creates the identity matrix of the given dimension.
func Identity(dim int) (*StateMatrix, error) {
	m, err := NewStateMatrix(dim)
	if err != nil {
		return nil, err
	}
	for i := 0; i < dim; i++ {
		m.data[i*dim+i] = 1
	}
	return m, nil
}

// FromRows creates a StateMatrix from explicit row data.
//
// Outputs:
//
//	*StateMatrix - Matrix with the given entries.
//	error - ErrInvalidDim for empty input, ErrNotSquare if any row length
//	  differs from the row count.
func FromRows(rows [][]complex128) (*StateMatrix, error) {
	dim := len(rows)
	if dim < 1 {
		return nil, fmt.Errorf("%w: got 0 rows", ErrInvalidDim)
	}
	m := &StateMatrix{dim: dim, data: make([]complex128, dim*dim)}
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, i, len(row), dim)
		}
		copy(m.data[i*dim:(i+1)*dim], row)
	}
	return m, nil
}

// DiagonalReal creates a matrix with the given real diagonal and zeros
// elsewhere.
func DiagonalReal(diag []float64) (*StateMatrix, error) {
	m, err := NewStateMatrix(len(diag))
	if err != nil {
		return nil, err
	}
	for i, v := range diag {
		m.data[i*m.dim+i] = complex(v, 0)
	}
	return m, nil
}

// Dim returns the matrix dimension.
func (m *StateMatrix) Dim() int { return m.dim }

// At returns the entry at row i, column j. Panics on out-of-range indices;
// indices are always program-derived, never user input.
func (m *StateMatrix) At(i, j int) complex128 {
	m.boundsCheck(i, j)
	return m.data[i*m.dim+j]
}

// Set writes the entry at row i, column j. Panics on out-of-range indices.
func (m *StateMatrix) Set(i, j int, v complex128) {
	m.boundsCheck(i, j)
	m.data[i*m.dim+j] = v
}

func (m *StateMatrix) boundsCheck(i, j int) {
	if i < 0 || i >= m.dim || j < 0 || j >= m.dim {
		panic(fmt.Sprintf("datatypes: index (%d,%d) out of range for %dx%d matrix", i, j, m.dim, m.dim))
	}
}

// Trace returns the sum of diagonal entries.
func (m *StateMatrix) Trace() complex128 {
	var t complex128
	for i := 0; i < m.dim; i++ {
		t += m.data[i*m.dim+i]
	}
	return t
}

// RealTrace returns the real part of the trace.
func (m *StateMatrix) RealTrace() float64 {
	return real(m.Trace())
}

// Dagger returns the conjugate transpose.
func (m *StateMatrix) Dagger() *StateMatrix {
	out := &StateMatrix{dim: m.dim, data: make([]complex128, len(m.data))}
	for i := 0; i < m.dim; i++ {
		for j := 0; j < m.dim; j++ {
			out.data[j*m.dim+i] = cmplx.Conj(m.data[i*m.dim+j])
		}
	}
	return out
}

// Mul returns the matrix product m * o.
//
// Outputs:
//
//	*StateMatrix - The product.
//	error - ErrNilMatrix or ErrShapeMismatch on dimension disagreement.
func (m *StateMatrix) Mul(o *StateMatrix) (*StateMatrix, error) {
	if o == nil {
		return nil, ErrNilMatrix
	}
	if o.dim != m.dim {
		return nil, fmt.Errorf("%w: %dx%d times %dx%d", ErrShapeMismatch, m.dim, m.dim, o.dim, o.dim)
	}
	out := &StateMatrix{dim: m.dim, data: make([]complex128, len(m.data))}
	for i := 0; i < m.dim; i++ {
		for k := 0; k < m.dim; k++ {
			a := m.data[i*m.dim+k]
			if a == 0 {
				continue
			}
			for j := 0; j < m.dim; j++ {
				out.data[i*m.dim+j] += a * o.data[k*m.dim+j]
			}
		}
	}
	return out, nil
}

// Add returns the matrix sum m + o.
func (m *StateMatrix) Add(o *StateMatrix) (*StateMatrix, error) {
	if o == nil {
		return nil, ErrNilMatrix
	}
	if o.dim != m.dim {
		return nil, fmt.Errorf("%w: %dx%d plus %dx%d", ErrShapeMismatch, m.dim, m.dim, o.dim, o.dim)
	}
	out := &StateMatrix{dim: m.dim, data: make([]complex128, len(m.data))}
	for i := range m.data {
		out.data[i] = m.data[i] + o.data[i]
	}
	return out, nil
}

// Scale returns the matrix scaled by a complex factor.
func (m *StateMatrix) Scale(c complex128) *StateMatrix {
	out := &StateMatrix{dim: m.dim, data: make([]complex128, len(m.data))}
	for i := range m.data {
		out.data[i] = c * m.data[i]
	}
	return out
}

// Clone returns a deep copy.
func (m *StateMatrix) Clone() *StateMatrix {
	out := &StateMatrix{dim: m.dim, data: make([]complex128, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Real returns a copy with all imaginary parts dropped.
func (m *StateMatrix) Real() *StateMatrix {
	out := &StateMatrix{dim: m.dim, data: make([]complex128, len(m.data))}
	for i, v := range m.data {
		out.data[i] = complex(real(v), 0)
	}
	return out
}

// MaxAbs returns the largest entry magnitude. Used for norm estimates.
func (m *StateMatrix) MaxAbs() float64 {
	var max float64
	for _, v := range m.data {
		if a := cmplx.Abs(v); a > max {
			max = a
		}
	}
	return max
}

// IsHermitian reports whether the matrix equals its conjugate transpose
// within tol per entry.
func (m *StateMatrix) IsHermitian(tol float64) bool {
	for i := 0; i < m.dim; i++ {
		for j := i; j < m.dim; j++ {
			d := m.data[i*m.dim+j] - cmplx.Conj(m.data[j*m.dim+i])
			if cmplx.Abs(d) > tol {
				return false
			}
		}
	}
	return true
}

// EqualWithin reports whether two matrices agree entrywise within tol.
func (m *StateMatrix) EqualWithin(o *StateMatrix, tol float64) bool {
	if o == nil || o.dim != m.dim {
		return false
	}
	for i := range m.data {
		if cmplx.Abs(m.data[i]-o.data[i]) > tol {
			return false
		}
	}
	return true
}

// MaxImag returns the largest imaginary-part magnitude. Occupation payloads
// about to be serialized should be near zero here.
func (m *StateMatrix) MaxImag() float64 {
	var max float64
	for _, v := range m.data {
		if a := math.Abs(imag(v)); a > max {
			max = a
		}
	}
	return max
}

// RealRows returns the real parts as nested rows. This is the serialized
// shape of an occupation matrix.
func (m *StateMatrix) RealRows() [][]float64 {
	rows := make([][]float64, m.dim)
	for i := 0; i < m.dim; i++ {
		row := make([]float64, m.dim)
		for j := 0; j < m.dim; j++ {
			row[j] = real(m.data[i*m.dim+j])
		}
		rows[i] = row
	}
	return rows
}

// FromRealRows creates a StateMatrix from real row data.
func FromRealRows(rows [][]float64) (*StateMatrix, error) {
	dim := len(rows)
	if dim < 1 {
		return nil, fmt.Errorf("%w: got 0 rows", ErrInvalidDim)
	}
	m := &StateMatrix{dim: dim, data: make([]complex128, dim*dim)}
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrNotSquare, i, len(row), dim)
		}
		for j, v := range row {
			m.data[i*dim+j] = complex(v, 0)
		}
	}
	return m, nil
}

// MarshalJSON encodes the real parts as [][]float64 (collinear convention).
func (m *StateMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.RealRows())
}

// UnmarshalJSON decodes a [][]float64 matrix.
func (m *StateMatrix) UnmarshalJSON(b []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return fmt.Errorf("decode matrix: %w", err)
	}
	parsed, err := FromRealRows(rows)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
