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
	"fmt"
)

// AtomOccupation pairs the spin-up and spin-down occupation matrices of one
// atomic site. Both channels must share the same orbital dimension.
type AtomOccupation struct {
	Up   *StateMatrix `json:"up"`
	Down *StateMatrix `json:"down"`
}

// Validate checks that both channels are present and dimensions agree.
func (a AtomOccupation) Validate() error {
	if a.Up == nil || a.Down == nil {
		return fmt.Errorf("%w: site is missing a spin channel", ErrNilMatrix)
	}
	if a.Up.Dim() != a.Down.Dim() {
		return fmt.Errorf("%w: up %dx%d vs down %dx%d",
			ErrShapeMismatch, a.Up.Dim(), a.Up.Dim(), a.Down.Dim(), a.Down.Dim())
	}
	return nil
}

// Dim returns the orbital dimension of the site, or 0 if the up channel is
// absent.
func (a AtomOccupation) Dim() int {
	if a.Up == nil {
		return 0
	}
	return a.Up.Dim()
}

// SummedTrace returns re(tr Up) + re(tr Down), the total electron count of
// the site.
func (a AtomOccupation) SummedTrace() float64 {
	var t float64
	if a.Up != nil {
		t += a.Up.RealTrace()
	}
	if a.Down != nil {
		t += a.Down.RealTrace()
	}
	return t
}

// Occupation is one full system configuration, one AtomOccupation per site
// in site order. It is used both for proposals (target configurations) and
// for results (converged configurations). Slice semantics make it a cheap
// reference.
type Occupation []AtomOccupation

// NumSites returns the number of atomic sites.
func (o Occupation) NumSites() int { return len(o) }

// Validate checks every site.
func (o Occupation) Validate() error {
	if len(o) == 0 {
		return fmt.Errorf("%w: configuration has no sites", ErrShapeMismatch)
	}
	for i, site := range o {
		if err := site.Validate(); err != nil {
			return fmt.Errorf("site %d: %w", i, err)
		}
	}
	return nil
}

// SameShape reports whether two configurations have the same site count and
// per-site orbital dimensions.
func (o Occupation) SameShape(other Occupation) bool {
	if len(o) != len(other) {
		return false
	}
	for i := range o {
		if o[i].Dim() != other[i].Dim() {
			return false
		}
	}
	return true
}

// OccupationNumbers returns the serialized shape
// [site][spin][row][col] with spin 0 = up, 1 = down. This is the wire form
// shared by run reports and read-mode sources.
func (o Occupation) OccupationNumbers() [][][][]float64 {
	out := make([][][][]float64, len(o))
	for i, site := range o {
		out[i] = [][][]float64{site.Up.RealRows(), site.Down.RealRows()}
	}
	return out
}

// OccupationFromNumbers rebuilds an Occupation from the
// [site][spin][row][col] wire form.
//
// Outputs:
//
//	Occupation - The parsed configuration.
//	error - ErrShapeMismatch if any site does not carry exactly two spin
//	  channels or a channel is not square.
func OccupationFromNumbers(nums [][][][]float64) (Occupation, error) {
	if len(nums) == 0 {
		return nil, fmt.Errorf("%w: entry has no sites", ErrShapeMismatch)
	}
	occ := make(Occupation, len(nums))
	for i, site := range nums {
		if len(site) != 2 {
			return nil, fmt.Errorf("%w: site %d has %d spin channels, want 2", ErrShapeMismatch, i, len(site))
		}
		up, err := FromRealRows(site[0])
		if err != nil {
			return nil, fmt.Errorf("site %d up: %w", i, err)
		}
		down, err := FromRealRows(site[1])
		if err != nil {
			return nil, fmt.Errorf("site %d down: %w", i, err)
		}
		occ[i] = AtomOccupation{Up: up, Down: down}
		if err := occ[i].Validate(); err != nil {
			return nil, fmt.Errorf("site %d: %w", i, err)
		}
	}
	return occ, nil
}

// ProposalBatch is a set of candidate configurations generated together and
// submitted as one generation.
type ProposalBatch []Occupation

// Validate checks every proposal and that all proposals share one shape.
func (b ProposalBatch) Validate() error {
	if len(b) == 0 {
		return fmt.Errorf("%w: batch is empty", ErrShapeMismatch)
	}
	for i, p := range b {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("proposal %d: %w", i, err)
		}
		if i > 0 && !b[0].SameShape(p) {
			return fmt.Errorf("%w: proposal %d shape differs from proposal 0", ErrShapeMismatch, i)
		}
	}
	return nil
}
