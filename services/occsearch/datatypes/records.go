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
)

// RoundType distinguishes the exploration round from constrained
// generations.
type RoundType int

const (
	// RoundExploration is the initial seeding round (generation 0).
	RoundExploration RoundType = iota

	// RoundConstrained is a proposal-driven generation.
	RoundConstrained
)

// String returns the round type name.
func (t RoundType) String() string {
	switch t {
	case RoundExploration:
		return "exploration"
	case RoundConstrained:
		return "constrained"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the round type as its name.
func (t RoundType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a round type name.
func (t *RoundType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "exploration":
		*t = RoundExploration
	case "constrained":
		*t = RoundConstrained
	default:
		return fmt.Errorf("unknown round type %q", s)
	}
	return nil
}

// ResultRecord is the outcome of one evaluated proposal. On failure
// Occupation is nil and must be ignored; JobID is always set so failed jobs
// stay diagnosable.
type ResultRecord struct {
	JobID      string     `json:"job_id"`
	Success    bool       `json:"success"`
	Occupation Occupation `json:"occupation,omitempty"`
}

// GenerationRecord summarizes one round of the search.
type GenerationRecord struct {
	// Index is the generation number; exploration is 0.
	Index int `json:"index"`

	// Type marks the round kind.
	Type RoundType `json:"type"`

	// Submitted, Succeeded and Failed count the round's evaluations.
	Submitted int `json:"submitted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`

	// JobIDs lists the round's jobs in submission order.
	JobIDs []string `json:"job_ids"`

	// Successful holds references to the round's converged configurations.
	// Serialized separately by the report writer.
	Successful []Occupation `json:"-"`
}
