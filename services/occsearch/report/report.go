// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report writes and loads run report documents.
//
// A report is one JSON file holding run metadata, aggregate statistics with
// per-generation summaries, and one entry per converged result carrying its
// occupation numbers in the same wire shape the proposal file sources read.
// A finished run's report can therefore seed a later read-mode run directly.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

var (
	// ErrNilOutcome indicates a report was requested for a nil run outcome.
	ErrNilOutcome = errors.New("nil run outcome")

	// ErrReportNotFound indicates no report file exists at the path.
	ErrReportNotFound = errors.New("report not found")

	// ErrInvalidReport indicates the report file is not parseable.
	ErrInvalidReport = errors.New("invalid report data")
)

// Meta identifies a run.
type Meta struct {
	// RunID uniquely identifies the run. Filled with a fresh UUID by New
	// if empty.
	RunID string `json:"run_id"`

	// ScenarioID names the scenario configuration that drove the run.
	ScenarioID string `json:"scenario_id"`

	// Mode is the proposal mode used for the constrained rounds.
	Mode string `json:"mode"`

	// Holistic records whether the seed pool accumulated across
	// generations.
	Holistic bool `json:"holistic"`

	// CreatedAt is when the report was built. Filled by New if zero.
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates the run.
type Stats struct {
	// Evaluations counts every submitted job, exploration included.
	Evaluations int `json:"evaluations"`

	// Converged and Failed split Evaluations by result.
	Converged int `json:"converged"`
	Failed    int `json:"failed"`

	// ConvergenceRatePercent is Converged/Evaluations, rounded to two
	// decimals.
	ConvergenceRatePercent float64 `json:"convergence_rate_percent"`

	// BudgetUsed counts the constrained evaluations charged against the
	// run budget.
	BudgetUsed int `json:"budget_used"`

	// FinalState is the terminal controller state.
	FinalState string `json:"final_state"`

	// Generations summarizes every round in order.
	Generations []datatypes.GenerationRecord `json:"generations"`
}

// Entry is one converged result.
type Entry struct {
	JobID      string `json:"job_id"`
	Generation int    `json:"generation"`

	// OccupationNumbers is the [site][spin][row][col] wire form,
	// spin 0 = up.
	OccupationNumbers [][][][]float64 `json:"occupation_numbers"`
}

// Document is a complete run report.
type Document struct {
	Metadata Meta    `json:"metadata"`
	Stats    Stats   `json:"statistics"`
	Entries  []Entry `json:"entries"`
}

// New builds a report document from a run outcome.
//
// Inputs:
//
//	meta - Run identity. RunID and CreatedAt are filled when empty.
//	outcome - The finished run. Must not be nil.
//
// Outputs:
//
//	*Document - One entry per converged result, in submission order.
//	error - ErrNilOutcome.
func New(meta Meta, outcome *controller.Outcome) (*Document, error) {
	if outcome == nil {
		return nil, ErrNilOutcome
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}

	generationOf := make(map[string]int, len(outcome.JobIDs))
	for _, gen := range outcome.Generations {
		for _, id := range gen.JobIDs {
			generationOf[id] = gen.Index
		}
	}

	converged := 0
	entries := make([]Entry, 0, len(outcome.Records))
	for _, rec := range outcome.Records {
		if !rec.Success {
			continue
		}
		converged++
		entries = append(entries, Entry{
			JobID:             rec.JobID,
			Generation:        generationOf[rec.JobID],
			OccupationNumbers: rec.Occupation.OccupationNumbers(),
		})
	}

	total := len(outcome.Records)
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(converged)/float64(total)*10000) / 100
	}

	return &Document{
		Metadata: meta,
		Stats: Stats{
			Evaluations:            total,
			Converged:              converged,
			Failed:                 total - converged,
			ConvergenceRatePercent: rate,
			BudgetUsed:             outcome.Evaluated,
			FinalState:             outcome.State.String(),
			Generations:            outcome.Generations,
		},
		Entries: entries,
	}, nil
}

// Write builds a report from the outcome and saves it to path.
//
// Outputs:
//
//	*Document - The written report.
//	error - ErrNilOutcome, or a filesystem failure.
func Write(path string, meta Meta, outcome *controller.Outcome) (*Document, error) {
	doc, err := New(meta, outcome)
	if err != nil {
		return nil, err
	}
	if err := doc.Save(path); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save writes the document as indented JSON, creating parent directories as
// needed.
func (d *Document) Save(path string) error {
	if path == "" {
		return errors.New("report path must not be empty")
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// Load reads a report document back.
//
// Outputs:
//
//	*Document - The parsed report.
//	error - ErrReportNotFound if the file does not exist,
//	  ErrInvalidReport if it does not parse.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, path)
		}
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return &doc, nil
}

// WriteSummary prints a human-readable account of the run.
func (d *Document) WriteSummary(w io.Writer) error {
	mode := "markovian"
	if d.Metadata.Holistic {
		mode = "holistic"
	}

	if _, err := fmt.Fprintf(w, "Run %s (scenario %s)\n", d.Metadata.RunID, d.Metadata.ScenarioID); err != nil {
		return err
	}
	fmt.Fprintf(w, "  created:       %s\n", d.Metadata.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  proposal mode: %s (%s pool)\n", d.Metadata.Mode, mode)
	fmt.Fprintf(w, "  final state:   %s\n", d.Stats.FinalState)
	fmt.Fprintf(w, "  evaluations:   %d (%d converged, %d failed, %.2f%%)\n",
		d.Stats.Evaluations, d.Stats.Converged, d.Stats.Failed, d.Stats.ConvergenceRatePercent)
	fmt.Fprintf(w, "  budget used:   %d\n", d.Stats.BudgetUsed)
	fmt.Fprintln(w, "  generations:")
	for _, gen := range d.Stats.Generations {
		fmt.Fprintf(w, "    %2d %-12s submitted=%-3d converged=%-3d failed=%d\n",
			gen.Index, gen.Type, gen.Submitted, gen.Succeeded, gen.Failed)
	}
	return nil
}
