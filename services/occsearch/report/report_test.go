// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
	"github.com/AleutianAI/LordCapulet/services/occsearch/proposal"
)

// testOccupation builds a one-site configuration from diagonal entries.
func testOccupation(t *testing.T, up, down []float64) datatypes.Occupation {
	t.Helper()
	u, err := datatypes.DiagonalReal(up)
	require.NoError(t, err)
	d, err := datatypes.DiagonalReal(down)
	require.NoError(t, err)
	return datatypes.Occupation{{Up: u, Down: d}}
}

// testOutcome builds a finished two-round run: an exploration round with one
// converged job out of two, then a constrained round with two out of two.
func testOutcome(t *testing.T) *controller.Outcome {
	t.Helper()
	occA := testOccupation(t, []float64{1, 0}, []float64{0, 0})
	occB := testOccupation(t, []float64{1, 1}, []float64{0, 0})
	occC := testOccupation(t, []float64{1, 1}, []float64{1, 0})

	return &controller.Outcome{
		State:     controller.StateTerminatedBudget,
		Evaluated: 2,
		Records: []datatypes.ResultRecord{
			{JobID: "exp-0", Success: true, Occupation: occA},
			{JobID: "exp-1"},
			{JobID: "job-1-0", Success: true, Occupation: occB},
			{JobID: "job-1-1", Success: true, Occupation: occC},
		},
		JobIDs: []string{"exp-0", "exp-1", "job-1-0", "job-1-1"},
		Generations: []datatypes.GenerationRecord{
			{
				Index:     0,
				Type:      datatypes.RoundExploration,
				Submitted: 2,
				Succeeded: 1,
				Failed:    1,
				JobIDs:    []string{"exp-0", "exp-1"},
			},
			{
				Index:     1,
				Type:      datatypes.RoundConstrained,
				Submitted: 2,
				Succeeded: 2,
				Failed:    0,
				JobIDs:    []string{"job-1-0", "job-1-1"},
			},
		},
	}
}

func TestNew_BuildsDocument(t *testing.T) {
	doc, err := New(Meta{ScenarioID: "nio-afm", Mode: "random"}, testOutcome(t))
	require.NoError(t, err)

	assert.NotEmpty(t, doc.Metadata.RunID)
	assert.False(t, doc.Metadata.CreatedAt.IsZero())
	assert.Equal(t, "nio-afm", doc.Metadata.ScenarioID)

	assert.Equal(t, 4, doc.Stats.Evaluations)
	assert.Equal(t, 3, doc.Stats.Converged)
	assert.Equal(t, 1, doc.Stats.Failed)
	assert.InDelta(t, 75.0, doc.Stats.ConvergenceRatePercent, 1e-12)
	assert.Equal(t, 2, doc.Stats.BudgetUsed)
	assert.Equal(t, "TERMINATED_BUDGET", doc.Stats.FinalState)
	require.Len(t, doc.Stats.Generations, 2)

	require.Len(t, doc.Entries, 3)
	assert.Equal(t, "exp-0", doc.Entries[0].JobID)
	assert.Equal(t, 0, doc.Entries[0].Generation)
	assert.Equal(t, "job-1-0", doc.Entries[1].JobID)
	assert.Equal(t, 1, doc.Entries[1].Generation)
	assert.Equal(t, 1, doc.Entries[2].Generation)
}

func TestNew_PreservesExplicitIdentity(t *testing.T) {
	doc, err := New(Meta{RunID: "run-fixed"}, testOutcome(t))
	require.NoError(t, err)
	assert.Equal(t, "run-fixed", doc.Metadata.RunID)
}

func TestNew_NilOutcome(t *testing.T) {
	_, err := New(Meta{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNilOutcome)
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "report.json")

	written, err := Write(path, Meta{ScenarioID: "nio-afm", Mode: "random", Holistic: true}, testOutcome(t))
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, written.Metadata.RunID, loaded.Metadata.RunID)
	assert.True(t, loaded.Metadata.Holistic)
	assert.Equal(t, written.Stats, loaded.Stats)
	require.Len(t, loaded.Entries, 3)
	assert.Equal(t, written.Entries[2].OccupationNumbers, loaded.Entries[2].OccupationNumbers)
	assert.Equal(t, datatypes.RoundExploration, loaded.Stats.Generations[0].Type)
}

func TestFileSource_ConsumesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	written, err := Write(path, Meta{ScenarioID: "nio-afm"}, testOutcome(t))
	require.NoError(t, err)

	src, err := proposal.NewFileSource(path)
	require.NoError(t, err)
	require.Equal(t, len(written.Entries), src.Remaining())

	first, err := src.Next()
	require.NoError(t, err)
	want, err := datatypes.OccupationFromNumbers(written.Entries[0].OccupationNumbers)
	require.NoError(t, err)
	assert.True(t, first[0].Up.EqualWithin(want[0].Up, 1e-15))
	assert.True(t, first[0].Down.EqualWithin(want[0].Down, 1e-15))
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReport)
}

func TestWriteSummary(t *testing.T) {
	doc, err := New(Meta{RunID: "run-7", ScenarioID: "nio-afm", Mode: "random"}, testOutcome(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteSummary(&buf))

	out := buf.String()
	assert.Contains(t, out, "run-7")
	assert.Contains(t, out, "nio-afm")
	assert.Contains(t, out, "TERMINATED_BUDGET")
	assert.Contains(t, out, "exploration")
	assert.Contains(t, out, "constrained")
	assert.Contains(t, out, "75.00%")
}
