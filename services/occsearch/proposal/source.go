// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package proposal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
)

// Source enumerates occupation configurations for the read strategy. The
// cursor only moves forward; entries are consumed strictly in order across
// generations.
type Source interface {
	// Remaining returns the number of unconsumed entries.
	Remaining() int

	// Next returns the next entry and advances the cursor.
	Next() (datatypes.Occupation, error)
}

// SliceSource replays an in-memory entry list.
type SliceSource struct {
	entries []datatypes.Occupation
	pos     int
}

// NewSliceSource creates a source over the given entries.
func NewSliceSource(entries ...datatypes.Occupation) *SliceSource {
	return &SliceSource{entries: entries}
}

// Remaining returns the unconsumed entry count.
func (s *SliceSource) Remaining() int { return len(s.entries) - s.pos }

// Next returns the next entry in order.
func (s *SliceSource) Next() (datatypes.Occupation, error) {
	if s.pos >= len(s.entries) {
		return nil, fmt.Errorf("%w: all %d entries consumed", ErrSourceExhausted, len(s.entries))
	}
	e := s.entries[s.pos]
	s.pos++
	return e, nil
}

// sourceEntry is the wire form of one stored configuration, shared with
// the run report writer.
type sourceEntry struct {
	OccupationNumbers [][][][]float64 `json:"occupation_numbers"`
}

// sourceDocument is a run report wrapping its entries.
type sourceDocument struct {
	Entries []sourceEntry `json:"entries"`
}

// FileSource replays entries loaded from a JSON file.
//
// The file is either a bare array of entries or a full run report holding
// them under "entries"; each entry carries occupation_numbers in the
// [site][spin][row][col] shape with spin 0 = up. Loading is eager, so a
// malformed file fails at construction rather than mid-run.
type FileSource struct {
	*SliceSource
	path string
}

// NewFileSource loads a source file.
func NewFileSource(path string) (*FileSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	var entries []sourceEntry
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode source file %s: %w", path, err)
		}
	} else {
		var doc sourceDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode source file %s: %w", path, err)
		}
		entries = doc.Entries
	}

	occs := make([]datatypes.Occupation, len(entries))
	for i, e := range entries {
		occ, err := datatypes.OccupationFromNumbers(e.OccupationNumbers)
		if err != nil {
			return nil, fmt.Errorf("source entry %d: %w", i, err)
		}
		occs[i] = occ
	}

	return &FileSource{SliceSource: NewSliceSource(occs...), path: path}, nil
}

// Path returns the backing file path.
func (f *FileSource) Path() string { return f.path }
