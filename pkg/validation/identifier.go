// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that end up in
// file paths or database keys. Using these validators prevents path
// traversal and key-injection through scenario and run identifiers.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches valid scenario and run identifiers.
// Allows: letters, digits, dots, hyphens, underscores; must start with an
// alphanumeric character.
// Max length: 64 characters.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]{0,63}$`)

// ValidateIdentifier validates a scenario or run identifier before it is
// used in a file path or store key.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters a-z, A-Z and digits 0-9
//   - Dots (.), hyphens (-) and underscores (_) after the first character
//   - No ".." sequences
//
// Returns an error if the identifier is invalid.
//
// Example:
//
//	if err := validation.ValidateIdentifier(scenarioID); err != nil {
//	    return fmt.Errorf("invalid scenario id: %w", err)
//	}
//	// Safe to use in a report path
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("invalid identifier format: %q (must be 1-64 alphanumeric chars, dots, hyphens, or underscores)", id)
	}

	if strings.Contains(id, "..") {
		return fmt.Errorf("invalid identifier %q: must not contain \"..\"", id)
	}

	return nil
}

// SanitizeIdentifier trims and validates an identifier.
// Returns the trimmed identifier if valid, or an error if invalid.
//
// Use this when the identifier comes straight from user input:
//
//	safeID, err := validation.SanitizeIdentifier(userInput)
//	if err != nil {
//	    return err
//	}
//	// safeID is trimmed and validated
func SanitizeIdentifier(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if err := ValidateIdentifier(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
