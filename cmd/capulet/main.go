// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command capulet searches occupation matrix configurations for DFT+U
// starting points.
//
// A scenario file describes the physical system and the search budget;
// capulet runs an exploration sweep over collinear spin patterns, then
// generational batches of randomly rotated proposals, recording every
// converged configuration in a local store and a JSON report.
//
// Usage:
//
//	capulet search --config scenario.yaml
//	capulet search --config scenario.yaml --out runs/nio-report.json
//	capulet propose --config scenario.yaml --count 12
//	capulet propose --config scenario.yaml --seed-report nio-report.json
//	capulet report nio-report.json
//	capulet version
//
// Environment overrides such as CAPULET_SEED and OTEL_EXPORTER_OTLP_ENDPOINT
// may be placed in a .env file next to the binary.
package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// Optional .env with CAPULET_* and OTEL_* overrides; a missing file
	// is not an error.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
