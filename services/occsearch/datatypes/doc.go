// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the shared value types for the occupation
// search service: complex state matrices, per-site occupation pairs, full
// system configurations, and the batch/result/generation records exchanged
// between the proposal generator, the search controller, and executors.
//
// # Conventions
//
// A StateMatrix holds one spin channel of an occupation matrix in the cubic
// orbital basis. Physical occupation data is Hermitian with a real trace
// equal to the number of electrons in that channel. Serialized matrices are
// always real (the collinear convention: imaginary parts are projected out
// before anything is written), so the JSON form is a plain [][]float64.
//
// Occupation values have slice semantics and act as cheap references. The
// controller passes them between pools, records, and reports without deep
// copying matrix payloads.
package datatypes
