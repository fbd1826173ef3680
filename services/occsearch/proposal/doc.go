// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package proposal generates candidate occupation configurations for the
// search controller.
//
// Two strategies implement the Strategy interface. Random builds proposals
// around per-site electron-count targets: a shuffled 0/1 diagonal split
// across both spin channels, rotated by one shared random rotation per site
// and projected real. Read replays configurations from an external Source
// in strict order, one batch worth per generation.
//
// Strategies never return partial batches: a batch either carries exactly
// the requested number of proposals or the call fails.
package proposal
