// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/LordCapulet/pkg/logging"
	"github.com/AleutianAI/LordCapulet/services/occsearch/config"
	"github.com/AleutianAI/LordCapulet/services/occsearch/datatypes"
	"github.com/AleutianAI/LordCapulet/services/occsearch/executor"
	"github.com/AleutianAI/LordCapulet/services/occsearch/report"
)

func runProposeCommand(cmd *cobra.Command, args []string) {
	if err := executePropose(scenarioPath, proposeCount, seedReport); err != nil {
		log.Fatalf("Propose failed: %v", err)
	}
}

// executePropose generates one proposal batch and prints it to stdout
// as JSON, without evaluating or persisting anything.
func executePropose(configPath string, count int, seedPath string) error {
	cfg, err := config.LoadScenario(configPath)
	if err != nil {
		return err
	}

	logger := newRunLogger(&cfg)
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	ctx := context.Background()

	pool, err := seedPool(ctx, &cfg, seedPath, logger)
	if err != nil {
		return err
	}

	strategy, err := buildStrategy(&cfg)
	if err != nil {
		return err
	}

	batch, err := strategy.Generate(ctx, count, pool)
	if err != nil {
		return fmt.Errorf("generate proposals: %w", err)
	}

	logger.Info("proposals generated",
		"mode", strategy.Name(),
		"count", len(batch),
		"pool_size", len(pool),
	)
	return writeProposals(os.Stdout, batch)
}

// seedPool assembles the pool proposals are derived from: the entries
// of a previous report when one is given, otherwise the successes of a
// fresh in-memory exploration sweep.
func seedPool(ctx context.Context, cfg *config.ScenarioConfig, seedPath string, logger *logging.Logger) ([]datatypes.Occupation, error) {
	if seedPath != "" {
		doc, err := report.Load(seedPath)
		if err != nil {
			return nil, err
		}
		pool := make([]datatypes.Occupation, 0, len(doc.Entries))
		for i, entry := range doc.Entries {
			occ, err := datatypes.OccupationFromNumbers(entry.OccupationNumbers)
			if err != nil {
				return nil, fmt.Errorf("seed report entry %d: %w", i, err)
			}
			pool = append(pool, occ)
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("seed report %s has no entries", seedPath)
		}
		logger.Info("seed pool loaded", "path", seedPath, "size", len(pool))
		return pool, nil
	}

	simCfg := cfg.ToSimulatorConfig()
	simCfg.Logger = logger.Slog()
	sim, err := executor.NewSimulator(simCfg)
	if err != nil {
		return nil, fmt.Errorf("create simulator: %w", err)
	}

	sweepCfg := cfg.ToSweepConfig()
	sweepCfg.Logger = logger.Slog()
	explorer, err := executor.NewSignSweep(sweepCfg, sim)
	if err != nil {
		return nil, fmt.Errorf("create exploration sweep: %w", err)
	}

	records, err := explorer.Explore(ctx)
	if err != nil {
		return nil, fmt.Errorf("exploration sweep: %w", err)
	}

	var pool []datatypes.Occupation
	for _, rec := range records {
		if rec.Success {
			pool = append(pool, rec.Occupation)
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("exploration sweep produced no successful seeds")
	}
	return pool, nil
}

// proposalEntry mirrors the entry shape read mode consumes, so the
// printed document can be replayed with search.mode read.
type proposalEntry struct {
	OccupationNumbers [][][][]float64 `json:"occupation_numbers"`
}

type proposalDocument struct {
	Entries []proposalEntry `json:"entries"`
}

func writeProposals(w io.Writer, batch datatypes.ProposalBatch) error {
	doc := proposalDocument{Entries: make([]proposalEntry, 0, len(batch))}
	for _, occ := range batch {
		doc.Entries = append(doc.Entries, proposalEntry{OccupationNumbers: occ.OccupationNumbers()})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode proposals: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
