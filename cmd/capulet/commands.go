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
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/LordCapulet/pkg/logging"
	"github.com/AleutianAI/LordCapulet/services/occsearch/config"
	"github.com/AleutianAI/LordCapulet/services/occsearch/proposal"
)

// Populated at build time via -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

var (
	rootCmd = &cobra.Command{
		Use:   "capulet",
		Short: "Search occupation matrix starting points for DFT+U calculations",
		Long: `Capulet drives a generational search over occupation matrix
configurations: an exploration sweep over collinear spin patterns seeds
batches of randomly rotated proposals, and each generation is seeded by
the converged survivors of the last.`,
	}

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Run a generational occupation search",
		Long: `Runs the search described by a scenario file: an exploration sweep,
then constrained generations until the evaluation budget is spent.
Converged configurations are persisted to the result store and written
to a JSON report that a later run can replay with search.mode read.`,
		Run: runSearchCommand,
	}

	proposeCmd = &cobra.Command{
		Use:   "propose",
		Short: "Generate a batch of proposals without evaluating them",
		Long: `Builds the scenario's proposal strategy and prints one generated
batch as JSON. The output uses the same entry shape as a search report,
so it can be fed back through read mode or inspected directly. The seed
pool comes from --seed-report when given, otherwise from a fresh
exploration sweep.`,
		Run: runProposeCommand,
	}

	reportCmd = &cobra.Command{
		Use:   "report [file]",
		Short: "Summarize a search report",
		Args:  cobra.ExactArgs(1),
		Run:   runReportCommand,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the capulet version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("capulet %s (commit %s)\n", version, commit)
		},
	}

	scenarioPath string
	reportOut    string
	proposeCount int
	seedReport   string
)

func init() {
	searchCmd.Flags().StringVar(&scenarioPath, "config", "", "Path to the scenario file (YAML or JSON)")
	searchCmd.Flags().StringVar(&reportOut, "out", "", "Report output path (default {scenario-id}-report.json)")

	proposeCmd.Flags().StringVar(&scenarioPath, "config", "", "Path to the scenario file (YAML or JSON)")
	proposeCmd.Flags().IntVar(&proposeCount, "count", 6, "Number of proposals to generate")
	proposeCmd.Flags().StringVar(&seedReport, "seed-report", "", "Report file whose entries seed the proposal pool")

	rootCmd.AddCommand(searchCmd, proposeCmd, reportCmd, versionCmd)
}

// newRunLogger builds the run logger from the scenario's logging
// section, forcing JSON output when stderr is not a terminal so piped
// logs stay machine-parseable.
func newRunLogger(cfg *config.ScenarioConfig) *logging.Logger {
	logCfg := cfg.ToLoggingConfig()
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		logCfg.JSON = true
	}
	return logging.New(logCfg)
}

// buildStrategy constructs the proposal strategy named by the scenario.
func buildStrategy(cfg *config.ScenarioConfig) (proposal.Strategy, error) {
	mode, err := proposal.ParseMode(cfg.Search.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case proposal.ModeRead:
		src, err := proposal.NewFileSource(cfg.Read.Source)
		if err != nil {
			return nil, fmt.Errorf("open read source: %w", err)
		}
		return proposal.NewRead(src)
	default:
		opts := []proposal.RandomOption{
			proposal.WithOxidationJitter(cfg.Random.OxidationJitter),
			proposal.WithRotation(cfg.Random.Rotate),
		}
		if cfg.Search.Seed != 0 {
			opts = append(opts, proposal.WithSeed(cfg.Search.Seed))
		}
		if len(cfg.Random.TargetTraces) > 0 {
			opts = append(opts, proposal.WithTargetTraces(cfg.Random.TargetTraces))
		}
		return proposal.NewRandom(opts...), nil
	}
}
