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
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/LordCapulet/pkg/logging"
	"github.com/AleutianAI/LordCapulet/services/occsearch/config"
	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/executor"
	"github.com/AleutianAI/LordCapulet/services/occsearch/report"
	"github.com/AleutianAI/LordCapulet/services/occsearch/store"
	"github.com/AleutianAI/LordCapulet/services/occsearch/telemetry"
)

func runSearchCommand(cmd *cobra.Command, args []string) {
	if err := executeSearch(scenarioPath, reportOut); err != nil {
		log.Fatalf("Search failed: %v", err)
	}
}

// executeSearch wires the scenario into a full search run: store,
// simulator, exploration sweep, proposal strategy, and controller. The
// report is written whenever the controller produces an outcome, even
// for a run that terminates with every evaluation failed.
func executeSearch(configPath, outPath string) error {
	cfg, err := config.LoadScenario(configPath)
	if err != nil {
		return err
	}

	logger := newRunLogger(&cfg)
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Cancel the run on SIGINT/SIGTERM so badger closes cleanly.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("interrupt received, cancelling search")
		cancel()
	}()

	shutdown, err := telemetry.Init(ctx, cfg.ToTelemetryConfig())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	if cfg.Telemetry.MetricExporter == "prometheus" {
		serveMetrics(cfg.Telemetry.PrometheusAddr, logger)
	}

	metrics, err := telemetry.NewMetrics(otel.Meter("occsearch"))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	storeCfg := cfg.ToStoreConfig()
	storeCfg.Logger = logger.Slog()
	st, err := store.Open(storeCfg)
	if err != nil {
		return fmt.Errorf("open result store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("close result store", "error", err)
		}
	}()

	simCfg := cfg.ToSimulatorConfig()
	simCfg.Logger = logger.Slog()
	sim, err := executor.NewSimulator(simCfg)
	if err != nil {
		return fmt.Errorf("create simulator: %w", err)
	}

	recorded, err := store.NewRecording(sim, st)
	if err != nil {
		return fmt.Errorf("wrap executor with persistence: %w", err)
	}

	sweepCfg := cfg.ToSweepConfig()
	sweepCfg.Logger = logger.Slog()
	explorer, err := executor.NewSignSweep(sweepCfg, recorded)
	if err != nil {
		return fmt.Errorf("create exploration sweep: %w", err)
	}

	strategy, err := buildStrategy(&cfg)
	if err != nil {
		return err
	}

	search, err := controller.New(cfg.ToControllerConfig(), strategy, recorded, explorer,
		controller.WithLogger(logger.Slog()),
		controller.WithMetrics(metrics),
	)
	if err != nil {
		return fmt.Errorf("create search controller: %w", err)
	}

	logger.Info("search starting",
		"scenario", cfg.Metadata.ID,
		"mode", cfg.Search.Mode,
		"max_evaluations", cfg.Search.MaxEvaluations,
		"batch_size", cfg.Search.BatchSize,
	)

	outcome, runErr := search.Run(ctx)

	if outcome != nil {
		path := outPath
		if path == "" {
			path = fmt.Sprintf("%s-report.json", cfg.Metadata.ID)
		}
		meta := report.Meta{
			ScenarioID: cfg.Metadata.ID,
			Mode:       cfg.Search.Mode,
			Holistic:   cfg.Search.Holistic,
		}
		if _, err := report.Write(path, meta, outcome); err != nil {
			if runErr == nil {
				runErr = fmt.Errorf("write report: %w", err)
			} else {
				logger.Error("write report", "error", err)
			}
		} else {
			logger.Info("report written",
				"path", path,
				"state", outcome.State.String(),
				"evaluated", outcome.Evaluated,
			)
		}
	}

	return runErr
}

// serveMetrics exposes the Prometheus scrape endpoint in the
// background. The listener lives for the remainder of the process.
func serveMetrics(addr string, logger *logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics endpoint stopped", "error", err)
		}
	}()
}
