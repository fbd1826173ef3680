// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates scenario files for occupation search
// runs.
//
// A scenario is a YAML (or JSON) document describing one search: the
// physical system, the proposal mode, the evaluation budget, and the
// ambient settings (store, logging, telemetry). Loading follows the
// priority env > file > defaults, so a scenario file only needs to name
// the fields it changes.
//
// The To* converters translate scenario sections into the component
// configs consumed by the controller, executor, store, telemetry, and
// logging packages, keeping the YAML surface decoupled from the Go
// structs those packages evolve.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/LordCapulet/pkg/logging"
	"github.com/AleutianAI/LordCapulet/pkg/validation"
	"github.com/AleutianAI/LordCapulet/services/occsearch/controller"
	"github.com/AleutianAI/LordCapulet/services/occsearch/executor"
	"github.com/AleutianAI/LordCapulet/services/occsearch/store"
	"github.com/AleutianAI/LordCapulet/services/occsearch/telemetry"
)

// scenarioValidate is the package-level validator instance.
//
// Initialized once in init() with the custom validators used by the
// scenario structs below.
var scenarioValidate *validator.Validate

func init() {
	scenarioValidate = validator.New()

	// identifier restricts user-supplied names to characters safe for
	// file paths and store keys.
	_ = scenarioValidate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return validation.ValidateIdentifier(fl.Field().String()) == nil
	})
}

// ScenarioConfig is the complete configuration for one search run.
type ScenarioConfig struct {
	// Metadata identifies the scenario.
	Metadata MetadataConfig `json:"metadata" yaml:"metadata"`

	// Search contains controller settings: budget, batching, and mode.
	Search SearchConfig `json:"search" yaml:"search"`

	// Random contains settings for the random proposal strategy.
	Random RandomConfig `json:"random" yaml:"random"`

	// Read contains settings for the read proposal strategy.
	Read ReadConfig `json:"read" yaml:"read"`

	// System describes the physical system being searched.
	System SystemConfig `json:"system" yaml:"system"`

	// Simulator contains evaluation backend settings.
	Simulator SimulatorConfig `json:"simulator" yaml:"simulator"`

	// Store contains result persistence settings.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains log output settings.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Telemetry contains trace and metric exporter settings.
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// MetadataConfig identifies a scenario.
type MetadataConfig struct {
	// ID names the scenario. It appears in reports and store keys, so it
	// is restricted to identifier-safe characters.
	ID          string `json:"id" yaml:"id" validate:"required,identifier"`
	Description string `json:"description" yaml:"description"`
}

// SearchConfig contains controller settings.
type SearchConfig struct {
	MaxEvaluations int    `json:"max_evaluations" yaml:"max_evaluations" validate:"gte=1"`
	BatchSize      int    `json:"batch_size" yaml:"batch_size" validate:"gte=1"`
	Mode           string `json:"mode" yaml:"mode" validate:"oneof=random read"`

	// Holistic seeds each generation from every success so far instead of
	// only the previous generation.
	Holistic bool `json:"holistic" yaml:"holistic"`

	// Seed fixes the run's randomness. Zero selects a time-based seed.
	Seed int64 `json:"seed" yaml:"seed"`
}

// RandomConfig contains settings for the random proposal strategy.
type RandomConfig struct {
	// TargetTraces pins per-site electron counts. Empty means derive
	// targets from the seed pool mean.
	TargetTraces    []float64 `json:"target_traces" yaml:"target_traces"`
	OxidationJitter bool      `json:"oxidation_jitter" yaml:"oxidation_jitter"`
	Rotate          bool      `json:"rotate" yaml:"rotate"`
}

// ReadConfig contains settings for the read proposal strategy.
type ReadConfig struct {
	// Source is the path of the JSON file proposals are replayed from,
	// typically a report written by an earlier run.
	Source string `json:"source" yaml:"source"`
}

// SystemConfig describes the physical system.
type SystemConfig struct {
	Sites      int   `json:"sites" yaml:"sites" validate:"gte=1"`
	OrbitalDim int   `json:"orbital_dim" yaml:"orbital_dim" validate:"gte=1"`
	Electrons  []int `json:"electrons" yaml:"electrons" validate:"required,min=1,dive,gte=0"`

	// SweepMax caps the number of spin patterns the exploration sweep
	// enumerates.
	SweepMax int `json:"sweep_max" yaml:"sweep_max" validate:"gte=1"`
}

// SimulatorConfig contains evaluation backend settings.
type SimulatorConfig struct {
	NoiseAmplitude float64 `json:"noise_amplitude" yaml:"noise_amplitude" validate:"gte=0"`
	FailureRate    float64 `json:"failure_rate" yaml:"failure_rate" validate:"gte=0,lte=1"`
	MaxConcurrent  int     `json:"max_concurrent" yaml:"max_concurrent" validate:"gte=1"`

	// SubmitRate throttles job submission to this many per second.
	// Zero disables throttling.
	SubmitRate float64 `json:"submit_rate" yaml:"submit_rate" validate:"gte=0"`
}

// StoreConfig contains result persistence settings.
type StoreConfig struct {
	Dir      string `json:"dir" yaml:"dir"`
	InMemory bool   `json:"in_memory" yaml:"in_memory"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `json:"dir" yaml:"dir"`
	JSON  bool   `json:"json" yaml:"json"`
	Quiet bool   `json:"quiet" yaml:"quiet"`
}

// TelemetryConfig contains trace and metric exporter settings.
type TelemetryConfig struct {
	TraceExporter  string `json:"trace_exporter" yaml:"trace_exporter" validate:"oneof=none stdout otlp"`
	MetricExporter string `json:"metric_exporter" yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`
	OTLPEndpoint   string `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	OTLPInsecure   bool   `json:"otlp_insecure" yaml:"otlp_insecure"`
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr"`
}

// DefaultScenarioConfig returns a scenario with production defaults.
//
// The defaults describe a single-site system with a five-orbital shell
// holding five electrons, evaluated with light noise and no injected
// failures.
func DefaultScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Metadata: MetadataConfig{
			ID: "default",
		},
		Search: SearchConfig{
			MaxEvaluations: 60,
			BatchSize:      6,
			Mode:           "random",
		},
		Random: RandomConfig{
			OxidationJitter: true,
			Rotate:          true,
		},
		System: SystemConfig{
			Sites:      1,
			OrbitalDim: 5,
			Electrons:  []int{5},
			SweepMax:   16,
		},
		Simulator: SimulatorConfig{
			NoiseAmplitude: 0.05,
			MaxConcurrent:  4,
		},
		Store: StoreConfig{
			Dir: "capulet-results",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
			OTLPInsecure:   true,
			PrometheusAddr: ":9464",
		},
	}
}

// LoadScenario loads a scenario with priority: env > file > defaults.
//
// Inputs:
//   - path: Path to a YAML or JSON scenario file. Empty loads pure
//     defaults with env overrides.
//
// Outputs:
//   - ScenarioConfig: Merged and validated configuration.
//   - error: Non-nil if the file cannot be read or parsed, or the merged
//     configuration is invalid.
//
// Example:
//
//	cfg, err := config.LoadScenario("scenarios/nio-afm.yaml")
//	if err != nil {
//	    return err
//	}
//	search, err := controller.New(cfg.ToControllerConfig(), ...)
func LoadScenario(path string) (ScenarioConfig, error) {
	config := DefaultScenarioConfig()

	if path != "" {
		if err := loadScenarioFile(path, &config); err != nil {
			return config, fmt.Errorf("load scenario file: %w", err)
		}
	}

	loadScenarioFromEnv(&config)

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid scenario: %w", err)
	}

	return config, nil
}

func loadScenarioFile(path string, config *ScenarioConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse scenario (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}

	return nil
}

func loadScenarioFromEnv(config *ScenarioConfig) {
	// Search
	if v := os.Getenv("CAPULET_MAX_EVALUATIONS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.MaxEvaluations = i
		}
	}
	if v := os.Getenv("CAPULET_BATCH_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			config.Search.BatchSize = i
		}
	}
	if v := os.Getenv("CAPULET_SEED"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Search.Seed = i
		}
	}

	// Simulator
	if v := os.Getenv("CAPULET_FAILURE_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Simulator.FailureRate = f
		}
	}

	// Ambient
	if v := os.Getenv("CAPULET_STORE_DIR"); v != "" {
		config.Store.Dir = v
	}
	if v := os.Getenv("CAPULET_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("CAPULET_OTLP_ENDPOINT"); v != "" {
		config.Telemetry.OTLPEndpoint = v
	}
}

// Validate checks field constraints and cross-section consistency.
//
// Per-field rules live in the struct tags; this method adds the checks
// that span sections, such as the electron list matching the site count.
func (c *ScenarioConfig) Validate() error {
	if err := scenarioValidate.Struct(c); err != nil {
		return fmt.Errorf("scenario fields: %w", err)
	}

	if len(c.System.Electrons) != c.System.Sites {
		return fmt.Errorf("system.electrons must list one count per site: got %d entries for %d sites",
			len(c.System.Electrons), c.System.Sites)
	}
	capacity := 2 * c.System.OrbitalDim
	for i, n := range c.System.Electrons {
		if n > capacity {
			return fmt.Errorf("system.electrons[%d] = %d exceeds the %d-electron capacity of %d orbitals",
				i, n, capacity, c.System.OrbitalDim)
		}
	}

	if len(c.Random.TargetTraces) != 0 && len(c.Random.TargetTraces) != c.System.Sites {
		return fmt.Errorf("random.target_traces must be empty or list one value per site: got %d entries for %d sites",
			len(c.Random.TargetTraces), c.System.Sites)
	}
	for i, tr := range c.Random.TargetTraces {
		if tr < 0 || tr > float64(capacity) {
			return fmt.Errorf("random.target_traces[%d] = %g is outside [0, %d]", i, tr, capacity)
		}
	}

	// Basis rotation exists only for the d manifold.
	if c.Search.Mode == "random" && c.Random.Rotate && c.System.OrbitalDim != 5 {
		return fmt.Errorf("random.rotate requires orbital_dim 5: got %d", c.System.OrbitalDim)
	}

	if c.Search.Mode == "read" && c.Read.Source == "" {
		return fmt.Errorf("read.source is required when search.mode is read")
	}

	if !c.Store.InMemory && c.Store.Dir == "" {
		return fmt.Errorf("store.dir is required for a persistent store")
	}

	return nil
}

// ToControllerConfig converts the search section into a controller config.
//
// The YAML surface speaks in terms of holistic pooling; the controller
// speaks in terms of Markovian pooling. The two are complements.
func (c *ScenarioConfig) ToControllerConfig() controller.Config {
	return controller.Config{
		BatchSize:      c.Search.BatchSize,
		MaxEvaluations: c.Search.MaxEvaluations,
		Markovian:      !c.Search.Holistic,
	}
}

// ToSimulatorConfig converts the simulator section into an executor
// simulator config. The caller supplies the logger.
func (c *ScenarioConfig) ToSimulatorConfig() executor.SimulatorConfig {
	cfg := executor.DefaultSimulatorConfig()
	cfg.NoiseAmplitude = c.Simulator.NoiseAmplitude
	cfg.FailureRate = c.Simulator.FailureRate
	cfg.MaxConcurrent = c.Simulator.MaxConcurrent
	cfg.SubmitRate = c.Simulator.SubmitRate
	cfg.Seed = c.Search.Seed
	return cfg
}

// ToSweepConfig converts the system section into a sign sweep config.
func (c *ScenarioConfig) ToSweepConfig() executor.SweepConfig {
	cfg := executor.DefaultSweepConfig()
	cfg.Sites = c.System.Sites
	cfg.OrbitalDim = c.System.OrbitalDim
	cfg.Electrons = append([]int(nil), c.System.Electrons...)
	cfg.MaxPatterns = c.System.SweepMax
	return cfg
}

// ToStoreConfig converts the store section into a store config.
func (c *ScenarioConfig) ToStoreConfig() store.Config {
	if c.Store.InMemory {
		return store.InMemoryConfig()
	}
	cfg := store.DefaultConfig()
	cfg.Dir = c.Store.Dir
	return cfg
}

// ToTelemetryConfig converts the telemetry section into a telemetry
// config, keeping the service identity from the telemetry defaults.
func (c *ScenarioConfig) ToTelemetryConfig() telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.TraceExporter = c.Telemetry.TraceExporter
	cfg.MetricExporter = c.Telemetry.MetricExporter
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.PrometheusAddr = c.Telemetry.PrometheusAddr
	return cfg
}

// ToLoggingConfig converts the logging section into a logging config.
func (c *ScenarioConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:   logging.ParseLevel(c.Logging.Level),
		LogDir:  c.Logging.Dir,
		Service: "capulet",
		JSON:    c.Logging.JSON,
		Quiet:   c.Logging.Quiet,
	}
}
