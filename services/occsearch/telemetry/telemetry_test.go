// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceName != "capulet" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "capulet")
	}
	if cfg.TraceExporter != "none" {
		t.Errorf("TraceExporter = %q, want %q", cfg.TraceExporter, "none")
	}
	if cfg.MetricExporter != "none" {
		t.Errorf("MetricExporter = %q, want %q", cfg.MetricExporter, "none")
	}
	if cfg.OTLPEndpoint != "localhost:4317" {
		t.Errorf("OTLPEndpoint = %q, want %q", cfg.OTLPEndpoint, "localhost:4317")
	}
	if cfg.PrometheusAddr != ":9464" {
		t.Errorf("PrometheusAddr = %q, want %q", cfg.PrometheusAddr, ":9464")
	}
}

func TestInit_NilContext(t *testing.T) {
	cfg := DefaultConfig()

	_, err := Init(nil, cfg)
	if err != ErrNilContext {
		t.Errorf("Init(nil, cfg) error = %v, want %v", err, ErrNilContext)
	}
}

func TestInit_NoopExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "none"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if shutdown == nil {
		t.Fatal("shutdown function is nil")
	}

	// Verify shutdown works
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestInit_StdoutExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "stdout"
	cfg.MetricExporter = "none"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer shutdown(context.Background())

	// Verify tracer is configured
	tracer := otel.Tracer("test")
	if tracer == nil {
		t.Error("tracer is nil")
	}
}

func TestInit_UnknownExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "unknown_exporter"

	_, err := Init(context.Background(), cfg)
	if err == nil {
		t.Error("Init() with unknown exporter should fail")
	}
	if !strings.Contains(err.Error(), "unknown exporter type") {
		t.Errorf("error = %v, want to contain 'unknown exporter type'", err)
	}
}

func TestGetEnvOr(t *testing.T) {
	t.Run("returns fallback when env not set", func(t *testing.T) {
		result := getEnvOr("TELEMETRY_TEST_NONEXISTENT_VAR_12345", "fallback")
		if result != "fallback" {
			t.Errorf("getEnvOr() = %q, want %q", result, "fallback")
		}
	})

	t.Run("returns env value when set", func(t *testing.T) {
		t.Setenv("TELEMETRY_TEST_VAR", "custom_value")
		result := getEnvOr("TELEMETRY_TEST_VAR", "fallback")
		if result != "custom_value" {
			t.Errorf("getEnvOr() = %q, want %q", result, "custom_value")
		}
	})
}

func TestInit_PrometheusExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "prometheus"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer shutdown(context.Background())

	// Verify meter is configured
	meter := otel.Meter("test")
	if meter == nil {
		t.Error("meter is nil")
	}

	// Create a test counter to ensure metrics work
	counter, err := meter.Int64Counter("test_counter")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}
	counter.Add(context.Background(), 1)

	// Verify MetricsHandler is available
	handler := MetricsHandler()
	if handler == nil {
		t.Fatal("MetricsHandler() returned nil")
	}
}

func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "prometheus"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer shutdown(context.Background())

	// Create and increment a counter
	meter := otel.Meter("test_metrics")
	counter, err := meter.Int64Counter("telemetry_test_requests_total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}
	counter.Add(context.Background(), 42)

	handler := MetricsHandler()
	if handler == nil {
		t.Fatal("MetricsHandler() returned nil")
	}

	// Make a request to the metrics handler
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	resp := rec.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}

	// Verify it's Prometheus format (should contain # HELP or # TYPE)
	output := string(body)
	if !strings.Contains(output, "# HELP") && !strings.Contains(output, "# TYPE") {
		t.Errorf("output should be Prometheus format: %s", output[:min(200, len(output))])
	}
}

func TestMetricsHandler_NilBeforeInit(t *testing.T) {
	// Reset the handler to simulate fresh state
	prometheusHandlerMu.Lock()
	oldHandler := prometheusHandler
	prometheusHandler = nil
	prometheusHandlerMu.Unlock()

	defer func() {
		prometheusHandlerMu.Lock()
		prometheusHandler = oldHandler
		prometheusHandlerMu.Unlock()
	}()

	handler := MetricsHandler()
	if handler != nil {
		t.Error("MetricsHandler() should return nil before Prometheus init")
	}
}

func TestInit_StdoutMetricExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "stdout"

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer shutdown(context.Background())

	// Verify meter is configured
	meter := otel.Meter("test")
	if meter == nil {
		t.Error("meter is nil")
	}
}

func TestInit_UnknownMetricExporter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TraceExporter = "none"
	cfg.MetricExporter = "unknown_metric_exporter"

	_, err := Init(context.Background(), cfg)
	if err == nil {
		t.Error("Init() with unknown metric exporter should fail")
	}
	if !strings.Contains(err.Error(), "unknown exporter type") {
		t.Errorf("error = %v, want to contain 'unknown exporter type'", err)
	}
}

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	m, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	if m.Generations == nil {
		t.Error("Generations instrument is nil")
	}
	if m.Evaluations == nil {
		t.Error("Evaluations instrument is nil")
	}
	if m.Proposals == nil {
		t.Error("Proposals instrument is nil")
	}
	if m.GenerationDuration == nil {
		t.Error("GenerationDuration instrument is nil")
	}
	if m.SeedPoolSize == nil {
		t.Error("SeedPoolSize instrument is nil")
	}
	if m.BudgetRemaining == nil {
		t.Error("BudgetRemaining instrument is nil")
	}
}
