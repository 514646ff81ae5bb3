// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

// DefaultTelemetryOutput receives stdout exporter output unless the
// config names another file.
const DefaultTelemetryOutput = "~/.distviz/telemetry.jsonl"

// DistvizConfig is the on-disk configuration.
type DistvizConfig struct {
	// DefaultDistribution is selected when the visualizer opens.
	DefaultDistribution string `yaml:"default_distribution" validate:"required"`

	// Resolution is the number of points sampled for continuous curves.
	Resolution int `yaml:"resolution" validate:"gte=2,lte=10000"`

	// RegistryPath optionally replaces the built-in distribution table.
	RegistryPath string `yaml:"registry_path,omitempty"`

	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	UI        UIConfig        `yaml:"ui"`
	Export    ExportConfig    `yaml:"export"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir"`  // e.g. ~/.distviz/logs
	JSON  bool   `yaml:"json"` // stderr format; files are always JSON
}

type TelemetryConfig struct {
	// TraceExporter is one of none, stdout, otlp.
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=none stdout otlp"`

	// MetricExporter is one of none, stdout, prometheus.
	MetricExporter string `yaml:"metric_exporter" validate:"oneof=none stdout prometheus"`

	// OTLPEndpoint is host:port of an OTLP gRPC collector.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=TraceExporter otlp"`

	// OutputFile receives stdout exporter output so it never lands on
	// the terminal the UI draws to. Required when either exporter is stdout.
	OutputFile string `yaml:"output_file,omitempty" validate:"required_if=TraceExporter stdout,required_if=MetricExporter stdout"`

	// MetricsFile, when set, gets a Prometheus text dump on exit.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

type UIConfig struct {
	Personality string `yaml:"personality" validate:"oneof=full standard minimal machine"`
	PlotWidth   int    `yaml:"plot_width" validate:"gte=0"`  // 0 = fit the window
	PlotHeight  int    `yaml:"plot_height" validate:"gte=0"` // 0 = fit the window
}

type ExportConfig struct {
	Width  int `yaml:"width" validate:"gte=100,lte=8000"`
	Height int `yaml:"height" validate:"gte=100,lte=8000"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() DistvizConfig {
	return DistvizConfig{
		DefaultDistribution: "normal",
		Resolution:          200,
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.distviz/logs",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OutputFile:     DefaultTelemetryOutput,
		},
		UI: UIConfig{
			Personality: "standard",
		},
		Export: ExportConfig{
			Width:  1000,
			Height: 600,
		},
	}
}
