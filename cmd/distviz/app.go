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
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/distviz/internal/config"
	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/AleutianAI/distviz/internal/telemetry"
	"github.com/AleutianAI/distviz/pkg/logging"
	"github.com/AleutianAI/distviz/pkg/ux"
	"github.com/AleutianAI/distviz/pkg/validation"
	"github.com/spf13/cobra"
)

// app holds what every command needs once setup has run.
type app struct {
	cfg      config.DistvizConfig
	registry *dist.Registry
	logger   *logging.Logger
	shutdown func(context.Context) error
}

// current is populated by setup and released by teardown.
var current *app

// resolveConfigPath returns --config, falling back to config.Path.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.Path()
}

// applyPersonality sets the ux level from --personality, else from the
// environment and the configured default.
func applyPersonality(configured string) {
	if personalityLevel != "" {
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
		return
	}
	ux.InitPersonality(configured)
}

// setup loads config, logging, telemetry and the registry.
func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		applyPersonality("")
		return nil
	}
	teardown()

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	applyPersonality(cfg.UI.Personality)

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "distviz",
		JSON:    cfg.Logging.JSON,
		Quiet:   !verbose || cmd.Annotations[ownsTerminal] == "true",
		Output:  cmd.ErrOrStderr(),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := telemetry.Init(ctx, telemetry.FromConfig(cfg.Telemetry, version))
	if err != nil {
		_ = logger.Close()
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	var reg *dist.Registry
	if cfg.RegistryPath != "" {
		reg, err = dist.LoadRegistry(ctx, cfg.RegistryPath)
	} else {
		reg, err = dist.DefaultRegistry(ctx)
	}
	if err != nil {
		_ = shutdown(ctx)
		_ = logger.Close()
		return fmt.Errorf("failed to load distributions: %w", err)
	}

	current = &app{cfg: cfg, registry: reg, logger: logger, shutdown: shutdown}
	logger.Debug("command started",
		slog.String("command", cmd.CommandPath()),
		slog.String("config", path),
		slog.Int("distributions", reg.Len()))
	return nil
}

// teardown dumps metrics, flushes telemetry and closes the log file.
// Safe to call when setup never ran.
func teardown() {
	if current == nil {
		return
	}
	a := current
	current = nil

	if a.cfg.Telemetry.MetricsFile != "" {
		if err := telemetry.WriteMetricsFile(a.cfg.Telemetry.MetricsFile); err != nil {
			a.logger.Warn("failed to write metrics file", slog.String("error", err.Error()))
		}
	}
	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
		cancel()
	}
	_ = a.logger.Close()
}

// lookup resolves a user-typed distribution id, ignoring case.
func lookup(a *app, id string) (*dist.DistributionSpec, error) {
	clean, err := validation.SanitizeID(id)
	if err != nil {
		return nil, &dist.NotFoundError{ID: id}
	}
	return a.registry.Lookup(clean)
}

// output returns a ux.Output bound to the command's writers.
func output(cmd *cobra.Command) *ux.Output {
	return ux.NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// paramTexts returns one text per parameter of spec: the default value,
// replaced by any "symbol=value" override in flags.
func paramTexts(spec *dist.DistributionSpec, flags []string) ([]string, error) {
	texts := make([]string, spec.Arity())
	for i, v := range spec.DefaultValues() {
		texts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	for _, f := range flags {
		sym, val, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("--param %q: expected symbol=value", f)
		}
		i, found := spec.ParamIndex(strings.TrimSpace(sym))
		if !found {
			return nil, fmt.Errorf("--param %q: %s has no parameter %q (have %s)",
				f, spec.ID, sym, strings.Join(symbols(spec), ", "))
		}
		texts[i] = val
	}
	return texts, nil
}

// parseParams is paramTexts followed by spec.ParseParams.
func parseParams(spec *dist.DistributionSpec, flags []string) ([]float64, error) {
	texts, err := paramTexts(spec, flags)
	if err != nil {
		return nil, err
	}
	return spec.ParseParams(texts)
}

func symbols(spec *dist.DistributionSpec) []string {
	out := make([]string, spec.Arity())
	for i, p := range spec.Params {
		out[i] = p.Symbol
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
