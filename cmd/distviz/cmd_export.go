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
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AleutianAI/distviz/internal/plot"
	"github.com/spf13/cobra"
)

func runExport(cmd *cobra.Command, args []string) error {
	s, _, err := sampleSeries(cmd, args)
	if err != nil {
		return err
	}
	spec, err := current.registry.Lookup(s.ID)
	if err != nil {
		return err
	}

	width, height := current.cfg.Export.Width, current.cfg.Export.Height
	if exportWidth > 0 {
		width = exportWidth
	}
	if exportHeight > 0 {
		height = exportHeight
	}

	if dir := filepath.Dir(exportOut); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOut, err)
	}
	renderer := plot.PNG{Width: width, Height: height, Title: spec.DisplayName}
	if err := renderer.Render(f, s); err != nil {
		f.Close()
		_ = os.Remove(exportOut)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOut, err)
	}

	current.logger.Info("plot exported",
		slog.String("distribution", s.ID),
		slog.String("path", exportOut),
		slog.Int("width", width),
		slog.Int("height", height))
	output(cmd).Success("Wrote " + exportOut)
	return nil
}
