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

	"github.com/AleutianAI/distviz/internal/tui"
	"github.com/AleutianAI/distviz/pkg/ux"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// viewOptions builds the visualizer options from the loaded app.
func viewOptions(a *app, args []string) (tui.Options, error) {
	id := a.cfg.DefaultDistribution
	if len(args) > 0 {
		id = args[0]
	}
	spec, err := lookup(a, id)
	if err != nil {
		return tui.Options{}, err
	}
	p := ux.GetPersonality()
	return tui.Options{
		Registry:   a.registry,
		Logger:     a.logger.Slog(),
		Resolution: a.cfg.Resolution,
		DefaultID:  spec.ID,
		PlotWidth:  a.cfg.UI.PlotWidth,
		PlotHeight: a.cfg.UI.PlotHeight,
		Version:    version,
		ShowHints:  p.ShowHints,
		Plain:      !ux.ShouldShowColors(),
	}, nil
}

func runView(cmd *cobra.Command, args []string) error {
	opts, err := viewOptions(current, args)
	if err != nil {
		return err
	}
	model, err := tui.New(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("failed to start the visualizer: %w", err)
	}
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("visualizer exited: %w", err)
	}
	return nil
}
