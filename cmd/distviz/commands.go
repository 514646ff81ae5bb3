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

	"github.com/spf13/cobra"
)

// skipSetup marks commands that run without loading the config file.
const skipSetup = "distviz/skip-setup"

// ownsTerminal marks commands whose UI draws over the whole terminal;
// their log lines only go to the log file.
const ownsTerminal = "distviz/owns-terminal"

// --- Global Command Variables ---
var (
	configPath       string
	personalityLevel string // UX personality level (full/standard/minimal/machine)
	verbose          bool

	paramFlags   []string // repeated sym=value overrides
	thresholdArg float64  // --x0, only used when the flag is set
	calcMode     string
	calcValue    string
	sampleFormat string
	resolution   int
	exportOut    string
	exportWidth  int
	exportHeight int
	forceInit    bool

	rootCmd = &cobra.Command{
		Use:   "distviz [distribution]",
		Short: "Explore probability distributions in the terminal",
		Long: `distviz plots probability density and mass functions, lets you
move their parameters with sliders, and answers P(X ≤ x) and quantile
questions. Run it without a subcommand to open the visualizer.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		Annotations:       map[string]string{ownsTerminal: "true"},
		PersistentPreRunE: setup,
		RunE:              runView,
	}

	viewCmd = &cobra.Command{
		Use:         "view [distribution]",
		Short:       "Open the interactive visualizer",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{ownsTerminal: "true"},
		RunE:        runView, // Defined in cmd_view.go
	}

	// --- Catalogue ---
	listCmd = &cobra.Command{
		Use:     "list",
		Short:   "List the registered distributions",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE:    runList, // Defined in cmd_list.go
	}
	showCmd = &cobra.Command{
		Use:   "show <distribution>",
		Short: "Show parameters, ranges and formulas of a distribution",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow, // Defined in cmd_list.go
	}

	// --- One-shot evaluation ---
	calcCmd = &cobra.Command{
		Use:   "calc <distribution>",
		Short: "Compute P(X ≤ x) or the x for a given probability",
		Example: `  distviz calc normal --value 1.96
  distviz calc poisson --mode inverse --value 0.5 --param lambda=4`,
		Args: cobra.ExactArgs(1),
		RunE: runCalc, // Defined in cmd_calc.go
	}
	sampleCmd = &cobra.Command{
		Use:   "sample <distribution>",
		Short: "Print the sampled curve or mass function",
		Args:  cobra.ExactArgs(1),
		RunE:  runSample, // Defined in cmd_sample.go
	}
	exportCmd = &cobra.Command{
		Use:   "export <distribution>",
		Short: "Write the plot to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport, // Defined in cmd_export.go
	}

	// --- Configuration ---
	configCmd = &cobra.Command{
		Use:         "config",
		Short:       "Manage the distviz configuration file",
		Annotations: map[string]string{skipSetup: "true"},
	}
	configInitCmd = &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE:        runConfigInit, // Defined in cmd_config.go
	}
	configShowCmd = &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE:        runConfigShow, // Defined in cmd_config.go
	}

	versionCmd = &cobra.Command{
		Use:         "version",
		Short:       "Print the distviz version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "distviz "+version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default $DISTVIZ_CONFIG or ~/.distviz/distviz.yaml)")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full, standard, minimal, machine")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Also write log lines to stderr")

	for _, cmd := range []*cobra.Command{calcCmd, sampleCmd, exportCmd} {
		cmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil,
			"Parameter override as symbol=value (repeatable)")
	}
	for _, cmd := range []*cobra.Command{sampleCmd, exportCmd} {
		cmd.Flags().Float64Var(&thresholdArg, "x0", 0, "Highlight P(X ≤ x0)")
		cmd.Flags().IntVar(&resolution, "resolution", 0,
			"Points sampled for continuous curves (default from config)")
	}

	calcCmd.Flags().StringVarP(&calcMode, "mode", "m", "forward", "forward (P(X ≤ x)) or inverse (x for P)")
	calcCmd.Flags().StringVar(&calcValue, "value", "", "x for forward mode, a probability for inverse")

	sampleCmd.Flags().StringVarP(&sampleFormat, "format", "f", "table", "Output format: table or json")

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "PNG file to write")
	exportCmd.Flags().IntVar(&exportWidth, "width", 0, "Image width in pixels (default from config)")
	exportCmd.Flags().IntVar(&exportHeight, "height", 0, "Image height in pixels (default from config)")
	_ = exportCmd.MarkFlagRequired("out")

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(viewCmd, listCmd, showCmd, calcCmd, sampleCmd, exportCmd, configCmd, versionCmd)
}
