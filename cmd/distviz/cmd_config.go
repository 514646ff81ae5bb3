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

	"github.com/AleutianAI/distviz/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	out := output(cmd)

	if _, err := os.Stat(path); err == nil && !forceInit {
		out.Warning(fmt.Sprintf("%s already exists; use --force to overwrite", path))
		return nil
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	out.Success("Wrote " + path)
	return nil
}

// runConfigShow prints the config as loaded, creating it on first run.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	out := output(cmd)
	out.Muted("# " + path)
	fmt.Fprint(out.Out, string(data))
	return nil
}
