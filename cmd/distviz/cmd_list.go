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
	"strings"

	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/spf13/cobra"
)

func kind(spec *dist.DistributionSpec) string {
	if spec.Discrete {
		return "discrete"
	}
	return "continuous"
}

func runList(cmd *cobra.Command, _ []string) error {
	out := output(cmd)
	specs := current.registry.List()

	rows := make([][]string, 0, len(specs))
	for _, spec := range specs {
		rows = append(rows, []string{
			spec.ID,
			spec.DisplayName,
			kind(spec),
			strings.Join(symbols(spec), ", "),
		})
	}
	out.Title(fmt.Sprintf("%d distributions", len(specs)))
	out.Table([]string{"ID", "NAME", "TYPE", "PARAMS"}, rows)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	spec, err := lookup(current, args[0])
	if err != nil {
		return err
	}
	out := output(cmd)

	out.Title(spec.DisplayName)
	out.KeyValue([][2]string{
		{"id", spec.ID},
		{"type", kind(spec)},
		{"domain", fmt.Sprintf("[%s, %s]", formatFloat(spec.Domain.Min), formatFloat(spec.Domain.Max))},
		{"pdf", spec.PlainPDF()},
		{"cdf", spec.PlainCDF()},
	})

	rows := make([][]string, 0, spec.Arity())
	for _, p := range spec.Params {
		rows = append(rows, []string{
			p.Symbol,
			p.Name,
			formatFloat(p.Default),
			fmt.Sprintf("%s .. %s", formatFloat(p.Min), formatFloat(p.Max)),
			formatFloat(p.Step()),
		})
	}
	out.Table([]string{"SYMBOL", "PARAMETER", "DEFAULT", "RANGE", "STEP"}, rows)
	return nil
}
