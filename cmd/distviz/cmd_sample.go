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
	"encoding/json"
	"fmt"
	"math"

	"github.com/AleutianAI/distviz/internal/sampler"
	"github.com/spf13/cobra"
)

// sampleDoc is the JSON shape of a sampled series. Y is null where the
// density is infinite.
type sampleDoc struct {
	ID        string        `json:"id"`
	Discrete  bool          `json:"discrete"`
	Params    []float64     `json:"params"`
	Threshold *float64      `json:"threshold,omitempty"`
	Points    []samplePoint `json:"points"`
}

type samplePoint struct {
	X           float64  `json:"x"`
	Y           *float64 `json:"y"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

// sampleSeries parses the shared flags and samples the distribution in args[0].
func sampleSeries(cmd *cobra.Command, args []string) (*sampler.Series, []float64, error) {
	spec, err := lookup(current, args[0])
	if err != nil {
		return nil, nil, err
	}
	params, err := parseParams(spec, paramFlags)
	if err != nil {
		return nil, nil, err
	}
	opts := sampler.Options{Resolution: current.cfg.Resolution}
	if resolution > 0 {
		opts.Resolution = resolution
	}
	if cmd.Flags().Changed("x0") {
		opts = opts.WithThreshold(thresholdArg)
	}
	s, err := sampler.Sample(spec, params, opts)
	if err != nil {
		return nil, nil, err
	}
	return s, params, nil
}

func runSample(cmd *cobra.Command, args []string) error {
	s, params, err := sampleSeries(cmd, args)
	if err != nil {
		return err
	}

	switch sampleFormat {
	case "json":
		doc := sampleDoc{ID: s.ID, Discrete: s.Discrete, Params: params}
		if s.HasThreshold {
			t := s.Threshold
			doc.Threshold = &t
		}
		doc.Points = make([]samplePoint, len(s.Points))
		for i, p := range s.Points {
			pt := samplePoint{X: p.X, Highlighted: s.Highlighted(p.X)}
			if !math.IsInf(p.Y, 0) {
				y := p.Y
				pt.Y = &y
			}
			doc.Points[i] = pt
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	case "table":
		headers := []string{"X", "Y"}
		if s.HasThreshold {
			headers = append(headers, "SHADED")
		}
		rows := make([][]string, len(s.Points))
		for i, p := range s.Points {
			row := []string{formatFloat(p.X), formatFloat(p.Y)}
			if s.HasThreshold {
				shade := ""
				if s.Highlighted(p.X) {
					shade = "*"
				}
				row = append(row, shade)
			}
			rows[i] = row
		}
		output(cmd).Table(headers, rows)
		return nil

	default:
		return fmt.Errorf("unknown format %q (want table or json)", sampleFormat)
	}
}
