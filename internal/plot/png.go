// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package plot

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/AleutianAI/distviz/internal/sampler"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default PNG dimensions in pixels.
const (
	DefaultPNGWidth  = 1000
	DefaultPNGHeight = 600
)

// barHalfWidth is half the width of a discrete bar in x units.
const barHalfWidth = 0.4

var (
	curveColor     = drawing.ColorFromHex("1f77b4")
	highlightColor = drawing.ColorFromHex("ff7f0e")
	markerColor    = drawing.ColorFromHex("d62728")
)

// PNG renders series to an image with go-chart.
type PNG struct {
	Width  int
	Height int

	// Title is drawn above the chart.
	Title string

	// YLabel names the y axis; defaults to "Density" or "Probability".
	YLabel string
}

// Render writes the chart as PNG to w.
//
// # Description
//
// Continuous series become a line with a light fill beneath it; the
// Below half of a thresholded series is filled again in the highlight
// colour. Discrete series become one filled bar per integer. A
// threshold inside the domain is drawn as a vertical marker.
func (p PNG) Render(w io.Writer, s *sampler.Series) error {
	if s == nil || len(s.Points) == 0 {
		return errors.New("png: empty series")
	}
	width, height := p.Width, p.Height
	if width <= 0 {
		width = DefaultPNGWidth
	}
	if height <= 0 {
		height = DefaultPNGHeight
	}

	top := s.Peak() * 1.05
	if top <= 0 {
		top = 1
	}
	yLabel := p.YLabel
	if yLabel == "" {
		yLabel = "Density"
		if s.Discrete {
			yLabel = "Probability"
		}
	}

	var series []chart.Series
	if s.Discrete {
		series = discreteSeries(s, top)
	} else {
		series = continuousSeries(s, top)
	}
	if m, ok := markerSeries(s, top); ok {
		series = append(series, m)
	}

	xMin, xMax := s.Domain.Min, s.Domain.Max
	if s.Discrete {
		xMin -= 1
		xMax += 1
	}
	graph := chart.Chart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "x",
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  yLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Series: series,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering png: %w", err)
	}
	return nil
}

func continuousSeries(s *sampler.Series, top float64) []chart.Series {
	xs, ys := split(s.Points, top)
	out := []chart.Series{
		chart.ContinuousSeries{
			Name:    s.ID,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: curveColor,
				StrokeWidth: 2,
				FillColor:   curveColor.WithAlpha(64),
			},
		},
	}
	if s.HasThreshold && len(s.Below) > 1 {
		bx, by := split(s.Below, top)
		out = append(out, chart.ContinuousSeries{
			Name:    "P(X ≤ x)",
			XValues: bx,
			YValues: by,
			Style: chart.Style{
				StrokeWidth: 0,
				FillColor:   highlightColor.WithAlpha(140),
			},
		})
	}
	return out
}

func discreteSeries(s *sampler.Series, top float64) []chart.Series {
	out := make([]chart.Series, 0, len(s.Points))
	for _, pt := range s.Points {
		y := clip(pt.Y, top)
		color := curveColor
		if s.Highlighted(pt.X) {
			color = highlightColor
		}
		left, right := pt.X-barHalfWidth, pt.X+barHalfWidth
		out = append(out, chart.ContinuousSeries{
			XValues: []float64{left, left, right, right},
			YValues: []float64{0, y, y, 0},
			Style: chart.Style{
				StrokeColor: color,
				StrokeWidth: 1,
				FillColor:   color.WithAlpha(180),
			},
		})
	}
	return out
}

func markerSeries(s *sampler.Series, top float64) (chart.Series, bool) {
	if !s.HasThreshold || s.Threshold < s.Domain.Min || s.Threshold > s.Domain.Max {
		return nil, false
	}
	return chart.ContinuousSeries{
		Name:    "x0",
		XValues: []float64{s.Threshold, s.Threshold},
		YValues: []float64{0, top},
		Style: chart.Style{
			StrokeColor:     markerColor,
			StrokeWidth:     2,
			StrokeDashArray: []float64{6, 4},
		},
	}, true
}

// split unzips points, clipping singular values to top.
func split(points []sampler.Point, top float64) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = clip(p.Y, top)
	}
	return xs, ys
}

func clip(y, top float64) float64 {
	if math.IsInf(y, 1) || y > top {
		return top
	}
	return y
}
