// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plot draws sampled series, either as a terminal chart built on
// ntcharts or as a PNG image.
//
// Both renderers redraw from scratch on every call and keep no state
// between frames.
package plot

import (
	"math"
	"strconv"
	"strings"

	"github.com/AleutianAI/distviz/internal/sampler"
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"
)

// Minimum chart dimensions in cells.
const (
	MinWidth  = 20
	MinHeight = 4
)

// markerRune draws the threshold line. It must not collide with the
// axis glyphs ntcharts uses.
const markerRune = '┊'

// Theme holds the styles a Terminal chart draws with.
type Theme struct {
	// Fill is the area under a curve or an unhighlighted bar.
	Fill lipgloss.Style

	// Highlight is the shaded region selected by a query.
	Highlight lipgloss.Style

	// Marker is the vertical threshold line.
	Marker lipgloss.Style

	// Axis is used for the frame and tick labels.
	Axis lipgloss.Style
}

// DefaultTheme returns the standard palette.
func DefaultTheme() Theme {
	return Theme{
		Fill:      lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Marker:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Axis:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// PlainTheme returns unstyled output, used for machine-readable modes.
func PlainTheme() Theme {
	s := lipgloss.NewStyle()
	return Theme{Fill: s, Highlight: s, Marker: s, Axis: s}
}

// Terminal renders a series as a character-cell chart.
type Terminal struct {
	// Width and Height are the total size in cells, labels included.
	Width  int
	Height int

	Theme Theme
}

// NewTerminal returns a chart of the given size with the default theme.
func NewTerminal(width, height int) Terminal {
	return Terminal{Width: width, Height: height, Theme: DefaultTheme()}
}

// Render draws s.
//
// # Description
//
// Continuous series are drawn as a braille line chart with the Below
// region filled in the highlight style. Discrete series are drawn as a
// bar chart, one bar per integer, or as braille stems when there are
// more integers than columns. When s carries a threshold inside the
// domain a marker is drawn at x0. The y axis runs from 0 to the series
// peak; singular points are clipped to the top.
//
// The output has Height lines, each exactly Width cells wide.
func (t Terminal) Render(s *sampler.Series) string {
	width := max(t.Width, MinWidth)
	height := max(t.Height, MinHeight)
	if s == nil || len(s.Points) == 0 {
		return fit("", width, height)
	}

	top := s.Peak()
	if top <= 0 {
		top = 1
	}
	var view string
	switch {
	case !s.Discrete:
		view = t.renderCurve(s, width, height, top)
	case len(s.Points) <= width/2:
		view = t.renderBars(s, width, height, top)
	default:
		view = t.renderStems(s, width, height, top)
	}
	return fit(view, width, height)
}

func (t Terminal) lineChart(minX, maxX, top float64, width, height int) linechart.Model {
	lc := linechart.New(width, height, minX, maxX, 0, top,
		linechart.WithStyles(t.Theme.Axis, t.Theme.Axis, lipgloss.NewStyle()),
		linechart.WithXLabelFormatter(tickLabel),
		linechart.WithYLabelFormatter(tickLabel),
	)
	lc.DrawXYAxisAndLabel()
	return lc
}

func (t Terminal) renderCurve(s *sampler.Series, width, height int, top float64) string {
	lc := t.lineChart(s.Domain.Min, s.Domain.Max, top, width, height)
	for _, p := range s.Below {
		lc.DrawBrailleLineWithStyle(
			canvas.Float64Point{X: p.X, Y: 0},
			canvas.Float64Point{X: p.X, Y: clip(p.Y, top)},
			t.Theme.Highlight)
	}
	for _, seg := range curveSegments(s, top) {
		style := t.Theme.Fill
		if seg.shaded {
			style = t.Theme.Highlight
		}
		lc.DrawBrailleLineWithStyle(seg.from, seg.to, style)
	}
	t.drawMarker(&lc, s, top, height)
	return lc.View()
}

func (t Terminal) renderStems(s *sampler.Series, width, height int, top float64) string {
	lc := t.lineChart(s.Domain.Min, s.Domain.Max, top, width, height)
	for _, p := range s.Points {
		lc.DrawBrailleLineWithStyle(
			canvas.Float64Point{X: p.X, Y: 0},
			canvas.Float64Point{X: p.X, Y: clip(p.Y, top)},
			t.barStyle(s, p))
	}
	t.drawMarker(&lc, s, top, height)
	return lc.View()
}

func (t Terminal) renderBars(s *sampler.Series, width, height int, top float64) string {
	gap := 0
	if 2*len(s.Points) <= width {
		gap = 1
	}
	bc := barchart.New(width, height,
		barchart.WithDataSet(t.bars(s, top)),
		barchart.WithMaxValue(top),
		barchart.WithBarGap(gap),
		barchart.WithStyles(t.Theme.Axis, t.Theme.Axis),
	)
	bc.Draw()
	return bc.View()
}

// bars builds one bar per point. The first bar at or past x0 is
// labelled with the marker in place of its value.
func (t Terminal) bars(s *sampler.Series, top float64) []barchart.BarData {
	x0, marked := markerX(s)
	data := make([]barchart.BarData, len(s.Points))
	for i, p := range s.Points {
		label := formatTick(p.X)
		if marked && p.X >= x0 {
			label = string(markerRune)
			marked = false
		}
		data[i] = barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: label, Value: clip(p.Y, top), Style: t.barStyle(s, p)},
			},
		}
	}
	return data
}

func (t Terminal) barStyle(s *sampler.Series, p sampler.Point) lipgloss.Style {
	if s.Highlighted(p.X) {
		return t.Theme.Highlight
	}
	return t.Theme.Fill
}

// drawMarker draws a dotted vertical line at x0.
func (t Terminal) drawMarker(lc *linechart.Model, s *sampler.Series, top float64, height int) {
	x0, ok := markerX(s)
	if !ok {
		return
	}
	for i := 0; i <= height; i++ {
		y := top * float64(i) / float64(height)
		lc.DrawRuneWithStyle(canvas.Float64Point{X: x0, Y: y}, markerRune, t.Theme.Marker)
	}
}

// markerX returns the threshold when it lies inside the domain.
func markerX(s *sampler.Series) (float64, bool) {
	if !s.HasThreshold || s.Threshold < s.Domain.Min || s.Threshold > s.Domain.Max {
		return 0, false
	}
	return s.Threshold, true
}

// segment is one piece of a continuous curve.
type segment struct {
	from, to canvas.Float64Point
	shaded   bool
}

// curveSegments joins consecutive points. A segment is shaded when both
// ends are in the Below region.
func curveSegments(s *sampler.Series, top float64) []segment {
	if len(s.Points) < 2 {
		return nil
	}
	out := make([]segment, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		a, b := s.Points[i-1], s.Points[i]
		out = append(out, segment{
			from:   canvas.Float64Point{X: a.X, Y: clip(a.Y, top)},
			to:     canvas.Float64Point{X: b.X, Y: clip(b.Y, top)},
			shaded: s.Highlighted(a.X) && s.Highlighted(b.X),
		})
	}
	return out
}

// fit pads or crops view to exactly width by height cells.
func fit(view string, width, height int) string {
	view = strings.ReplaceAll(view, "\x00", " ")
	cropped := lipgloss.NewStyle().MaxWidth(width).MaxHeight(height).Render(view)
	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, cropped)
}

func tickLabel(_ int, v float64) string {
	return formatTick(v)
}

// formatTick prints v with three significant digits.
func formatTick(v float64) string {
	if v == 0 || math.Abs(v) < 1e-12 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}
