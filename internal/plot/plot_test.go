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
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/AleutianAI/distviz/internal/sampler"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T, id string, opts sampler.Options) *sampler.Series {
	t.Helper()
	reg, err := dist.DefaultRegistry(context.Background())
	require.NoError(t, err)
	spec, err := reg.Lookup(id)
	require.NoError(t, err)
	s, err := sampler.Sample(spec, spec.DefaultValues(), opts)
	require.NoError(t, err)
	return s
}

func plain(width, height int) Terminal {
	return Terminal{Width: width, Height: height, Theme: PlainTheme()}
}

func TestTerminal_Dimensions(t *testing.T) {
	for _, id := range []string{"normal", "poisson", "beta", "binomial"} {
		t.Run(id, func(t *testing.T) {
			out := plain(60, 15).Render(sample(t, id, sampler.Options{}))

			lines := strings.Split(out, "\n")
			require.Len(t, lines, 15)
			for _, line := range lines {
				assert.Equal(t, 60, lipgloss.Width(line), "line %q", line)
			}
		})
	}
}

func TestTerminal_MinimumSize(t *testing.T) {
	out := plain(1, 1).Render(sample(t, "normal", sampler.Options{}))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, MinHeight)
	assert.Equal(t, MinWidth, lipgloss.Width(lines[0]))
}

func hasBraille(s string) bool {
	for _, r := range s {
		if r >= 0x2801 && r <= 0x28FF {
			return true
		}
	}
	return false
}

func TestTerminal_CurveDrawn(t *testing.T) {
	out := plain(60, 12).Render(sample(t, "normal", sampler.Options{}))
	assert.True(t, hasBraille(out), out)
	assert.Contains(t, out, "-5")
}

func TestTerminal_EmptySeries(t *testing.T) {
	out := plain(30, 6).Render(&sampler.Series{})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, 30, lipgloss.Width(lines[0]))
}

func TestTerminal_MarkerDrawn(t *testing.T) {
	s := sample(t, "normal", sampler.Options{}.WithThreshold(2))
	out := plain(60, 12).Render(s)
	assert.Contains(t, out, string(markerRune))

	none := plain(60, 12).Render(sample(t, "normal", sampler.Options{}))
	assert.NotContains(t, none, string(markerRune))

	outside := plain(60, 12).Render(sample(t, "normal", sampler.Options{}.WithThreshold(50)))
	assert.NotContains(t, outside, string(markerRune))
}

func TestTerminal_BarsFollowThreshold(t *testing.T) {
	theme := PlainTheme()
	theme.Highlight = lipgloss.NewStyle().Bold(true)
	term := Terminal{Width: 60, Height: 12, Theme: theme}

	s := sample(t, "poisson", sampler.Options{}.WithThreshold(3))
	bars := term.bars(s, s.Peak())
	require.Len(t, bars, len(s.Points))
	for i, bar := range bars {
		require.Len(t, bar.Values, 1)
		assert.Equal(t, s.Points[i].X < 3, bar.Values[0].Style.GetBold(), "x=%g", s.Points[i].X)
	}
	assert.Equal(t, string(markerRune), bars[3].Label)
	assert.Equal(t, "2", bars[2].Label)
}

func TestTerminal_ManyBarsUseStems(t *testing.T) {
	s := &sampler.Series{Discrete: true}
	for k := 0; k < 200; k++ {
		s.Points = append(s.Points, sampler.Point{X: float64(k), Y: float64(k % 7)})
	}
	s.Domain.Max = 199

	out := plain(40, 8).Render(s)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)
	for _, line := range lines {
		assert.Equal(t, 40, lipgloss.Width(line))
	}
	assert.True(t, hasBraille(out))
}

func TestCurveSegments_Shading(t *testing.T) {
	s := sample(t, "normal", sampler.Options{Resolution: 11}.WithThreshold(0))
	segs := curveSegments(s, s.Peak())
	require.Len(t, segs, 10)
	for _, seg := range segs {
		assert.Equal(t, seg.to.X <= 0, seg.shaded, "segment ending at %g", seg.to.X)
	}
}

func TestCurveSegments_ClipsSingularities(t *testing.T) {
	s := &sampler.Series{Points: []sampler.Point{{X: 0, Y: math.Inf(1)}, {X: 1, Y: 0.5}}}
	segs := curveSegments(s, 2)
	require.Len(t, segs, 1)
	assert.Equal(t, 2.0, segs[0].from.Y)
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "0", formatTick(0))
	assert.Equal(t, "0.399", formatTick(0.398942))
	assert.Equal(t, "-5", formatTick(-5))
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestPNG_Continuous(t *testing.T) {
	var buf bytes.Buffer
	err := PNG{Width: 400, Height: 300, Title: "Normal"}.Render(&buf, sample(t, "normal", sampler.Options{}.WithThreshold(1)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestPNG_Discrete(t *testing.T) {
	var buf bytes.Buffer
	err := PNG{}.Render(&buf, sample(t, "poisson", sampler.Options{}.WithThreshold(4)))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestPNG_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, PNG{}.Render(&buf, &sampler.Series{}))
	assert.Error(t, PNG{}.Render(&buf, nil))
}
