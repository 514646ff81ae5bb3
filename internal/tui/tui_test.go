// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/AleutianAI/distviz/internal/calculator"
	"github.com/AleutianAI/distviz/internal/dist"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	reg, err := dist.DefaultRegistry(context.Background())
	require.NoError(t, err)
	opts.Registry = reg
	opts.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	opts.Plain = true
	m, err := New(context.Background(), opts)
	require.NoError(t, err)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "shift+left":
		return tea.KeyMsg{Type: tea.KeyShiftLeft}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds keys through Update in order.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok, "Update returned %T", next)
	}
	return m
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestNew_UnknownDefault(t *testing.T) {
	reg, err := dist.DefaultRegistry(context.Background())
	require.NoError(t, err)
	_, err = New(context.Background(), Options{Registry: reg, DefaultID: "cauchy"})
	assert.ErrorIs(t, err, dist.ErrNotFound)
}

func TestVisualizer_Initial(t *testing.T) {
	m := newTestModel(t, Options{})

	assert.Equal(t, "normal", m.Controller().Spec().ID)
	view := m.View()
	assert.Contains(t, view, "Normal")
	assert.Contains(t, view, "Mean (center)")
	assert.Contains(t, view, "0.00")
	assert.Contains(t, view, "PDF: f(x) =")
}

func TestVisualizer_SliderStep(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "down", "right")
	assert.InDelta(t, 0.1, m.Controller().Params()[0], 1e-12)

	m = press(t, m, "left", "left")
	assert.InDelta(t, -0.1, m.Controller().Params()[0], 1e-12)
	assert.Empty(t, m.Status())
}

func TestVisualizer_SliderClampsAtRange(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "down")
	for i := 0; i < 12; i++ {
		m = press(t, m, "L")
	}
	assert.InDelta(t, 5, m.Controller().Params()[0], 1e-12)
}

func TestVisualizer_InvalidSliderKeepsFrame(t *testing.T) {
	m := newTestModel(t, Options{})
	before := m.Controller().Frame().Revision

	// sigma 1 -> 0 is rejected by the oracle.
	m = press(t, m, "down", "down", "H")

	assert.True(t, strings.HasPrefix(m.Status(), "Error:"), m.Status())
	assert.Equal(t, []float64{0, 1}, m.Controller().Params())
	assert.Equal(t, before, m.Controller().Frame().Revision)
	assert.Contains(t, m.View(), m.Status())

	// A valid move clears the message.
	m = press(t, m, "right")
	assert.Empty(t, m.Status())
}

func TestVisualizer_CycleDistribution(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "right")
	assert.Equal(t, "uniform", m.Controller().Spec().ID)
	assert.Equal(t, []float64{0, 10}, m.Controller().Params())

	m = press(t, m, "left", "left")
	assert.Equal(t, "lognormal", m.Controller().Spec().ID)
}

func TestVisualizer_FocusWraps(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "up")
	assert.Equal(t, 2, m.focus)
	m = press(t, m, "down")
	assert.Equal(t, 0, m.focus)
}

func TestVisualizer_EditParameter(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "down", "e")
	require.True(t, m.editing)
	m = press(t, m, "ctrl+u", "2.5", "enter")

	assert.False(t, m.editing)
	assert.Equal(t, []float64{2.5, 1}, m.Controller().Params())
	assert.Empty(t, m.Status())
}

func TestVisualizer_EditParameterBadText(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "down", "e", "ctrl+u", "abc", "enter")

	assert.Contains(t, m.Status(), "Error:")
	assert.Contains(t, m.Status(), "is not a number")
	assert.Equal(t, []float64{0, 1}, m.Controller().Params())
}

func TestVisualizer_EditCancel(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "down", "e", "ctrl+u", "4", "esc")
	assert.False(t, m.editing)
	assert.Equal(t, []float64{0, 1}, m.Controller().Params())
}

func TestVisualizer_Reset(t *testing.T) {
	m := newTestModel(t, Options{DefaultID: "gamma"})

	m = press(t, m, "down", "right", "right", "r")
	assert.Equal(t, []float64{2, 2}, m.Controller().Params())
}

func TestVisualizer_WindowSize(t *testing.T) {
	m := newTestModel(t, Options{})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 40)
}

func TestVisualizer_Quit(t *testing.T) {
	m := newTestModel(t, Options{})

	next, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestCalculator_ForwardQuery(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "c")
	require.Equal(t, screenCalculator, m.screen)
	assert.Contains(t, m.View(), "Normal (Bell Curve) Calculator")
	assert.Contains(t, m.View(), "Enter x:")

	m = press(t, m, "1.96", "enter")

	assert.Equal(t, "P(X ≤ 1.96) = 0.9750", m.calc.result)
	assert.Contains(t, m.View(), "P(X ≤ 1.96) = 0.9750")
	assert.True(t, m.calc.ctrl.Frame().Series.HasThreshold)
	// The visualizer's own frame is untouched.
	assert.Nil(t, m.Controller().Frame().Result)
}

func TestCalculator_SeededFromVisualizer(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "down", "right", "c")

	assert.Equal(t, m.Controller().Params(), m.calc.ctrl.Params())
	assert.Equal(t, "0.1", m.calc.params[0].Value())
	assert.Equal(t, "1", m.calc.params[1].Value())
}

func TestCalculator_OpensFromJointlyValidParams(t *testing.T) {
	m := newTestModel(t, Options{DefaultID: "uniform"})
	ctx := context.Background()

	require.NoError(t, m.Controller().SetParameter(ctx, 1, 15))
	require.NoError(t, m.Controller().SetParameter(ctx, 0, 11))

	m = press(t, m, "c")
	require.Equal(t, screenCalculator, m.screen, m.Status())
	require.NotNil(t, m.calc)
	assert.Equal(t, []float64{11, 15}, m.calc.ctrl.Params())
	assert.Equal(t, "11", m.calc.params[0].Value())
	assert.Equal(t, "15", m.calc.params[1].Value())
	assert.Empty(t, m.Status())
}

func TestCalculator_InverseMode(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "c", "ctrl+t")
	assert.Equal(t, calculator.Inverse, m.calc.mode)
	assert.Contains(t, m.View(), "Enter probability (0-1):")
	assert.Contains(t, m.View(), "Find x given P(X ≤ x)")

	m = press(t, m, "0.5", "enter")
	assert.Equal(t, "x = 0 for P(X ≤ x) = 0.5", m.calc.result)
}

func TestCalculator_DiscreteInverseIsInteger(t *testing.T) {
	m := newTestModel(t, Options{DefaultID: "poisson"})

	m = press(t, m, "c", "ctrl+t", "0.5", "enter")
	assert.Equal(t, "x = 5 for P(X ≤ x) = 0.5", m.calc.result)
}

func TestCalculator_RangeError(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "c", "ctrl+t", "1.5", "enter")
	assert.Equal(t, "Error: probability must be between 0 and 1, got 1.5", m.calc.result)
	assert.Nil(t, m.calc.ctrl.Frame().Result)
}

func TestCalculator_BadParameterField(t *testing.T) {
	m := newTestModel(t, Options{})

	// value -> mode row -> sigma field
	m = press(t, m, "c", "shift+tab", "shift+tab")
	require.Equal(t, 1, m.calc.focus)
	m = press(t, m, "ctrl+u", "x", "tab", "tab", "1", "enter")

	assert.True(t, strings.HasPrefix(m.calc.result, "Error:"), m.calc.result)
	assert.Contains(t, m.calc.result, "is not a number")
	assert.Equal(t, []float64{0, 1}, m.calc.ctrl.Params())
}

func TestCalculator_EditedParameters(t *testing.T) {
	m := newTestModel(t, Options{DefaultID: "uniform"})

	m = press(t, m, "c", "tab", "ctrl+u", "12", "tab", "ctrl+u", "15", "tab", "tab", "13.5", "enter")

	assert.Equal(t, []float64{12, 15}, m.calc.ctrl.Params())
	assert.Equal(t, "P(X ≤ 13.5) = 0.5000", m.calc.result)
}

func TestCalculator_ModeRowArrows(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "c", "up")
	require.Equal(t, m.calc.modeRow(), m.calc.focus)
	m = press(t, m, "right")
	assert.Equal(t, calculator.Inverse, m.calc.mode)
	m = press(t, m, "left")
	assert.Equal(t, calculator.Forward, m.calc.mode)
}

func TestCalculator_ClearAndBack(t *testing.T) {
	m := newTestModel(t, Options{})

	m = press(t, m, "c", "1", "enter")
	require.NotNil(t, m.calc.ctrl.Frame().Result)

	m = press(t, m, "ctrl+l")
	assert.Empty(t, m.calc.result)
	assert.Nil(t, m.calc.ctrl.Frame().Result)
	assert.False(t, m.calc.ctrl.Frame().Series.HasThreshold)

	m = press(t, m, "esc")
	assert.Equal(t, screenVisualizer, m.screen)
	assert.Nil(t, m.calc)
}

func TestAbout(t *testing.T) {
	m := newTestModel(t, Options{Version: "1.2.3"})

	m = press(t, m, "a")
	require.Equal(t, screenAbout, m.screen)
	view := m.View()
	assert.Contains(t, view, "distviz 1.2.3")
	assert.Contains(t, view, "Interactive probability distribution explorer.")

	content := m.aboutContent()
	assert.Contains(t, content, "student_t")
	assert.Contains(t, content, "calculator")

	m = press(t, m, "esc")
	assert.Equal(t, screenVisualizer, m.screen)
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, Options{})
	short := m.chrome()

	m = press(t, m, "?")
	assert.True(t, m.help.ShowAll)
	assert.Greater(t, m.chrome(), short)
}

func TestRenderSlider(t *testing.T) {
	p := dist.ParamSpec{Min: 0, Max: 10}
	assert.True(t, strings.HasPrefix(renderSlider(p, 0), "●"))
	assert.True(t, strings.HasSuffix(renderSlider(p, 10), "●"))
	assert.True(t, strings.HasSuffix(renderSlider(p, 99), "●"))
}
