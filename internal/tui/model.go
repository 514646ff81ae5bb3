// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui provides the interactive distribution explorer.
//
// # Description
//
// The root Model is the main visualizer: a distribution selector, one
// slider per parameter and a live plot. The calculator and About panel
// are sub-views drawn in the same window. Every user action becomes an
// event on a session.Controller; views only draw the controller's
// current frame and the last error message.
//
// # Thread Safety
//
// Models are designed for single-threaded use within the bubbletea
// event loop.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/AleutianAI/distviz/internal/plot"
	"github.com/AleutianAI/distviz/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// screen selects which view is drawn.
type screen int

const (
	screenVisualizer screen = iota
	screenCalculator
	screenAbout
)

// Default window size before the first WindowSizeMsg.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// sliderWidth is the number of cells in a parameter slider.
const sliderWidth = 24

// Options configures the explorer.
type Options struct {
	// Registry is required.
	Registry *dist.Registry

	// Logger receives controller logs. Default: slog.Default().
	Logger *slog.Logger

	// Resolution is the continuous sample count. Zero means the default.
	Resolution int

	// DefaultID is the distribution shown first.
	DefaultID string

	// PlotWidth and PlotHeight fix the chart size; zero fits the window.
	PlotWidth  int
	PlotHeight int

	// Version is shown in the About panel.
	Version string

	// ShowHints starts with the full key help expanded.
	ShowHints bool

	// Plain drops colours from the chart.
	Plain bool
}

// Model is the bubbletea model for the main visualizer.
type Model struct {
	ctx  context.Context
	opts Options
	ctrl *session.Controller

	keys keyMap
	help help.Model

	// focus 0 is the distribution selector, i+1 is parameter i.
	focus   int
	editing bool
	input   textinput.Model
	status  string

	screen screen
	calc   *calcModel
	about  viewport.Model

	width    int
	height   int
	quitting bool
}

// New creates the visualizer showing opts.DefaultID at its defaults.
//
// # Inputs
//
//   - ctx: Context for tracing controller transitions. Must not be nil.
//   - opts: Options; Registry is required.
//
// # Outputs
//
//   - Model: Ready-to-use model for tea.NewProgram.
//   - error: From session.New, e.g. an unknown default distribution.
func New(ctx context.Context, opts Options) (Model, error) {
	if opts.Registry == nil {
		return Model{}, errors.New("tui: registry is required")
	}
	ctrl, err := session.New(ctx, opts.Registry, session.Options{
		Logger:     opts.Logger,
		Resolution: opts.Resolution,
		DefaultID:  opts.DefaultID,
	})
	if err != nil {
		return Model{}, err
	}

	h := help.New()
	h.ShowAll = opts.ShowHints

	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 12
	ti.Prompt = ""

	return Model{
		ctx:    ctx,
		opts:   opts,
		ctrl:   ctrl,
		keys:   defaultKeyMap(),
		help:   h,
		input:  ti,
		width:  defaultWidth,
		height: defaultHeight,
		about:  viewport.New(defaultWidth, defaultHeight-2),
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Controller returns the visualizer's session controller.
func (m Model) Controller() *session.Controller { return m.ctrl }

// Status returns the current error line, or "".
func (m Model) Status() string { return m.status }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.about.Width = msg.Width
		m.about.Height = max(msg.Height-2, 1)
		if m.calc != nil {
			m.calc.help.Width = msg.Width
		}
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case screenCalculator:
			return m.updateCalculator(msg)
		case screenAbout:
			return m.updateAbout(msg)
		}
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateVisualizer(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if m.screen == screenCalculator && m.calc != nil {
		var cmd tea.Cmd
		*m.calc, cmd = m.calc.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateVisualizer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.ctrl.Spec().Arity() + 1

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.focus = (m.focus - 1 + rows) % rows

	case key.Matches(msg, m.keys.Down):
		m.focus = (m.focus + 1) % rows

	case key.Matches(msg, m.keys.Left):
		m.adjust(-1)

	case key.Matches(msg, m.keys.Right):
		m.adjust(1)

	case key.Matches(msg, m.keys.BigLeft):
		m.adjust(-10)

	case key.Matches(msg, m.keys.BigRight):
		m.adjust(10)

	case key.Matches(msg, m.keys.Edit):
		if m.focus > 0 {
			m.editing = true
			m.input.SetValue(formatParam(m.ctrl.Params()[m.focus-1]))
			m.input.CursorEnd()
			return m, m.input.Focus()
		}

	case key.Matches(msg, m.keys.Reset):
		m.report(m.ctrl.Select(m.ctx, m.ctrl.Spec().ID))

	case key.Matches(msg, m.keys.Calculator):
		return m.openCalculator()

	case key.Matches(msg, m.keys.About):
		m.screen = screenAbout
		m.about.SetContent(m.aboutContent())
		m.about.GotoTop()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// adjust moves the focused row by steps: the selector cycles through
// the registry, a parameter moves by its slider increment.
func (m *Model) adjust(steps int) {
	if m.focus == 0 {
		reg := m.ctrl.Registry()
		n := reg.Len()
		dir := 1
		if steps < 0 {
			dir = -1
		}
		i := ((reg.IndexOf(m.ctrl.Spec().ID)+dir)%n + n) % n
		m.report(m.ctrl.Select(m.ctx, reg.IDs()[i]))
		return
	}

	index := m.focus - 1
	ps := m.ctrl.Spec().Params[index]
	m.report(m.ctrl.SetParameter(m.ctx, index, ps.StepFrom(m.ctrl.Params()[index], steps)))
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		m.report(m.ctrl.SetParameterText(m.ctx, m.focus-1, m.input.Value()))
		return m, nil

	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil

	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) openCalculator() (tea.Model, tea.Cmd) {
	calc, err := newCalcModel(m.ctx, m.opts, m.ctrl.Spec().ID, m.ctrl.Params())
	if err != nil {
		m.status = dist.ErrorMessage(err)
		return m, nil
	}
	calc.help.Width = m.width
	calc.help.ShowAll = m.help.ShowAll
	m.calc = &calc
	m.screen = screenCalculator
	m.status = ""
	return m, calc.Init()
}

func (m Model) updateCalculator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.calc.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.calc.keys.Back):
		m.screen = screenVisualizer
		m.calc = nil
		return m, nil
	}
	var cmd tea.Cmd
	*m.calc, cmd = m.calc.Update(msg)
	return m, cmd
}

func (m Model) updateAbout(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc", "a", "q", "enter":
		m.screen = screenVisualizer
		return m, nil
	}
	var cmd tea.Cmd
	m.about, cmd = m.about.Update(msg)
	return m, cmd
}

// report turns a transition result into the status line.
func (m *Model) report(err error) {
	m.status = dist.ErrorMessage(err)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.screen {
	case screenCalculator:
		if m.calc != nil {
			return m.calc.View(m.chart(m.calc.chrome()))
		}
	case screenAbout:
		return m.renderAbout()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderControls())
	b.WriteString("\n")
	b.WriteString(m.chart(m.chrome()).Render(m.ctrl.Frame().Series))
	b.WriteString("\n")
	b.WriteString(formulaStyle.Render("PDF: " + m.ctrl.Spec().PlainPDF()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// chrome is the number of lines around the chart in the visualizer.
func (m Model) chrome() int {
	lines := 1 + (m.ctrl.Spec().Arity() + 1) + 1 + 1 + 1
	if m.help.ShowAll {
		lines += len(m.keys.FullHelp()[0]) - 1
	}
	return lines
}

// chart sizes a terminal plot to the window minus chrome lines.
func (m Model) chart(chrome int) plot.Terminal {
	w := m.opts.PlotWidth
	if w <= 0 {
		w = m.width
	}
	h := m.opts.PlotHeight
	if h <= 0 {
		h = m.height - chrome
	}
	t := plot.NewTerminal(w, h)
	if m.opts.Plain {
		t.Theme = plot.PlainTheme()
	}
	return t
}

func (m Model) renderHeader() string {
	spec := m.ctrl.Spec()
	kind := "continuous"
	if spec.Discrete {
		kind = "discrete"
	}
	return titleStyle.Render("distviz") + mutedStyle.Render(" · "+spec.DisplayName+" · "+kind)
}

func (m Model) renderControls() string {
	spec := m.ctrl.Spec()
	params := m.ctrl.Params()

	labelWidth := lipgloss.Width("Distribution")
	for _, p := range spec.Params {
		labelWidth = max(labelWidth, lipgloss.Width(p.Name))
	}

	var b strings.Builder
	b.WriteString(m.row(0, labelWidth, "Distribution", "‹ "+spec.DisplayName+" ›"))
	for i, p := range spec.Params {
		b.WriteString("\n")
		value := formatSliderValue(params[i])
		if m.editing && m.focus == i+1 {
			value = m.input.View()
		}
		b.WriteString(m.row(i+1, labelWidth, p.Name, renderSlider(p, params[i])+"  "+value))
	}
	return b.String()
}

func (m Model) row(index, labelWidth int, label, content string) string {
	cursor := "  "
	style := labelStyle
	if m.focus == index {
		cursor = cursorStyle.Render("▸ ")
		style = focusedLabelStyle
	}
	pad := strings.Repeat(" ", labelWidth-lipgloss.Width(label))
	return cursor + style.Render(label) + pad + "  " + content
}

func (m Model) renderStatus() string {
	if m.status == "" {
		return ""
	}
	return errorStyle.Render(m.status)
}

func (m Model) renderAbout() string {
	return m.about.View() + "\n" + mutedStyle.Render("esc: back · ↑/↓: scroll")
}

func (m Model) aboutContent() string {
	version := m.opts.Version
	if version == "" {
		version = "dev"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("distviz "+version) + "\n\n")
	b.WriteString("Interactive probability distribution explorer.\n")
	b.WriteString("Pick a family, move its parameters and watch the density\n")
	b.WriteString("or mass function redraw. The calculator answers P(X ≤ x)\n")
	b.WriteString("and finds x for a given probability.\n\n")

	b.WriteString(focusedLabelStyle.Render("Distributions") + "\n")
	for _, s := range m.ctrl.Registry().List() {
		b.WriteString(fmt.Sprintf("  %-12s %s\n", s.ID, s.DisplayName))
	}

	b.WriteString("\n" + focusedLabelStyle.Render("Visualizer keys") + "\n")
	writeBindings(&b, m.keys.FullHelp())
	b.WriteString("\n" + focusedLabelStyle.Render("Calculator keys") + "\n")
	writeBindings(&b, defaultCalcKeyMap().FullHelp())
	return b.String()
}

func writeBindings(b *strings.Builder, groups [][]key.Binding) {
	for _, group := range groups {
		for _, k := range group {
			h := k.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
	}
}

// renderSlider draws value's position within the parameter's range.
func renderSlider(p dist.ParamSpec, value float64) string {
	frac := 0.0
	if p.Max > p.Min {
		frac = (value - p.Min) / (p.Max - p.Min)
	}
	frac = math.Max(0, math.Min(1, frac))
	pos := int(math.Round(frac * float64(sliderWidth-1)))
	return sliderFillStyle.Render(strings.Repeat("━", pos)) +
		sliderKnobStyle.Render("●") +
		sliderTrackStyle.Render(strings.Repeat("─", sliderWidth-1-pos))
}

// formatSliderValue shows two decimals, as the slider labels do.
func formatSliderValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatParam prints v without losing precision for text entry.
func formatParam(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
