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
	"context"
	"strings"

	"github.com/AleutianAI/distviz/internal/calculator"
	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/AleutianAI/distviz/internal/plot"
	"github.com/AleutianAI/distviz/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// calcModel is the calculator sub-view. It owns a controller of its
// own, seeded from the visualizer, so calculations never disturb the
// main plot.
type calcModel struct {
	ctx  context.Context
	ctrl *session.Controller
	keys calcKeyMap
	help help.Model

	mode   calculator.Mode
	params []textinput.Model
	value  textinput.Model

	// focus indexes params, then the mode row, then the value field.
	focus  int
	result string
}

func newCalcModel(ctx context.Context, opts Options, id string, params []float64) (calcModel, error) {
	ctrl, err := session.New(ctx, opts.Registry, session.Options{
		Logger:     opts.Logger,
		Resolution: opts.Resolution,
		DefaultID:  id,
		Params:     params,
	})
	if err != nil {
		return calcModel{}, err
	}

	inputs := make([]textinput.Model, len(params))
	for i, v := range params {
		inputs[i] = newField(formatParam(v))
	}

	c := calcModel{
		ctx:    ctx,
		ctrl:   ctrl,
		keys:   defaultCalcKeyMap(),
		help:   help.New(),
		mode:   calculator.Forward,
		params: inputs,
		value:  newField(""),
	}
	c.setFocus(c.valueRow())
	return c, nil
}

func newField(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 32
	ti.Width = 16
	ti.SetValue(value)
	return ti
}

func (c calcModel) Init() tea.Cmd {
	return textinput.Blink
}

func (c calcModel) modeRow() int  { return len(c.params) }
func (c calcModel) valueRow() int { return len(c.params) + 1 }
func (c calcModel) rows() int     { return len(c.params) + 2 }

func (c *calcModel) setFocus(row int) tea.Cmd {
	for i := range c.params {
		c.params[i].Blur()
	}
	c.value.Blur()
	c.focus = row
	switch {
	case row < len(c.params):
		return c.params[row].Focus()
	case row == c.valueRow():
		return c.value.Focus()
	}
	return nil
}

func (c calcModel) Update(msg tea.Msg) (calcModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, c.keys.Next):
			cmd := c.setFocus((c.focus + 1) % c.rows())
			return c, cmd
		case key.Matches(k, c.keys.Prev):
			cmd := c.setFocus((c.focus - 1 + c.rows()) % c.rows())
			return c, cmd
		case key.Matches(k, c.keys.Toggle):
			c.mode = c.mode.Toggle()
			return c, nil
		case key.Matches(k, c.keys.Calculate):
			c.calculate()
			return c, nil
		case key.Matches(k, c.keys.Clear):
			c.clear()
			return c, nil
		}
		if c.focus == c.modeRow() {
			switch k.String() {
			case "left", "right", "h", "l", " ":
				c.mode = c.mode.Toggle()
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case c.focus < len(c.params):
		c.params[c.focus], cmd = c.params[c.focus].Update(msg)
	case c.focus == c.valueRow():
		c.value, cmd = c.value.Update(msg)
	}
	return c, cmd
}

// calculate applies the parameter fields and the query together.
func (c *calcModel) calculate() {
	texts := make([]string, len(c.params))
	for i, in := range c.params {
		texts[i] = in.Value()
	}
	if err := c.ctrl.Calculate(c.ctx, texts, c.mode, c.value.Value()); err != nil {
		c.result = dist.ErrorMessage(err)
		return
	}
	c.result = c.ctrl.Frame().Result.Label()
}

func (c *calcModel) clear() {
	if err := c.ctrl.ClearQuery(c.ctx); err != nil {
		c.result = dist.ErrorMessage(err)
		return
	}
	c.result = ""
	c.value.SetValue("")
}

// chrome is the number of lines around the chart.
func (c calcModel) chrome() int {
	// title, params, mode, value, result, pdf, cdf, help
	lines := 1 + len(c.params) + 1 + 1 + 1 + 2 + 1
	if c.help.ShowAll {
		lines += len(c.keys.FullHelp()[0]) - 1
	}
	return lines
}

func (c calcModel) View(chart plot.Terminal) string {
	spec := c.ctrl.Spec()

	labels := append(spec.ParameterNames(), "Calculate", c.mode.Prompt())
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l)+1)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(spec.DisplayName + " Calculator"))
	b.WriteString("\n")
	for i, p := range spec.Params {
		b.WriteString(c.row(i, labelWidth, p.Name+":", c.params[i].View()))
		b.WriteString("\n")
	}
	b.WriteString(c.row(c.modeRow(), labelWidth, "Calculate", "‹ "+c.mode.Title()+" ›"))
	b.WriteString("\n")
	b.WriteString(c.row(c.valueRow(), labelWidth, c.mode.Prompt(), c.value.View()))
	b.WriteString("\n")
	b.WriteString(c.renderResult())
	b.WriteString("\n")
	b.WriteString(formulaStyle.Render("PDF: " + spec.PlainPDF()))
	b.WriteString("\n")
	b.WriteString(formulaStyle.Render("CDF: " + spec.PlainCDF()))
	b.WriteString("\n")
	b.WriteString(chart.Render(c.ctrl.Frame().Series))
	b.WriteString("\n")
	b.WriteString(c.help.View(c.keys))
	return b.String()
}

func (c calcModel) row(index, labelWidth int, label, content string) string {
	cursor := "  "
	style := labelStyle
	if c.focus == index {
		cursor = cursorStyle.Render("▸ ")
		style = focusedLabelStyle
	}
	pad := strings.Repeat(" ", max(labelWidth-lipgloss.Width(label), 0))
	return cursor + style.Render(label) + pad + " " + content
}

func (c calcModel) renderResult() string {
	switch {
	case c.result == "":
		return ""
	case strings.HasPrefix(c.result, "Error"):
		return errorStyle.Render(c.result)
	default:
		return resultStyle.Render(c.result)
	}
}
