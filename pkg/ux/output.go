// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// distviz palette
var (
	ColorCurve     = lipgloss.Color("39")  // curve and bar fill
	ColorHighlight = lipgloss.Color("214") // P(X ≤ x) region
	ColorMarker    = lipgloss.Color("196") // threshold marker
	ColorAxis      = lipgloss.Color("245") // axes, muted text
	ColorBorder    = lipgloss.Color("24")

	ColorSuccess = lipgloss.Color("42")
	ColorWarning = lipgloss.Color("220")
	ColorError   = lipgloss.Color("203")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorCurve),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorAxis).Italic(true),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorAxis),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true),
	Header:   lipgloss.NewStyle().Bold(true).Foreground(ColorCurve).Padding(0, 1),
}

// Icon provides status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Output prints personality-aware messages. Out receives results; Err
// receives warnings and errors in machine mode so pipelines stay clean.
type Output struct {
	Out io.Writer
	Err io.Writer
}

// NewOutput returns an Output, defaulting nil writers to stdout/stderr.
func NewOutput(out, errOut io.Writer) *Output {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Output{Out: out, Err: errOut}
}

// Title prints a styled title
func (o *Output) Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(o.Out, Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func (o *Output) Success(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(o.Out, "OK: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(o.Out, "%s %s\n", IconSuccess.Render(), text)
	default:
		fmt.Fprintf(o.Out, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func (o *Output) Warning(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(o.Err, "WARN: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(o.Out, "%s %s\n", IconWarning.Render(), text)
	default:
		fmt.Fprintf(o.Out, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func (o *Output) Error(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		fmt.Fprintf(o.Err, "ERROR: %s\n", text)
	case PersonalityMinimal:
		fmt.Fprintf(o.Err, "%s %s\n", IconError.Render(), text)
	default:
		fmt.Fprintf(o.Err, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func (o *Output) Info(text string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintln(o.Out, text)
		return
	}
	fmt.Fprintf(o.Out, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints muted/secondary text
func (o *Output) Muted(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	fmt.Fprintln(o.Out, Styles.Muted.Render(text))
}

// Box prints text in a rounded box
func (o *Output) Box(title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		fmt.Fprintf(o.Out, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(o.Out, Styles.Box.Render(Styles.Title.Render(title)+"\n"+content))
}

// KeyValue prints aligned "key: value" lines; machine mode uses tabs.
func (o *Output) KeyValue(pairs [][2]string) {
	if GetPersonality().Level == PersonalityMachine {
		for _, kv := range pairs {
			fmt.Fprintf(o.Out, "%s\t%s\n", kv[0], kv[1])
		}
		return
	}
	width := 0
	for _, kv := range pairs {
		width = max(width, lipgloss.Width(kv[0]))
	}
	for _, kv := range pairs {
		pad := strings.Repeat(" ", width-lipgloss.Width(kv[0]))
		fmt.Fprintf(o.Out, "%s%s %s\n", Styles.Muted.Render(kv[0]+":"), pad, kv[1])
	}
}

// Table prints rows under headers. Machine mode writes tab-separated
// values with a header line; other levels draw a bordered table.
func (o *Output) Table(headers []string, rows [][]string) {
	fmt.Fprintln(o.Out, RenderTable(headers, rows))
}

// RenderTable is Table returning the string.
func RenderTable(headers []string, rows [][]string) string {
	if GetPersonality().Level == PersonalityMachine {
		var b strings.Builder
		b.WriteString(strings.Join(headers, "\t"))
		for _, row := range rows {
			b.WriteByte('\n')
			b.WriteString(strings.Join(row, "\t"))
		}
		return b.String()
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.Header
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}
