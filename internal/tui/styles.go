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
	"github.com/AleutianAI/distviz/pkg/ux"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = ux.Styles.Title
	mutedStyle   = ux.Styles.Muted
	errorStyle   = ux.Styles.Error
	resultStyle  = ux.Styles.Highlight
	formulaStyle = ux.Styles.Subtitle

	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorCurve)
	cursorStyle       = lipgloss.NewStyle().Foreground(ux.ColorHighlight)

	sliderFillStyle  = lipgloss.NewStyle().Foreground(ux.ColorCurve)
	sliderKnobStyle  = lipgloss.NewStyle().Foreground(ux.ColorHighlight).Bold(true)
	sliderTrackStyle = lipgloss.NewStyle().Foreground(ux.ColorAxis)
)
