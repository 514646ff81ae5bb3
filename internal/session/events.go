// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package session

import "github.com/AleutianAI/distviz/internal/calculator"

// Event is a user intent delivered to a Controller.
//
// The set is closed: only the types in this file implement it.
type Event interface {
	// Name is a stable label used for logs, spans and metrics.
	Name() string

	event()
}

// DistributionSelected switches to another registry entry and resets its
// parameters to their defaults, or to Params when set. Params is applied
// as one vector, so it only has to be valid as a whole.
type DistributionSelected struct {
	ID     string
	Params []float64
}

// ParameterChanged sets one parameter (usually from a slider).
type ParameterChanged struct {
	Index int
	Value float64
}

// ParameterEdited sets one parameter from raw text.
type ParameterEdited struct {
	Index int
	Text  string
}

// QueryRequested resolves a calculator query and highlights the answer.
type QueryRequested struct {
	Query calculator.Query
}

// QueryCleared removes the highlight.
type QueryCleared struct{}

// CalculationRequested replaces every parameter from text fields and
// resolves a query against the result in one transition, so a
// combination that is only valid as a whole (a < b for uniform) is
// accepted. Nothing changes unless all fields and the query succeed.
type CalculationRequested struct {
	Texts []string
	Mode  calculator.Mode
	Input string
}

func (DistributionSelected) Name() string { return "distribution_selected" }
func (ParameterChanged) Name() string     { return "parameter_changed" }
func (ParameterEdited) Name() string      { return "parameter_edited" }
func (QueryRequested) Name() string       { return "query_requested" }
func (QueryCleared) Name() string         { return "query_cleared" }
func (CalculationRequested) Name() string { return "calculation_requested" }

func (DistributionSelected) event() {}
func (ParameterChanged) event()     {}
func (ParameterEdited) event()      {}
func (QueryRequested) event()       {}
func (QueryCleared) event()         {}
func (CalculationRequested) event() {}
