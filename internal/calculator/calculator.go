// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package calculator answers forward and inverse probability queries.
//
// A forward query maps x to P(X <= x). An inverse query maps a
// probability p in [0, 1] to the quantile x; for discrete families the
// quantile is rounded up to the next integer. Either way the result
// carries the x position the plot should highlight.
package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AleutianAI/distviz/internal/dist"
)

// Mode selects the query direction.
type Mode int

const (
	// Forward computes P(X <= x).
	Forward Mode = iota

	// Inverse computes x such that P(X <= x) = p.
	Inverse
)

// String returns "forward" or "inverse".
func (m Mode) String() string {
	switch m {
	case Forward:
		return "forward"
	case Inverse:
		return "inverse"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Title is the selector label shown in the calculator view.
func (m Mode) Title() string {
	if m == Inverse {
		return "Find x given P(X ≤ x)"
	}
	return "Find P(X ≤ x)"
}

// Prompt is the input label for the mode.
func (m Mode) Prompt() string {
	if m == Inverse {
		return "Enter probability (0-1):"
	}
	return "Enter x:"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Inverse {
		return Forward
	}
	return Inverse
}

// ParseMode accepts "forward"/"inverse" and the short forms "f"/"i",
// "cdf"/"ppf".
func ParseMode(text string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "forward", "f", "cdf":
		return Forward, nil
	case "inverse", "i", "ppf", "quantile":
		return Inverse, nil
	default:
		return Forward, &dist.ParameterError{Name: "mode", Input: text, Reason: "must be forward or inverse"}
	}
}

// Query is one calculator request.
type Query struct {
	Mode  Mode
	Input float64
}

// ParseQuery converts the calculator's text field into a Query.
//
// Failures are *dist.ParameterError with the field named after the
// mode's input ("x" or "probability"). The [0, 1] bound on inverse
// input is checked by Resolve, not here.
func ParseQuery(mode Mode, text string) (Query, error) {
	v, err := dist.ParseParam(text)
	if err != nil {
		pe := err.(*dist.ParameterError)
		pe.Name = inputName(mode)
		return Query{}, pe
	}
	return Query{Mode: mode, Input: v}, nil
}

func inputName(mode Mode) string {
	if mode == Inverse {
		return "probability"
	}
	return "x"
}

// Result is a resolved query.
type Result struct {
	Query Query

	// Value is P(X <= x) for Forward and x for Inverse.
	Value float64

	// Highlight is the x position to mark on the plot.
	Highlight float64

	// Discrete records whether the family was discrete.
	Discrete bool
}

// Label renders the result, e.g. "P(X ≤ 1.96) = 0.9750".
func (r Result) Label() string {
	if r.Query.Mode == Inverse {
		return fmt.Sprintf("x = %s for P(X ≤ x) = %s", FormatNumber(r.Value), FormatNumber(r.Query.Input))
	}
	return fmt.Sprintf("P(X ≤ %s) = %.4f", FormatNumber(r.Query.Input), r.Value)
}

// FormatNumber prints v with up to four decimals, trimming zeros.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}

// Resolve evaluates q against spec at params.
//
// # Description
//
// Forward returns CDF(x) with the highlight at x. Inverse rejects p
// outside [0, 1] with *dist.RangeError, computes the quantile, rounds it
// up for discrete families, and highlights the resulting x. Oracle
// failures come back as *dist.OracleError and parameter problems as
// *dist.ParameterError.
//
// # Examples
//
//	Resolve(normal, []float64{0, 1}, Query{Forward, 1.96})  // Value 0.975
//	Resolve(normal, []float64{0, 1}, Query{Inverse, 0.975}) // Value 1.96
func Resolve(spec *dist.DistributionSpec, params []float64, q Query) (Result, error) {
	if err := spec.CheckFinite(params); err != nil {
		return Result{}, err
	}
	if math.IsNaN(q.Input) || math.IsInf(q.Input, 0) {
		return Result{}, &dist.ParameterError{
			Name:   inputName(q.Mode),
			Input:  strconv.FormatFloat(q.Input, 'g', -1, 64),
			Reason: "is not finite",
		}
	}

	res := Result{Query: q, Discrete: spec.Discrete}
	switch q.Mode {
	case Forward:
		v, err := spec.CDF(q.Input, params)
		if err != nil {
			return Result{}, err
		}
		res.Value = v
		res.Highlight = q.Input
	case Inverse:
		x, err := spec.Quantile(q.Input, params)
		if err != nil {
			return Result{}, err
		}
		if spec.Discrete {
			x = math.Ceil(x)
		}
		res.Value = x
		res.Highlight = x
	default:
		return Result{}, fmt.Errorf("resolve: unknown mode %v", q.Mode)
	}
	return res, nil
}
