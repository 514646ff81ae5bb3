// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dist defines distribution metadata, the numerical oracle
// abstraction, and the read-only registry of supported distributions.
//
// # Description
//
// A DistributionSpec pairs static display metadata (names, formulas,
// plotting window, slider ranges) with an Oracle that evaluates the
// density, CDF and quantile for a positional parameter vector. Specs are
// immutable once a Registry has been built from them.
//
// # Thread Safety
//
// Specs, oracles and registries are read-only after construction and
// safe for concurrent use.
package dist

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Domain is the closed plotting window [Min, Max].
type Domain struct {
	Min float64
	Max float64
}

// Width returns Max - Min.
func (d Domain) Width() float64 { return d.Max - d.Min }

// IntegerCount returns the number of integers from floor(Min) to
// floor(Max), or 0 when there are none. It is a float so that huge or
// infinite windows do not overflow.
func (d Domain) IntegerCount() float64 {
	n := math.Floor(d.Max) - math.Floor(d.Min) + 1
	if !(n > 0) {
		return 0
	}
	return n
}

// ParamSpec describes one positional parameter.
type ParamSpec struct {
	// Name is the display label, e.g. "Mean (center)".
	Name string

	// Symbol is the short key used on the command line, e.g. "mu".
	Symbol string

	// Default is the initial value when the distribution is selected.
	Default float64

	// Min and Max bound the slider.
	Min, Max float64

	// Steps is the number of slider increments between Min and Max.
	Steps int
}

// Step returns the slider increment.
func (p ParamSpec) Step() float64 {
	return (p.Max - p.Min) / float64(p.stepCount())
}

func (p ParamSpec) stepCount() int {
	if p.Steps <= 0 {
		return DefaultSliderSteps
	}
	return p.Steps
}

// StepFrom moves v by n slider increments and returns the resulting
// grid value, clamped to the slider range.
//
// The value is computed from an integer grid index rather than by
// repeated addition, then rounded to 12 significant digits, so one step
// from 0 by 0.1 yields exactly 0.1.
func (p ParamSpec) StepFrom(v float64, n int) float64 {
	steps := p.stepCount()
	idx := int(math.Round((v-p.Min)/p.Step())) + n
	idx = min(max(idx, 0), steps)
	snapped := p.Min + float64(idx)*(p.Max-p.Min)/float64(steps)
	clean, err := strconv.ParseFloat(strconv.FormatFloat(snapped, 'g', 12, 64), 64)
	if err != nil {
		return p.Clamp(snapped)
	}
	return p.Clamp(clean)
}

// Clamp limits v to the slider range.
func (p ParamSpec) Clamp(v float64) float64 {
	return math.Max(p.Min, math.Min(p.Max, v))
}

// DefaultSliderSteps is the slider resolution when a table omits it.
const DefaultSliderSteps = 100

// DefaultSliderMax returns the upper slider bound used when a table
// omits one: max(10, 2*default).
func DefaultSliderMax(def float64) float64 {
	return math.Max(10, def*2)
}

// DistributionSpec is the immutable description of one distribution.
type DistributionSpec struct {
	// ID is the unique registry key.
	ID string

	// DisplayName is shown in the selector.
	DisplayName string

	// Params lists the positional parameters in oracle order.
	Params []ParamSpec

	// Domain is the plotting window.
	Domain Domain

	// Discrete selects bar (mass) vs line (density) rendering.
	Discrete bool

	// PDFFormula and CDFFormula are LaTeX display strings.
	PDFFormula string
	CDFFormula string

	// Oracle evaluates the family.
	Oracle Oracle
}

// Arity returns the number of parameters.
func (s *DistributionSpec) Arity() int { return len(s.Params) }

// ParameterNames returns the display labels in order.
func (s *DistributionSpec) ParameterNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// DefaultValues returns a fresh copy of the default parameter vector.
func (s *DistributionSpec) DefaultValues() []float64 {
	values := make([]float64, len(s.Params))
	for i, p := range s.Params {
		values[i] = p.Default
	}
	return values
}

// ParamIndex returns the position of the parameter with the given symbol.
func (s *DistributionSpec) ParamIndex(symbol string) (int, bool) {
	for i, p := range s.Params {
		if p.Symbol == symbol {
			return i, true
		}
	}
	return -1, false
}

// PlainPDF returns the PDF formula rendered for a terminal.
func (s *DistributionSpec) PlainPDF() string { return PlainFormula(s.PDFFormula) }

// PlainCDF returns the CDF formula rendered for a terminal.
func (s *DistributionSpec) PlainCDF() string { return PlainFormula(s.CDFFormula) }

// Bind validates params against the oracle and returns the model.
func (s *DistributionSpec) Bind(params []float64) (Model, error) {
	if s.Oracle == nil {
		return nil, &OracleError{Family: s.ID, Reason: "no oracle configured"}
	}
	return s.Oracle.Bind(params)
}

// Density evaluates the PDF (continuous) or PMF (discrete) at x.
func (s *DistributionSpec) Density(x float64, params []float64) (float64, error) {
	return s.eval(params, func(m Model) float64 { return m.Prob(x) })
}

// CDF evaluates P(X <= x).
func (s *DistributionSpec) CDF(x float64, params []float64) (float64, error) {
	return s.eval(params, func(m Model) float64 { return m.CDF(x) })
}

// Quantile evaluates the inverse CDF at probability p.
func (s *DistributionSpec) Quantile(p float64, params []float64) (float64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return 0, &RangeError{Name: "probability", Value: p, Min: 0, Max: 1}
	}
	return s.eval(params, func(m Model) float64 { return m.Quantile(p) })
}

// eval binds params and calls fn, converting backend panics and NaN
// results into *OracleError.
func (s *DistributionSpec) eval(params []float64, fn func(Model) float64) (v float64, err error) {
	m, err := s.Bind(params)
	if err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = 0, &OracleError{Family: s.Oracle.Family(), Reason: fmt.Sprint(r)}
		}
	}()
	v = fn(m)
	if math.IsNaN(v) {
		return 0, &OracleError{Family: s.Oracle.Family(), Reason: "evaluation is undefined for these parameters"}
	}
	return v, nil
}

// =============================================================================
// Parameter Parsing
// =============================================================================

// ParseParam parses one text field as a finite real number.
func ParseParam(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, &ParameterError{Input: text, Reason: "is empty"}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &ParameterError{Input: text, Reason: "is not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParameterError{Input: text, Reason: "is not finite"}
	}
	return v, nil
}

// ParseParams parses text fields for every parameter of s.
//
// # Description
//
// The number of fields must equal the spec's arity. The first failure is
// returned as a *ParameterError naming the offending parameter.
func (s *DistributionSpec) ParseParams(texts []string) ([]float64, error) {
	if len(texts) != len(s.Params) {
		return nil, &ParameterError{
			Input:  strings.Join(texts, ","),
			Reason: fmt.Sprintf("needs %d values for %s", len(s.Params), s.ID),
		}
	}
	values := make([]float64, len(texts))
	for i, text := range texts {
		v, err := ParseParam(text)
		if err != nil {
			pe := err.(*ParameterError)
			pe.Name = s.Params[i].Name
			return nil, pe
		}
		values[i] = v
	}
	return values, nil
}

// CheckFinite returns a *ParameterError for the first non-finite value.
func (s *DistributionSpec) CheckFinite(params []float64) error {
	if len(params) != len(s.Params) {
		return &ParameterError{
			Input:  fmt.Sprint(params),
			Reason: fmt.Sprintf("needs %d values for %s", len(s.Params), s.ID),
		}
	}
	for i, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ParameterError{
				Name:   s.Params[i].Name,
				Input:  strconv.FormatFloat(v, 'g', -1, 64),
				Reason: "is not finite",
			}
		}
	}
	return nil
}

// =============================================================================
// Formula Rendering
// =============================================================================

var latexReplacer = strings.NewReplacer(
	"$$", "",
	`\left`, "",
	`\right`, "",
	`\quad`, "  ",
	`\,`, " ",
	`\text{for}`, "for",
	`\text{erf}`, "erf",
	`\dots`, "...",
	`\leq`, "≤",
	`\geq`, "≥",
	`\infty`, "∞",
	`\int`, "∫",
	`\sqrt`, "√",
	`\pi`, "π",
	`\mu`, "μ",
	`\sigma`, "σ",
	`\lambda`, "λ",
	`\theta`, "θ",
	`\alpha`, "α",
	`\beta`, "β",
	`\nu`, "ν",
	`\Gamma`, "Γ",
	`\gamma`, "γ",
	`\ln`, "ln",
)

// PlainFormula converts the small LaTeX subset used in the registry into
// readable terminal text. \frac{a}{b} becomes (a)/(b), \binom{n}{k}
// becomes C(n, k); braces used for grouping are dropped.
func PlainFormula(latex string) string {
	s := latexReplacer.Replace(latex)
	s = expandPair(s, `\frac`, "(%s)/(%s)")
	s = expandPair(s, `\binom`, "C(%s, %s)")
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// expandPair rewrites every tag{a}{b} using format, handling nested
// braces.
func expandPair(s, tag, format string) string {
	for {
		i := strings.Index(s, tag)
		if i < 0 {
			return s
		}
		first, rest, ok := braceGroup(s[i+len(tag):])
		if !ok {
			return s
		}
		second, tail, ok := braceGroup(rest)
		if !ok {
			return s
		}
		s = s[:i] + fmt.Sprintf(format, first, second) + tail
	}
}

// braceGroup splits "{...}rest" into the group body and rest.
func braceGroup(s string) (body, rest string, ok bool) {
	s = strings.TrimLeft(s, " ")
	if !strings.HasPrefix(s, "{") {
		return "", s, false
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}
	return "", s, false
}
