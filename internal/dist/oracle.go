// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dist

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// =============================================================================
// Oracle Interface
// =============================================================================

// Model is a distribution with its parameters bound.
//
// Prob is the density for continuous families and the mass for discrete
// ones. CDF is P(X <= x). Quantile is the smallest x with CDF(x) >= p and
// must only be called with p in [0, 1].
type Model interface {
	Prob(x float64) float64
	CDF(x float64) float64
	Quantile(p float64) float64
}

// Oracle evaluates one distribution family.
//
// # Description
//
// Bind validates a positional parameter vector and returns a Model. The
// vector must have exactly Arity() entries; anything the family rejects
// (wrong length, non-positive scale, probability outside [0, 1]) is
// reported as an *OracleError.
type Oracle interface {
	// Family returns the family key, e.g. "normal".
	Family() string

	// Arity returns the number of positional parameters.
	Arity() int

	// Discrete reports whether the family has integer support.
	Discrete() bool

	// Bind validates params and returns the evaluable distribution.
	Bind(params []float64) (Model, error)
}

// =============================================================================
// gonum-backed Families
// =============================================================================

// family implements Oracle on top of gonum's stat/distuv.
type family struct {
	name     string
	arity    int
	discrete bool
	build    func(p []float64) (Model, string)
}

func (f *family) Family() string { return f.name }
func (f *family) Arity() int     { return f.arity }
func (f *family) Discrete() bool { return f.discrete }

// Bind implements Oracle.
func (f *family) Bind(params []float64) (Model, error) {
	if len(params) != f.arity {
		return nil, &OracleError{
			Family: f.name,
			Reason: fmt.Sprintf("expects %d parameters, got %d", f.arity, len(params)),
		}
	}
	for i, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &OracleError{Family: f.name, Reason: fmt.Sprintf("parameter %d is not finite", i+1)}
		}
	}
	m, reason := f.build(params)
	if reason != "" {
		return nil, &OracleError{Family: f.name, Reason: reason}
	}
	if !f.discrete {
		m = edgeLimit{m}
	}
	return m, nil
}

var families = map[string]*family{
	"normal": {name: "normal", arity: 2, build: func(p []float64) (Model, string) {
		if p[1] <= 0 {
			return nil, "standard deviation must be positive"
		}
		return distuv.Normal{Mu: p[0], Sigma: p[1]}, ""
	}},
	"uniform": {name: "uniform", arity: 2, build: func(p []float64) (Model, string) {
		if p[0] >= p[1] {
			return nil, "minimum must be less than maximum"
		}
		return distuv.Uniform{Min: p[0], Max: p[1]}, ""
	}},
	"exponential": {name: "exponential", arity: 1, build: func(p []float64) (Model, string) {
		if p[0] <= 0 {
			return nil, "rate must be positive"
		}
		return distuv.Exponential{Rate: p[0]}, ""
	}},
	"gamma": {name: "gamma", arity: 2, build: func(p []float64) (Model, string) {
		if p[0] <= 0 || p[1] <= 0 {
			return nil, "shape and scale must be positive"
		}
		// distuv.Gamma is parameterised by rate.
		return distuv.Gamma{Alpha: p[0], Beta: 1 / p[1]}, ""
	}},
	"beta": {name: "beta", arity: 2, build: func(p []float64) (Model, string) {
		if p[0] <= 0 || p[1] <= 0 {
			return nil, "alpha and beta must be positive"
		}
		return distuv.Beta{Alpha: p[0], Beta: p[1]}, ""
	}},
	"student_t": {name: "student_t", arity: 1, build: func(p []float64) (Model, string) {
		if p[0] <= 0 {
			return nil, "degrees of freedom must be positive"
		}
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p[0]}, ""
	}},
	"f": {name: "f", arity: 2, build: func(p []float64) (Model, string) {
		if p[0] <= 0 || p[1] <= 0 {
			return nil, "degrees of freedom must be positive"
		}
		return fModel{F: distuv.F{D1: p[0], D2: p[1]}}, ""
	}},
	"chi2": {name: "chi2", arity: 1, build: func(p []float64) (Model, string) {
		if p[0] <= 0 {
			return nil, "degrees of freedom must be positive"
		}
		return distuv.ChiSquared{K: p[0]}, ""
	}},
	"lognormal": {name: "lognormal", arity: 2, build: func(p []float64) (Model, string) {
		if p[1] <= 0 {
			return nil, "sigma must be positive"
		}
		return distuv.LogNormal{Mu: p[0], Sigma: p[1]}, ""
	}},
	"poisson": {name: "poisson", arity: 1, discrete: true, build: func(p []float64) (Model, string) {
		if p[0] <= 0 {
			return nil, "rate must be positive"
		}
		d := distuv.Poisson{Lambda: p[0]}
		return discreteModel{prob: d.Prob, cdf: d.CDF, max: math.Inf(1)}, ""
	}},
	"binomial": {name: "binomial", arity: 2, discrete: true, build: func(p []float64) (Model, string) {
		if p[0] < 0 || p[0] != math.Trunc(p[0]) {
			return nil, "number of trials must be a non-negative integer"
		}
		if p[1] <= 0 || p[1] >= 1 {
			return nil, "success probability must be strictly between 0 and 1"
		}
		d := distuv.Binomial{N: p[0], P: p[1]}
		return discreteModel{prob: d.Prob, cdf: d.CDF, max: p[0]}, ""
	}},
}

// LookupOracle returns the oracle for a family key.
func LookupOracle(name string) (Oracle, bool) {
	f, ok := families[name]
	if !ok {
		return nil, false
	}
	return f, true
}

// Families returns the supported family keys in sorted order.
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// Quantile Adapters
// =============================================================================

// fModel adds a quantile to distuv.F using the Beta relation:
// if B ~ Beta(d1/2, d2/2) then d2*B / (d1*(1-B)) ~ F(d1, d2).
type fModel struct {
	distuv.F
}

func (m fModel) Quantile(p float64) float64 {
	b := distuv.Beta{Alpha: m.D1 / 2, Beta: m.D2 / 2}.Quantile(p)
	if b >= 1 {
		return math.Inf(1)
	}
	return m.D2 * b / (m.D1 * (1 - b))
}

// edgeLimit replaces a NaN density with its one-sided limit. gonum
// evaluates densities in log space, so points such as x = 0 for
// LogNormal or ChiSquared(2) come out as 0*log(0) = NaN even though the
// density is well defined there.
type edgeLimit struct {
	Model
}

func (m edgeLimit) Prob(x float64) float64 {
	v := m.Model.Prob(x)
	if !math.IsNaN(v) {
		return v
	}
	h := 1e-9 * math.Max(1, math.Abs(x))
	if right := m.Model.Prob(x + h); !math.IsNaN(right) {
		return right
	}
	return m.Model.Prob(x - h)
}

// discreteModel wraps an integer-supported family whose gonum type has no
// quantile. Support starts at 0 and ends at max (possibly +Inf).
type discreteModel struct {
	prob func(float64) float64
	cdf  func(float64) float64
	max  float64
}

func (m discreteModel) Prob(x float64) float64 { return m.prob(x) }
func (m discreteModel) CDF(x float64) float64  { return m.cdf(x) }

// Quantile returns the smallest support point k with CDF(k) >= p.
//
// The upper bracket is found by doubling and then narrowed by bisection,
// so the number of CDF evaluations is logarithmic in the answer.
func (m discreteModel) Quantile(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return m.max
	}
	lo, hi := 0.0, 1.0
	for m.cdf(hi) < p {
		lo = hi
		hi *= 2
		if hi >= m.max {
			hi = m.max
			break
		}
		if hi > maxDiscreteSearch {
			return math.Inf(1)
		}
	}
	if m.cdf(lo) >= p {
		return lo
	}
	// Invariant: cdf(lo) < p <= cdf(hi).
	for hi-lo > 1 {
		mid := math.Floor((lo + hi) / 2)
		if m.cdf(mid) >= p {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi
}

// maxDiscreteSearch bounds the bracket search for unbounded support.
const maxDiscreteSearch = 1 << 40
