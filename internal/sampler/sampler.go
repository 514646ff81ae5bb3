// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sampler turns a distribution and its parameters into plottable
// series.
//
// # Description
//
// Continuous families are sampled at evenly spaced points across the
// plotting window; discrete families at every integer in it. An optional
// threshold splits the points into a shaded "below" part and the rest,
// which the calculator uses to highlight a region.
//
// Sampling is a pure function of its inputs.
package sampler

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gonum.org/v1/gonum/floats"
)

// DefaultResolution is the number of points for continuous families.
const DefaultResolution = 200

// MinResolution is the smallest accepted continuous resolution.
const MinResolution = 2

var (
	sampleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "distviz_sample_duration_seconds",
		Help:    "Time spent sampling a distribution for plotting",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"distribution"})

	sampleErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distviz_sample_errors_total",
		Help: "Sampling failures by error kind",
	}, []string{"kind"})
)

// Point is one (x, y) sample. Y is a density for continuous families and
// a probability mass for discrete ones. Y may be +Inf where a density is
// singular (for example Gamma with shape < 1 at x = 0).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is the renderable output of Sample.
type Series struct {
	// ID is the distribution the series was sampled from.
	ID string

	// Domain is the plotting window the points cover.
	Domain dist.Domain

	// Points holds every sample in ascending X order.
	Points []Point

	// Discrete selects bar rendering.
	Discrete bool

	// HasThreshold reports whether Below/Above were computed.
	HasThreshold bool

	// Threshold is the highlight cut point when HasThreshold is set.
	Threshold float64

	// Below and Above partition Points by Threshold. Discrete series use
	// k < x0 for Below; continuous series use x <= x0.
	Below []Point
	Above []Point
}

// Peak returns the largest finite Y, or 0 for an empty series.
func (s *Series) Peak() float64 {
	peak := 0.0
	for _, p := range s.Points {
		if !math.IsInf(p.Y, 0) && p.Y > peak {
			peak = p.Y
		}
	}
	return peak
}

// Highlighted reports whether x lies in the Below half of s.
func (s *Series) Highlighted(x float64) bool {
	return s.HasThreshold && InBelow(x, s.Threshold, s.Discrete)
}

// Options controls sampling.
type Options struct {
	// Resolution is the continuous point count. Zero means
	// DefaultResolution. Ignored for discrete families.
	Resolution int

	// Threshold, when non-nil, requests the Below/Above partition.
	Threshold *float64
}

// WithThreshold returns a copy of o with the threshold set to x0.
func (o Options) WithThreshold(x0 float64) Options {
	o.Threshold = &x0
	return o
}

// Sample evaluates spec over its domain.
//
// # Description
//
// Parameters are checked for finiteness first (*dist.ParameterError) and
// then bound through the spec's oracle (*dist.OracleError). Nothing is
// evaluated unless both succeed. A NaN from the oracle is reported as an
// *dist.OracleError.
//
// # Inputs
//
//   - spec: Distribution to sample. Must not be nil.
//   - params: Positional parameter vector.
//   - opts: Resolution and optional threshold.
//
// # Outputs
//
//   - *Series: Points in ascending X, plus the partition if requested.
//   - error: Typed error from the dist package.
func Sample(spec *dist.DistributionSpec, params []float64, opts Options) (*Series, error) {
	if spec == nil {
		return nil, errors.New("sample: nil distribution")
	}
	start := time.Now()
	defer func() {
		sampleDuration.WithLabelValues(spec.ID).Observe(time.Since(start).Seconds())
	}()

	series, err := sample(spec, params, opts)
	if err != nil {
		sampleErrors.WithLabelValues(dist.Kind(err)).Inc()
		return nil, err
	}
	return series, nil
}

func sample(spec *dist.DistributionSpec, params []float64, opts Options) (*Series, error) {
	if err := spec.CheckFinite(params); err != nil {
		return nil, err
	}
	// An infinite threshold is legal: the inverse of p = 0 or p = 1
	// shades nothing or everything.
	if opts.Threshold != nil && math.IsNaN(*opts.Threshold) {
		return nil, &dist.ParameterError{
			Name:   "threshold",
			Input:  fmt.Sprint(*opts.Threshold),
			Reason: "is not a number",
		}
	}
	model, err := spec.Bind(params)
	if err != nil {
		return nil, err
	}

	var xs []float64
	if spec.Discrete {
		if n := spec.Domain.IntegerCount(); n > dist.MaxDiscretePoints {
			return nil, &dist.RangeError{Name: "discrete domain size", Value: n, Min: 1, Max: dist.MaxDiscretePoints}
		}
		xs = IntegerGrid(spec.Domain)
	} else {
		n := opts.Resolution
		if n == 0 {
			n = DefaultResolution
		}
		if n < MinResolution {
			return nil, &dist.RangeError{Name: "resolution", Value: float64(n), Min: MinResolution, Max: math.Inf(1)}
		}
		xs = floats.Span(make([]float64, n), spec.Domain.Min, spec.Domain.Max)
	}

	points := make([]Point, len(xs))
	for i, x := range xs {
		y := model.Prob(x)
		if math.IsNaN(y) {
			return nil, &dist.OracleError{
				Family: spec.Oracle.Family(),
				Reason: fmt.Sprintf("density is undefined at x=%g", x),
			}
		}
		points[i] = Point{X: x, Y: y}
	}

	series := &Series{
		ID:       spec.ID,
		Domain:   spec.Domain,
		Points:   points,
		Discrete: spec.Discrete,
	}
	if opts.Threshold != nil {
		series.HasThreshold = true
		series.Threshold = *opts.Threshold
		series.Below, series.Above = Partition(points, *opts.Threshold, spec.Discrete)
	}
	return series, nil
}

// IntegerGrid returns every integer from floor(d.Min) to floor(d.Max).
// Domains wider than dist.MaxDiscretePoints yield nil.
func IntegerGrid(d dist.Domain) []float64 {
	n := d.IntegerCount()
	if n == 0 || n > dist.MaxDiscretePoints {
		return nil
	}
	lo := math.Floor(d.Min)
	hi := math.Floor(d.Max)
	xs := make([]float64, 0, int(n))
	for k := lo; k <= hi; k++ {
		xs = append(xs, k)
	}
	return xs
}

// InBelow reports whether x belongs to the shaded half for threshold x0.
//
// Discrete points go Below when k < x0, so the bar at x0 itself is not
// shaded even though P(X <= x0) includes it. Continuous points go Below
// when x <= x0.
func InBelow(x, x0 float64, discrete bool) bool {
	if discrete {
		return x < x0
	}
	return x <= x0
}

// Partition splits points at x0 using InBelow. Every point lands in
// exactly one half.
func Partition(points []Point, x0 float64, discrete bool) (below, above []Point) {
	below = make([]Point, 0, len(points))
	above = make([]Point, 0, len(points))
	for _, p := range points {
		if InBelow(p.X, x0, discrete) {
			below = append(below, p)
		} else {
			above = append(above, p)
		}
	}
	return below, above
}
