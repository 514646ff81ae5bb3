// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package calculator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registry(t *testing.T) *dist.Registry {
	t.Helper()
	reg, err := dist.DefaultRegistry(context.Background())
	require.NoError(t, err)
	return reg
}

func lookup(t *testing.T, id string) *dist.DistributionSpec {
	t.Helper()
	spec, err := registry(t).Lookup(id)
	require.NoError(t, err)
	return spec
}

func TestResolve_Forward(t *testing.T) {
	tests := []struct {
		id     string
		params []float64
		x      float64
		want   float64
	}{
		{"normal", []float64{0, 1}, 1.96, 0.9750021048517795},
		{"normal", []float64{0, 1}, 0, 0.5},
		{"uniform", []float64{0, 10}, 5, 0.5},
		{"exponential", []float64{1}, 1, 1 - math.Exp(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			res, err := Resolve(lookup(t, tt.id), tt.params, Query{Mode: Forward, Input: tt.x})
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.Value, 1e-9)
			assert.Equal(t, tt.x, res.Highlight)
		})
	}
}

func TestResolve_Inverse(t *testing.T) {
	normal := lookup(t, "normal")

	res, err := Resolve(normal, []float64{0, 1}, Query{Mode: Inverse, Input: 0.975})
	require.NoError(t, err)
	assert.InDelta(t, 1.959963984540054, res.Value, 1e-9)
	assert.Equal(t, res.Value, res.Highlight)
}

func TestResolve_InverseOutOfRange(t *testing.T) {
	normal := lookup(t, "normal")

	for _, p := range []float64{1.5, -0.01} {
		_, err := Resolve(normal, []float64{0, 1}, Query{Mode: Inverse, Input: p})
		require.Error(t, err)
		assert.True(t, errors.Is(err, dist.ErrRange))
	}

	_, err := Resolve(normal, []float64{0, 1}, Query{Mode: Inverse, Input: 1.5})
	assert.Equal(t, "Error: probability must be between 0 and 1, got 1.5", dist.ErrorMessage(err))
}

func TestResolve_InverseEndpoints(t *testing.T) {
	normal := lookup(t, "normal")

	res, err := Resolve(normal, []float64{0, 1}, Query{Mode: Inverse, Input: 1})
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.Value, 1))

	res, err = Resolve(normal, []float64{0, 1}, Query{Mode: Inverse, Input: 0})
	require.NoError(t, err)
	assert.True(t, math.IsInf(res.Value, -1))
}

func TestResolve_DiscreteInverseIsInteger(t *testing.T) {
	poisson := lookup(t, "poisson")

	res, err := Resolve(poisson, []float64{5}, Query{Mode: Inverse, Input: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Value)
	assert.True(t, res.Discrete)

	for _, p := range []float64{0.05, 0.33, 0.8, 0.99} {
		res, err := Resolve(poisson, []float64{5}, Query{Mode: Inverse, Input: p})
		require.NoError(t, err)
		assert.Equal(t, math.Ceil(res.Value), res.Value)
	}
}

// TestResolve_DiscreteBoundary checks the forward value at an integer x
// includes the mass at x.
func TestResolve_DiscreteBoundary(t *testing.T) {
	poisson := lookup(t, "poisson")

	at3, err := Resolve(poisson, []float64{5}, Query{Mode: Forward, Input: 3})
	require.NoError(t, err)
	below3, err := Resolve(poisson, []float64{5}, Query{Mode: Forward, Input: 2.999})
	require.NoError(t, err)

	mass, err := poisson.Density(3, []float64{5})
	require.NoError(t, err)
	assert.InDelta(t, below3.Value+mass, at3.Value, 1e-12)
}

// TestResolve_RoundTrip checks inverse(forward(x)) == x for every
// continuous family at its default parameters.
func TestResolve_RoundTrip(t *testing.T) {
	for _, spec := range registry(t).List() {
		if spec.Discrete {
			continue
		}
		t.Run(spec.ID, func(t *testing.T) {
			params := spec.DefaultValues()
			for _, frac := range []float64{0.25, 0.5, 0.75} {
				x := spec.Domain.Min + frac*spec.Domain.Width()

				fwd, err := Resolve(spec, params, Query{Mode: Forward, Input: x})
				require.NoError(t, err)
				if fwd.Value < 1e-6 || fwd.Value > 1-1e-6 {
					continue
				}

				inv, err := Resolve(spec, params, Query{Mode: Inverse, Input: fwd.Value})
				require.NoError(t, err)
				assert.InDelta(t, x, inv.Value, 1e-4*math.Max(1, math.Abs(x)))
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	normal := lookup(t, "normal")

	_, err := Resolve(normal, []float64{0, -2}, Query{Mode: Forward, Input: 0})
	assert.True(t, errors.Is(err, dist.ErrOracle))

	_, err = Resolve(normal, []float64{math.NaN(), 1}, Query{Mode: Forward, Input: 0})
	assert.True(t, errors.Is(err, dist.ErrParameter))

	_, err = Resolve(normal, []float64{0, 1}, Query{Mode: Forward, Input: math.Inf(1)})
	assert.True(t, errors.Is(err, dist.ErrParameter))
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery(Forward, " 1.5 ")
	require.NoError(t, err)
	assert.Equal(t, Query{Mode: Forward, Input: 1.5}, q)

	_, err = ParseQuery(Forward, "abc")
	var pe *dist.ParameterError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "x", pe.Name)

	_, err = ParseQuery(Inverse, "")
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "probability", pe.Name)

	// Range is checked by Resolve, not by parsing.
	q, err = ParseQuery(Inverse, "1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, q.Input)
}

func TestParseMode(t *testing.T) {
	for _, text := range []string{"forward", "F", "cdf"} {
		m, err := ParseMode(text)
		require.NoError(t, err)
		assert.Equal(t, Forward, m)
	}
	for _, text := range []string{"inverse", "i", "PPF", "quantile"} {
		m, err := ParseMode(text)
		require.NoError(t, err)
		assert.Equal(t, Inverse, m)
	}
	_, err := ParseMode("sideways")
	assert.True(t, errors.Is(err, dist.ErrParameter))
}

func TestMode_Labels(t *testing.T) {
	assert.Equal(t, "Enter x:", Forward.Prompt())
	assert.Equal(t, "Enter probability (0-1):", Inverse.Prompt())
	assert.Equal(t, Inverse, Forward.Toggle())
	assert.Equal(t, Forward, Inverse.Toggle())
	assert.Equal(t, "forward", Forward.String())
}

func TestResult_Label(t *testing.T) {
	fwd := Result{Query: Query{Mode: Forward, Input: 1.96}, Value: 0.9750021}
	assert.Equal(t, "P(X ≤ 1.96) = 0.9750", fwd.Label())

	inv := Result{Query: Query{Mode: Inverse, Input: 0.5}, Value: 5}
	assert.Equal(t, "x = 5 for P(X ≤ x) = 0.5", inv.Label())

	inf := Result{Query: Query{Mode: Inverse, Input: 1}, Value: math.Inf(1)}
	assert.Equal(t, "x = ∞ for P(X ≤ x) = 1", inf.Label())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.96", FormatNumber(1.96))
	assert.Equal(t, "2", FormatNumber(2))
	assert.Equal(t, "0.3333", FormatNumber(1.0/3))
	assert.Equal(t, "0", FormatNumber(-0.00001))
	assert.Equal(t, "-∞", FormatNumber(math.Inf(-1)))
}
