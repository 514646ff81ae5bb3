// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sampler

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, id string) *dist.DistributionSpec {
	t.Helper()
	reg, err := dist.DefaultRegistry(context.Background())
	require.NoError(t, err)
	spec, err := reg.Lookup(id)
	require.NoError(t, err)
	return spec
}

func TestSample_ContinuousResolution(t *testing.T) {
	normal := lookup(t, "normal")

	series, err := Sample(normal, []float64{0, 1}, Options{})
	require.NoError(t, err)
	require.Len(t, series.Points, DefaultResolution)
	assert.False(t, series.Discrete)
	assert.Equal(t, -5.0, series.Points[0].X)
	assert.Equal(t, 5.0, series.Points[len(series.Points)-1].X)

	for i := 1; i < len(series.Points); i++ {
		assert.Greater(t, series.Points[i].X, series.Points[i-1].X)
	}
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), series.Peak(), 1e-3)
}

func TestSample_CustomResolution(t *testing.T) {
	normal := lookup(t, "normal")

	series, err := Sample(normal, []float64{0, 1}, Options{Resolution: 11})
	require.NoError(t, err)
	require.Len(t, series.Points, 11)
	assert.InDelta(t, 0, series.Points[5].X, 1e-12)

	_, err = Sample(normal, []float64{0, 1}, Options{Resolution: 1})
	assert.True(t, errors.Is(err, dist.ErrRange))
}

func TestSample_DiscreteIntegers(t *testing.T) {
	poisson := lookup(t, "poisson")

	series, err := Sample(poisson, []float64{5}, Options{Resolution: 7})
	require.NoError(t, err)
	assert.True(t, series.Discrete)
	require.Len(t, series.Points, 16, "floor(0)..floor(15) inclusive")
	for i, p := range series.Points {
		assert.Equal(t, float64(i), p.X)
	}
}

func TestIntegerGrid(t *testing.T) {
	assert.Equal(t, []float64{-1, 0, 1, 2}, IntegerGrid(dist.Domain{Min: -0.5, Max: 2.9}))
	assert.Equal(t, []float64{3}, IntegerGrid(dist.Domain{Min: 3.2, Max: 3.8}))
	assert.Nil(t, IntegerGrid(dist.Domain{Min: 0, Max: 1e18}))
	assert.Nil(t, IntegerGrid(dist.Domain{Min: 0, Max: math.Inf(1)}))
}

// TestSample_WideDiscreteDomain covers specs built without the registry,
// which would otherwise allocate one point per integer.
func TestSample_WideDiscreteDomain(t *testing.T) {
	wide := *lookup(t, "poisson")
	wide.Domain = dist.Domain{Min: 0, Max: 1e18}

	assert.NotPanics(t, func() {
		_, err := Sample(&wide, []float64{5}, Options{})
		assert.ErrorIs(t, err, dist.ErrRange)
	})
}

func TestSample_Deterministic(t *testing.T) {
	gamma := lookup(t, "gamma")

	a, err := Sample(gamma, []float64{2, 2}, Options{})
	require.NoError(t, err)
	b, err := Sample(gamma, []float64{2, 2}, Options{})
	require.NoError(t, err)
	assert.Equal(t, a.Points, b.Points)
}

func TestSample_ParameterErrors(t *testing.T) {
	normal := lookup(t, "normal")

	_, err := Sample(normal, []float64{math.NaN(), 1}, Options{})
	assert.True(t, errors.Is(err, dist.ErrParameter))

	_, err = Sample(normal, []float64{0}, Options{})
	assert.True(t, errors.Is(err, dist.ErrParameter))

	_, err = Sample(normal, []float64{0, 1}, Options{}.WithThreshold(math.NaN()))
	assert.True(t, errors.Is(err, dist.ErrParameter))
}

func TestSample_InfiniteThreshold(t *testing.T) {
	normal := lookup(t, "normal")

	series, err := Sample(normal, []float64{0, 1}, Options{}.WithThreshold(math.Inf(1)))
	require.NoError(t, err)
	assert.Len(t, series.Below, DefaultResolution)
	assert.Empty(t, series.Above)

	series, err = Sample(normal, []float64{0, 1}, Options{}.WithThreshold(math.Inf(-1)))
	require.NoError(t, err)
	assert.Empty(t, series.Below)
}

func TestSample_OracleRejection(t *testing.T) {
	normal := lookup(t, "normal")

	_, err := Sample(normal, []float64{0, 0}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dist.ErrOracle))
}

func TestSample_HeavyShapeStaysFinite(t *testing.T) {
	gamma := lookup(t, "gamma")

	series, err := Sample(gamma, []float64{0.5, 1}, Options{})
	require.NoError(t, err)
	for _, p := range series.Points {
		assert.False(t, math.IsNaN(p.Y))
	}
	assert.False(t, math.IsInf(series.Peak(), 0))
	assert.Greater(t, series.Peak(), 0.0)
}

func TestSample_ContinuousPartition(t *testing.T) {
	normal := lookup(t, "normal")

	series, err := Sample(normal, []float64{0, 1}, Options{Resolution: 11}.WithThreshold(0))
	require.NoError(t, err)
	require.True(t, series.HasThreshold)
	assert.Equal(t, 0.0, series.Threshold)

	assert.Len(t, series.Below, 6, "x <= 0 includes the midpoint")
	assert.Len(t, series.Above, 5)
	for _, p := range series.Below {
		assert.LessOrEqual(t, p.X, 0.0)
	}
	for _, p := range series.Above {
		assert.Greater(t, p.X, 0.0)
	}
}

// TestSample_DiscreteBoundary checks the bar at x0 is unshaded.
func TestSample_DiscreteBoundary(t *testing.T) {
	poisson := lookup(t, "poisson")

	series, err := Sample(poisson, []float64{5}, Options{}.WithThreshold(3))
	require.NoError(t, err)

	require.Len(t, series.Below, 3)
	assert.Equal(t, []float64{0, 1, 2}, xs(series.Below))
	assert.Equal(t, 3.0, series.Above[0].X)
}

func TestSeries_Highlighted(t *testing.T) {
	discrete := &Series{Discrete: true, HasThreshold: true, Threshold: 3}
	assert.True(t, discrete.Highlighted(2))
	assert.False(t, discrete.Highlighted(3))

	continuous := &Series{HasThreshold: true, Threshold: 0.5}
	assert.True(t, continuous.Highlighted(0.5))
	assert.False(t, continuous.Highlighted(0.6))

	none := &Series{Threshold: 10}
	assert.False(t, none.Highlighted(0))
}

func TestPartition_Disjoint(t *testing.T) {
	points := []Point{{X: 0}, {X: 0.5}, {X: 1}, {X: 1.5}, {X: 2}}

	for _, discrete := range []bool{false, true} {
		for _, x0 := range []float64{-1, 0, 1, 1.2, 2, 3} {
			below, above := Partition(points, x0, discrete)
			assert.Equal(t, len(points), len(below)+len(above))

			seen := map[float64]bool{}
			for _, p := range append(below, above...) {
				assert.False(t, seen[p.X], "point %g in both halves", p.X)
				seen[p.X] = true
			}
		}
	}
}

func TestSample_NoThreshold(t *testing.T) {
	uniform := lookup(t, "uniform")

	series, err := Sample(uniform, []float64{0, 10}, Options{})
	require.NoError(t, err)
	assert.False(t, series.HasThreshold)
	assert.Nil(t, series.Below)
	assert.Nil(t, series.Above)
}

func xs(points []Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.X
	}
	return out
}
