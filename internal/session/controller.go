// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session holds the per-window state machine that sits between
// the views and the numeric core.
//
// # Description
//
// A Controller owns the selected distribution, its parameter vector and
// the last successfully rendered Frame. Views turn user input into
// Events and call Dispatch; the controller validates, resamples and
// either commits a new Frame or returns a typed error while leaving the
// previous Frame in place.
//
// # Thread Safety
//
// Controller is NOT safe for concurrent use. Each view owns its own.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/distviz/internal/calculator"
	"github.com/AleutianAI/distviz/internal/dist"
	"github.com/AleutianAI/distviz/internal/sampler"
	"github.com/AleutianAI/distviz/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
)

// ErrNilContext is returned when a nil context is passed.
var ErrNilContext = errors.New("session: ctx must not be nil")

// State is the controller's lifecycle state.
type State int

const (
	// Idle waits for the next event.
	Idle State = iota

	// Recomputing is held while an event is being applied.
	Recomputing
)

// String returns "idle" or "recomputing".
func (s State) String() string {
	if s == Recomputing {
		return "recomputing"
	}
	return "idle"
}

// Frame is everything a view needs to draw one screen.
type Frame struct {
	// Spec is the selected distribution.
	Spec *dist.DistributionSpec

	// Params is the parameter vector the series was sampled with.
	Params []float64

	// Series is the sampled plot data.
	Series *sampler.Series

	// Result is the active calculator answer, or nil.
	Result *calculator.Result

	// Revision increases by one with every committed frame.
	Revision uint64
}

// Options configures a Controller.
type Options struct {
	// Logger receives transition logs. Default: slog.Default().
	Logger *slog.Logger

	// Resolution is passed to the sampler. Zero means its default.
	Resolution int

	// DefaultID is the initial distribution. Empty means the first
	// registry entry.
	DefaultID string

	// Params, when set, replaces the initial distribution's defaults.
	// The calculator view uses it to start from the visualizer's values.
	Params []float64
}

// Controller is the session state machine.
type Controller struct {
	id       string
	registry *dist.Registry
	opts     Options
	logger   *slog.Logger
	state    State
	frame    Frame
}

// New creates a controller showing the default distribution at its
// default parameters, or at opts.Params applied as one vector.
//
// # Inputs
//
//   - ctx: Context for tracing. Must not be nil.
//   - reg: Distribution registry. Must not be nil.
//   - opts: Optional settings.
//
// # Outputs
//
//   - *Controller: Ready controller with revision 1 committed.
//   - error: *dist.NotFoundError for an unknown DefaultID, or the
//     sampling error for the initial parameters.
func New(ctx context.Context, reg *dist.Registry, opts Options) (*Controller, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if reg == nil || reg.Len() == 0 {
		return nil, errors.New("session: registry must not be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()[:8]

	c := &Controller{
		id:       id,
		registry: reg,
		opts:     opts,
		logger:   logger.With(slog.String("session_id", id)),
	}

	initial := opts.DefaultID
	if initial == "" {
		initial = reg.List()[0].ID
	}
	if err := c.Dispatch(ctx, DistributionSelected{ID: initial, Params: opts.Params}); err != nil {
		return nil, fmt.Errorf("initial distribution %q: %w", initial, err)
	}
	c.logger.Info("session started", slog.String("distribution", initial))
	return c, nil
}

// ID returns the short session identifier used in logs.
func (c *Controller) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Registry returns the registry the controller selects from.
func (c *Controller) Registry() *dist.Registry { return c.registry }

// Frame returns the last committed frame. Params is a copy.
func (c *Controller) Frame() Frame {
	f := c.frame
	f.Params = append([]float64(nil), c.frame.Params...)
	return f
}

// Spec returns the selected distribution.
func (c *Controller) Spec() *dist.DistributionSpec { return c.frame.Spec }

// Params returns a copy of the current parameter vector.
func (c *Controller) Params() []float64 {
	return append([]float64(nil), c.frame.Params...)
}

// Dispatch applies one event.
//
// # Description
//
// On success a new Frame is committed and Revision increments. On any
// failure the spec, params and Frame are left exactly as they were and
// the typed error from the dist package is returned; callers display it
// with dist.ErrorMessage.
func (c *Controller) Dispatch(ctx context.Context, ev Event) error {
	if ctx == nil {
		return ErrNilContext
	}
	if ev == nil {
		return errors.New("session: nil event")
	}
	ctx, span := startEventSpan(ctx, c.id, ev)
	defer span.End()

	start := time.Now()
	c.state = Recomputing
	next, err := c.apply(ev)
	c.state = Idle

	current := ""
	if c.frame.Spec != nil {
		current = c.frame.Spec.ID
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dist.Kind(err))
		errorsTotal.WithLabelValues(ev.Name(), dist.Kind(err)).Inc()
		recordEvent(ctx, ev, current, time.Since(start), false)
		telemetry.LoggerWithTrace(ctx, c.logger).Warn("event rejected",
			slog.String("event", ev.Name()),
			slog.String("distribution", current),
			slog.String("kind", dist.Kind(err)),
			slog.String("error", err.Error()),
		)
		return err
	}

	next.Revision = c.frame.Revision + 1
	c.frame = next
	redrawsTotal.WithLabelValues(next.Spec.ID).Inc()
	recordEvent(ctx, ev, next.Spec.ID, time.Since(start), true)
	telemetry.LoggerWithTrace(ctx, c.logger).Debug("frame committed",
		slog.String("event", ev.Name()),
		slog.String("distribution", next.Spec.ID),
		slog.Uint64("revision", next.Revision),
		slog.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// apply computes the frame an event leads to without touching c.frame.
func (c *Controller) apply(ev Event) (Frame, error) {
	switch e := ev.(type) {
	case DistributionSelected:
		spec, err := c.registry.Lookup(e.ID)
		if err != nil {
			return Frame{}, err
		}
		if e.Params == nil {
			return c.render(spec, spec.DefaultValues(), nil)
		}
		if len(e.Params) != spec.Arity() {
			return Frame{}, &dist.ParameterError{
				Input:  fmt.Sprint(e.Params),
				Reason: fmt.Sprintf("needs %d values for %s", spec.Arity(), spec.ID),
			}
		}
		return c.render(spec, e.Params, nil)

	case ParameterChanged:
		return c.withParameter(e.Index, e.Value)

	case ParameterEdited:
		v, err := dist.ParseParam(e.Text)
		if err != nil {
			if pe, ok := err.(*dist.ParameterError); ok && c.validIndex(e.Index) {
				pe.Name = c.frame.Spec.Params[e.Index].Name
			}
			return Frame{}, err
		}
		return c.withParameter(e.Index, v)

	case QueryRequested:
		return c.render(c.frame.Spec, c.frame.Params, &e.Query)

	case QueryCleared:
		return c.render(c.frame.Spec, c.frame.Params, nil)

	case CalculationRequested:
		params, err := c.frame.Spec.ParseParams(e.Texts)
		if err != nil {
			return Frame{}, err
		}
		q, err := calculator.ParseQuery(e.Mode, e.Input)
		if err != nil {
			return Frame{}, err
		}
		return c.render(c.frame.Spec, params, &q)

	default:
		return Frame{}, fmt.Errorf("session: unsupported event %T", ev)
	}
}

func (c *Controller) validIndex(i int) bool {
	return c.frame.Spec != nil && i >= 0 && i < len(c.frame.Spec.Params)
}

// withParameter replaces one entry and re-renders, keeping any active
// query so the highlight follows the new parameters.
func (c *Controller) withParameter(index int, value float64) (Frame, error) {
	if !c.validIndex(index) {
		return Frame{}, &dist.ParameterError{
			Input:  fmt.Sprint(index),
			Reason: "is not a parameter index",
		}
	}
	params := append([]float64(nil), c.frame.Params...)
	params[index] = value

	var query *calculator.Query
	if c.frame.Result != nil {
		q := c.frame.Result.Query
		query = &q
	}
	return c.render(c.frame.Spec, params, query)
}

// render samples spec at params and, when query is set, resolves it and
// partitions the series at the highlight.
func (c *Controller) render(spec *dist.DistributionSpec, params []float64, query *calculator.Query) (Frame, error) {
	if spec == nil {
		return Frame{}, errors.New("session: no distribution selected")
	}
	opts := sampler.Options{Resolution: c.opts.Resolution}

	var result *calculator.Result
	if query != nil {
		res, err := calculator.Resolve(spec, params, *query)
		if err != nil {
			return Frame{}, err
		}
		result = &res
		opts = opts.WithThreshold(res.Highlight)
		queriesTotal.WithLabelValues(query.Mode.String()).Inc()
	}

	series, err := sampler.Sample(spec, params, opts)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Spec:   spec,
		Params: append([]float64(nil), params...),
		Series: series,
		Result: result,
	}, nil
}

// =============================================================================
// Convenience wrappers
// =============================================================================

// Select dispatches DistributionSelected.
func (c *Controller) Select(ctx context.Context, id string) error {
	return c.Dispatch(ctx, DistributionSelected{ID: id})
}

// SetParameter dispatches ParameterChanged.
func (c *Controller) SetParameter(ctx context.Context, index int, value float64) error {
	return c.Dispatch(ctx, ParameterChanged{Index: index, Value: value})
}

// SetParameterText dispatches ParameterEdited.
func (c *Controller) SetParameterText(ctx context.Context, index int, text string) error {
	return c.Dispatch(ctx, ParameterEdited{Index: index, Text: text})
}

// RunQuery dispatches QueryRequested.
func (c *Controller) RunQuery(ctx context.Context, q calculator.Query) error {
	return c.Dispatch(ctx, QueryRequested{Query: q})
}

// Calculate dispatches CalculationRequested.
func (c *Controller) Calculate(ctx context.Context, texts []string, mode calculator.Mode, input string) error {
	return c.Dispatch(ctx, CalculationRequested{Texts: texts, Mode: mode, Input: input})
}

// ClearQuery dispatches QueryCleared.
func (c *Controller) ClearQuery(ctx context.Context) error {
	return c.Dispatch(ctx, QueryCleared{})
}
