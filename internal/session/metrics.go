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

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for session operations.
var (
	tracer = otel.Tracer("distviz.session")
	meter  = otel.Meter("distviz.session")
)

// Prometheus counters, always registered with the default registry.
var (
	redrawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distviz_session_redraws_total",
		Help: "Frames committed by session controllers",
	}, []string{"distribution"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distviz_session_errors_total",
		Help: "Rejected session events by error kind",
	}, []string{"event", "kind"})

	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distviz_session_queries_total",
		Help: "Calculator queries resolved by mode",
	}, []string{"mode"})
)

// OpenTelemetry instruments, exported only when a meter provider is set.
var (
	transitionLatency metric.Float64Histogram
	eventsTotal       metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the otel instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		transitionLatency, err = meter.Float64Histogram(
			"distviz_session_transition_duration_seconds",
			metric.WithDescription("Duration of session event handling"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		eventsTotal, err = meter.Int64Counter(
			"distviz_session_events_total",
			metric.WithDescription("Session events dispatched"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startEventSpan creates a span for one dispatched event.
func startEventSpan(ctx context.Context, sessionID string, ev Event) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Controller."+ev.Name(),
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("session.event", ev.Name()),
		),
	)
}

// recordEvent records otel metrics for one handled event.
func recordEvent(ctx context.Context, ev Event, distribution string, d time.Duration, ok bool) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("event", ev.Name()),
		attribute.String("distribution", distribution),
		attribute.Bool("success", ok),
	)
	transitionLatency.Record(ctx, d.Seconds(), attrs)
	eventsTotal.Add(ctx, 1, attrs)
}
