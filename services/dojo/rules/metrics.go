// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("patterndojo.rules")
	meter  = otel.Meter("patterndojo.rules")
)

var (
	ruleLatency        metric.Float64Histogram
	ruleRuns           metric.Int64Counter
	ruleFailures       metric.Int64Counter
	violationsReported metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		ruleLatency, err = meter.Float64Histogram(
			"patterndojo_rule_duration_seconds",
			metric.WithDescription("Duration of a single pattern provider run"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		ruleRuns, err = meter.Int64Counter(
			"patterndojo_rule_runs_total",
			metric.WithDescription("Total number of pattern provider runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		ruleFailures, err = meter.Int64Counter(
			"patterndojo_rule_failures_total",
			metric.WithDescription("Provider runs that returned an error or panicked"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		violationsReported, err = meter.Int64Counter(
			"patterndojo_rule_violations_total",
			metric.WithDescription("Raw violations produced by providers"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRuleMetrics(ctx context.Context, pattern string, duration time.Duration, violations int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("pattern", pattern),
		attribute.Bool("success", success),
	)
	ruleLatency.Record(ctx, duration.Seconds(), attrs)
	ruleRuns.Add(ctx, 1, attrs)

	patternAttr := metric.WithAttributes(attribute.String("pattern", pattern))
	if success {
		violationsReported.Add(ctx, int64(violations), patternAttr)
	} else {
		ruleFailures.Add(ctx, 1, patternAttr)
	}
}

func startRuleSpan(ctx context.Context, pattern, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Provider.Analyze",
		trace.WithAttributes(
			attribute.String("rule.pattern", pattern),
			attribute.String("rule.file", filePath),
		),
	)
}

func setRuleSpanResult(span trace.Span, violations int, err error) {
	span.SetAttributes(attribute.Int("rule.violation_count", violations))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
