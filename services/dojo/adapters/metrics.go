// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adapters

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("patterndojo.adapters")

var (
	adapterLatency metric.Float64Histogram
	adapterParses  metric.Int64Counter
	degradedTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		adapterLatency, err = meter.Float64Histogram(
			"patterndojo_adapter_parse_duration_seconds",
			metric.WithDescription("Duration of source to common AST conversion"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		adapterParses, err = meter.Int64Counter(
			"patterndojo_adapter_parse_total",
			metric.WithDescription("Total number of adapter parse calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		degradedTotal, err = meter.Int64Counter(
			"patterndojo_adapter_degraded_total",
			metric.WithDescription("Adapter parses that fell back to a degraded result"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordAdapterMetrics(ctx context.Context, language string, duration time.Duration, degraded bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("language", language))
	adapterLatency.Record(ctx, duration.Seconds(), attrs)
	adapterParses.Add(ctx, 1, attrs)
	if degraded {
		degradedTotal.Add(ctx, 1, attrs)
	}
}
