// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("patterndojo.analyzer")
	meter  = otel.Meter("patterndojo.analyzer")
)

var (
	analyzeLatency  metric.Float64Histogram
	documentsTotal  metric.Int64Counter
	suppressedTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"patterndojo_analyze_duration_seconds",
			metric.WithDescription("Duration of a full document analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		documentsTotal, err = meter.Int64Counter(
			"patterndojo_documents_analyzed_total",
			metric.WithDescription("Documents that went through the providers"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		suppressedTotal, err = meter.Int64Counter(
			"patterndojo_violations_suppressed_total",
			metric.WithDescription("Violations dropped by inline markers"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordAnalyzeMetrics(ctx context.Context, language string, duration time.Duration, raw, suppressed int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("language", language))
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	documentsTotal.Add(ctx, 1, attrs)
	if suppressed > 0 {
		suppressedTotal.Add(ctx, int64(suppressed), attrs)
	}
}

func startAnalyzeSpan(ctx context.Context, doc *document.Document) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(
			attribute.String("analyze.file", doc.Path),
			attribute.String("analyze.language", doc.LanguageID),
			attribute.Int("analyze.bytes", len(doc.Text)),
		),
	)
}

func setAnalyzeSpanResult(span trace.Span, raw, final int) {
	span.SetAttributes(
		attribute.Int("analyze.raw_count", raw),
		attribute.Int("analyze.final_count", final),
	)
}
