package syntax

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for syntax tree parsing.
var (
	tracer = otel.Tracer("patterndojo.syntax")
	meter  = otel.Meter("patterndojo.syntax")
)

// Metrics for parse operations.
var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter
	parseErrors  metric.Int64Counter
	syntaxErrors metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"patterndojo_parse_duration_seconds",
			metric.WithDescription("Duration of tree-sitter parse operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"patterndojo_parse_total",
			metric.WithDescription("Total number of parse operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseErrors, err = meter.Int64Counter(
			"patterndojo_parse_errors_total",
			metric.WithDescription("Parse operations that failed outright"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		syntaxErrors, err = meter.Int64Counter(
			"patterndojo_parse_syntax_errors_total",
			metric.WithDescription("Trees returned with ERROR or MISSING nodes"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParseMetrics records metrics for a parse operation.
func recordParseMetrics(ctx context.Context, grammar string, duration time.Duration, success, hasSyntaxErrors bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("grammar", grammar),
		attribute.Bool("success", success),
	)
	parseLatency.Record(ctx, duration.Seconds(), attrs)
	parseTotal.Add(ctx, 1, attrs)

	grammarAttr := metric.WithAttributes(attribute.String("grammar", grammar))
	if !success {
		parseErrors.Add(ctx, 1, grammarAttr)
	} else if hasSyntaxErrors {
		syntaxErrors.Add(ctx, 1, grammarAttr)
	}
}

// startParseSpan creates a span for a parse operation. The caller must end it.
func startParseSpan(ctx context.Context, grammar, filePath string, contentSize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "syntax.Parse",
		trace.WithAttributes(
			attribute.String("syntax.grammar", grammar),
			attribute.String("syntax.file", filePath),
			attribute.Int("syntax.content_size", contentSize),
		),
	)
}
