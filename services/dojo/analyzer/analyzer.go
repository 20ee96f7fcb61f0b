// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer runs the configured pattern providers over a document
// and post-processes their findings.
//
// Post-processing happens in a fixed order: inline suppression markers drop
// violations first, then per-code severity overrides are applied to what
// remains.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/config"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// ErrNilDocument is returned when Analyze is called without a document.
var ErrNilDocument = errors.New("document must not be nil")

// SkipReason says why a document produced no analysis.
type SkipReason string

const (
	SkipNone                SkipReason = ""
	SkipDisabled            SkipReason = "disabled"
	SkipUnsupportedLanguage SkipReason = "unsupported-language"
	SkipIgnored             SkipReason = "ignored"
)

// Result is the outcome of analyzing one document.
type Result struct {
	Path       string            `json:"path"`
	Language   string            `json:"language"`
	Violations []rules.Violation `json:"violations"`

	// RawCount is the number of violations before suppression.
	RawCount int `json:"raw_count"`

	// Suppressed is the number of violations dropped by markers.
	Suppressed int `json:"suppressed"`

	Skipped SkipReason `json:"skipped,omitempty"`
}

// Analyzer coordinates providers, suppression and severity overrides.
//
// # Thread Safety
//
// Safe for concurrent use; every call works on its own document and a
// configuration snapshot.
type Analyzer struct {
	registry *rules.Registry
	store    *config.Store
	logger   *logging.Logger
}

// New creates an Analyzer. A nil logger discards output.
func New(registry *rules.Registry, store *config.Store, logger *logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Analyzer{registry: registry, store: store, logger: logger}
}

// Registry returns the provider registry.
func (a *Analyzer) Registry() *rules.Registry { return a.registry }

// Store returns the configuration store.
func (a *Analyzer) Store() *config.Store { return a.store }

// Start hands the configuration store to every provider that needs setup.
// Hosts call it once before the first Analyze.
func (a *Analyzer) Start(ctx context.Context) error {
	if err := a.registry.InitializeAll(ctx, a.store); err != nil {
		return fmt.Errorf("start providers: %w", err)
	}
	return nil
}

// Close releases provider resources.
func (a *Analyzer) Close() error {
	return a.registry.DisposeAll()
}

// Analyze checks doc against the current configuration snapshot.
func (a *Analyzer) Analyze(ctx context.Context, doc *document.Document) (*Result, error) {
	return a.AnalyzeWith(ctx, doc, a.store.Snapshot())
}

// AnalyzeWith checks doc against an explicit configuration.
//
// Outputs:
//   - *Result: Never nil on success. Skipped is set when the document was
//     not analyzed.
//   - error: ErrNilDocument or the context error.
func (a *Analyzer) AnalyzeWith(ctx context.Context, doc *document.Document, cfg config.AnalysisConfig) (*Result, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", doc.Path, err)
	}

	result := &Result{
		Path:       doc.Path,
		Language:   doc.LanguageID,
		Violations: []rules.Violation{},
	}

	switch {
	case !cfg.Enabled:
		result.Skipped = SkipDisabled
		return result, nil
	case !document.IsSupportedLanguage(doc.LanguageID):
		result.Skipped = SkipUnsupportedLanguage
		return result, nil
	case cfg.IsIgnored(doc.Path):
		result.Skipped = SkipIgnored
		return result, nil
	}

	ctx, span := startAnalyzeSpan(ctx, doc)
	defer span.End()
	start := time.Now()

	providers := a.registry.Providers(cfg.Patterns)
	raw := a.registry.Analyze(ctx, doc, providers)

	kept, suppressed := FilterSuppressed(doc, raw)
	final := ApplySeverityOverrides(kept, cfg.PatternSeverities)

	result.Violations = final
	result.RawCount = len(raw)
	result.Suppressed = suppressed

	recordAnalyzeMetrics(ctx, doc.LanguageID, time.Since(start), len(raw), suppressed)
	setAnalyzeSpanResult(span, len(raw), len(final))

	a.logger.Debug("document analyzed",
		"file", doc.Path,
		"language", doc.LanguageID,
		"providers", len(providers),
		"raw", len(raw),
		"suppressed", suppressed,
		"final", len(final))
	return result, nil
}

// ApplySeverityOverrides replaces the severity of every violation whose code
// is a key of overrides. The input slice is not modified.
func ApplySeverityOverrides(violations []rules.Violation, overrides map[string]rules.Severity) []rules.Violation {
	out := make([]rules.Violation, len(violations))
	copy(out, violations)
	if len(overrides) == 0 {
		return out
	}
	for i := range out {
		if sev, ok := overrides[out[i].Code]; ok {
			out[i].Severity = sev
		}
	}
	return out
}
