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
	"testing"

	"github.com/AleutianAI/PatternDojo/services/dojo/config"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineProvider reports one violation at the start of each listed line.
type lineProvider struct {
	pattern string
	code    string
	lines   []int
}

func (p *lineProvider) Name() string        { return p.pattern + " lines" }
func (p *lineProvider) Description() string { return "reports fixed lines" }
func (p *lineProvider) PatternName() string { return p.pattern }

func (p *lineProvider) Analyze(_ context.Context, doc *document.Document) ([]rules.Violation, error) {
	out := make([]rules.Violation, 0, len(p.lines))
	for _, line := range p.lines {
		start := doc.OffsetAt(document.Position{Line: line})
		out = append(out, rules.Violation{
			Range:    doc.RangeOf(start, start+1),
			Message:  p.code,
			Severity: rules.SeverityInformation,
			Code:     p.code,
		})
	}
	return out, nil
}

func newTestAnalyzer(cfg config.AnalysisConfig, providers ...rules.Provider) *Analyzer {
	reg := rules.NewRegistry(nil)
	for _, p := range providers {
		reg.Register(p)
	}
	return New(reg, config.NewStore(cfg, nil), nil)
}

func onlyPatterns(patterns ...string) config.AnalysisConfig {
	cfg := config.Default()
	cfg.Patterns = patterns
	return cfg
}

const sample = "const a = 1;\n" +
	"// pattern-dojo-disable-next-line\n" +
	"const b = 2;\n" +
	"const c = 3; // pattern-dojo-disable\n" +
	"const d = 4;\n"

func TestAnalyze_SuppressionMarkers(t *testing.T) {
	a := newTestAnalyzer(onlyPatterns("lines"),
		&lineProvider{pattern: "lines", code: "x-code", lines: []int{0, 2, 3, 4}})

	res, err := a.Analyze(context.Background(), document.New("src/app.ts", []byte(sample)))
	require.NoError(t, err)

	assert.Equal(t, 4, res.RawCount)
	assert.Equal(t, 2, res.Suppressed)
	require.Len(t, res.Violations, 2)
	assert.Equal(t, 0, res.Violations[0].Line())
	assert.Equal(t, 4, res.Violations[1].Line())
	assert.Equal(t, SkipNone, res.Skipped)
}

func TestAnalyze_MarkerOnOwnLineOnlyCoversThatLine(t *testing.T) {
	src := "// pattern-dojo-disable\nconst a = 1;\n"
	a := newTestAnalyzer(onlyPatterns("lines"),
		&lineProvider{pattern: "lines", code: "x-code", lines: []int{0, 1}})

	res, err := a.Analyze(context.Background(), document.New("src/app.ts", []byte(src)))
	require.NoError(t, err)

	require.Len(t, res.Violations, 1)
	assert.Equal(t, 1, res.Violations[0].Line())
}

func TestAnalyze_SeverityOverrideByExactCode(t *testing.T) {
	cfg := onlyPatterns("first", "second")
	cfg.PatternSeverities = map[string]rules.Severity{
		"first-code": rules.SeverityError,
		"first":      rules.SeverityWarning,
	}
	a := newTestAnalyzer(cfg,
		&lineProvider{pattern: "first", code: "first-code", lines: []int{0}},
		&lineProvider{pattern: "second", code: "second-code", lines: []int{4}})

	res, err := a.Analyze(context.Background(), document.New("src/app.ts", []byte(sample)))
	require.NoError(t, err)

	require.Len(t, res.Violations, 2)
	assert.Equal(t, "first-code", res.Violations[0].Code)
	assert.Equal(t, rules.SeverityError, res.Violations[0].Severity)
	assert.Equal(t, "second-code", res.Violations[1].Code)
	assert.Equal(t, rules.SeverityInformation, res.Violations[1].Severity)
}

func TestAnalyze_SuppressionWinsOverOverride(t *testing.T) {
	cfg := onlyPatterns("lines")
	cfg.PatternSeverities = map[string]rules.Severity{"x-code": rules.SeverityError}
	a := newTestAnalyzer(cfg, &lineProvider{pattern: "lines", code: "x-code", lines: []int{2}})

	res, err := a.Analyze(context.Background(), document.New("src/app.ts", []byte(sample)))
	require.NoError(t, err)

	assert.Empty(t, res.Violations)
	assert.Equal(t, 1, res.Suppressed)
}

func TestAnalyze_Skips(t *testing.T) {
	p := &lineProvider{pattern: "lines", code: "x-code", lines: []int{0}}

	t.Run("disabled", func(t *testing.T) {
		cfg := onlyPatterns("lines")
		cfg.Enabled = false
		res, err := newTestAnalyzer(cfg, p).Analyze(context.Background(), document.New("a.ts", []byte(sample)))
		require.NoError(t, err)
		assert.Equal(t, SkipDisabled, res.Skipped)
		assert.Empty(t, res.Violations)
	})

	t.Run("unsupported language", func(t *testing.T) {
		res, err := newTestAnalyzer(onlyPatterns("lines"), p).Analyze(context.Background(), document.New("notes.md", []byte(sample)))
		require.NoError(t, err)
		assert.Equal(t, SkipUnsupportedLanguage, res.Skipped)
		assert.Empty(t, res.Violations)
	})

	t.Run("ignored path", func(t *testing.T) {
		cfg := onlyPatterns("lines")
		cfg.Ignore = []string{"node_modules"}
		res, err := newTestAnalyzer(cfg, p).Analyze(context.Background(), document.New("node_modules/x/index.js", []byte(sample)))
		require.NoError(t, err)
		assert.Equal(t, SkipIgnored, res.Skipped)
	})

	t.Run("unknown pattern", func(t *testing.T) {
		res, err := newTestAnalyzer(onlyPatterns("missing"), p).Analyze(context.Background(), document.New("a.ts", []byte(sample)))
		require.NoError(t, err)
		assert.Equal(t, SkipNone, res.Skipped)
		assert.Empty(t, res.Violations)
		assert.Zero(t, res.RawCount)
	})
}

func TestAnalyze_Errors(t *testing.T) {
	a := newTestAnalyzer(config.Default())

	_, err := a.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilDocument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Analyze(ctx, document.New("a.ts", []byte(sample)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeWith_UsesGivenConfig(t *testing.T) {
	a := newTestAnalyzer(onlyPatterns("lines"),
		&lineProvider{pattern: "lines", code: "x-code", lines: []int{0}})

	res, err := a.AnalyzeWith(context.Background(), document.New("a.ts", []byte(sample)), onlyPatterns())
	require.NoError(t, err)
	assert.Empty(t, res.Violations)

	res, err = a.Analyze(context.Background(), document.New("a.ts", []byte(sample)))
	require.NoError(t, err)
	assert.Len(t, res.Violations, 1)
}

func TestAnalyze_NativeFactoryEndToEnd(t *testing.T) {
	src := "class W {}\n" +
		"// pattern-dojo-disable-next-line\n" +
		"const a = new W();\n" +
		"const b = new W();\n" +
		"const c = new W();\n"

	cfg := onlyPatterns("factory")
	cfg.PatternSeverities = map[string]rules.Severity{rules.CodeFactoryMultipleInstantiation: rules.SeverityError}
	a := newTestAnalyzer(cfg, native.NewFactory())

	res, err := a.Analyze(context.Background(), document.New("src/w.ts", []byte(src)))
	require.NoError(t, err)

	assert.Equal(t, 1, res.RawCount)
	assert.Equal(t, 1, res.Suppressed)
	assert.Empty(t, res.Violations)

	withoutMarker := "class W {}\nconst a = new W();\nconst b = new W();\nconst c = new W();\n"
	res, err = a.Analyze(context.Background(), document.New("src/w.ts", []byte(withoutMarker)))
	require.NoError(t, err)

	require.Len(t, res.Violations, 1)
	assert.Equal(t, rules.SeverityError, res.Violations[0].Severity)
	assert.Equal(t, 1, res.Violations[0].Line())
}

func TestApplySeverityOverrides_DoesNotMutateInput(t *testing.T) {
	in := []rules.Violation{{Code: "c", Severity: rules.SeverityInformation}}
	out := ApplySeverityOverrides(in, map[string]rules.Severity{"c": rules.SeverityError})

	assert.Equal(t, rules.SeverityInformation, in[0].Severity)
	assert.Equal(t, rules.SeverityError, out[0].Severity)
}

func TestDefaultRegistry_AllBuiltins(t *testing.T) {
	reg := DefaultRegistry(nil)

	assert.Equal(t, 11, reg.Len())
	providers := reg.Providers(config.DefaultPatterns())
	require.Len(t, providers, 11)
	for i, name := range config.DefaultPatterns() {
		assert.Equal(t, name, providers[i].PatternName())
	}
}

func TestNewDefault_JavaAndTypeScript(t *testing.T) {
	a := NewDefault(config.Default(), nil)

	res, err := a.Analyze(context.Background(), document.New("Config.java",
		[]byte("public class Config {\n    public Config() {}\n}\n")))
	require.NoError(t, err)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, rules.CodeSingletonPublicConstructor, res.Violations[0].Code)

	res, err = a.Analyze(context.Background(), document.New("svc.ts",
		[]byte("class Svc {\n  private static instance = new Svc();\n  constructor() {}\n}\n")))
	require.NoError(t, err)
	require.NotEmpty(t, res.Violations)
	assert.Equal(t, rules.CodeSingletonNonPrivateConstructor, res.Violations[0].Code)
}

// lifecycleProvider records the configuration it was started with.
type lifecycleProvider struct {
	lineProvider
	patterns []string
	override rules.Severity
	disposed bool
}

func (p *lifecycleProvider) Initialize(_ context.Context, pc rules.ProviderContext) error {
	p.patterns = pc.EnabledPatterns()
	p.override, _ = pc.SeverityOverride("x-code")
	return nil
}

func (p *lifecycleProvider) Dispose() error {
	p.disposed = true
	return nil
}

func TestAnalyzer_StartAndClose(t *testing.T) {
	cfg := onlyPatterns("lines")
	cfg.PatternSeverities["x-code"] = rules.SeverityError
	p := &lifecycleProvider{lineProvider: lineProvider{pattern: "lines", code: "x-code"}}
	a := newTestAnalyzer(cfg, p)

	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, []string{"lines"}, p.patterns)
	assert.Equal(t, rules.SeverityError, p.override)

	require.NoError(t, a.Close())
	assert.True(t, p.disposed)
}
