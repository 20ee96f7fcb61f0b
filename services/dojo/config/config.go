// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the analysis settings and the store that publishes
// them to the analyzer and providers.
package config

import (
	"strings"
	"sync/atomic"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// AnalysisConfig controls one analysis run.
type AnalysisConfig struct {
	// Enabled turns analysis off entirely when false.
	Enabled bool `json:"enabled"`

	// Patterns names the providers to run, in order.
	Patterns []string `json:"patterns"`

	// Severity is the default severity. The CLI uses it as the threshold
	// for a failing exit code.
	Severity rules.Severity `json:"severity"`

	// PatternSeverities overrides the severity of violations by exact code.
	PatternSeverities map[string]rules.Severity `json:"pattern_severities,omitempty"`

	// Ignore lists path substrings; matching files are not analyzed.
	Ignore []string `json:"ignore,omitempty"`
}

// NativePatterns are the providers that read TypeScript and JavaScript
// syntax trees directly.
var NativePatterns = []string{
	"singleton", "factory", "observer", "strategy",
	"decorator", "adapter", "facade", "proxy",
}

// MultiLanguagePatterns are the providers that read the common AST.
var MultiLanguagePatterns = []string{
	"multilang-singleton", "multilang-factory", "multilang-decorator",
}

// DefaultPatterns returns every built-in pattern name.
func DefaultPatterns() []string {
	out := make([]string, 0, len(NativePatterns)+len(MultiLanguagePatterns))
	out = append(out, NativePatterns...)
	return append(out, MultiLanguagePatterns...)
}

// Default returns the built-in configuration: enabled, every pattern,
// warning severity, no overrides, nothing ignored.
func Default() AnalysisConfig {
	return AnalysisConfig{
		Enabled:           true,
		Patterns:          DefaultPatterns(),
		Severity:          rules.SeverityWarning,
		PatternSeverities: map[string]rules.Severity{},
		Ignore:            []string{},
	}
}

// Clone returns a deep copy.
func (c AnalysisConfig) Clone() AnalysisConfig {
	out := c
	out.Patterns = append([]string(nil), c.Patterns...)
	out.Ignore = append([]string(nil), c.Ignore...)
	out.PatternSeverities = make(map[string]rules.Severity, len(c.PatternSeverities))
	for code, sev := range c.PatternSeverities {
		out.PatternSeverities[code] = sev
	}
	return out
}

// IsIgnored reports whether path contains any ignore substring.
func (c AnalysisConfig) IsIgnored(path string) bool {
	for _, pattern := range c.Ignore {
		if pattern != "" && strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// =============================================================================
// STORE
// =============================================================================

// Store publishes immutable configuration snapshots.
//
// Replace swaps the whole snapshot; readers never observe a partial update.
// Store implements rules.ProviderContext.
//
// # Thread Safety
//
// Safe for concurrent use.
type Store struct {
	current atomic.Pointer[AnalysisConfig]
	version atomic.Int64
	logger  *logging.Logger
}

// NewStore creates a store holding cfg. A nil logger discards output.
func NewStore(cfg AnalysisConfig, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Store{logger: logger}
	snapshot := cfg.Clone()
	s.current.Store(&snapshot)
	return s
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() AnalysisConfig {
	return s.current.Load().Clone()
}

// Replace installs cfg as the new configuration.
func (s *Store) Replace(cfg AnalysisConfig) {
	snapshot := cfg.Clone()
	s.current.Store(&snapshot)
	v := s.version.Add(1)
	s.logger.Debug("configuration replaced",
		"version", v,
		"enabled", snapshot.Enabled,
		"patterns", len(snapshot.Patterns))
}

// Version counts Replace calls.
func (s *Store) Version() int64 {
	return s.version.Load()
}

// EnabledPatterns implements rules.ProviderContext.
func (s *Store) EnabledPatterns() []string {
	cfg := s.current.Load()
	if !cfg.Enabled {
		return []string{}
	}
	return append([]string(nil), cfg.Patterns...)
}

// SeverityOverride implements rules.ProviderContext.
func (s *Store) SeverityOverride(code string) (rules.Severity, bool) {
	sev, ok := s.current.Load().PatternSeverities[code]
	return sev, ok
}

// Logger implements rules.ProviderContext.
func (s *Store) Logger() *logging.Logger {
	return s.logger
}

var _ rules.ProviderContext = (*Store)(nil)
