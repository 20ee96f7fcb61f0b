// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	"github.com/AleutianAI/PatternDojo/services/dojo/config"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	// Path names the document; its extension selects the language unless
	// LanguageID is set. It is never read from disk.
	Path string `json:"path" binding:"required,max=4096"`

	Content string `json:"content"`

	// LanguageID overrides the language derived from Path.
	LanguageID string `json:"language_id,omitempty" binding:"omitempty,max=64"`

	// Patterns replaces the configured pattern list for this request.
	Patterns []string `json:"patterns,omitempty" binding:"omitempty,max=64,dive,required,max=128"`
}

// AnalyzeResponse is the result of POST /v1/analyze.
type AnalyzeResponse struct {
	RunID      string              `json:"run_id"`
	Path       string              `json:"path"`
	Language   string              `json:"language"`
	Violations []rules.Violation   `json:"violations"`
	RawCount   int                 `json:"raw_count"`
	Suppressed int                 `json:"suppressed"`
	Skipped    analyzer.SkipReason `json:"skipped,omitempty"`
}

// RulesResponse lists the registered providers.
type RulesResponse struct {
	Rules []rules.Info `json:"rules"`
	Codes []string     `json:"codes"`
}

// ConfigResponse is the current configuration snapshot.
type ConfigResponse struct {
	Version int64                 `json:"version"`
	Config  config.AnalysisConfig `json:"config"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}
