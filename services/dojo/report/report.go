// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report aggregates per-file analysis results into one run and
// renders it as JSON or terminal text.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// FileError records a file that could not be analyzed.
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Summary holds run-wide counts.
type Summary struct {
	Files      int            `json:"files"`
	Analyzed   int            `json:"analyzed"`
	Skipped    int            `json:"skipped"`
	Failed     int            `json:"failed"`
	Violations int            `json:"violations"`
	Suppressed int            `json:"suppressed"`
	BySeverity map[string]int `json:"by_severity"`
	ByCode     map[string]int `json:"by_code"`
}

// Report is one analysis run.
//
// # Thread Safety
//
// Add and AddError may be called concurrently. Finish and the writers must
// be called after all adds.
type Report struct {
	RunID      string             `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMS int64              `json:"duration_ms"`
	Results    []*analyzer.Result `json:"results"`
	Errors     []FileError        `json:"errors,omitempty"`
	Summary    Summary            `json:"summary"`

	mu sync.Mutex
}

// New starts a report with a fresh run id.
func New() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Results:   []*analyzer.Result{},
	}
}

// Add records one analysis result. Nil results are ignored.
func (r *Report) Add(res *analyzer.Result) {
	if res == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, res)
}

// AddError records a file that failed before or during analysis.
func (r *Report) AddError(path string, err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, FileError{Path: path, Error: err.Error()})
}

// Finish orders results by path and computes the summary.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	sort.Slice(r.Results, func(i, j int) bool { return r.Results[i].Path < r.Results[j].Path })
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Path < r.Errors[j].Path })

	s := Summary{
		Files:      len(r.Results) + len(r.Errors),
		Failed:     len(r.Errors),
		BySeverity: map[string]int{},
		ByCode:     map[string]int{},
	}
	for _, res := range r.Results {
		if res.Skipped != analyzer.SkipNone {
			s.Skipped++
			continue
		}
		s.Analyzed++
		s.Suppressed += res.Suppressed
		for _, v := range res.Violations {
			s.Violations++
			s.BySeverity[v.Severity.String()]++
			s.ByCode[v.Code]++
		}
	}
	r.Summary = s
	r.DurationMS = time.Since(r.StartedAt).Milliseconds()
}

// Exceeds reports whether any violation is at or above threshold.
func (r *Report) Exceeds(threshold rules.Severity) bool {
	for _, res := range r.Results {
		for _, v := range res.Violations {
			if v.Severity.AtLeast(threshold) {
				return true
			}
		}
	}
	return false
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
