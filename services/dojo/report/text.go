// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/PatternDojo/pkg/ux"
	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// TextOptions controls the text renderer.
type TextOptions struct {
	// Color enables lipgloss styling.
	Color bool

	// ShowClean lists files without violations too.
	ShowClean bool
}

// WriteText writes a human readable report: one block per file with
// violations, then a summary line. Positions are printed 1-based.
func (r *Report) WriteText(w io.Writer, opts TextOptions) error {
	paint := func(style lipgloss.Style, s string) string {
		if !opts.Color {
			return s
		}
		return style.Render(s)
	}

	var b strings.Builder
	for _, res := range r.Results {
		if len(res.Violations) == 0 {
			if opts.ShowClean && res.Skipped == analyzer.SkipNone {
				fmt.Fprintf(&b, "%s %s\n", paint(ux.Styles.Success, string(ux.IconSuccess)), res.Path)
			}
			continue
		}
		fmt.Fprintln(&b, paint(ux.Styles.Bold, res.Path))
		for _, v := range res.Violations {
			writeViolation(&b, v, paint)
		}
		b.WriteString("\n")
	}

	for _, fe := range r.Errors {
		fmt.Fprintf(&b, "%s %s %s\n", paint(ux.Styles.Error, string(ux.IconError)), fe.Path, paint(ux.Styles.Muted, fe.Error))
	}

	b.WriteString(summaryLine(r.Summary, paint))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeViolation(b *strings.Builder, v rules.Violation, paint func(lipgloss.Style, string) string) {
	style, _ := ux.SeverityStyle(v.Severity.String())
	fmt.Fprintf(b, "  %-8s %-12s %s %s\n",
		v.Range.Start.String(),
		paint(style, v.Severity.String()),
		v.Message,
		paint(ux.Styles.Muted, v.Code))
	for _, rel := range v.Related {
		fmt.Fprintf(b, "    %s %s %s\n", ux.IconArrow, rel.Range.Start.String(), rel.Message)
	}
}

func summaryLine(s Summary, paint func(lipgloss.Style, string) string) string {
	icon, style := ux.IconSuccess, ux.Styles.Success
	switch {
	case s.BySeverity[rules.SeverityError.String()] > 0 || s.Failed > 0:
		icon, style = ux.IconError, ux.Styles.Error
	case s.Violations > 0:
		icon, style = ux.IconWarning, ux.Styles.Warning
	}

	parts := []string{
		fmt.Sprintf("%d violations (%d error, %d warning, %d information)",
			s.Violations,
			s.BySeverity[rules.SeverityError.String()],
			s.BySeverity[rules.SeverityWarning.String()],
			s.BySeverity[rules.SeverityInformation.String()]),
		fmt.Sprintf("%d files analyzed", s.Analyzed),
	}
	if s.Suppressed > 0 {
		parts = append(parts, fmt.Sprintf("%d suppressed", s.Suppressed))
	}
	if s.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", s.Skipped))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	return paint(style, string(icon)) + " " + strings.Join(parts, ", ")
}
