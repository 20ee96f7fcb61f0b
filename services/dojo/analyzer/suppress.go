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
	"strings"

	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// Suppression markers. They are matched as plain substrings, so any comment
// syntax works. A code written after a marker is not compared: the marker
// silences every violation on its target line.
const (
	DisableNextLineMarker = "pattern-dojo-disable-next-line"
	DisableMarker         = "pattern-dojo-disable"
)

// IsSuppressed reports whether v is silenced by a marker on the line before
// its start line or on the start line itself.
func IsSuppressed(doc *document.Document, v rules.Violation) bool {
	line := v.Range.Start.Line
	if line > 0 && strings.Contains(doc.LineText(line-1), DisableNextLineMarker) {
		return true
	}
	return strings.Contains(doc.LineText(line), DisableMarker)
}

// FilterSuppressed drops suppressed violations, keeping order. It returns the
// kept violations and the number dropped.
func FilterSuppressed(doc *document.Document, violations []rules.Violation) ([]rules.Violation, int) {
	kept := make([]rules.Violation, 0, len(violations))
	for _, v := range violations {
		if IsSuppressed(doc, v) {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(violations) - len(kept)
}
