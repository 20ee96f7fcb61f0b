// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document models one source text snapshot handed to the analyzer.
//
// A Document is the unit every rule analyzes. It owns the raw bytes, the
// language id derived from the path, and a lazily built line index used to
// convert between byte offsets and line/column positions.
package document

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// =============================================================================
// LANGUAGE IDS
// =============================================================================

// Language ids recognised by the analyzer.
const (
	LanguageTypeScript      = "typescript"
	LanguageTypeScriptReact = "typescriptreact"
	LanguageJavaScript      = "javascript"
	LanguageJavaScriptReact = "javascriptreact"
	LanguageJava            = "java"
	LanguagePython          = "python"
	LanguageCSharp          = "csharp"
)

var languageByExtension = map[string]string{
	".ts":   LanguageTypeScript,
	".mts":  LanguageTypeScript,
	".cts":  LanguageTypeScript,
	".tsx":  LanguageTypeScriptReact,
	".js":   LanguageJavaScript,
	".mjs":  LanguageJavaScript,
	".cjs":  LanguageJavaScript,
	".jsx":  LanguageJavaScriptReact,
	".java": LanguageJava,
	".py":   LanguagePython,
	".pyi":  LanguagePython,
	".cs":   LanguageCSharp,
}

// LanguageForPath returns the language id for a file path, or "" when the
// extension is not recognised.
func LanguageForPath(path string) string {
	return languageByExtension[strings.ToLower(filepath.Ext(path))]
}

// SupportedLanguages lists every language id the analyzer accepts, sorted.
func SupportedLanguages() []string {
	seen := make(map[string]bool)
	var out []string
	for _, lang := range languageByExtension {
		if !seen[lang] {
			seen[lang] = true
			out = append(out, lang)
		}
	}
	sort.Strings(out)
	return out
}

// IsSupportedLanguage reports whether id is one of SupportedLanguages.
func IsSupportedLanguage(id string) bool {
	for _, lang := range languageByExtension {
		if lang == id {
			return true
		}
	}
	return false
}

// =============================================================================
// POSITIONS
// =============================================================================

// Position is a zero-based line and zero-based byte column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String renders the position 1-based, the way compilers print locations.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Range is a half-open source span with both positions and byte offsets.
type Range struct {
	Start       Position `json:"start"`
	End         Position `json:"end"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is an immutable text snapshot of one file.
//
// # Thread Safety
//
// Safe for concurrent use; the line index is built once on first use.
type Document struct {
	Path       string
	LanguageID string
	Text       []byte

	linesOnce  sync.Once
	lineStarts []int
}

// New creates a Document, deriving the language id from the path.
func New(path string, text []byte) *Document {
	return &Document{
		Path:       path,
		LanguageID: LanguageForPath(path),
		Text:       text,
	}
}

// NewWithLanguage creates a Document with an explicit language id.
func NewWithLanguage(path, languageID string, text []byte) *Document {
	return &Document{Path: path, LanguageID: languageID, Text: text}
}

// Open reads a file from disk into a Document.
func Open(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(path, content), nil
}

// Ext returns the lowercased file extension including the dot.
func (d *Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Path))
}

func (d *Document) index() []int {
	d.linesOnce.Do(func() {
		starts := []int{0}
		for i, b := range d.Text {
			if b == '\n' {
				starts = append(starts, i+1)
			}
		}
		d.lineStarts = starts
	})
	return d.lineStarts
}

// LineCount returns the number of lines; an empty text has one line.
func (d *Document) LineCount() int {
	return len(d.index())
}

// PositionAt converts a byte offset to a Position, clamping to the text.
func (d *Document) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Text) {
		offset = len(d.Text)
	}
	starts := d.index()
	line := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return Position{Line: line, Column: offset - starts[line]}
}

// OffsetAt converts a Position back to a byte offset, clamping to the text.
func (d *Document) OffsetAt(pos Position) int {
	starts := d.index()
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(starts) {
		return len(d.Text)
	}
	offset := starts[pos.Line] + pos.Column
	if offset > len(d.Text) {
		return len(d.Text)
	}
	return offset
}

// RangeOf builds a Range for the byte span [start, end).
func (d *Document) RangeOf(start, end int) Range {
	if end < start {
		end = start
	}
	s := d.PositionAt(start)
	e := d.PositionAt(end)
	return Range{
		Start:       s,
		End:         e,
		StartOffset: d.OffsetAt(s),
		EndOffset:   d.OffsetAt(e),
	}
}

// LineText returns the text of a zero-based line without its terminator.
// Out-of-range lines yield "".
func (d *Document) LineText(line int) string {
	starts := d.index()
	if line < 0 || line >= len(starts) {
		return ""
	}
	end := len(d.Text)
	if line+1 < len(starts) {
		end = starts[line+1]
	}
	text := d.Text[starts[line]:end]
	text = bytes.TrimSuffix(text, []byte{'\n'})
	text = bytes.TrimSuffix(text, []byte{'\r'})
	return string(text)
}
