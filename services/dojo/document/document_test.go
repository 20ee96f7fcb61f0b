// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/app.ts", LanguageTypeScript},
		{"src/App.TSX", LanguageTypeScriptReact},
		{"lib/index.mjs", LanguageJavaScript},
		{"view.jsx", LanguageJavaScriptReact},
		{"Main.java", LanguageJava},
		{"tool.py", LanguagePython},
		{"Program.cs", LanguageCSharp},
		{"README.md", ""},
		{"Makefile", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LanguageForPath(tt.path))
		})
	}
}

func TestSupportedLanguages(t *testing.T) {
	langs := SupportedLanguages()

	assert.Len(t, langs, 7)
	assert.True(t, IsSupportedLanguage(LanguageCSharp))
	assert.False(t, IsSupportedLanguage("go"))
}

func TestDocument_PositionAt(t *testing.T) {
	doc := New("a.ts", []byte("ab\ncde\n\nf"))

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{2, Position{0, 2}},
		{3, Position{1, 0}},
		{5, Position{1, 2}},
		{7, Position{2, 0}},
		{8, Position{3, 0}},
		{9, Position{3, 1}},
		{100, Position{3, 1}},
		{-4, Position{0, 0}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doc.PositionAt(tt.offset), "offset %d", tt.offset)
	}
}

func TestDocument_OffsetRoundTrip(t *testing.T) {
	doc := New("a.ts", []byte("class A {}\nclass B extends A {}\n"))

	for offset := 0; offset <= len(doc.Text); offset++ {
		assert.Equal(t, offset, doc.OffsetAt(doc.PositionAt(offset)))
	}
}

func TestDocument_LineText(t *testing.T) {
	doc := New("a.py", []byte("first\r\nsecond\nthird"))

	assert.Equal(t, 3, doc.LineCount())
	assert.Equal(t, "first", doc.LineText(0))
	assert.Equal(t, "second", doc.LineText(1))
	assert.Equal(t, "third", doc.LineText(2))
	assert.Equal(t, "", doc.LineText(3))
	assert.Equal(t, "", doc.LineText(-1))
}

func TestDocument_RangeOf(t *testing.T) {
	doc := New("a.ts", []byte("abc\ndef"))

	r := doc.RangeOf(1, 6)

	assert.Equal(t, Position{0, 1}, r.Start)
	assert.Equal(t, Position{1, 2}, r.End)
	assert.Equal(t, 1, r.StartOffset)
	assert.Equal(t, 6, r.EndOffset)
	assert.Equal(t, "1:2", r.Start.String())

	inverted := doc.RangeOf(5, 2)
	assert.Equal(t, inverted.Start, inverted.End)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.java")
	require.NoError(t, os.WriteFile(path, []byte("class Main {}"), 0o644))

	doc, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, LanguageJava, doc.LanguageID)
	assert.Equal(t, ".java", doc.Ext())

	_, err = Open(filepath.Join(dir, "missing.java"))
	assert.Error(t, err)
}
