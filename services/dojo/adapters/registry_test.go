// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adapters

import (
	"context"
	"testing"

	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter claims extensions without parsing anything.
type fakeAdapter struct {
	language   string
	extensions []string
	tag        string
}

func (f *fakeAdapter) Language() string     { return f.language }
func (f *fakeAdapter) Extensions() []string { return f.extensions }
func (f *fakeAdapter) Supports(path string) bool {
	for _, ext := range f.extensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
func (f *fakeAdapter) Parse(_ context.Context, path string, text []byte) *commonast.ParseResult {
	r := commonast.Degraded(path, f.language, text)
	r.RootNode.Name = f.tag
	return r
}
func (f *fakeAdapter) FindSymbol(_, _ string) (*commonast.Symbol, bool) { return nil, false }
func (f *fakeAdapter) FindUsages(_, _ string) []commonast.Location      { return nil }

func TestRegistry_Default(t *testing.T) {
	reg := NewDefaultRegistry(nil)

	assert.Equal(t, []string{"java", "python", "csharp"}, reg.SupportedLanguages())
	assert.Equal(t, []string{".cs", ".java", ".py", ".pyi"}, reg.SupportedExtensions())

	a, ok := reg.AdapterFor("src/Main.JAVA")
	require.True(t, ok)
	assert.Equal(t, "java", a.Language())

	_, ok = reg.AdapterFor("src/app.ts")
	assert.False(t, ok)

	a, ok = reg.AdapterByLanguage("csharp")
	require.True(t, ok)
	assert.True(t, a.Supports("Program.cs"))
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeAdapter{language: "first", extensions: []string{".x"}, tag: "first"})
	reg.Register(&fakeAdapter{language: "second", extensions: []string{".x"}, tag: "second"})

	result := reg.Parse(context.Background(), document.New("a.x", []byte("x")))

	require.NotNil(t, result)
	assert.Equal(t, "first", result.RootNode.Name)
}

func TestRegistry_RegisterReplacesSameLanguage(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeAdapter{language: "java", extensions: []string{".java"}, tag: "old"})
	reg.Register(&fakeAdapter{language: "python", extensions: []string{".py"}, tag: "py"})
	reg.Register(&fakeAdapter{language: "java", extensions: []string{".java"}, tag: "new"})
	reg.Register(nil)

	assert.Equal(t, []string{"java", "python"}, reg.SupportedLanguages())

	result := reg.Parse(context.Background(), document.New("A.java", []byte("class A {}")))
	require.NotNil(t, result)
	assert.Equal(t, "new", result.RootNode.Name)
}

func TestRegistry_ParseUnsupportedIsNil(t *testing.T) {
	reg := NewDefaultRegistry(nil)

	assert.Nil(t, reg.Parse(context.Background(), document.New("notes.txt", []byte("hello"))))
	assert.Nil(t, reg.Parse(context.Background(), nil))
}

func TestRegistry_ParseDelegates(t *testing.T) {
	reg := NewDefaultRegistry(nil)

	result := reg.Parse(context.Background(), document.New("tool.py", []byte("class Tool:\n    pass\n")))

	require.NotNil(t, result)
	assert.Equal(t, "python", result.Language)
	assert.Equal(t, []string{"Tool"}, namesOf(result.RootNode, commonast.KindClassDeclaration))
}
