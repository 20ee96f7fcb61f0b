// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package adapters converts Java, Python and C# source into the common AST.
//
// Each adapter wraps one tree-sitter grammar and a node mapper that decides,
// per native node, the common NodeKind, name, modifiers and metadata. The
// conversion itself (ranges, positions, symbol collection, diagnostics) is
// shared.
package adapters

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/syntax"
)

// maxConvertDepth bounds recursion on pathological inputs.
const maxConvertDepth = 1000

// LanguageAdapter turns source text of one language into a ParseResult.
//
// Description:
//
//	Implementations are closed to this package: NewJavaAdapter,
//	NewPythonAdapter and NewCSharpAdapter. Parse never fails; malformed,
//	oversized or otherwise unparseable input yields a degraded result with an
//	Unknown root spanning the whole text.
//
// Thread Safety:
//
//	All implementations are safe for concurrent use. Each Parse call builds
//	its own tree-sitter parser.
type LanguageAdapter interface {
	// Language returns the language id, e.g. "java".
	Language() string

	// Extensions returns the handled file extensions, lowercase with dot.
	Extensions() []string

	// Supports reports whether the adapter handles the file's extension.
	Supports(path string) bool

	// Parse converts text into a fresh ParseResult. Never returns nil.
	Parse(ctx context.Context, path string, text []byte) *commonast.ParseResult

	// FindSymbol looks up a declaration by name. Not implemented: always
	// reports not found.
	FindSymbol(name, path string) (*commonast.Symbol, bool)

	// FindUsages lists references to a name. Not implemented: always empty.
	FindUsages(name, path string) []commonast.Location
}

// Option configures an adapter.
type Option func(*treeSitterAdapter)

// WithLogger sets the logger used for parse failures.
func WithLogger(logger *logging.Logger) Option {
	return func(a *treeSitterAdapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMaxFileSize sets the largest input the adapter parses. Larger inputs
// produce a degraded result.
//
// Example:
//
//	adapter := NewJavaAdapter(WithMaxFileSize(2 * 1024 * 1024))
func WithMaxFileSize(bytes int64) Option {
	return func(a *treeSitterAdapter) {
		if bytes > 0 {
			a.maxFileSize = bytes
		}
	}
}

// mapping is the common-AST view of one native node.
type mapping struct {
	kind      commonast.NodeKind
	name      string
	modifiers []commonast.Modifier
	meta      map[string]string

	// flatten drops the node itself and lifts its children into the parent.
	flatten bool
}

// nodeMapper maps one native node. It must not retain n.
type nodeMapper func(n *sitter.Node, src []byte) mapping

// treeSitterAdapter is the shared LanguageAdapter implementation.
type treeSitterAdapter struct {
	language    string
	grammar     string
	extensions  []string
	mapNode     nodeMapper
	maxFileSize int64
	logger      *logging.Logger
}

func newTreeSitterAdapter(language, grammar string, extensions []string, mapNode nodeMapper, opts ...Option) *treeSitterAdapter {
	a := &treeSitterAdapter{
		language:    language,
		grammar:     grammar,
		extensions:  extensions,
		mapNode:     mapNode,
		maxFileSize: syntax.DefaultMaxFileSize,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("adapter", language)
	return a
}

func (a *treeSitterAdapter) Language() string { return a.language }

func (a *treeSitterAdapter) Extensions() []string {
	out := make([]string, len(a.extensions))
	copy(out, a.extensions)
	return out
}

func (a *treeSitterAdapter) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range a.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Parse converts text into a ParseResult.
//
// Description:
//
//	Parses with the adapter's grammar, converts every named native node into
//	a commonast.Node, collects declaration symbols and syntax diagnostics.
//	Any failure (cancellation, invalid UTF-8, oversize input, a panic during
//	conversion) is logged and yields commonast.Degraded.
//
// Inputs:
//   - ctx: Context for cancellation. Checked before parsing.
//   - path: File path recorded on the result and its symbols.
//   - text: Source bytes.
//
// Outputs:
//   - *commonast.ParseResult: Never nil.
func (a *treeSitterAdapter) Parse(ctx context.Context, path string, text []byte) (result *commonast.ParseResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("adapter conversion panicked",
				"file", path,
				"error", fmt.Errorf("%w: %v", ErrConversionPanic, r))
			result = commonast.Degraded(path, a.language, text)
		}
		recordAdapterMetrics(ctx, a.language, time.Since(start), result.Degraded)
	}()

	tree, err := syntax.Parse(ctx, a.grammar, path, text, syntax.WithMaxFileSize(a.maxFileSize))
	if err != nil {
		a.logger.Warn("parse failed, using degraded result", "file", path, "error", err)
		return commonast.Degraded(path, a.language, text)
	}
	defer tree.Close()

	result = &commonast.ParseResult{
		FilePath:    path,
		Language:    a.language,
		Symbols:     map[string]*commonast.Symbol{},
		Diagnostics: syntax.CollectDiagnostics(tree.Root, tree.Source),
	}

	c := &converter{src: tree.Source, path: path, mapNode: a.mapNode, result: result}
	nodes := c.convert(tree.Root, 0)
	if len(nodes) == 0 {
		return commonast.Degraded(path, a.language, text)
	}
	result.RootNode = nodes[0]

	if len(result.Diagnostics) > 0 {
		a.logger.Debug("source has syntax errors", "file", path, "count", len(result.Diagnostics))
	}
	return result
}

func (a *treeSitterAdapter) FindSymbol(_, _ string) (*commonast.Symbol, bool) {
	return nil, false
}

func (a *treeSitterAdapter) FindUsages(_, _ string) []commonast.Location {
	return []commonast.Location{}
}

// =============================================================================
// CONVERSION
// =============================================================================

type converter struct {
	src     []byte
	path    string
	mapNode nodeMapper
	result  *commonast.ParseResult
}

// convert returns the common nodes for n: one node, or n's children when the
// mapper flattens it.
func (c *converter) convert(n *sitter.Node, depth int) []*commonast.Node {
	if n == nil || depth > maxConvertDepth {
		return nil
	}

	m := c.mapNode(n, c.src)
	if m.flatten {
		return c.convertChildren(n, depth)
	}
	if m.kind == "" {
		m.kind = commonast.KindUnknown
	}

	start, end := n.StartPoint(), n.EndPoint()
	node := &commonast.Node{
		Kind:          m.kind,
		Name:          m.name,
		StartPosition: int(n.StartByte()),
		EndPosition:   int(n.EndByte()),
		StartLine:     int(start.Row) + 1,
		StartColumn:   int(start.Column),
		EndLine:       int(end.Row) + 1,
		EndColumn:     int(end.Column),
		Text:          syntax.NodeText(n, c.src),
		Modifiers:     m.modifiers,
		Metadata:      m.meta,
	}
	if node.Metadata == nil {
		node.Metadata = make(map[string]string, 1)
	}
	node.Metadata[commonast.MetaNativeType] = n.Type()

	if isSymbolKind(node.Kind) {
		c.result.AddSymbol(c.path, node)
	}

	if children := c.convertChildren(n, depth); len(children) > 0 {
		node.Children = children
	}
	return []*commonast.Node{node}
}

func (c *converter) convertChildren(n *sitter.Node, depth int) []*commonast.Node {
	var out []*commonast.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		out = append(out, c.convert(child, depth+1)...)
	}
	return out
}

func isSymbolKind(k commonast.NodeKind) bool {
	switch k {
	case commonast.KindClassDeclaration, commonast.KindInterfaceDeclaration,
		commonast.KindStructDeclaration, commonast.KindMethodDeclaration,
		commonast.KindFunctionDeclaration, commonast.KindConstructorDeclaration:
		return true
	default:
		return false
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// simpleTypeName reduces a type reference to its bare name:
// "java.util.ArrayList<String>" becomes "ArrayList".
func simpleTypeName(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, "<(["); i >= 0 {
		text = text[:i]
	}
	if i := strings.LastIndex(text, "."); i >= 0 {
		text = text[i+1:]
	}
	return strings.TrimSpace(text)
}

// firstNamedChild returns the first named child, or nil.
func firstNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(i); child != nil && child.IsNamed() {
			return child
		}
	}
	return nil
}

// lastNamedChild returns the last named child, or nil.
func lastNamedChild(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := int(n.ChildCount()) - 1; i >= 0; i-- {
		if child := n.Child(i); child != nil && child.IsNamed() {
			return child
		}
	}
	return nil
}

// findDescendant returns the first descendant of the given type in
// pre-order, or nil.
func findDescendant(n *sitter.Node, nodeType string) *sitter.Node {
	var found *sitter.Node
	syntax.Walk(n, func(c *sitter.Node) bool {
		if found != nil {
			return false
		}
		if c != n && c.Type() == nodeType {
			found = c
			return false
		}
		return true
	})
	return found
}

// declaratorName returns the name of the first variable declarator under n.
func declaratorName(n *sitter.Node, src []byte) string {
	d := findDescendant(n, "variable_declarator")
	if d == nil {
		return ""
	}
	if name := syntax.FieldText(d, "name", src); name != "" {
		return name
	}
	return syntax.NodeText(syntax.ChildOfType(d, "identifier"), src)
}

// memberName returns the last segment of a callee or member expression.
func memberName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return simpleTypeName(syntax.NodeText(n, src))
}
