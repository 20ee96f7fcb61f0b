// Package syntax wraps tree-sitter parsing for every grammar Pattern Dojo
// understands.
//
// Both the front-end adapters (Java, Python, C#) and the native TypeScript
// rules parse through this package so size limits, UTF-8 validation,
// metrics and syntax-error collection behave the same everywhere.
//
// A new sitter.Parser is created per call; parsers are not shared between
// goroutines.
package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
)

// DefaultMaxFileSize is the largest input accepted by Parse.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// maxDiagnostics caps collected syntax errors on heavily malformed input.
const maxDiagnostics = 50

// Grammar names.
const (
	GrammarTypeScript = "typescript"
	GrammarTSX        = "tsx"
	GrammarJavaScript = "javascript"
	GrammarJava       = "java"
	GrammarPython     = "python"
	GrammarCSharp     = "csharp"
)

var grammarByExtension = map[string]string{
	".ts":   GrammarTypeScript,
	".mts":  GrammarTypeScript,
	".cts":  GrammarTypeScript,
	".tsx":  GrammarTSX,
	".js":   GrammarJavaScript,
	".jsx":  GrammarJavaScript,
	".mjs":  GrammarJavaScript,
	".cjs":  GrammarJavaScript,
	".java": GrammarJava,
	".py":   GrammarPython,
	".pyi":  GrammarPython,
	".cs":   GrammarCSharp,
}

// GrammarForPath returns the grammar name for a file, or "" if none.
func GrammarForPath(path string) string {
	return grammarByExtension[strings.ToLower(filepath.Ext(path))]
}

// IsECMAScript reports whether the grammar is TypeScript, TSX or JavaScript.
func IsECMAScript(grammar string) bool {
	switch grammar {
	case GrammarTypeScript, GrammarTSX, GrammarJavaScript:
		return true
	default:
		return false
	}
}

func languageFor(grammar string) (*sitter.Language, error) {
	switch grammar {
	case GrammarTypeScript:
		return typescript.GetLanguage(), nil
	case GrammarTSX:
		return tsx.GetLanguage(), nil
	case GrammarJavaScript:
		return javascript.GetLanguage(), nil
	case GrammarJava:
		return java.GetLanguage(), nil
	case GrammarPython:
		return python.GetLanguage(), nil
	case GrammarCSharp:
		return csharp.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, grammar)
	}
}

// Option configures Parse.
type Option func(*options)

type options struct {
	maxFileSize int64
}

// WithMaxFileSize sets the maximum accepted input size in bytes.
func WithMaxFileSize(bytes int64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.maxFileSize = bytes
		}
	}
}

// Tree is a parsed syntax tree together with its source.
type Tree struct {
	Grammar string
	Source  []byte
	Root    *sitter.Node

	tree *sitter.Tree
}

// Close releases the native tree. Safe to call on nil.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the source covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	return NodeText(n, t.Source)
}

// Parse parses content with the named grammar.
//
// # Outputs
//
//   - *Tree: Parsed tree; the caller must Close it
//   - error: ErrUnsupportedLanguage, ErrFileTooLarge, ErrInvalidContent or a
//     wrapped tree-sitter failure, always as a *ParseError
func Parse(ctx context.Context, grammar, filePath string, content []byte, opts ...Option) (tree *Tree, err error) {
	o := options{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := startParseSpan(ctx, grammar, filePath, len(content))
	defer span.End()
	start := time.Now()
	defer func() {
		hasErrors := tree != nil && tree.Root != nil && tree.Root.HasError()
		recordParseMetrics(ctx, grammar, time.Since(start), err == nil, hasErrors)
	}()

	if err := ctx.Err(); err != nil {
		return nil, WrapParseError(fmt.Errorf("parse canceled before start: %w", err), filePath)
	}
	if int64(len(content)) > o.maxFileSize {
		return nil, WrapParseError(fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), o.maxFileSize), filePath)
	}
	if !utf8.Valid(content) {
		return nil, WrapParseError(fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent), filePath)
	}

	lang, err := languageFor(grammar)
	if err != nil {
		return nil, WrapParseError(err, filePath)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	native, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, WrapParseError(fmt.Errorf("%w: %v", ErrParseFailed, err), filePath)
	}
	if native == nil || native.RootNode() == nil {
		if native != nil {
			native.Close()
		}
		return nil, WrapParseError(fmt.Errorf("%w: tree-sitter returned no tree", ErrParseFailed), filePath)
	}

	return &Tree{
		Grammar: grammar,
		Source:  content,
		Root:    native.RootNode(),
		tree:    native,
	}, nil
}

// =============================================================================
// NODE HELPERS
// =============================================================================

// NodeText returns the source covered by n, clamped to src.
func NodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := int(n.StartByte()), int(n.EndByte())
	if end > len(src) {
		end = len(src)
	}
	if start > end {
		return ""
	}
	return string(src[start:end])
}

// FieldText returns the text of n's child under field, or "".
func FieldText(n *sitter.Node, field string, src []byte) string {
	if n == nil {
		return ""
	}
	return NodeText(n.ChildByFieldName(field), src)
}

// ChildOfType returns the first direct child with the given type, or nil.
func ChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		for _, t := range types {
			if child.Type() == t {
				return child
			}
		}
	}
	return nil
}

// HasChildOfType reports whether n has a direct child of the given type.
func HasChildOfType(n *sitter.Node, t string) bool {
	return ChildOfType(n, t) != nil
}

// Walk visits n and its named descendants in pre-order. Returning false
// skips the visited node's children.
func Walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		Walk(child, visit)
	}
}

// CollectDiagnostics returns ERROR and MISSING nodes as diagnostics, at most
// maxDiagnostics of them.
func CollectDiagnostics(root *sitter.Node, src []byte) []commonast.Diagnostic {
	diags := make([]commonast.Diagnostic, 0)
	if root == nil || !root.HasError() {
		return diags
	}
	collectDiagnostics(root, src, &diags, 0)
	return diags
}

func collectDiagnostics(n *sitter.Node, src []byte, diags *[]commonast.Diagnostic, depth int) {
	if depth > 1000 || len(*diags) >= maxDiagnostics {
		return
	}

	if n.IsError() || n.IsMissing() {
		point := n.StartPoint()
		msg := "Syntax error"
		if n.IsMissing() {
			msg = fmt.Sprintf("Missing %s", n.Type())
		} else if text := NodeText(n, src); text != "" && len(text) < 100 {
			msg = fmt.Sprintf("Unexpected: %s", truncate(text, 50))
		}
		*diags = append(*diags, commonast.Diagnostic{
			Message:  msg,
			Line:     int(point.Row) + 1,
			Column:   int(point.Column),
			Severity: commonast.DiagnosticError,
		})
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		collectDiagnostics(child, src, diags, depth+1)
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
