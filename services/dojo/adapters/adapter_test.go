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

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const javaSource = `package demo;

public class Service extends BaseService {
    private static Service instance;

    public Service() {}

    public void run() {
        List<String> a = new java.util.ArrayList<String>();
        Object b = new Widget();
        String s = (String) a.get(0);
        helper.call();
    }
}
`

const pythonSource = `class Cache(BaseCache):
    def __init__(self):
        self._store = {}

    @staticmethod
    def create():
        return Cache()

    def __evict(self):
        pass

    async def _load(self, key: str):
        return self.loader.load(key)


def helper():
    return Cache()
`

const csharpSource = `namespace Demo {
    public sealed class Logger : BaseLogger, IDisposable {
        private Logger() { }

        public static Logger Instance { get; } = new Logger();

        public void Write(object o) {
            var s = o as string;
            var n = (int)o;
            Console.WriteLine(s);
        }
    }
}
`

// namesOf returns the names of all nodes of a kind in pre-order.
func namesOf(root *commonast.Node, kind commonast.NodeKind) []string {
	var out []string
	for _, n := range root.FindAll(kind) {
		out = append(out, n.Name)
	}
	return out
}

func findNamed(t *testing.T, root *commonast.Node, kind commonast.NodeKind, name string) *commonast.Node {
	t.Helper()
	for _, n := range root.FindAll(kind) {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("no %s named %q", kind, name)
	return nil
}

// assertWellFormed checks containment and ordering of every node's children.
func assertWellFormed(t *testing.T, root *commonast.Node) {
	t.Helper()
	root.Walk(func(n *commonast.Node) bool {
		prevEnd := n.StartPosition
		for _, c := range n.Children {
			assert.GreaterOrEqual(t, c.StartPosition, prevEnd, "children overlap in %s", n.Kind)
			assert.LessOrEqual(t, c.EndPosition, n.EndPosition, "child escapes %s", n.Kind)
			prevEnd = c.EndPosition
		}
		return true
	})
}

// =============================================================================
// Java
// =============================================================================

func TestJavaAdapter_Parse(t *testing.T) {
	adapter := NewJavaAdapter()
	result := adapter.Parse(context.Background(), "Service.java", []byte(javaSource))

	require.NotNil(t, result)
	require.False(t, result.Degraded)
	assert.Equal(t, "java", result.Language)
	assert.Empty(t, result.Diagnostics)
	root := result.RootNode
	assertWellFormed(t, root)

	class := findNamed(t, root, commonast.KindClassDeclaration, "Service")
	assert.True(t, class.HasModifier(commonast.ModifierPublic))
	assert.Equal(t, "BaseService", class.Meta(commonast.MetaExtendsClass))
	assert.Equal(t, 3, class.StartLine)

	ctor := findNamed(t, root, commonast.KindConstructorDeclaration, "Service")
	assert.Equal(t, []commonast.Modifier{commonast.ModifierPublic}, ctor.Modifiers)

	field := findNamed(t, root, commonast.KindFieldDeclaration, "instance")
	assert.True(t, field.HasModifier(commonast.ModifierPrivate))
	assert.True(t, field.HasModifier(commonast.ModifierStatic))

	assert.Equal(t, []string{"ArrayList", "Widget"}, namesOf(root, commonast.KindNewExpression))
	assert.Equal(t, []string{"get", "call"}, namesOf(root, commonast.KindCallExpression))
	assert.Equal(t, []string{"String"}, namesOf(root, commonast.KindTypeAssertion))

	findNamed(t, root, commonast.KindMethodDeclaration, "run")
}

func TestJavaAdapter_SymbolsAccumulate(t *testing.T) {
	result := NewJavaAdapter().Parse(context.Background(), "Service.java", []byte(javaSource))

	sym, ok := result.Symbols["Service"]
	require.True(t, ok)
	assert.Equal(t, commonast.KindClassDeclaration, sym.Kind)
	require.Len(t, sym.Declarations, 2)
	assert.Equal(t, commonast.KindConstructorDeclaration, sym.Declarations[1].Kind)
	assert.Equal(t, "Service.java", sym.Location.File)
	assert.Equal(t, 3, sym.Location.Line)
	assert.Empty(t, sym.Usages)

	_, ok = result.Symbols["run"]
	assert.True(t, ok)
}

func TestJavaAdapter_SyntaxErrorsAreDiagnostics(t *testing.T) {
	result := NewJavaAdapter().Parse(context.Background(), "Broken.java", []byte("class Broken { void run( { }\n"))

	require.NotNil(t, result)
	assert.False(t, result.Degraded)
	assert.NotEmpty(t, result.Diagnostics)
}

// =============================================================================
// Python
// =============================================================================

func TestPythonAdapter_Parse(t *testing.T) {
	result := NewPythonAdapter().Parse(context.Background(), "cache.py", []byte(pythonSource))

	require.False(t, result.Degraded)
	root := result.RootNode
	assertWellFormed(t, root)

	class := findNamed(t, root, commonast.KindClassDeclaration, "Cache")
	assert.Equal(t, "BaseCache", class.Meta(commonast.MetaExtendsClass))

	ctor := findNamed(t, root, commonast.KindConstructorDeclaration, "__init__")
	assert.Nil(t, ctor.Modifiers)

	create := findNamed(t, root, commonast.KindMethodDeclaration, "create")
	assert.True(t, create.HasModifier(commonast.ModifierStatic))

	evict := findNamed(t, root, commonast.KindMethodDeclaration, "__evict")
	assert.True(t, evict.HasModifier(commonast.ModifierPrivate))

	load := findNamed(t, root, commonast.KindMethodDeclaration, "_load")
	assert.True(t, load.HasModifier(commonast.ModifierProtected))
	assert.True(t, load.HasModifier(commonast.ModifierAsync))

	findNamed(t, root, commonast.KindFunctionDeclaration, "helper")
	findNamed(t, root, commonast.KindParameterDeclaration, "key")

	assert.Equal(t, []string{"Cache", "Cache"}, namesOf(root, commonast.KindNewExpression))
	assert.Contains(t, namesOf(root, commonast.KindCallExpression), "load")
	assert.Contains(t, namesOf(root, commonast.KindTypeAssertion), "str")

	for _, n := range root.FindAll(commonast.KindUnknown) {
		assert.NotEqual(t, "decorated_definition", n.Meta(commonast.MetaNativeType))
	}
}

// =============================================================================
// C#
// =============================================================================

func TestCSharpAdapter_Parse(t *testing.T) {
	result := NewCSharpAdapter().Parse(context.Background(), "Logger.cs", []byte(csharpSource))

	require.False(t, result.Degraded)
	root := result.RootNode
	assertWellFormed(t, root)

	class := findNamed(t, root, commonast.KindClassDeclaration, "Logger")
	assert.True(t, class.HasModifier(commonast.ModifierPublic))
	assert.True(t, class.HasModifier(commonast.ModifierFinal))
	assert.Equal(t, "BaseLogger", class.Meta(commonast.MetaExtendsClass))
	assert.Equal(t, "BaseLogger, IDisposable", class.Meta(commonast.MetaBaseClass))

	ctor := findNamed(t, root, commonast.KindConstructorDeclaration, "Logger")
	assert.True(t, ctor.HasModifier(commonast.ModifierPrivate))

	prop := findNamed(t, root, commonast.KindPropertyDeclaration, "Instance")
	assert.True(t, prop.HasModifier(commonast.ModifierStatic))

	assert.Equal(t, []string{"Logger"}, namesOf(root, commonast.KindNewExpression))
	assert.Equal(t, []string{"WriteLine"}, namesOf(root, commonast.KindCallExpression))
	assert.Contains(t, namesOf(root, commonast.KindTypeAssertion), "string")
}

// =============================================================================
// Degraded results
// =============================================================================

func TestAdapter_DegradedResults(t *testing.T) {
	exporter := logging.NewBufferedExporter()
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Quiet: true, Exporter: exporter})

	t.Run("invalid utf8", func(t *testing.T) {
		text := []byte{'x', 0xff, '\n', 'y'}
		result := NewPythonAdapter(WithLogger(logger)).Parse(context.Background(), "bad.py", text)

		require.True(t, result.Degraded)
		assert.Equal(t, commonast.KindUnknown, result.RootNode.Kind)
		assert.Equal(t, len(text), result.RootNode.EndPosition)
		assert.Equal(t, 2, result.RootNode.EndLine)
		assert.Empty(t, result.Symbols)
		assert.Empty(t, result.Diagnostics)
	})

	t.Run("too large", func(t *testing.T) {
		result := NewJavaAdapter(WithMaxFileSize(8)).Parse(context.Background(), "A.java", []byte(javaSource))
		assert.True(t, result.Degraded)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		result := NewCSharpAdapter().Parse(ctx, "A.cs", []byte(csharpSource))
		assert.True(t, result.Degraded)
	})

	t.Run("panicking mapper", func(t *testing.T) {
		boom := newTreeSitterAdapter("java", "java", []string{".java"}, func(_ *sitter.Node, _ []byte) mapping {
			panic("mapper bug")
		}, WithLogger(logger))

		result := boom.Parse(context.Background(), "A.java", []byte("class A {}"))
		assert.True(t, result.Degraded)
	})

	assert.Contains(t, exporter.Messages(logging.LevelWarn), "parse failed, using degraded result")
	assert.Contains(t, exporter.Messages(logging.LevelError), "adapter conversion panicked")
}

func TestAdapter_ExtensionPoints(t *testing.T) {
	adapter := NewJavaAdapter()

	sym, ok := adapter.FindSymbol("Service", "Service.java")
	assert.False(t, ok)
	assert.Nil(t, sym)
	assert.Empty(t, adapter.FindUsages("Service", "Service.java"))
	assert.NotNil(t, adapter.FindUsages("Service", "Service.java"))
}

func TestSimpleTypeName(t *testing.T) {
	tests := map[string]string{
		"Widget":                      "Widget",
		"java.util.ArrayList<String>": "ArrayList",
		"  Foo.Bar  ":                 "Bar",
		"List<Map<K, V>>":             "List",
		"int[]":                       "int",
		"":                            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, simpleTypeName(in), in)
	}
}
