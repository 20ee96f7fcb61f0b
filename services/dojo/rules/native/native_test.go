// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package native

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, p rules.Provider, path, src string) (*document.Document, []rules.Violation) {
	t.Helper()
	doc := document.New(path, []byte(src))
	got, err := p.Analyze(context.Background(), doc)
	require.NoError(t, err)
	return doc, got
}

func textOf(doc *document.Document, v rules.Violation) string {
	return string(doc.Text[v.Range.StartOffset:v.Range.EndOffset])
}

func codes(vs []rules.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

func repeat(line string, n int) string {
	return strings.Repeat(line+"\n", n)
}

// =============================================================================
// Provider set
// =============================================================================

func TestAll(t *testing.T) {
	providers := All()
	require.Len(t, providers, 8)

	want := []string{"singleton", "factory", "observer", "strategy", "decorator", "adapter", "facade", "proxy"}
	for i, p := range providers {
		assert.Equal(t, want[i], p.PatternName())
		assert.NotEmpty(t, p.Name())
		assert.NotEmpty(t, p.Description())
	}
}

func TestProviders_IgnoreOtherLanguages(t *testing.T) {
	src := repeat("new Widget(); fetch(); if (a) {} else if (b) {} else if (c) {}", 4)
	for _, p := range All() {
		for _, path := range []string{"Main.java", "tool.py", "notes.txt"} {
			_, got := run(t, p, path, src)
			assert.Empty(t, got, "%s on %s", p.PatternName(), path)
		}
	}
}

func TestProviders_InvalidContentIsAnError(t *testing.T) {
	doc := document.New("bad.ts", []byte{0xff, 0xfe})
	_, err := NewFactory().Analyze(context.Background(), doc)
	assert.Error(t, err)
}

func TestProviders_Deterministic(t *testing.T) {
	src := `
class Base {}
class A extends Base {}
class B extends A {}
class C extends B {}
const w1 = new Widget(); const w2 = new Widget(); const w3 = new Widget();
load(); load(); load();
`
	for _, p := range All() {
		_, first := run(t, p, "app.ts", src)
		_, second := run(t, p, "app.ts", src)
		assert.Equal(t, first, second, p.PatternName())
	}
}

// =============================================================================
// Singleton
// =============================================================================

func TestSingleton(t *testing.T) {
	t.Run("public constructor", func(t *testing.T) {
		src := "class Config {\n  static instance = new Config();\n  constructor() {}\n}\n"
		doc, got := run(t, NewSingleton(), "config.ts", src)

		require.Len(t, got, 1)
		assert.Equal(t, rules.CodeSingletonNonPrivateConstructor, got[0].Code)
		assert.Equal(t, rules.SeverityWarning, got[0].Severity)
		assert.Equal(t, "Singleton 'Config' has a non-private constructor. Consider making it private or protected.", got[0].Message)
		assert.Equal(t, "constructor() {}", textOf(doc, got[0]))
		assert.Equal(t, 2, got[0].Line())
	})

	t.Run("private constructor", func(t *testing.T) {
		src := "class Config {\n  private static instance = new Config();\n  private constructor() {}\n}\n"
		_, got := run(t, NewSingleton(), "config.ts", src)
		assert.Empty(t, got)
	})

	t.Run("implicit constructor", func(t *testing.T) {
		src := "export class Registry {\n  static shared = new Registry();\n}\n"
		doc, got := run(t, NewSingleton(), "registry.ts", src)

		require.Len(t, got, 1)
		assert.Equal(t, rules.CodeSingletonImplicitPublicConstructor, got[0].Code)
		assert.Equal(t, "class Registry", textOf(doc, got[0]))
	})

	t.Run("multiple instances", func(t *testing.T) {
		src := "class Pool {\n  static a = new Pool();\n  static b = new Pool();\n  constructor() {}\n}\n"
		doc, got := run(t, NewSingleton(), "pool.ts", src)

		require.Equal(t, []string{rules.CodeSingletonNonPrivateConstructor, rules.CodeSingletonMultipleInstances}, codes(got))
		assert.Equal(t, rules.SeverityError, got[1].Severity)
		assert.Equal(t, "Singleton 'Pool' has multiple static instances (2). This violates the singleton pattern.", got[1].Message)
		assert.Equal(t, 1, got[1].Line())
		assert.Contains(t, textOf(doc, got[1]), "static a = new Pool()")
	})

	t.Run("static field of another class", func(t *testing.T) {
		src := "class Service {\n  static logger = new Logger();\n  constructor() {}\n}\n"
		_, got := run(t, NewSingleton(), "service.ts", src)
		assert.Empty(t, got)
	})

	t.Run("javascript", func(t *testing.T) {
		src := "class Store {\n  static instance = new Store();\n}\n"
		_, got := run(t, NewSingleton(), "store.js", src)
		assert.Equal(t, []string{rules.CodeSingletonImplicitPublicConstructor}, codes(got))
	})
}

// =============================================================================
// Factory
// =============================================================================

func TestFactory(t *testing.T) {
	t.Run("three instances", func(t *testing.T) {
		src := "const a = new Widget();\nconst b = new Widget(1);\nconst c = new ui.Widget();\n"
		doc, got := run(t, NewFactory(), "app.ts", src)

		require.Len(t, got, 1)
		assert.Equal(t, rules.CodeFactoryMultipleInstantiation, got[0].Code)
		assert.Equal(t, rules.SeverityInformation, got[0].Severity)
		assert.Equal(t, "'Widget' is instantiated 3 times in this file. Consider using a Factory to centralize creation.", got[0].Message)
		assert.Equal(t, "new Widget()", textOf(doc, got[0]))
	})

	t.Run("two instances", func(t *testing.T) {
		_, got := run(t, NewFactory(), "app.ts", "new Widget();\nnew Widget();\n")
		assert.Empty(t, got)
	})

	t.Run("first occurrence order and cap", func(t *testing.T) {
		var b strings.Builder
		for _, name := range []string{"F", "E", "D", "C", "B", "A"} {
			b.WriteString(repeat("new "+name+"();", 3))
		}
		_, got := run(t, NewFactory(), "many.ts", b.String())

		require.Len(t, got, 5)
		assert.Contains(t, got[0].Message, "'F'")
		assert.Contains(t, got[4].Message, "'B'")
	})
}

// =============================================================================
// Observer
// =============================================================================

func TestObserver(t *testing.T) {
	t.Run("listener never removed", func(t *testing.T) {
		src := "window.addEventListener('resize', onResize);\n"
		doc, got := run(t, NewObserver(), "view.ts", src)

		require.Equal(t, []string{rules.CodeObserverUnsubscribed}, codes(got))
		assert.Equal(t, rules.SeverityWarning, got[0].Severity)
		assert.Equal(t, "addEventListener", textOf(doc, got[0]))
	})

	t.Run("listener removed", func(t *testing.T) {
		src := "el.addEventListener('x', f);\nel.removeEventListener('x', f);\n"
		_, got := run(t, NewObserver(), "view.ts", src)
		assert.Empty(t, got)
	})

	t.Run("more subscribes than unsubscribes", func(t *testing.T) {
		src := "a$.subscribe(f);\nb$.subscribe(g);\nsub.unsubscribe();\n"
		doc, got := run(t, NewObserver(), "view.ts", src)

		require.Equal(t, []string{rules.CodeObserverSubscription}, codes(got))
		assert.Equal(t, rules.SeverityInformation, got[0].Severity)
		assert.Equal(t, "subscribe", textOf(doc, got[0]))
		assert.Equal(t, 0, got[0].Line())
	})

	t.Run("balanced subscriptions", func(t *testing.T) {
		_, got := run(t, NewObserver(), "view.ts", "a$.subscribe(f);\nsub.unsubscribe();\n")
		assert.Empty(t, got)
	})
}

// =============================================================================
// Strategy
// =============================================================================

func TestStrategy(t *testing.T) {
	t.Run("long switch", func(t *testing.T) {
		src := "switch (k) {\n case 1: break;\n case 2: break;\n case 3: break;\n default: break;\n}\n"
		_, got := run(t, NewStrategy(), "s.ts", src)

		require.Equal(t, []string{rules.CodeStrategyLongSwitch}, codes(got))
		assert.Equal(t, "Long switch statement with 4 cases detected. Consider using Strategy pattern.", got[0].Message)
	})

	t.Run("short switch", func(t *testing.T) {
		src := "switch (k) {\n case 1: break;\n case 2: break;\n default: break;\n}\n"
		_, got := run(t, NewStrategy(), "s.ts", src)
		assert.Empty(t, got)
	})

	t.Run("else-if depth two", func(t *testing.T) {
		src := "if (a) { x(); } else if (b) { y(); } else if (c) { z(); }\n"
		_, got := run(t, NewStrategy(), "s.ts", src)

		require.Equal(t, []string{rules.CodeStrategyLongIfElse}, codes(got))
		assert.Equal(t, "Long if-else chain detected (depth 2). Consider Strategy pattern.", got[0].Message)
	})

	t.Run("nested chain qualifies again", func(t *testing.T) {
		src := "if (a) {} else if (b) {} else if (c) {} else if (d) {} else {}\n"
		_, got := run(t, NewStrategy(), "s.js", src)

		require.Len(t, got, 2)
		assert.Contains(t, got[0].Message, "depth 3")
		assert.Contains(t, got[1].Message, "depth 2")
	})

	t.Run("single else-if", func(t *testing.T) {
		_, got := run(t, NewStrategy(), "s.ts", "if (a) {} else if (b) {} else {}\n")
		assert.Empty(t, got)
	})
}

// =============================================================================
// Decorator
// =============================================================================

func TestDecorator(t *testing.T) {
	src := `class A {}
class B extends A {}
class C extends B {}
class D extends C {}
class E extends D {}
`
	doc, got := run(t, NewDecorator(), "chain.ts", src)

	require.Len(t, got, 2)
	assert.Equal(t, "Class 'D' is part of a deep inheritance hierarchy (depth: 3). Consider using Decorator pattern.", got[0].Message)
	assert.Equal(t, "class D extends", textOf(doc, got[0]))
	assert.Equal(t, 3, got[0].Line())
	assert.Equal(t, "Class 'E' is part of a deep inheritance hierarchy (depth: 4). Consider using Decorator pattern.", got[1].Message)
	assert.Equal(t, "class E extends", textOf(doc, got[1]))
}

func TestDecorator_CycleTerminates(t *testing.T) {
	src := "class A extends C {}\nclass B extends A {}\nclass C extends B {}\n"
	_, got := run(t, NewDecorator(), "cycle.js", src)

	require.Len(t, got, 3)
	for _, v := range got {
		assert.Contains(t, v.Message, "(depth: 3)")
	}
}

func TestDecorator_MemberBase(t *testing.T) {
	src := "class B extends lib.A {}\nclass C extends B {}\nclass D extends C {}\nclass E extends D {}\n"
	_, got := run(t, NewDecorator(), "member.ts", src)

	require.Len(t, got, 2)
	assert.Contains(t, got[0].Message, "Class 'D'")
	assert.Contains(t, got[0].Message, "(depth: 3)")
}

// =============================================================================
// Adapter
// =============================================================================

func TestAdapter(t *testing.T) {
	t.Run("type assertions", func(t *testing.T) {
		src := "const a = x as Foo;\nconst b = y as Bar;\nconst c = <Baz>z;\nconst d = w as unknown;\n"
		doc, got := run(t, NewAdapter(), "a.ts", src)

		require.Equal(t, []string{rules.CodeAdapterTypeAssertion}, codes(got))
		assert.Equal(t, "x as Foo", textOf(doc, got[0]))
	})

	t.Run("three assertions", func(t *testing.T) {
		_, got := run(t, NewAdapter(), "a.ts", "a as A;\nb as B;\nc as C;\n")
		assert.Empty(t, got)
	})

	t.Run("try statements", func(t *testing.T) {
		src := repeat("try { go(); } catch (e) { }", 3)
		doc, got := run(t, NewAdapter(), "a.ts", src)

		require.Equal(t, []string{rules.CodeAdapterTryCatch}, codes(got))
		assert.Equal(t, "try {", textOf(doc, got[0]))
	})

	t.Run("two try statements", func(t *testing.T) {
		_, got := run(t, NewAdapter(), "a.ts", repeat("try { go(); } catch (e) { }", 2))
		assert.Empty(t, got)
	})
}

// =============================================================================
// Facade
// =============================================================================

func facadeClass(publicMethods int) string {
	var b strings.Builder
	b.WriteString("class Hub {\n  constructor() {}\n  private hidden() {}\n  get size() { return 0; }\n")
	for i := 0; i < publicMethods; i++ {
		b.WriteString("  m")
		b.WriteByte(byte('a' + i))
		b.WriteString("() {}\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func TestFacade(t *testing.T) {
	doc, got := run(t, NewFacade(), "hub.ts", facadeClass(8))

	require.Equal(t, []string{rules.CodeFacadeComplexInterface}, codes(got))
	assert.Equal(t, "Class 'Hub' has 8 public methods. Consider using Facade pattern to simplify the interface.", got[0].Message)
	assert.True(t, strings.HasPrefix(textOf(doc, got[0]), "class Hub {"))

	_, got = run(t, NewFacade(), "hub.ts", facadeClass(7))
	assert.Empty(t, got)
}

func TestFacade_MethodSignatures(t *testing.T) {
	abstractClass := func(n int) string {
		var b strings.Builder
		b.WriteString("abstract class Port {\n")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "  abstract op%d(): void;\n", i)
		}
		b.WriteString("}\n")
		return b.String()
	}

	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "eight abstract methods",
			src:     abstractClass(8),
			message: "Class 'Port' has 8 public methods. Consider using Facade pattern to simplify the interface.",
		},
		{
			name: "seven abstract methods",
			src:  abstractClass(7),
		},
		{
			name: "overload signatures",
			src: "class Api {\n  a(): void;\n  a(x?: number) {}\n  b() {}\n  c() {}\n  d() {}\n  e() {}\n  f() {}\n  g() {}\n" +
				"  constructor() {}\n  get size() { return 1; }\n}\n",
			message: "Class 'Api' has 8 public methods. Consider using Facade pattern to simplify the interface.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := run(t, NewFacade(), "port.ts", tt.src)
			if tt.message == "" {
				assert.Empty(t, got)
				return
			}
			require.Equal(t, []string{rules.CodeFacadeComplexInterface}, codes(got))
			assert.Equal(t, tt.message, got[0].Message)
		})
	}
}

// =============================================================================
// Proxy
// =============================================================================

func TestProxy(t *testing.T) {
	t.Run("three fetches", func(t *testing.T) {
		src := "fetch('/a');\napi.fetch('/b');\nfetch('/c');\nrender();\n"
		doc, got := run(t, NewProxy(), "p.ts", src)

		require.Equal(t, []string{rules.CodeProxyExpensiveOperation}, codes(got))
		assert.Equal(t, "Expensive operation 'fetch' called 3 times. Consider Proxy pattern (lazy loading/caching).", got[0].Message)
		assert.Equal(t, "fetch('/a')", textOf(doc, got[0]))
	})

	t.Run("two fetches", func(t *testing.T) {
		_, got := run(t, NewProxy(), "p.ts", "fetch('/a');\nfetch('/b');\n")
		assert.Empty(t, got)
	})

	t.Run("other names ignored", func(t *testing.T) {
		_, got := run(t, NewProxy(), "p.tsx", repeat("fetchAll();", 5))
		assert.Empty(t, got)
	})
}
