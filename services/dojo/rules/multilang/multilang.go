// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package multilang holds pattern providers that work on the common AST, so
// one implementation covers every language with a registered adapter.
//
// Factory and decorator findings describe the file as a whole and are
// placed on the first ten bytes of the document.
package multilang

import (
	"context"
	"fmt"

	"github.com/AleutianAI/PatternDojo/services/dojo/adapters"
	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

const (
	factoryThreshold    = 2
	maxInheritanceDepth = 2
	placeholderLength   = 10
)

// All returns the three multi-language providers sharing one adapter
// registry.
func All(registry *adapters.Registry) []rules.Provider {
	return []rules.Provider{
		NewSingleton(registry),
		NewFactory(registry),
		NewDecorator(registry),
	}
}

type detector func(doc *document.Document, result *commonast.ParseResult) []rules.Violation

type provider struct {
	pattern     string
	name        string
	description string
	adapters    *adapters.Registry
	detect      detector
}

func (p *provider) Name() string        { return p.name }
func (p *provider) Description() string { return p.description }
func (p *provider) PatternName() string { return p.pattern }

func (p *provider) Analyze(ctx context.Context, doc *document.Document) ([]rules.Violation, error) {
	result := p.adapters.Parse(ctx, doc)
	if result == nil || result.RootNode == nil {
		return nil, nil
	}
	return p.detect(doc, result), nil
}

// NewSingleton flags classes whose constructors are explicitly public while
// none is private.
func NewSingleton(registry *adapters.Registry) rules.Provider {
	return &provider{
		pattern:     "multilang-singleton",
		name:        "Multi-Language Singleton Detector",
		description: "Detects Singleton pattern violations across Java, Python and C#",
		adapters:    registry,
		detect:      detectSingleton,
	}
}

func detectSingleton(doc *document.Document, result *commonast.ParseResult) []rules.Violation {
	var out []rules.Violation
	for _, class := range result.RootNode.FindAll(commonast.KindClassDeclaration) {
		hasPublic, hasPrivate := false, false
		for _, ctor := range constructorsOf(class) {
			switch {
			case ctor.HasModifier(commonast.ModifierPrivate):
				hasPrivate = true
			case ctor.HasModifier(commonast.ModifierPublic):
				hasPublic = true
			}
		}
		if !hasPublic || hasPrivate {
			continue
		}
		name := class.Name
		if name == "" {
			name = "Unknown"
		}
		out = append(out, rules.Violation{
			Range:    doc.RangeOf(class.StartPosition, class.EndPosition),
			Message:  fmt.Sprintf("Class '%s' has public constructor. Singleton pattern requires private constructor.", name),
			Severity: rules.SeverityWarning,
			Code:     rules.CodeSingletonPublicConstructor,
		})
	}
	return out
}

// constructorsOf returns the constructors declared by class itself, not by
// nested types.
func constructorsOf(class *commonast.Node) []*commonast.Node {
	var ctors []*commonast.Node
	class.Walk(func(n *commonast.Node) bool {
		if n == class {
			return true
		}
		if n.Kind.IsTypeDeclaration() {
			return false
		}
		if n.Kind == commonast.KindConstructorDeclaration {
			ctors = append(ctors, n)
			return false
		}
		return true
	})
	return ctors
}

// NewFactory flags types instantiated more than twice in one file.
func NewFactory(registry *adapters.Registry) rules.Provider {
	return &provider{
		pattern:     "multilang-factory",
		name:        "Multi-Language Factory Detector",
		description: "Detects Factory pattern opportunities across multiple languages",
		adapters:    registry,
		detect:      detectFactory,
	}
}

func detectFactory(doc *document.Document, result *commonast.ParseResult) []rules.Violation {
	var order []string
	counts := make(map[string]int)
	for _, n := range result.RootNode.FindAll(commonast.KindNewExpression) {
		if n.Name == "" {
			continue
		}
		if counts[n.Name] == 0 {
			order = append(order, n.Name)
		}
		counts[n.Name]++
	}

	var out []rules.Violation
	for _, name := range order {
		if counts[name] <= factoryThreshold {
			continue
		}
		out = append(out, rules.Violation{
			Range:    placeholder(doc),
			Message:  fmt.Sprintf("Class '%s' is instantiated %d times. Consider implementing Factory pattern.", name, counts[name]),
			Severity: rules.SeverityInformation,
			Code:     rules.CodeFactoryMultipleInstantiation,
		})
	}
	return out
}

// NewDecorator flags classes deeper than two levels in a single-inheritance
// chain declared in the same file.
func NewDecorator(registry *adapters.Registry) rules.Provider {
	return &provider{
		pattern:     "multilang-decorator",
		name:        "Multi-Language Decorator Detector",
		description: "Detects deep inheritance hierarchies suggesting Decorator pattern",
		adapters:    registry,
		detect:      detectDecorator,
	}
}

func detectDecorator(doc *document.Document, result *commonast.ParseResult) []rules.Violation {
	var order []string
	parents := make(map[string]string)
	for _, class := range result.RootNode.FindAll(commonast.KindClassDeclaration) {
		parent := class.Meta(commonast.MetaExtendsClass)
		if class.Name == "" || parent == "" {
			continue
		}
		if _, seen := parents[class.Name]; !seen {
			order = append(order, class.Name)
		}
		parents[class.Name] = parent
	}

	var out []rules.Violation
	for _, name := range order {
		depth := inheritanceDepth(parents, name, make(map[string]bool))
		if depth <= maxInheritanceDepth {
			continue
		}
		out = append(out, rules.Violation{
			Range:    placeholder(doc),
			Message:  fmt.Sprintf("Class '%s' is part of a deep inheritance hierarchy (depth: %d). Consider Decorator pattern.", name, depth),
			Severity: rules.SeverityInformation,
			Code:     rules.CodeDecoratorDeepHierarchy,
		})
	}
	return out
}

func inheritanceDepth(parents map[string]string, name string, visited map[string]bool) int {
	parent, ok := parents[name]
	if !ok || visited[name] {
		return 0
	}
	visited[name] = true
	return 1 + inheritanceDepth(parents, parent, visited)
}

func placeholder(doc *document.Document) document.Range {
	return doc.RangeOf(0, min(placeholderLength, len(doc.Text)))
}
