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
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
	"github.com/AleutianAI/PatternDojo/services/dojo/syntax"
)

const maxInheritanceDepth = 2

// NewDecorator flags classes whose single-inheritance chain within the file
// is deeper than two levels.
func NewDecorator() rules.Provider {
	return &provider{
		pattern:     "decorator",
		name:        "Decorator Pattern Detector",
		description: "Detects deep inheritance hierarchies that could be decorators",
		detect:      detectDecorator,
	}
}

// subclass records a class with an extends clause and the byte span of its
// `class <Name> extends` head.
type subclass struct {
	name       string
	start, end uint32
}

func detectDecorator(s *scan) []rules.Violation {
	src := s.tree.Source
	parents := make(map[string]string)
	var order []subclass
	seen := make(map[string]bool)

	s.classes(func(class *sitter.Node, name string) {
		heritage := syntax.ChildOfType(class, "class_heritage")
		if heritage == nil {
			return
		}
		clause := syntax.ChildOfType(heritage, "extends_clause")
		if clause == nil {
			clause = heritage
		}
		value := clause.ChildByFieldName("value")
		if value == nil {
			value = clause.NamedChild(0)
		}
		parent := referencedName(value, src)
		if parent == "" {
			return
		}

		parents[name] = parent
		if seen[name] {
			return
		}
		seen[name] = true

		start := class.StartByte()
		if kw := syntax.ChildOfType(class, "class"); kw != nil {
			start = kw.StartByte()
		}
		end := heritage.StartByte()
		if kw := syntax.ChildOfType(clause, "extends"); kw != nil {
			end = kw.EndByte()
		}
		order = append(order, subclass{name: name, start: start, end: end})
	})

	depths := newDepthCache(parents)
	var out []rules.Violation
	for _, c := range order {
		if depth := depths.depth(c.name); depth > maxInheritanceDepth {
			out = append(out, violation(s.span(c.start, c.end), rules.SeverityInformation,
				rules.CodeDecoratorDeepHierarchy,
				fmt.Sprintf("Class '%s' is part of a deep inheritance hierarchy (depth: %d). Consider using Decorator pattern.", c.name, depth)))
		}
	}
	return out
}

// depthCache memoises inheritance depth over a child -> parent map. Cycles
// terminate through a visited set.
type depthCache struct {
	parents map[string]string
	cache   map[string]int
}

func newDepthCache(parents map[string]string) *depthCache {
	return &depthCache{parents: parents, cache: make(map[string]int)}
}

func (d *depthCache) depth(name string) int {
	if depth, ok := d.cache[name]; ok {
		return depth
	}
	current, ok := d.parents[name]
	if !ok {
		return 0
	}
	visited := map[string]bool{name: true}
	depth := 1
	for {
		next, ok := d.parents[current]
		if !ok || visited[current] {
			break
		}
		visited[current] = true
		depth++
		current = next
	}
	d.cache[name] = depth
	return depth
}
