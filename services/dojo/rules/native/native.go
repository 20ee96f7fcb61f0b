// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package native holds the pattern providers that inspect TypeScript, TSX
// and JavaScript directly through their tree-sitter syntax trees.
//
// Every provider parses the document itself and returns no violations for
// files of other languages. Providers keep no state between calls.
package native

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
	"github.com/AleutianAI/PatternDojo/services/dojo/syntax"
)

// All returns the eight native providers in their default order.
func All() []rules.Provider {
	return []rules.Provider{
		NewSingleton(),
		NewFactory(),
		NewObserver(),
		NewStrategy(),
		NewDecorator(),
		NewAdapter(),
		NewFacade(),
		NewProxy(),
	}
}

// detector inspects one parsed file.
type detector func(s *scan) []rules.Violation

type provider struct {
	pattern     string
	name        string
	description string
	detect      detector
}

func (p *provider) Name() string        { return p.name }
func (p *provider) Description() string { return p.description }
func (p *provider) PatternName() string { return p.pattern }

func (p *provider) Analyze(ctx context.Context, doc *document.Document) ([]rules.Violation, error) {
	grammar := syntax.GrammarForPath(doc.Path)
	if !syntax.IsECMAScript(grammar) {
		return nil, nil
	}

	tree, err := syntax.Parse(ctx, grammar, doc.Path, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.pattern, err)
	}
	defer tree.Close()

	return p.detect(&scan{doc: doc, tree: tree}), nil
}

// scan couples a document with its syntax tree.
type scan struct {
	doc  *document.Document
	tree *syntax.Tree
}

func (s *scan) text(n *sitter.Node) string {
	return syntax.NodeText(n, s.tree.Source)
}

func (s *scan) rangeOf(n *sitter.Node) document.Range {
	return s.doc.RangeOf(int(n.StartByte()), int(n.EndByte()))
}

func (s *scan) span(start, end uint32) document.Range {
	return s.doc.RangeOf(int(start), int(end))
}

// each calls fn for every node of one of the given types, in pre-order.
func (s *scan) each(fn func(n *sitter.Node), types ...string) {
	syntax.Walk(s.tree.Root, func(n *sitter.Node) bool {
		t := n.Type()
		for _, want := range types {
			if t == want {
				fn(n)
				break
			}
		}
		return true
	})
}

func (s *scan) classes(fn func(class *sitter.Node, name string)) {
	s.each(func(n *sitter.Node) {
		if name := syntax.FieldText(n, "name", s.tree.Source); name != "" {
			fn(n, name)
		}
	}, "class_declaration", "abstract_class_declaration")
}

func violation(r document.Range, severity rules.Severity, code, message string) rules.Violation {
	return rules.Violation{Range: r, Message: message, Severity: severity, Code: code}
}

// =============================================================================
// NODE HELPERS
// =============================================================================

// referencedName returns the name an expression refers to: the identifier
// itself or the property of a member access. Anything else yields "".
func referencedName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier", "type_identifier", "property_identifier":
		return syntax.NodeText(n, src)
	case "member_expression":
		return syntax.FieldText(n, "property", src)
	}
	return ""
}

// nameNode returns the node carrying referencedName, or nil.
func nameNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "type_identifier", "property_identifier":
		return n
	case "member_expression":
		return n.ChildByFieldName("property")
	}
	return nil
}

// classMembers returns the named members of a class body.
func classMembers(class *sitter.Node) []*sitter.Node {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	members := make([]*sitter.Node, 0, body.NamedChildCount())
	for i := 0; i < int(body.NamedChildCount()); i++ {
		if m := body.NamedChild(i); m != nil {
			members = append(members, m)
		}
	}
	return members
}

func isConstructor(member *sitter.Node, src []byte) bool {
	return member.Type() == "method_definition" && syntax.FieldText(member, "name", src) == "constructor"
}

// accessibility returns "public", "private", "protected" or "".
func accessibility(member *sitter.Node, src []byte) string {
	return syntax.NodeText(syntax.ChildOfType(member, "accessibility_modifier"), src)
}

func isStaticField(member *sitter.Node) bool {
	switch member.Type() {
	case "public_field_definition", "field_definition":
		return syntax.HasChildOfType(member, "static")
	}
	return false
}
