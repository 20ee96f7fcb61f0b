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
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/syntax"
)

// NewPythonAdapter creates the Python adapter.
//
// Python has no access keywords, so modifiers come from naming conventions
// ("__name" is private, "_name" protected, dunders neither) and from the
// @staticmethod and @abstractmethod decorators. decorated_definition nodes
// are flattened so the decorated class or function sits where the wrapper
// was. A call whose callee's last segment is capitalised is treated as an
// instantiation.
func NewPythonAdapter(opts ...Option) LanguageAdapter {
	return newTreeSitterAdapter(document.LanguagePython, syntax.GrammarPython, []string{".py", ".pyi"}, mapPythonNode, opts...)
}

func mapPythonNode(n *sitter.Node, src []byte) mapping {
	switch n.Type() {
	case "decorated_definition":
		return mapping{flatten: true}

	case "class_definition":
		name := syntax.FieldText(n, "name", src)
		m := mapping{
			kind:      commonast.KindClassDeclaration,
			name:      name,
			modifiers: pythonModifiers(n, name, src),
		}
		if base := firstBaseClass(n, src); base != "" {
			m.meta = map[string]string{commonast.MetaExtendsClass: base}
		}
		return m

	case "function_definition":
		name := syntax.FieldText(n, "name", src)
		kind := commonast.KindFunctionDeclaration
		if insideClass(n) {
			kind = commonast.KindMethodDeclaration
			if name == "__init__" {
				kind = commonast.KindConstructorDeclaration
			}
		}
		return mapping{kind: kind, name: name, modifiers: pythonModifiers(n, name, src)}

	case "if_statement":
		return mapping{kind: commonast.KindIfStatement}
	case "match_statement":
		return mapping{kind: commonast.KindSwitchStatement}
	case "try_statement":
		return mapping{kind: commonast.KindTryStatement}
	case "for_statement":
		return mapping{kind: commonast.KindForStatement}
	case "while_statement":
		return mapping{kind: commonast.KindWhileStatement}

	case "call":
		name := calleeName(n.ChildByFieldName("function"), src)
		if isCapitalized(name) {
			return mapping{kind: commonast.KindNewExpression, name: name}
		}
		return mapping{kind: commonast.KindCallExpression, name: name}
	case "attribute":
		return mapping{kind: commonast.KindMemberAccess, name: syntax.FieldText(n, "attribute", src)}
	case "assignment", "augmented_assignment":
		return mapping{kind: commonast.KindAssignmentExpression, name: syntax.FieldText(n, "left", src)}
	case "type":
		return mapping{kind: commonast.KindTypeAssertion, name: simpleTypeName(syntax.NodeText(n, src))}
	case "identifier":
		return mapping{kind: commonast.KindIdentifier, name: syntax.NodeText(n, src)}
	case "binary_operator", "boolean_operator", "comparison_operator":
		return mapping{kind: commonast.KindBinaryExpression}
	case "typed_parameter", "default_parameter", "typed_default_parameter":
		return mapping{kind: commonast.KindParameterDeclaration, name: parameterName(n, src)}
	}
	return mapping{kind: commonast.KindUnknown}
}

// insideClass reports whether a function definition is a class member.
func insideClass(n *sitter.Node) bool {
	p := n.Parent()
	if p != nil && p.Type() == "decorated_definition" {
		p = p.Parent()
	}
	if p == nil || p.Type() != "block" {
		return false
	}
	p = p.Parent()
	return p != nil && p.Type() == "class_definition"
}

func firstBaseClass(n *sitter.Node, src []byte) string {
	args := n.ChildByFieldName("superclasses")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		if child == nil || !child.IsNamed() || child.Type() == "keyword_argument" {
			continue
		}
		return simpleTypeName(syntax.NodeText(child, src))
	}
	return ""
}

// calleeName returns the last dotted segment of a call target.
func calleeName(fn *sitter.Node, src []byte) string {
	if fn == nil {
		return ""
	}
	if fn.Type() == "attribute" {
		return syntax.FieldText(fn, "attribute", src)
	}
	return memberName(fn, src)
}

func isCapitalized(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func parameterName(n *sitter.Node, src []byte) string {
	if name := syntax.FieldText(n, "name", src); name != "" {
		return name
	}
	return syntax.NodeText(syntax.ChildOfType(n, "identifier"), src)
}

func pythonModifiers(n *sitter.Node, name string, src []byte) []commonast.Modifier {
	var out []commonast.Modifier
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
	case strings.HasPrefix(name, "__"):
		out = append(out, commonast.ModifierPrivate)
	case strings.HasPrefix(name, "_"):
		out = append(out, commonast.ModifierProtected)
	}

	if syntax.HasChildOfType(n, "async") {
		out = append(out, commonast.ModifierAsync)
	}

	if p := n.Parent(); p != nil && p.Type() == "decorated_definition" {
		for i := 0; i < int(p.ChildCount()); i++ {
			child := p.Child(i)
			if child == nil || child.Type() != "decorator" {
				continue
			}
			switch simpleTypeName(strings.TrimPrefix(syntax.NodeText(child, src), "@")) {
			case "staticmethod":
				out = append(out, commonast.ModifierStatic)
			case "abstractmethod":
				out = append(out, commonast.ModifierAbstract)
			}
		}
	}
	return out
}
