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

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/syntax"
)

// NewCSharpAdapter creates the C# adapter.
//
// "sealed" maps to ModifierFinal. For type declarations with a base list,
// "baseClass" holds the literal list and "extendsClass" its first entry.
// C# does not distinguish a base class from interfaces syntactically, so
// the first entry is assumed to be the class.
func NewCSharpAdapter(opts ...Option) LanguageAdapter {
	return newTreeSitterAdapter(document.LanguageCSharp, syntax.GrammarCSharp, []string{".cs"}, mapCSharpNode, opts...)
}

func mapCSharpNode(n *sitter.Node, src []byte) mapping {
	switch n.Type() {
	case "class_declaration", "record_declaration":
		return csharpTypeDeclaration(commonast.KindClassDeclaration, n, src)
	case "interface_declaration":
		return csharpTypeDeclaration(commonast.KindInterfaceDeclaration, n, src)
	case "struct_declaration", "record_struct_declaration":
		return csharpTypeDeclaration(commonast.KindStructDeclaration, n, src)

	case "method_declaration":
		return mapping{kind: commonast.KindMethodDeclaration, name: syntax.FieldText(n, "name", src), modifiers: csharpModifiers(n, src)}
	case "constructor_declaration":
		return mapping{kind: commonast.KindConstructorDeclaration, name: syntax.FieldText(n, "name", src), modifiers: csharpModifiers(n, src)}
	case "property_declaration":
		return mapping{kind: commonast.KindPropertyDeclaration, name: syntax.FieldText(n, "name", src), modifiers: csharpModifiers(n, src)}
	case "field_declaration":
		return mapping{kind: commonast.KindFieldDeclaration, name: declaratorName(n, src), modifiers: csharpModifiers(n, src)}
	case "local_declaration_statement":
		return mapping{kind: commonast.KindVariableDeclaration, name: declaratorName(n, src)}

	case "if_statement":
		return mapping{kind: commonast.KindIfStatement}
	case "switch_statement", "switch_expression":
		return mapping{kind: commonast.KindSwitchStatement}
	case "try_statement":
		return mapping{kind: commonast.KindTryStatement}
	case "for_statement", "foreach_statement", "for_each_statement":
		return mapping{kind: commonast.KindForStatement}
	case "while_statement", "do_statement":
		return mapping{kind: commonast.KindWhileStatement}

	case "object_creation_expression":
		return mapping{kind: commonast.KindNewExpression, name: simpleTypeName(syntax.FieldText(n, "type", src))}
	case "invocation_expression":
		return mapping{kind: commonast.KindCallExpression, name: invocationName(n.ChildByFieldName("function"), src)}
	case "member_access_expression":
		return mapping{kind: commonast.KindMemberAccess, name: syntax.FieldText(n, "name", src)}
	case "assignment_expression":
		return mapping{kind: commonast.KindAssignmentExpression, name: syntax.FieldText(n, "left", src)}
	case "cast_expression":
		return mapping{kind: commonast.KindTypeAssertion, name: simpleTypeName(syntax.FieldText(n, "type", src))}
	case "as_expression":
		return mapping{kind: commonast.KindTypeAssertion, name: simpleTypeName(syntax.NodeText(lastNamedChild(n), src))}
	case "identifier", "identifier_name":
		return mapping{kind: commonast.KindIdentifier, name: syntax.NodeText(n, src)}
	case "binary_expression":
		return mapping{kind: commonast.KindBinaryExpression}
	case "parameter":
		return mapping{kind: commonast.KindParameterDeclaration, name: syntax.FieldText(n, "name", src)}
	}
	return mapping{kind: commonast.KindUnknown}
}

func csharpTypeDeclaration(kind commonast.NodeKind, n *sitter.Node, src []byte) mapping {
	m := mapping{
		kind:      kind,
		name:      syntax.FieldText(n, "name", src),
		modifiers: csharpModifiers(n, src),
	}
	if bases := syntax.ChildOfType(n, "base_list"); bases != nil {
		literal := strings.TrimSpace(strings.TrimPrefix(syntax.NodeText(bases, src), ":"))
		m.meta = map[string]string{commonast.MetaBaseClass: literal}
		if first := simpleTypeName(syntax.NodeText(firstNamedChild(bases), src)); first != "" {
			m.meta[commonast.MetaExtendsClass] = first
		}
	}
	return m
}

func csharpModifiers(n *sitter.Node, src []byte) []commonast.Modifier {
	var out []commonast.Modifier
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || child.Type() != "modifier" {
			continue
		}
		keyword := strings.ToLower(strings.TrimSpace(syntax.NodeText(child, src)))
		if keyword == "sealed" {
			out = append(out, commonast.ModifierFinal)
			continue
		}
		if m, ok := commonast.ParseModifier(keyword); ok {
			out = append(out, m)
		}
	}
	return out
}

func invocationName(fn *sitter.Node, src []byte) string {
	if fn == nil {
		return ""
	}
	if fn.Type() == "member_access_expression" {
		return simpleTypeName(syntax.FieldText(fn, "name", src))
	}
	return memberName(fn, src)
}
