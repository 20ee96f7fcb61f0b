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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/syntax"
)

// NewJavaAdapter creates the Java adapter.
//
// Modifiers are read from the declaration's "modifiers" node and the
// "extendsClass" metadata from its superclass clause.
func NewJavaAdapter(opts ...Option) LanguageAdapter {
	return newTreeSitterAdapter(document.LanguageJava, syntax.GrammarJava, []string{".java"}, mapJavaNode, opts...)
}

func mapJavaNode(n *sitter.Node, src []byte) mapping {
	switch n.Type() {
	case "class_declaration", "record_declaration", "enum_declaration":
		m := mapping{
			kind:      commonast.KindClassDeclaration,
			name:      syntax.FieldText(n, "name", src),
			modifiers: javaModifiers(n),
		}
		if sc := n.ChildByFieldName("superclass"); sc != nil {
			if parent := simpleTypeName(syntax.NodeText(firstNamedChild(sc), src)); parent != "" {
				m.meta = map[string]string{commonast.MetaExtendsClass: parent}
			}
		}
		return m
	case "interface_declaration":
		return mapping{kind: commonast.KindInterfaceDeclaration, name: syntax.FieldText(n, "name", src), modifiers: javaModifiers(n)}
	case "method_declaration":
		return mapping{kind: commonast.KindMethodDeclaration, name: syntax.FieldText(n, "name", src), modifiers: javaModifiers(n)}
	case "constructor_declaration":
		return mapping{kind: commonast.KindConstructorDeclaration, name: syntax.FieldText(n, "name", src), modifiers: javaModifiers(n)}
	case "field_declaration":
		return mapping{kind: commonast.KindFieldDeclaration, name: declaratorName(n, src), modifiers: javaModifiers(n)}
	case "local_variable_declaration":
		return mapping{kind: commonast.KindVariableDeclaration, name: declaratorName(n, src), modifiers: javaModifiers(n)}

	case "if_statement":
		return mapping{kind: commonast.KindIfStatement}
	case "switch_expression", "switch_statement":
		return mapping{kind: commonast.KindSwitchStatement}
	case "try_statement", "try_with_resources_statement":
		return mapping{kind: commonast.KindTryStatement}
	case "for_statement", "enhanced_for_statement":
		return mapping{kind: commonast.KindForStatement}
	case "while_statement", "do_statement":
		return mapping{kind: commonast.KindWhileStatement}

	case "object_creation_expression":
		return mapping{kind: commonast.KindNewExpression, name: simpleTypeName(syntax.FieldText(n, "type", src))}
	case "method_invocation":
		return mapping{kind: commonast.KindCallExpression, name: syntax.FieldText(n, "name", src)}
	case "assignment_expression":
		return mapping{kind: commonast.KindAssignmentExpression, name: syntax.FieldText(n, "left", src)}
	case "cast_expression":
		return mapping{kind: commonast.KindTypeAssertion, name: simpleTypeName(syntax.FieldText(n, "type", src))}
	case "field_access":
		return mapping{kind: commonast.KindMemberAccess, name: syntax.FieldText(n, "field", src)}
	case "identifier":
		return mapping{kind: commonast.KindIdentifier, name: syntax.NodeText(n, src)}
	case "binary_expression":
		return mapping{kind: commonast.KindBinaryExpression}
	case "formal_parameter", "spread_parameter":
		return mapping{kind: commonast.KindParameterDeclaration, name: syntax.FieldText(n, "name", src)}
	}
	return mapping{kind: commonast.KindUnknown}
}

// javaModifiers returns the keyword modifiers of a declaration. Annotations
// inside the modifiers node are ignored.
func javaModifiers(n *sitter.Node) []commonast.Modifier {
	mods := syntax.ChildOfType(n, "modifiers")
	if mods == nil {
		return nil
	}
	var out []commonast.Modifier
	for i := 0; i < int(mods.ChildCount()); i++ {
		child := mods.Child(i)
		if child == nil {
			continue
		}
		if m, ok := commonast.ParseModifier(child.Type()); ok {
			out = append(out, m)
		}
	}
	return out
}
