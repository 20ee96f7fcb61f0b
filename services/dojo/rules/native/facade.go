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

const maxPublicMethods = 7

// NewFacade flags classes exposing more than seven non-private methods.
// Abstract methods and overload signatures count as declarations of their
// own. Constructors and get/set accessors are not counted.
func NewFacade() rules.Provider {
	return &provider{
		pattern:     "facade",
		name:        "Facade Pattern Detector",
		description: "Detects classes with bloated public interfaces",
		detect:      detectFacade,
	}
}

func detectFacade(s *scan) []rules.Violation {
	src := s.tree.Source
	var out []rules.Violation

	s.classes(func(class *sitter.Node, name string) {
		public := 0
		for _, m := range classMembers(class) {
			if !isMethodDeclaration(m) || syntax.FieldText(m, "name", src) == "constructor" || isAccessor(m) {
				continue
			}
			if accessibility(m, src) == "private" {
				continue
			}
			public++
		}
		if public > maxPublicMethods {
			out = append(out, violation(s.rangeOf(class), rules.SeverityInformation,
				rules.CodeFacadeComplexInterface,
				fmt.Sprintf("Class '%s' has %d public methods. Consider using Facade pattern to simplify the interface.", name, public)))
		}
	})
	return out
}

func isAccessor(method *sitter.Node) bool {
	return syntax.HasChildOfType(method, "get") || syntax.HasChildOfType(method, "set")
}

func isMethodDeclaration(member *sitter.Node) bool {
	switch member.Type() {
	case "method_definition", "method_signature", "abstract_method_signature":
		return true
	}
	return false
}
