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
)

// NewSingleton detects singletons that can still be constructed from
// outside: a class holding a static instance of itself whose constructor is
// not private, or that declares no constructor at all. It also flags
// classes holding more than one such static instance.
func NewSingleton() rules.Provider {
	return &provider{
		pattern:     "singleton",
		name:        "Singleton Pattern Detector",
		description: "Detects issues with Singleton pattern implementation",
		detect:      detectSingleton,
	}
}

type selfInstances struct {
	class string
	first *sitter.Node
	count int
}

func detectSingleton(s *scan) []rules.Violation {
	src := s.tree.Source
	var out []rules.Violation
	var multi []selfInstances

	s.classes(func(class *sitter.Node, className string) {
		var ctor *sitter.Node
		inst := selfInstances{class: className}

		for _, m := range classMembers(class) {
			if ctor == nil && isConstructor(m, src) {
				ctor = m
				continue
			}
			if !isStaticField(m) {
				continue
			}
			value := m.ChildByFieldName("value")
			if value == nil || value.Type() != "new_expression" {
				continue
			}
			if referencedName(value.ChildByFieldName("constructor"), src) != className {
				continue
			}
			if inst.first == nil {
				inst.first = m
			}
			inst.count++
		}

		if inst.count == 0 {
			return
		}

		switch {
		case ctor != nil && accessibility(ctor, src) != "private":
			out = append(out, violation(s.rangeOf(ctor), rules.SeverityWarning,
				rules.CodeSingletonNonPrivateConstructor,
				fmt.Sprintf("Singleton '%s' has a non-private constructor. Consider making it private or protected.", className)))
		case ctor == nil:
			nameEnd := class.ChildByFieldName("name").EndByte()
			out = append(out, violation(s.span(class.StartByte(), nameEnd), rules.SeverityWarning,
				rules.CodeSingletonImplicitPublicConstructor,
				fmt.Sprintf("Singleton '%s' may have implicit public constructor. Consider adding a private constructor.", className)))
		}

		if inst.count > 1 {
			multi = append(multi, inst)
		}
	})

	for _, inst := range multi {
		out = append(out, violation(s.rangeOf(inst.first), rules.SeverityError,
			rules.CodeSingletonMultipleInstances,
			fmt.Sprintf("Singleton '%s' has multiple static instances (%d). This violates the singleton pattern.", inst.class, inst.count)))
	}
	return out
}
