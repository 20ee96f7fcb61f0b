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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

const (
	maxTypeAssertions = 3
	maxTryStatements  = 2
)

// NewAdapter flags files leaning on type assertions (more than three `as`
// or `<T>x` expressions) or on try statements (more than two).
func NewAdapter() rules.Provider {
	return &provider{
		pattern:     "adapter",
		name:        "Adapter Pattern Detector",
		description: "Detects heavy type coercion and repeated error trapping",
		detect:      detectAdapter,
	}
}

func detectAdapter(s *scan) []rules.Violation {
	var assertions, tries []*sitter.Node
	s.each(func(n *sitter.Node) {
		if n.Type() == "try_statement" {
			tries = append(tries, n)
			return
		}
		assertions = append(assertions, n)
	}, "as_expression", "type_assertion", "try_statement")

	var out []rules.Violation
	if len(assertions) > maxTypeAssertions {
		out = append(out, violation(s.rangeOf(assertions[0]), rules.SeverityInformation,
			rules.CodeAdapterTypeAssertion,
			"Multiple type assertions detected. Consider using an Adapter to bridge incompatible interfaces."))
	}
	if len(tries) > maxTryStatements {
		out = append(out, violation(tryHead(s, tries[0]), rules.SeverityInformation,
			rules.CodeAdapterTryCatch,
			"Multiple try-catch blocks detected. Consider using an Adapter to handle interface incompatibilities gracefully."))
	}
	return out
}

// tryHead spans the `try` keyword through the opening brace of its block.
func tryHead(s *scan, n *sitter.Node) document.Range {
	end := n.EndByte()
	if body := n.ChildByFieldName("body"); body != nil {
		end = body.StartByte() + 1
	}
	return s.span(n.StartByte(), end)
}
