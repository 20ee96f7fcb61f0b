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

const (
	maxSwitchClauses = 3
	minElseIfDepth   = 2
)

// NewStrategy flags switch statements with more than three clauses and
// if statements followed by two or more else-if links.
func NewStrategy() rules.Provider {
	return &provider{
		pattern:     "strategy",
		name:        "Strategy Pattern Detector",
		description: "Detects long switch statements and if-else chains",
		detect:      detectStrategy,
	}
}

func detectStrategy(s *scan) []rules.Violation {
	var out []rules.Violation
	s.each(func(n *sitter.Node) {
		switch n.Type() {
		case "switch_statement":
			if clauses := switchClauses(n); clauses > maxSwitchClauses {
				out = append(out, violation(s.rangeOf(n), rules.SeverityInformation,
					rules.CodeStrategyLongSwitch,
					fmt.Sprintf("Long switch statement with %d cases detected. Consider using Strategy pattern.", clauses)))
			}
		case "if_statement":
			if depth := elseIfDepth(n); depth >= minElseIfDepth {
				out = append(out, violation(s.rangeOf(n), rules.SeverityInformation,
					rules.CodeStrategyLongIfElse,
					fmt.Sprintf("Long if-else chain detected (depth %d). Consider Strategy pattern.", depth)))
			}
		}
	}, "switch_statement", "if_statement")
	return out
}

func switchClauses(n *sitter.Node) int {
	body := n.ChildByFieldName("body")
	if body == nil {
		return 0
	}
	count := 0
	for i := 0; i < int(body.NamedChildCount()); i++ {
		switch body.NamedChild(i).Type() {
		case "switch_case", "switch_default":
			count++
		}
	}
	return count
}

// elseIfDepth counts the else-if links hanging off n.
func elseIfDepth(n *sitter.Node) int {
	depth := 0
	for current := n; current != nil; {
		next := elseIf(current)
		if next == nil {
			break
		}
		depth++
		current = next
	}
	return depth
}

// elseIf returns the if statement forming n's else branch, or nil.
func elseIf(n *sitter.Node) *sitter.Node {
	alt := n.ChildByFieldName("alternative")
	if alt == nil {
		return nil
	}
	if alt.Type() == "else_clause" {
		alt = syntax.ChildOfType(alt, "if_statement")
	}
	if alt == nil || alt.Type() != "if_statement" {
		return nil
	}
	return alt
}
