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

const proxyThreshold = 2

var expensiveOperations = map[string]bool{
	"fetch":   true,
	"query":   true,
	"load":    true,
	"parse":   true,
	"compile": true,
	"render":  true,
}

// NewProxy flags expensive operations (fetch, query, load, parse, compile,
// render) called more than twice in one file.
func NewProxy() rules.Provider {
	return &provider{
		pattern:     "proxy",
		name:        "Proxy Pattern Detector",
		description: "Detects repeated expensive calls that could be cached or deferred",
		detect:      detectProxy,
	}
}

func detectProxy(s *scan) []rules.Violation {
	occ := newOccurrences()
	s.each(func(n *sitter.Node) {
		if name := referencedName(n.ChildByFieldName("function"), s.tree.Source); expensiveOperations[name] {
			occ.add(name, n)
		}
	}, "call_expression")

	var out []rules.Violation
	for _, name := range occ.order {
		if count := occ.counts[name]; count > proxyThreshold {
			out = append(out, violation(s.rangeOf(occ.first[name]), rules.SeverityInformation,
				rules.CodeProxyExpensiveOperation,
				fmt.Sprintf("Expensive operation '%s' called %d times. Consider Proxy pattern (lazy loading/caching).", name, count)))
		}
	}
	return out
}
