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

const (
	factoryThreshold     = 2
	maxFactoryViolations = 5
)

// NewFactory flags names constructed with `new` more than twice in one
// file. At most five names are reported, in order of first use.
func NewFactory() rules.Provider {
	return &provider{
		pattern:     "factory",
		name:        "Factory Pattern Detector",
		description: "Detects classes instantiated many times in one file",
		detect:      detectFactory,
	}
}

// occurrences counts nodes per name, remembering the first node and the
// order names were first seen.
type occurrences struct {
	order  []string
	counts map[string]int
	first  map[string]*sitter.Node
}

func newOccurrences() *occurrences {
	return &occurrences{counts: make(map[string]int), first: make(map[string]*sitter.Node)}
}

func (o *occurrences) add(name string, n *sitter.Node) {
	if _, seen := o.counts[name]; !seen {
		o.order = append(o.order, name)
		o.first[name] = n
	}
	o.counts[name]++
}

func detectFactory(s *scan) []rules.Violation {
	occ := newOccurrences()
	s.each(func(n *sitter.Node) {
		if name := referencedName(n.ChildByFieldName("constructor"), s.tree.Source); name != "" {
			occ.add(name, n)
		}
	}, "new_expression")

	var out []rules.Violation
	for _, name := range occ.order {
		count := occ.counts[name]
		if count <= factoryThreshold {
			continue
		}
		out = append(out, violation(s.rangeOf(occ.first[name]), rules.SeverityInformation,
			rules.CodeFactoryMultipleInstantiation,
			fmt.Sprintf("'%s' is instantiated %d times in this file. Consider using a Factory to centralize creation.", name, count)))
		if len(out) == maxFactoryViolations {
			break
		}
	}
	return out
}
