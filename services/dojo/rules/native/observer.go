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

	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// NewObserver flags event listeners that are never removed and
// subscriptions that outnumber unsubscriptions. Calls are matched by callee
// name only.
func NewObserver() rules.Provider {
	return &provider{
		pattern:     "observer",
		name:        "Observer Pattern Detector",
		description: "Detects listeners and subscriptions that are never cleaned up",
		detect:      detectObserver,
	}
}

func detectObserver(s *scan) []rules.Violation {
	occ := newOccurrences()
	s.each(func(n *sitter.Node) {
		fn := n.ChildByFieldName("function")
		switch name := referencedName(fn, s.tree.Source); name {
		case "addEventListener", "removeEventListener", "subscribe", "unsubscribe":
			occ.add(name, nameNode(fn))
		}
	}, "call_expression")

	var out []rules.Violation
	if occ.counts["addEventListener"] > 0 && occ.counts["removeEventListener"] == 0 {
		out = append(out, violation(s.rangeOf(occ.first["addEventListener"]), rules.SeverityWarning,
			rules.CodeObserverUnsubscribed,
			"Event listener added but no corresponding removeEventListener found. This may cause memory leaks."))
	}
	if subs := occ.counts["subscribe"]; subs > 0 && subs > occ.counts["unsubscribe"] {
		out = append(out, violation(s.rangeOf(occ.first["subscribe"]), rules.SeverityInformation,
			rules.CodeObserverSubscription,
			"Subscriptions without matching unsubscribe detected. Ensure all subscriptions are cleaned up."))
	}
	return out
}
