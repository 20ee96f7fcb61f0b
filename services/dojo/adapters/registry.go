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
	"context"
	"sort"
	"sync"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/commonast"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
)

// Registry resolves the adapter for a file.
//
// Description:
//
//	Adapters are kept in registration order and the first one whose
//	extensions match wins. Registering an adapter whose Language is already
//	present replaces it in place.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters []LanguageAdapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with the Java, Python and C#
// adapters, in that order.
func NewDefaultRegistry(logger *logging.Logger, opts ...Option) *Registry {
	if logger != nil {
		opts = append([]Option{WithLogger(logger)}, opts...)
	}
	r := NewRegistry()
	r.Register(NewJavaAdapter(opts...))
	r.Register(NewPythonAdapter(opts...))
	r.Register(NewCSharpAdapter(opts...))
	return r
}

// Register adds an adapter, replacing any adapter for the same language.
// A nil adapter is ignored.
func (r *Registry) Register(adapter LanguageAdapter) {
	if adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.adapters {
		if existing.Language() == adapter.Language() {
			r.adapters[i] = adapter
			return
		}
	}
	r.adapters = append(r.adapters, adapter)
}

// AdapterFor returns the first adapter supporting path.
func (r *Registry) AdapterFor(path string) (LanguageAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.adapters {
		if a.Supports(path) {
			return a, true
		}
	}
	return nil, false
}

// AdapterByLanguage returns the adapter registered for a language id.
func (r *Registry) AdapterByLanguage(language string) (LanguageAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.adapters {
		if a.Language() == language {
			return a, true
		}
	}
	return nil, false
}

// SupportedExtensions returns the sorted, de-duplicated extensions of all
// adapters.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, a := range r.adapters {
		for _, ext := range a.Extensions() {
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	sort.Strings(out)
	return out
}

// SupportedLanguages returns the language ids in registration order.
func (r *Registry) SupportedLanguages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a.Language())
	}
	return out
}

// Parse resolves the adapter for doc and parses it.
//
// Outputs:
//   - *commonast.ParseResult: nil when no adapter handles the document; this
//     is a skip, not an error.
func (r *Registry) Parse(ctx context.Context, doc *document.Document) *commonast.ParseResult {
	if doc == nil {
		return nil
	}
	adapter, ok := r.AdapterFor(doc.Path)
	if !ok {
		return nil
	}
	return adapter.Parse(ctx, doc.Path, doc.Text)
}
