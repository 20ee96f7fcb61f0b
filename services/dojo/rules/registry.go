// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
)

// Registry holds providers keyed by lowercased pattern name.
//
// # Description
//
// Re-registering a name replaces the previous provider in place (last write
// wins, registration order of the name is kept). Lookups of unknown names
// are silently dropped. Analyze isolates provider failures: an error or panic
// is logged and counted, the provider contributes no violations, and the
// remaining providers still run.
//
// # Thread Safety
//
// Safe for concurrent use. Registration is expected at startup; Analyze only
// takes the read lock to snapshot providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
	logger    *logging.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register stores p under its lowercased pattern name. Nil providers and
// providers with an empty pattern name are ignored.
func (r *Registry) Register(p Provider) {
	if p == nil {
		return
	}
	key := normalizeName(p.PatternName())
	if key == "" {
		r.logger.Warn("ignoring provider with empty pattern name", "provider", p.Name())
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[key]; !exists {
		r.order = append(r.order, key)
	}
	r.providers[key] = p
}

// Unregister removes the provider for name. It reports whether one existed.
func (r *Registry) Unregister(name string) bool {
	key := normalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[key]; !exists {
		return false
	}
	delete(r.providers, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Provider returns the provider registered under name.
func (r *Registry) Provider(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[normalizeName(name)]
	return p, ok
}

// Providers resolves names in input order, dropping unknown names.
func (r *Registry) Providers(names []string) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		if p, ok := r.providers[normalizeName(name)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// AllProviders returns every provider in registration order.
func (r *Registry) AllProviders() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.providers[key])
	}
	return out
}

// AvailablePatterns returns registered pattern names with the first letter
// capitalised, in registration order.
func (r *Registry) AvailablePatterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, strings.ToUpper(key[:1])+key[1:])
	}
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear removes every provider.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = make(map[string]Provider)
	r.order = nil
}

// Analyze runs providers against doc and concatenates their violations in
// provider order. Each violation is stamped with its provider's pattern name.
//
// Provider failures never surface as an error: they are logged, counted,
// and skipped. The returned slice is never nil.
func (r *Registry) Analyze(ctx context.Context, doc *document.Document, providers []Provider) []Violation {
	violations := make([]Violation, 0)
	for _, p := range providers {
		found, err := r.runProvider(ctx, doc, p)
		if err != nil {
			r.logger.Warn("pattern provider failed",
				"pattern", p.PatternName(),
				"file", doc.Path,
				"error", err)
			continue
		}
		pattern := normalizeName(p.PatternName())
		for i := range found {
			if found[i].Pattern == "" {
				found[i].Pattern = pattern
			}
		}
		violations = append(violations, found...)
	}
	return violations
}

// runProvider executes one provider, converting a panic into an error.
func (r *Registry) runProvider(ctx context.Context, doc *document.Document, p Provider) (found []Violation, err error) {
	pattern := normalizeName(p.PatternName())
	ctx, span := startRuleSpan(ctx, pattern, doc.Path)
	defer span.End()
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("provider panic stack", "pattern", pattern, "stack", string(debug.Stack()))
			found = nil
			err = &ProviderError{Pattern: pattern, Path: doc.Path, Cause: fmt.Errorf("%w: %v", ErrProviderPanic, rec)}
		}
		recordRuleMetrics(ctx, pattern, time.Since(start), len(found), err == nil)
		setRuleSpanResult(span, len(found), err)
	}()

	found, err = p.Analyze(ctx, doc)
	if err != nil {
		var perr *ProviderError
		if !errors.As(err, &perr) {
			err = &ProviderError{Pattern: pattern, Path: doc.Path, Cause: err}
		}
		return nil, err
	}
	return found, nil
}

// InitializeAll calls Initialize on every provider implementing Initializer.
// Failures are joined; every provider is attempted.
func (r *Registry) InitializeAll(ctx context.Context, pc ProviderContext) error {
	var errs []error
	for _, p := range r.AllProviders() {
		if init, ok := p.(Initializer); ok {
			if err := init.Initialize(ctx, pc); err != nil {
				errs = append(errs, fmt.Errorf("initialize %s: %w", p.PatternName(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// DisposeAll calls Dispose on every provider implementing Disposer.
func (r *Registry) DisposeAll() error {
	var errs []error
	for _, p := range r.AllProviders() {
		if d, ok := p.(Disposer); ok {
			if err := d.Dispose(); err != nil {
				errs = append(errs, fmt.Errorf("dispose %s: %w", p.PatternName(), err))
			}
		}
	}
	return errors.Join(errs...)
}
