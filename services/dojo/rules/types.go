// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules defines pattern providers, the violations they report, and
// the registry that runs them with per-provider failure isolation.
package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
)

// =============================================================================
// SEVERITY
// =============================================================================

// Severity grades a violation. Higher values are more severe.
type Severity int

const (
	// SeverityInformation marks refactoring suggestions.
	SeverityInformation Severity = iota

	// SeverityWarning marks likely pattern misuse.
	SeverityWarning

	// SeverityError marks a broken pattern invariant.
	SeverityError
)

// String returns "information", "warning", "error" or "unknown".
func (s Severity) String() string {
	switch s {
	case SeverityInformation:
		return "information"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// ParseSeverity parses "error", "warning" or "information". "warn" and
// "info" are accepted as short forms.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "information", "info":
		return SeverityInformation, nil
	default:
		return SeverityWarning, fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
	}
}

// AtLeast reports whether s is as severe as threshold or more.
func (s Severity) AtLeast(threshold Severity) bool {
	return s >= threshold
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// =============================================================================
// VIOLATIONS
// =============================================================================

// Violation codes. These strings are a stable public contract: severity
// overrides, suppression and report consumers all key off them.
const (
	CodeSingletonNonPrivateConstructor    = "singleton-non-private-constructor"
	CodeSingletonImplicitPublicConstructor = "singleton-implicit-public-constructor"
	CodeSingletonMultipleInstances        = "singleton-multiple-instances"
	CodeSingletonPublicConstructor        = "singleton-public-constructor"
	CodeFactoryMultipleInstantiation      = "factory-multiple-instantiation"
	CodeObserverUnsubscribed              = "observer-unsubscribed"
	CodeObserverSubscription              = "observer-subscription"
	CodeStrategyLongSwitch                = "strategy-long-switch"
	CodeStrategyLongIfElse                = "strategy-long-ifelse"
	CodeDecoratorDeepHierarchy            = "decorator-deep-hierarchy"
	CodeAdapterTypeAssertion              = "adapter-type-assertion"
	CodeAdapterTryCatch                   = "adapter-try-catch"
	CodeFacadeComplexInterface            = "facade-complex-interface"
	CodeProxyExpensiveOperation           = "proxy-expensive-operation"
)

// AllCodes lists every violation code in a stable order.
func AllCodes() []string {
	return []string{
		CodeSingletonNonPrivateConstructor,
		CodeSingletonImplicitPublicConstructor,
		CodeSingletonMultipleInstances,
		CodeSingletonPublicConstructor,
		CodeFactoryMultipleInstantiation,
		CodeObserverUnsubscribed,
		CodeObserverSubscription,
		CodeStrategyLongSwitch,
		CodeStrategyLongIfElse,
		CodeDecoratorDeepHierarchy,
		CodeAdapterTypeAssertion,
		CodeAdapterTryCatch,
		CodeFacadeComplexInterface,
		CodeProxyExpensiveOperation,
	}
}

// RelatedInformation points at a secondary location relevant to a violation.
type RelatedInformation struct {
	Range   document.Range `json:"range"`
	Message string         `json:"message"`
}

// Violation is one reported anti-pattern instance.
type Violation struct {
	Range    document.Range       `json:"range"`
	Message  string               `json:"message"`
	Severity Severity             `json:"severity"`
	Code     string               `json:"code"`
	Pattern  string               `json:"pattern,omitempty"`
	Related  []RelatedInformation `json:"related,omitempty"`
}

// Line returns the zero-based start line.
func (v Violation) Line() int {
	return v.Range.Start.Line
}

// =============================================================================
// PROVIDERS
// =============================================================================

// Provider is a named, pluggable detector.
//
// Analyze must be deterministic for identical documents. It may return an
// error or even panic; the Registry isolates both.
type Provider interface {
	// Name is a human readable title, e.g. "Singleton Pattern Detector".
	Name() string

	// Description explains what the provider looks for.
	Description() string

	// PatternName is the registry key, e.g. "singleton" or "multilang-factory".
	PatternName() string

	// Analyze inspects one document.
	Analyze(ctx context.Context, doc *document.Document) ([]Violation, error)
}

// ProviderContext is handed to providers that implement Initializer. It
// exposes the current analysis configuration.
type ProviderContext interface {
	EnabledPatterns() []string
	SeverityOverride(code string) (Severity, bool)
	Logger() *logging.Logger
}

// Initializer is implemented by providers that need setup. Hosts call
// Registry.InitializeAll; the registry never calls it on its own.
type Initializer interface {
	Initialize(ctx context.Context, pc ProviderContext) error
}

// Disposer is implemented by providers holding resources.
type Disposer interface {
	Dispose() error
}

// Info is a serialisable description of a registered provider.
type Info struct {
	Pattern     string `json:"pattern"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Describe returns the Info for a provider.
func Describe(p Provider) Info {
	return Info{Pattern: p.PatternName(), Name: p.Name(), Description: p.Description()}
}
