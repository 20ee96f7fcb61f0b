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
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeverity indicates a severity string outside error/warning/information.
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrProviderPanic wraps a panic recovered from a provider.
	ErrProviderPanic = errors.New("provider panicked")
)

// ProviderError records a provider failure during Registry.Analyze.
type ProviderError struct {
	Pattern string
	Path    string
	Cause   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("pattern %s on %s: %v", e.Pattern, e.Path, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
