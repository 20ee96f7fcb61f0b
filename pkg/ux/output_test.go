// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

// withLevel sets the personality level and captures both writers for the
// duration of a test.
func withLevel(t *testing.T, level PersonalityLevel) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	orig := GetPersonality()
	origOut, origErr := writers()
	t.Cleanup(func() {
		SetPersonality(orig)
		SetOutput(origOut, origErr)
	})

	SetPersonalityLevel(level)
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	return &out, &errOut
}

// =============================================================================
// Icon Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconInfo, IconPending} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("rendered %q does not contain the icon", icon.Render())
		}
	}
	if IconArrow.Render() != string(IconArrow) {
		t.Errorf("expected unstyled arrow, got %q", IconArrow.Render())
	}
}

func TestSeverityStyle(t *testing.T) {
	tests := []struct {
		severity string
		want     Icon
	}{
		{"error", IconError},
		{"Warning", IconWarning},
		{"information", IconInfo},
		{"", IconInfo},
	}
	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			_, icon := SeverityStyle(tt.severity)
			if icon != tt.want {
				t.Errorf("SeverityStyle(%q) icon = %q, want %q", tt.severity, icon, tt.want)
			}
		})
	}
}

// =============================================================================
// Print Helper Tests
// =============================================================================

func TestTitle_MachineMode(t *testing.T) {
	out, _ := withLevel(t, PersonalityMachine)
	Title("Results")
	if out.Len() != 0 {
		t.Errorf("expected no output in machine mode, got %q", out.String())
	}
}

func TestTitle_FullMode(t *testing.T) {
	out, _ := withLevel(t, PersonalityFull)
	Title("Results")
	if !strings.Contains(out.String(), "Results") {
		t.Errorf("expected title text, got %q", out.String())
	}
}

func TestSuccess_MachineMode(t *testing.T) {
	out, _ := withLevel(t, PersonalityMachine)
	Success("clean")
	if out.String() != "OK: clean\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestSuccess_MinimalMode(t *testing.T) {
	out, _ := withLevel(t, PersonalityMinimal)
	Success("clean")
	if !strings.Contains(out.String(), string(IconSuccess)) || !strings.Contains(out.String(), "clean") {
		t.Errorf("got %q", out.String())
	}
}

func TestWarning_MachineModeGoesToStderr(t *testing.T) {
	out, errOut := withLevel(t, PersonalityMachine)
	Warning("careful")
	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}
	if errOut.String() != "WARN: careful\n" {
		t.Errorf("got %q", errOut.String())
	}
}

func TestError_MachineModeGoesToStderr(t *testing.T) {
	_, errOut := withLevel(t, PersonalityMachine)
	Error("boom")
	if errOut.String() != "ERROR: boom\n" {
		t.Errorf("got %q", errOut.String())
	}
}

func TestError_FullModeGoesToStderr(t *testing.T) {
	out, errOut := withLevel(t, PersonalityFull)
	Error("boom")
	if !strings.Contains(errOut.String(), "boom") {
		t.Errorf("got %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %q", out.String())
	}
}

func TestInfo(t *testing.T) {
	out, _ := withLevel(t, PersonalityMachine)
	Info("3 files")
	if out.String() != "3 files\n" {
		t.Errorf("got %q", out.String())
	}

	out, _ = withLevel(t, PersonalityFull)
	Info("3 files")
	if !strings.Contains(out.String(), "│") {
		t.Errorf("expected gutter in full mode, got %q", out.String())
	}
}

func TestMuted_MachineMode(t *testing.T) {
	out, _ := withLevel(t, PersonalityMachine)
	Muted("hint")
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestBox(t *testing.T) {
	out, _ := withLevel(t, PersonalityMachine)
	Box("Watching", "src")
	if out.String() != "Watching: src\n" {
		t.Errorf("got %q", out.String())
	}

	out, _ = withLevel(t, PersonalityFull)
	Box("Watching", "src")
	if !strings.Contains(out.String(), "Watching") || !strings.Contains(out.String(), "src") {
		t.Errorf("got %q", out.String())
	}
}

func TestFileStatus(t *testing.T) {
	out, _ := withLevel(t, PersonalityMachine)
	FileStatus("a.ts", IconWarning, "2 violations")
	if out.String() != "⚠\ta.ts\t2 violations\n" {
		t.Errorf("got %q", out.String())
	}

	out, _ = withLevel(t, PersonalityFull)
	FileStatus("a.ts", IconSuccess, "")
	if strings.Contains(out.String(), "(") {
		t.Errorf("expected no reason, got %q", out.String())
	}
}
