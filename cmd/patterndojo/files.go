// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/PatternDojo/services/dojo/document"
)

// =============================================================================
// FILE COLLECTION
// =============================================================================

// collectOptions filters the files handed to the analyzer.
type collectOptions struct {
	Includes    []string
	Excludes    []string
	MaxFileSize int64
}

// collectFiles expands targets into the sorted, de-duplicated list of source
// files with a recognised language. A file named explicitly is kept even if
// an exclude pattern matches it.
func collectFiles(targets []string, opts collectOptions) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(target)
			continue
		}

		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != target && matchesPatterns(path, opts.Excludes) {
					return fs.SkipDir
				}
				return nil
			}
			if !opts.accepts(path, d) {
				return nil
			}
			add(path)
			return nil
		}
		if err := filepath.WalkDir(target, walkFn); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (o collectOptions) accepts(path string, d fs.DirEntry) bool {
	if document.LanguageForPath(path) == "" {
		return false
	}
	if matchesPatterns(path, o.Excludes) {
		return false
	}
	if len(o.Includes) > 0 && !matchesPatterns(path, o.Includes) {
		return false
	}
	if o.MaxFileSize > 0 {
		info, err := d.Info()
		if err != nil || info.Size() > o.MaxFileSize {
			return false
		}
	}
	return !isBinaryFile(path)
}

// matchesPatterns reports whether path matches any glob. A pattern starting
// with "**/" matches by suffix; other patterns match the base name.
func matchesPatterns(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range patterns {
		if strings.Contains(pattern, "**") {
			suffix := strings.TrimPrefix(pattern, "**/")
			if strings.HasSuffix(slashed, suffix) {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
			return true
		}
	}
	return false
}

// isBinaryFile looks for a NUL byte in the first 512 bytes.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil || n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if buf[i] == 0 {
			return true
		}
	}
	return false
}
