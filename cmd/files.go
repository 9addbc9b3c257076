// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxScanFileSize = 100 * 1024 * 1024

// Large files of these types are skipped without a warning
var unsupportedTypes = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true,
	".dmg": true, ".iso": true, ".img": true,
	".zip": true, ".tar": true, ".gz": true, ".7z": true,
}

// collectFiles expands paths into the regular files to scan. Directories
// contribute their direct children, or every descendant when recursive is
// set. Glob patterns are expanded. Files whose base name matches an exclude
// pattern are dropped.
func collectFiles(paths []string, recursive bool, exclude []string, stderr io.Writer) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string, info os.FileInfo) {
		if !info.Mode().IsRegular() || seen[path] || excluded(path, exclude) {
			return
		}
		if info.Size() > maxScanFileSize {
			if !unsupportedTypes[strings.ToLower(filepath.Ext(path))] {
				fmt.Fprintf(stderr, "Warning: Skipping %s: file too large (> 100MB)\n", path)
			}
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, inputPath := range paths {
		expanded := expandHome(inputPath)

		if strings.ContainsAny(expanded, "*?[") {
			matches, err := filepath.Glob(expanded)
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern: %w", err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match pattern: %s", inputPath)
			}
			for _, match := range matches {
				cleanMatch := filepath.Clean(match)
				if info, err := os.Stat(cleanMatch); err == nil {
					add(cleanMatch, info)
				}
			}
			continue
		}

		cleanPath := filepath.Clean(expanded)
		info, err := os.Stat(cleanPath)
		if err != nil {
			return nil, fmt.Errorf("path does not exist or is not accessible: %w", err)
		}

		if !info.IsDir() {
			add(cleanPath, info)
			continue
		}

		skipped := 0
		err = filepath.Walk(cleanPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				fmt.Fprintf(stderr, "Warning: Skipping %s: %v\n", path, err)
				skipped++
				return nil
			}
			if info.IsDir() && path != cleanPath && !recursive {
				return filepath.SkipDir
			}
			add(filepath.Clean(path), info)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error accessing directory: %w", err)
		}
		if skipped > 0 {
			fmt.Fprintf(stderr, "Skipped %d files or directories due to errors\n", skipped)
		}
	}

	return files, nil
}

func excluded(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
