// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"cardcheck/internal/observability"
)

const (
	maxTextSize  = 100 * 1024 * 1024 // 100MB
	maxTextLines = 1000000
)

// PlainTextExtractor passes text files through unchanged
type PlainTextExtractor struct {
	observer *observability.StandardObserver
}

// NewPlainTextExtractor creates a new plain text extractor
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// SetObserver sets the observability component
func (p *PlainTextExtractor) SetObserver(observer *observability.StandardObserver) {
	p.observer = observer
}

// GetName returns the name of this extractor
func (p *PlainTextExtractor) GetName() string {
	return "Plain Text Extractor"
}

// GetSupportedExtensions returns the file extensions this extractor supports
func (p *PlainTextExtractor) GetSupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".md", ".rst",
		".yaml", ".yml", ".json", ".xml", ".toml", ".ini", ".conf", ".cfg",
		".csv", ".tsv", ".jsonl", ".ndjson", ".sql", ".env",
	}
}

// CanProcess accepts known text extensions, and extensionless files whose
// first bytes look like text.
func (p *PlainTextExtractor) CanProcess(filePath string) bool {
	if hasExtension(filePath, p.GetSupportedExtensions()) {
		return true
	}
	if filepath.Ext(filePath) == "" {
		return isTextFile(filePath)
	}
	return false
}

// Process reads the file as UTF-8 text
func (p *PlainTextExtractor) Process(filePath string) (*Content, error) {
	var finishTiming func(bool, map[string]interface{})
	if p.observer != nil {
		finishTiming = p.observer.StartTiming("plaintext_extractor", "process_file", filePath)
	}

	text, err := readTextFile(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	content := newContent(filePath, "Plain Text", "plaintext", text)
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"word_count": content.WordCount,
			"line_count": content.LineCount,
		})
	}
	return content, nil
}

func readTextFile(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}
	if info.Size() > maxTextSize {
		return "", fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), maxTextSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}

	if lines := strings.Count(text, "\n") + 1; lines > maxTextLines {
		return "", fmt.Errorf("file has too many lines: %d (max: %d)", lines, maxTextLines)
	}
	return text, nil
}

// isTextFile checks the first 512 bytes for binary content
func isTextFile(filePath string) bool {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return false
	}
	defer f.Close()

	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && n == 0 {
		return false
	}
	buffer = buffer[:n]

	printable := 0
	for _, b := range buffer {
		if b == 0 {
			return false
		}
		if (b >= 32 && b <= 126) || b == '\t' || b == '\n' || b == '\r' {
			printable++
		}
	}
	return float64(printable)/float64(len(buffer)) > 0.95
}
