// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extract turns files on disk into plain text for the scanner.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cardcheck/internal/observability"
)

// ErrUnsupported is returned when no extractor accepts a file.
var ErrUnsupported = errors.New("unsupported file type")

// Content is the text extracted from one file
type Content struct {
	OriginalPath string
	Filename     string
	Text         string

	Format    string
	PageCount int
	WordCount int
	LineCount int

	ProcessorType string
}

// Extractor reads a file of a particular kind and returns its text
type Extractor interface {
	// CanProcess checks if this extractor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts text from the file
	Process(filePath string) (*Content, error)

	// GetName returns the name of this extractor
	GetName() string

	// GetSupportedExtensions returns the file extensions this extractor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// Manager dispatches files to the first extractor that accepts them
type Manager struct {
	extractors []Extractor
}

// NewManager creates a manager with the HTML, PDF and plain text
// extractors registered in that order.
func NewManager(maxPDFPages int) *Manager {
	m := &Manager{}
	m.Register(NewHTMLExtractor())
	m.Register(NewPDFExtractor(maxPDFPages))
	m.Register(NewPlainTextExtractor())
	return m
}

// Register adds an extractor. Earlier registrations win.
func (m *Manager) Register(e Extractor) {
	m.extractors = append(m.extractors, e)
}

// SetObserver passes observer to every registered extractor
func (m *Manager) SetObserver(observer *observability.StandardObserver) {
	for _, e := range m.extractors {
		e.SetObserver(observer)
	}
}

// Get returns the extractor for filePath, or nil if none accepts it
func (m *Manager) Get(filePath string) Extractor {
	for _, e := range m.extractors {
		if e.CanProcess(filePath) {
			return e
		}
	}
	return nil
}

// Extractors returns the registered extractors in dispatch order
func (m *Manager) Extractors() []Extractor {
	return append([]Extractor(nil), m.extractors...)
}

// ProcessFile extracts the text of filePath.
func (m *Manager) ProcessFile(filePath string) (*Content, error) {
	e := m.Get(filePath)
	if e == nil {
		return nil, fmt.Errorf("%s: %w", filePath, ErrUnsupported)
	}
	return e.Process(filePath)
}

func newContent(filePath, format, processor, text string) *Content {
	return &Content{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          text,
		Format:        format,
		WordCount:     len(strings.Fields(text)),
		LineCount:     strings.Count(text, "\n") + 1,
		ProcessorType: processor,
	}
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
