// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"cardcheck/internal/network"
	"cardcheck/internal/security"
)

// ContextInfo stores contextual information about a match
type ContextInfo struct {
	// Text before and after the match
	BeforeText string
	AfterText  string

	// Line containing the match
	FullLine string

	// Contextual keywords found near the match
	PositiveKeywords []string // Keywords that increase confidence
	NegativeKeywords []string // Keywords that decrease confidence

	// Impact on confidence score
	ConfidenceImpact float64
}

// Detector finds card numbers in already extracted text
type Detector interface {
	ScanContent(content string, originalPath string) ([]Match, error)
	CalculateConfidence(match string) (float64, map[string]bool)
	AnalyzeContext(match string, context ContextInfo) float64
}

// Match represents a card number candidate found in a document
type Match struct {
	Text       string                 // Masked form of the matched text
	SecureText *security.SecureString // Raw matched text
	LineNumber int
	Type       network.CardType
	Confidence float64
	Checks     map[string]bool
	Filename   string // Path to the file where the match was found

	Context ContextInfo
}

// ConfidenceLevel buckets a confidence score into high, medium or low.
func (m *Match) ConfidenceLevel() string {
	switch {
	case m.Confidence >= 90:
		return "high"
	case m.Confidence >= 60:
		return "medium"
	default:
		return "low"
	}
}

// Clear securely wipes sensitive data from memory
func (m *Match) Clear() {
	m.Text = ""
	if m.SecureText != nil {
		m.SecureText.Clear()
		m.SecureText = nil
	}

	m.Context.BeforeText = ""
	m.Context.AfterText = ""
	m.Context.FullLine = ""
}
