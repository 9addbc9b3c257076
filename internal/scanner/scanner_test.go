// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"bytes"
	"testing"

	"cardcheck/internal/detector"
	"cardcheck/internal/network"
	"cardcheck/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ detector.Detector = (*Scanner)(nil)

func TestScanContent_FindsRealCard(t *testing.T) {
	s := New()

	matches, err := s.ScanContent("payment made with card 4532015112830366 yesterday", "receipt.txt")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, network.Visa, m.Type)
	assert.Equal(t, "453201******0366", m.Text)
	assert.Equal(t, "4532015112830366", m.SecureText.String())
	assert.Equal(t, 1, m.LineNumber)
	assert.Equal(t, "receipt.txt", m.Filename)
	assert.Equal(t, "high", m.ConfidenceLevel())
	assert.True(t, m.Checks["luhn"])
	assert.True(t, m.Checks["network"])
	assert.True(t, m.Checks["length"])
	assert.Contains(t, m.Context.PositiveKeywords, "card")
}

func TestScanContent_GroupedNumbers(t *testing.T) {
	s := New()

	content := "line one\nAmex: 3400 000000 00009 on file\nMC 5425-2334-3010-9903\n"
	matches, err := s.ScanContent(content, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, network.AmericanExpress, matches[0].Type)
	assert.Equal(t, 2, matches[0].LineNumber)
	assert.Equal(t, "3400 00**** *0009", matches[0].Text)

	assert.Equal(t, network.Mastercard, matches[1].Type)
	assert.Equal(t, 3, matches[1].LineNumber)
}

func TestScanContent_SkipsLuhnFailures(t *testing.T) {
	s := New()

	matches, err := s.ScanContent("card 4532015112830367", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScanContent_LuhnFailureLoggedInDebug(t *testing.T) {
	var buf bytes.Buffer
	s := New()
	s.SetObserver(observability.NewDebugObserver(&buf).StandardObserver)

	_, err := s.ScanContent("card 4532015112830367", "a.txt")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "luhn check failed for 453201******0367 at a.txt:1")
	assert.NotContains(t, buf.String(), "4532015112830367")
}

func TestScanContent_NegativeContextSuppresses(t *testing.T) {
	s := New()

	matches, err := s.ScanContent("order reference 4532015112830366", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScanContent_NegativeKeywordNeedsWholeWord(t *testing.T) {
	s := New()

	// "paid" contains "id" but is a positive keyword on its own
	matches, err := s.ScanContent("paid with 4532015112830366", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Context.NegativeKeywords)
}

func TestScanContent_TestPatternsStayLow(t *testing.T) {
	s := New()

	matches, err := s.ScanContent("card 4111111111111111", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.LessOrEqual(t, matches[0].Confidence, 15.0)
	assert.False(t, matches[0].Checks["not_test"])
	assert.Equal(t, "low", matches[0].ConfidenceLevel())
}

func TestScanContent_MinConfidence(t *testing.T) {
	s := New(WithMinConfidence(50))

	matches, err := s.ScanContent("card 4111111111111111\ncard 4532015112830366", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].LineNumber)
}

func TestScanContent_IgnoresEmbeddedDigits(t *testing.T) {
	s := New()

	matches, err := s.ScanContent("token=abc4532015112830366xyz", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestScanContent_Tabular(t *testing.T) {
	s := New()

	matches, err := s.ScanContent("Jane Doe,4532015112830366,12/25", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 100.0, matches[0].Confidence)
}

func TestCalculateConfidence(t *testing.T) {
	s := New()

	tests := []struct {
		name     string
		input    string
		minScore float64
		maxScore float64
		luhn     bool
	}{
		{"real visa", "4532015112830366", 90, 100, true},
		{"luhn failure", "4532015112830367", 0, 60, false},
		{"test pattern", "4242424242424242", 0, 15, true},
		{"unknown network", "9999999999999995", 0, 15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, checks := s.CalculateConfidence(tt.input)
			assert.GreaterOrEqual(t, score, tt.minScore)
			assert.LessOrEqual(t, score, tt.maxScore)
			assert.Equal(t, tt.luhn, checks["luhn"])
		})
	}
}

func TestAnalyzeContext(t *testing.T) {
	s := New()

	assert.Equal(t, 15.0, s.AnalyzeContext("", detector.ContextInfo{BeforeText: "Visa card: "}))
	assert.Equal(t, -100.0, s.AnalyzeContext("", detector.ContextInfo{BeforeText: "tracking number "}))
	assert.Equal(t, 0.0, s.AnalyzeContext("", detector.ContextInfo{BeforeText: "hello "}))
}

func TestHasRepeatingPatterns(t *testing.T) {
	assert.True(t, hasRepeatingPatterns("4000000000000002"))
	assert.True(t, hasRepeatingPatterns("1212121212121212"))
	assert.True(t, hasRepeatingPatterns("1234567890123456"))
	assert.False(t, hasRepeatingPatterns("4532015112830366"))
}
