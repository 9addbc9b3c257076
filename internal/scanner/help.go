// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"fmt"
	"sort"

	"cardcheck/internal/help"
	"cardcheck/internal/network"
)

// GetCheckInfo describes how the scanner finds and scores card numbers
func (s *Scanner) GetCheckInfo() help.CheckInfo {
	var formats []string
	for _, rule := range network.Rules() {
		formats = append(formats, fmt.Sprintf("%s (IIN %s; lengths %s)", rule.Name, rule.DescribeIIN(), rule.DescribeLengths()))
	}

	return help.CheckInfo{
		Name:             "SCANNER",
		ShortDescription: "Finds payment card numbers in text, HTML and PDF files",
		DetailedDescription: `The scanner looks for runs of 12 to 19 digits, optionally grouped with spaces or dashes, that stand on their own in the text.

Every candidate must pass the Luhn checksum. It is then classified against the network table, checked for known test numbers and suspicious repetition, and scored using keywords found on the same line. Card numbers are masked in all output unless -show-number is given.`,

		Patterns: []string{
			"12-19 consecutive digits (e.g., 4532015112830366)",
			"4 groups of 4 digits separated by spaces or dashes (e.g., 4532 0151 1283 0366)",
			"American Express 4-6-5 grouping (e.g., 3400 000000 00009)",
			"19 digit cards as 4-4-4-4-3",
		},

		SupportedFormats: formats,

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Base score", Description: "Luhn-valid candidate", Weight: 60},
			{Name: "Known network", Description: "IIN matches a network in the table", Weight: 15},
			{Name: "Unknown network", Description: "No network matches the IIN", Weight: -20},
			{Name: "Length", Description: "Length not allowed for the network", Weight: -15},
			{Name: "Repetition", Description: "No long runs, alternation or sequences", Weight: 10},
			{Name: "Digit spread", Description: "At least seven distinct digits", Weight: 10},
			{Name: "Positive context", Description: "A card keyword on the same line", Weight: 15},
			{Name: "Negative context", Description: "An identifier keyword on the same line", Weight: -100},
			{Name: "Tabular data", Description: "Delimited or column-aligned line", Weight: 10},
		},

		PositiveKeywords: sortedKeys(s.positiveKeywords),
		NegativeKeywords: sortedKeys(s.negativeKeywords),

		ConfigurationInfo: `scan:
  min_confidence: 60     # drop findings scoring below this
  max_pdf_pages: 50      # pages read from each PDF
  workers: 4             # files scanned in parallel
  exclude_patterns: ["*.log"]`,

		Examples: []string{
			"cardcheck -scan statement.pdf",
			"cardcheck -scan ./exports -recursive -confidence high",
			"cardcheck -scan page.html -format json -verbose",
		},
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
