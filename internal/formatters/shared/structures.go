// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package shared

import (
	"errors"

	"cardcheck/internal/batch"
	"cardcheck/internal/detector"
	"cardcheck/internal/formatters"
	"cardcheck/internal/security"
	"cardcheck/internal/validator"
)

// Validation statuses
const (
	StatusValid   = "VALID"
	StatusInvalid = "INVALID"
	StatusError   = "ERROR"
)

// JSONResponse represents the top-level response structure for JSON/YAML output
type JSONResponse struct {
	Validations []JSONValidation `json:"validations,omitempty" yaml:"validations,omitempty"`
	Findings    []JSONMatch      `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// JSONValidation represents one validated card in JSON/YAML format
type JSONValidation struct {
	Index    int             `json:"index" yaml:"index"`
	Number   string          `json:"number,omitempty" yaml:"number,omitempty"`
	Type     string          `json:"type,omitempty" yaml:"type,omitempty"`
	Status   string          `json:"status" yaml:"status"`
	Checks   map[string]bool `json:"checks,omitempty" yaml:"checks,omitempty"`
	Failures []string        `json:"failures,omitempty" yaml:"failures,omitempty"`
	Expiry   string          `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`

	ExpectedCheckDigit *int `json:"expected_check_digit,omitempty" yaml:"expected_check_digit,omitempty"`
}

// JSONMatch represents a single scan finding in JSON/YAML format
type JSONMatch struct {
	Text            string          `json:"text" yaml:"text"`
	LineNumber      int             `json:"line_number" yaml:"line_number"`
	Type            string          `json:"type" yaml:"type"`
	Confidence      float64         `json:"confidence" yaml:"confidence"`
	ConfidenceLevel string          `json:"confidence_level" yaml:"confidence_level"`
	Filename        string          `json:"filename" yaml:"filename"`
	Checks          map[string]bool `json:"checks,omitempty" yaml:"checks,omitempty"`
	FullLine        string          `json:"full_line,omitempty" yaml:"full_line,omitempty"`
	BeforeText      string          `json:"before_text,omitempty" yaml:"before_text,omitempty"`
	AfterText       string          `json:"after_text,omitempty" yaml:"after_text,omitempty"`
}

// FilterMatchesByConfidence filters matches based on confidence level settings
func FilterMatchesByConfidence(matches []detector.Match, options formatters.FormatterOptions) []detector.Match {
	if options.ConfidenceLevel == nil {
		return matches
	}
	var filtered []detector.Match
	for _, match := range matches {
		if options.ConfidenceLevel[match.ConfidenceLevel()] {
			filtered = append(filtered, match)
		}
	}
	return filtered
}

// GetConfidenceLevel returns the confidence level as an upper-case string
func GetConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 90:
		return "HIGH"
	case confidence >= 60:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Status classifies a validation outcome
func Status(o batch.Outcome) string {
	switch {
	case o.Valid():
		return StatusValid
	case o.Result != nil && (o.Err == nil || errors.Is(o.Err, validator.ErrInvalidCard)):
		return StatusInvalid
	default:
		return StatusError
	}
}

// MatchText returns the masked match unless options ask for the raw number
func MatchText(match detector.Match, options formatters.FormatterOptions) string {
	if options.ShowMatch && match.SecureText != nil {
		return match.SecureText.String()
	}
	return match.Text
}

// ContextText masks every digit run in text from a finding's surrounding
// line unless options ask for raw numbers
func ContextText(text string, options formatters.FormatterOptions) string {
	if options.ShowMatch {
		return text
	}
	return security.MaskText(text)
}

// ConvertReportToJSONFormat converts a report to the JSON/YAML structure
func ConvertReportToJSONFormat(report formatters.Report, options formatters.FormatterOptions) JSONResponse {
	var response JSONResponse

	for _, o := range report.Validations {
		v := JSONValidation{
			Index:  o.Index,
			Status: Status(o),
		}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		if r := o.Result; r != nil {
			v.Number = r.Number
			v.Type = r.Type.String()
			v.Expiry = r.Expiry
			v.Failures = r.Failures()
			v.ExpectedCheckDigit = r.ExpectedCheckDigit
			v.Checks = map[string]bool{
				"length": r.LengthOK,
				"iin":    r.IINOK,
				"luhn":   r.LuhnOK,
				"cvv":    r.CVVOK,
				"expiry": r.ExpiryOK,
			}
		}
		response.Validations = append(response.Validations, v)
	}

	for _, match := range FilterMatchesByConfidence(report.Findings, options) {
		m := JSONMatch{
			Text:            MatchText(match, options),
			LineNumber:      match.LineNumber,
			Type:            match.Type.String(),
			Confidence:      match.Confidence,
			ConfidenceLevel: GetConfidenceLevel(match.Confidence),
			Filename:        match.Filename,
			Checks:          match.Checks,
		}
		if options.Verbose {
			m.FullLine = ContextText(match.Context.FullLine, options)
			m.BeforeText = ContextText(match.Context.BeforeText, options)
			m.AfterText = ContextText(match.Context.AfterText, options)
		}
		response.Findings = append(response.Findings, m)
	}

	return response
}
