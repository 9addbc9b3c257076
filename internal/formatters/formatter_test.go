// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"
	"time"

	"cardcheck/internal/batch"
	"cardcheck/internal/detector"
	"cardcheck/internal/digits"
	"cardcheck/internal/formatters"
	_ "cardcheck/internal/formatters/csv"
	_ "cardcheck/internal/formatters/json"
	"cardcheck/internal/formatters/junit"
	"cardcheck/internal/formatters/shared"
	_ "cardcheck/internal/formatters/text"
	_ "cardcheck/internal/formatters/yaml"
	"cardcheck/internal/network"
	"cardcheck/internal/scanner"
	"cardcheck/internal/security"
	"cardcheck/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport(t *testing.T) formatters.Report {
	t.Helper()

	now := time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)
	v := validator.New(validator.WithClock(func() time.Time { return now }))

	valid, err := v.Validate(validator.Card{Number: "4532015112830366", Expiry: "12/25", CVV: "123"})
	require.NoError(t, err)
	invalid, invalidErr := v.Validate(validator.Card{Number: "4532015112830367", Expiry: "12/25", CVV: "123"})
	require.ErrorIs(t, invalidErr, validator.ErrInvalidCard)

	return formatters.Report{
		Validations: []batch.Outcome{
			{Index: 0, Result: valid},
			{Index: 1, Result: invalid, Err: invalidErr},
			{Index: 2, Err: digits.ErrNullInput},
		},
		Findings: []detector.Match{
			{
				Text:       "545454******5454",
				SecureText: security.NewSecureString("5454545454545454"),
				LineNumber: 3,
				Type:       network.Mastercard,
				Confidence: 95,
				Filename:   "docs/receipt.txt",
			},
			{
				Text:       "411111******1111",
				SecureText: security.NewSecureString("4111111111111111"),
				LineNumber: 7,
				Type:       network.Visa,
				Confidence: 15,
				Filename:   "docs/receipt.txt",
			},
		},
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "junit", "text", "yaml"}, formatters.List())

	_, err := formatters.Export("xml", formatters.Report{}, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Available formats: csv, json, junit, text, yaml")
}

func TestReport_Failed(t *testing.T) {
	assert.False(t, formatters.Report{}.Failed())
	assert.True(t, sampleReport(t).Failed())

	ok := sampleReport(t)
	ok.Findings = nil
	ok.Validations = ok.Validations[:1]
	assert.False(t, ok.Failed())
}

func TestStatus(t *testing.T) {
	report := sampleReport(t)
	assert.Equal(t, shared.StatusValid, shared.Status(report.Validations[0]))
	assert.Equal(t, shared.StatusInvalid, shared.Status(report.Validations[1]))
	assert.Equal(t, shared.StatusError, shared.Status(report.Validations[2]))
	assert.Equal(t, shared.StatusError, shared.Status(batch.Outcome{Result: &validator.Result{}, Err: errors.New("boom")}))
}

func TestJSONFormatter(t *testing.T) {
	out, err := formatters.Export("json", sampleReport(t), formatters.FormatterOptions{})
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))

	require.Len(t, response.Validations, 3)
	assert.Equal(t, "VALID", response.Validations[0].Status)
	assert.Equal(t, "VISA", response.Validations[0].Type)
	assert.Equal(t, "453201******0366", response.Validations[0].Number)
	assert.Equal(t, "INVALID", response.Validations[1].Status)
	assert.Equal(t, []string{"luhn"}, response.Validations[1].Failures)
	assert.Equal(t, "This card isn't invalid", response.Validations[1].Error)
	assert.Equal(t, "ERROR", response.Validations[2].Status)

	require.Len(t, response.Findings, 2)
	assert.Equal(t, "MASTERCARD", response.Findings[0].Type)
	assert.Equal(t, "HIGH", response.Findings[0].ConfidenceLevel)
	assert.NotContains(t, out, "5454545454545454")
}

func TestJSONFormatter_ShowMatchAndFilter(t *testing.T) {
	out, err := formatters.Export("json", sampleReport(t), formatters.FormatterOptions{
		ShowMatch:       true,
		ConfidenceLevel: map[string]bool{"high": true},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "5454545454545454")
	assert.NotContains(t, out, "4111111111111111")
}

func TestYAMLFormatter(t *testing.T) {
	out, err := formatters.Export("yaml", sampleReport(t), formatters.FormatterOptions{})
	require.NoError(t, err)

	var response shared.JSONResponse
	require.NoError(t, yaml.Unmarshal([]byte(out), &response))
	assert.Len(t, response.Validations, 3)
	assert.Len(t, response.Findings, 2)
	assert.Equal(t, "INVALID", response.Validations[1].Status)
}

func TestCSVFormatter(t *testing.T) {
	out, err := formatters.Export("csv", sampleReport(t), formatters.FormatterOptions{})
	require.NoError(t, err)

	tables := strings.Split(out, "\n\n")
	require.Len(t, tables, 2)

	validations := strings.Split(tables[0], "\n")
	require.Len(t, validations, 4)
	assert.Equal(t, "Index,Number,Type,Status,Failures,Error", validations[0])
	assert.Equal(t, "0,453201******0366,VISA,VALID,,", validations[1])
	assert.Equal(t, "1,453201******0367,VISA,INVALID,luhn,This card isn't invalid", validations[2])

	findings := strings.Split(tables[1], "\n")
	require.Len(t, findings, 3)
	assert.Equal(t, "docs/receipt.txt,MASTERCARD,HIGH,95.0,3,545454******5454", findings[1])
}

func TestCSVFormatter_FormulaInjection(t *testing.T) {
	report := formatters.Report{Findings: []detector.Match{{Text: "x", Filename: "=cmd|calc", Confidence: 95}}}
	out, err := formatters.Export("csv", report, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, "'=cmd|calc")
}

func TestTextFormatter(t *testing.T) {
	out, err := formatters.Export("text", sampleReport(t), formatters.FormatterOptions{NoColor: true, Verbose: true})
	require.NoError(t, err)

	assert.Contains(t, out, "VALID")
	assert.Contains(t, out, "INVALID")
	assert.Contains(t, out, "failed: luhn; This card isn't invalid")
	assert.Contains(t, out, "- luhn: failed")
	assert.Contains(t, out, "[HIGH  ]")
	assert.Contains(t, out, "545454******5454")
	assert.NotContains(t, out, "\x1b[")

	// Highest confidence first
	assert.Less(t, strings.Index(out, "[HIGH  ]"), strings.Index(out, "[LOW   ]"))
}

func TestTextFormatter_Empty(t *testing.T) {
	out, err := formatters.Export("text", formatters.Report{}, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.Equal(t, "No matches found.\n", out)
}

func TestJUnitFormatter(t *testing.T) {
	out, err := formatters.Export("junit", sampleReport(t), formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, xml.Header))

	var suites junit.TestSuites
	require.NoError(t, xml.Unmarshal([]byte(out), &suites))
	assert.Equal(t, 4, suites.Tests)
	assert.Equal(t, 2, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	require.Len(t, suites.TestSuites, 2)

	validation := suites.TestSuites[0]
	assert.Equal(t, "card-validation", validation.Name)
	require.Len(t, validation.TestCases, 3)
	assert.Nil(t, validation.TestCases[0].Failure)
	assert.Equal(t, "card[0] VISA 453201******0366", validation.TestCases[0].Name)
	require.NotNil(t, validation.TestCases[1].Failure)
	assert.Contains(t, validation.TestCases[1].Failure.Message, "luhn")
	require.NotNil(t, validation.TestCases[2].Error)

	scan := suites.TestSuites[1]
	assert.Equal(t, "card-scan", scan.Name)
	require.Len(t, scan.TestCases, 1)
	assert.Equal(t, "receipt.txt", scan.TestCases[0].Name)
	assert.Equal(t, "2 card numbers found", scan.TestCases[0].Failure.Message)
	assert.NotContains(t, out, "5454545454545454")
}

func TestJUnitFormatter_Empty(t *testing.T) {
	out, err := formatters.Export("junit", formatters.Report{}, formatters.FormatterOptions{})
	require.NoError(t, err)

	var suites junit.TestSuites
	require.NoError(t, xml.Unmarshal([]byte(out), &suites))
	assert.Equal(t, 0, suites.Tests)
	require.Len(t, suites.TestSuites, 1)
	assert.Equal(t, "card-scan", suites.TestSuites[0].Name)
}

func TestVerboseContextIsMasked(t *testing.T) {
	matches, err := scanner.New().ScanContent("customer credit card 4532 0151 1283 0366 billing, backup 5425233430109903", "notes.txt")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	report := formatters.Report{Findings: matches}

	for _, format := range []string{"json", "yaml", "csv", "junit", "text"} {
		t.Run(format, func(t *testing.T) {
			out, err := formatters.Export(format, report, formatters.FormatterOptions{Verbose: true})
			require.NoError(t, err)
			assert.NotContains(t, out, "4532 0151 1283 0366")
			assert.NotContains(t, out, "5425233430109903")
		})
	}

	response := shared.ConvertReportToJSONFormat(report, formatters.FormatterOptions{Verbose: true})
	assert.Equal(t, "customer credit card 4532 01** **** 0366 billing, backup 542523******9903", response.Findings[0].FullLine)

	raw := shared.ConvertReportToJSONFormat(report, formatters.FormatterOptions{Verbose: true, ShowMatch: true})
	assert.Contains(t, raw.Findings[0].FullLine, "4532 0151 1283 0366")
}
