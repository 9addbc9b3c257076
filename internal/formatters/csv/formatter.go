// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"cardcheck/internal/formatters"
	"cardcheck/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

// Format writes one table for validations and one for findings, separated
// by a blank line when both are present.
func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	var tables []string

	if len(report.Validations) > 0 {
		rows := []string{"Index,Number,Type,Status,Failures,Error"}
		for _, o := range report.Validations {
			var number, cardType, failures, errText string
			if o.Result != nil {
				number = o.Result.Number
				cardType = o.Result.Type.String()
				failures = strings.Join(o.Result.Failures(), ";")
			}
			if o.Err != nil {
				errText = o.Err.Error()
			}
			rows = append(rows, strings.Join([]string{
				fmt.Sprintf("%d", o.Index),
				f.escapeCSVField(number),
				f.escapeCSVField(cardType),
				shared.Status(o),
				f.escapeCSVField(failures),
				f.escapeCSVField(errText),
			}, ","))
		}
		tables = append(tables, strings.Join(rows, "\n"))
	}

	matches := shared.FilterMatchesByConfidence(report.Findings, options)
	if len(matches) > 0 || len(report.Validations) == 0 {
		headers := []string{"Filename", "Type", "Confidence Level", "Confidence %", "Line Number", "Text"}
		if options.Verbose {
			headers = append(headers, "Line")
		}
		rows := []string{strings.Join(headers, ",")}
		for _, match := range matches {
			row := []string{
				f.escapeCSVField(match.Filename),
				f.escapeCSVField(match.Type.String()),
				shared.GetConfidenceLevel(match.Confidence),
				fmt.Sprintf("%.1f", match.Confidence),
				fmt.Sprintf("%d", match.LineNumber),
				f.escapeCSVField(shared.MatchText(match, options)),
			}
			if options.Verbose {
				row = append(row, f.escapeCSVField(shared.ContextText(match.Context.FullLine, options)))
			}
			rows = append(rows, strings.Join(row, ","))
		}
		tables = append(tables, strings.Join(rows, "\n"))
	}

	return strings.Join(tables, "\n\n"), nil
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	if strings.ContainsAny(field, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
	}
	return field
}

// sanitizeFormulaInjection prefixes fields spreadsheets would evaluate as formulas
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}
	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
