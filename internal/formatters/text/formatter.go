// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cardcheck/internal/detector"
	"cardcheck/internal/formatters"
	"cardcheck/internal/formatters/shared"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder

	if len(report.Validations) > 0 {
		f.appendValidations(&builder, report, options)
	}

	matches := shared.FilterMatchesByConfidence(report.Findings, options)
	switch {
	case len(matches) > 0:
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		f.appendFindings(&builder, matches, options)
	case len(report.Validations) == 0 && len(report.Findings) > 0:
		builder.WriteString("No matches found at the specified confidence levels.\n")
	case len(report.Validations) == 0:
		builder.WriteString("No matches found.\n")
	}

	return builder.String(), nil
}

func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

// appendValidations writes one line per card, plus the failing checks in
// verbose mode
func (f *Formatter) appendValidations(builder *strings.Builder, report formatters.Report, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "%-5s %-8s %-26s %-24s %s\n", "CARD", "STATUS", "TYPE", "NUMBER", "DETAILS"))

	for _, o := range report.Validations {
		status := shared.Status(o)
		statusColor := "red"
		if status == shared.StatusValid {
			statusColor = "green"
		}

		cardType, number, details := "-", "-", ""
		if r := o.Result; r != nil {
			cardType = r.Type.String()
			number = r.Number
			if failures := r.Failures(); len(failures) > 0 {
				details = "failed: " + strings.Join(failures, ", ")
			}
		}
		if o.Err != nil {
			if details != "" {
				details += "; "
			}
			details += o.Err.Error()
		}

		fmt.Fprintf(builder, "%s %s %s %s %s\n",
			f.paint("magenta", options, "%-5d", o.Index+1),
			f.paint(statusColor, options, "%-8s", status),
			f.paint("cyan", options, "%-26s", cardType),
			fmt.Sprintf("%-24s", number),
			details)

		if options.Verbose && o.Result != nil {
			r := o.Result
			f.appendCheck(builder, "length", r.LengthOK, options)
			f.appendCheck(builder, "iin", r.IINOK, options)
			f.appendCheck(builder, "luhn", r.LuhnOK, options)
			if r.ExpectedCheckDigit != nil {
				fmt.Fprintf(builder, "        expected check digit: %d\n", *r.ExpectedCheckDigit)
			}
			f.appendCheck(builder, "cvv", r.CVVOK, options)
			f.appendCheck(builder, "expiry", r.ExpiryOK, options)
		}
	}
}

func (f *Formatter) appendCheck(builder *strings.Builder, name string, ok bool, options formatters.FormatterOptions) {
	if ok {
		fmt.Fprintf(builder, "      - %s: %s\n", name, f.paint("green", options, "passed"))
		return
	}
	fmt.Fprintf(builder, "      - %s: %s\n", name, f.paint("red", options, "failed"))
}

// appendFindings writes scanner matches sorted by confidence, highest first
func (f *Formatter) appendFindings(builder *strings.Builder, matches []detector.Match, options formatters.FormatterOptions) {
	sorted := append([]detector.Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	matchWidth := 16
	for _, m := range sorted {
		if n := len([]rune(shared.MatchText(m, options))); n > matchWidth {
			matchWidth = n
		}
	}

	builder.WriteString(f.paint("white", options, "%-8s %-26s %-8s %-10s %-*s %s\n",
		"LEVEL", "TYPE", "CONF%", "LINE", matchWidth, "MATCH", "FILE"))
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", 8+1+26+1+8+1+10+1+matchWidth+1+10)))

	for _, m := range sorted {
		level := shared.GetConfidenceLevel(m.Confidence)
		levelColor := "green"
		switch level {
		case "HIGH":
			levelColor = "red"
		case "MEDIUM":
			levelColor = "yellow"
		}

		filename := m.Filename
		if filename == "" {
			filename = "-"
		} else if !options.Verbose {
			filename = filepath.Base(filename)
		}

		fmt.Fprintf(builder, "%s %s %s %s %-*s %s\n",
			f.paint(levelColor, options, "[%-6s]", level),
			f.paint("cyan", options, "%-26s", m.Type.String()),
			f.paint("blue", options, "%7.2f%%", m.Confidence),
			f.paint("magenta", options, "line %5d", m.LineNumber),
			matchWidth, shared.MatchText(m, options),
			filename)

		if options.Verbose {
			if len(m.Context.PositiveKeywords) > 0 {
				fmt.Fprintf(builder, "      + context: %s\n", strings.Join(m.Context.PositiveKeywords, ", "))
			}
			if len(m.Context.NegativeKeywords) > 0 {
				fmt.Fprintf(builder, "      - context: %s\n", strings.Join(m.Context.NegativeKeywords, ", "))
			}
		}
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
