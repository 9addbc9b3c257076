// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package junit

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cardcheck/internal/batch"
	"cardcheck/internal/detector"
	"cardcheck/internal/formatters"
	"cardcheck/internal/formatters/shared"
)

// JUnit XML structures based on the standard JUnit XML schema
type TestSuites struct {
	XMLName    xml.Name    `xml:"testsuites"`
	Name       string      `xml:"name,attr"`
	Tests      int         `xml:"tests,attr"`
	Failures   int         `xml:"failures,attr"`
	Errors     int         `xml:"errors,attr"`
	Time       string      `xml:"time,attr"`
	TestSuites []TestSuite `xml:"testsuite"`
}

type TestSuite struct {
	XMLName   xml.Name   `xml:"testsuite"`
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Failures  int        `xml:"failures,attr"`
	Errors    int        `xml:"errors,attr"`
	Time      string     `xml:"time,attr"`
	TestCases []TestCase `xml:"testcase"`
}

type TestCase struct {
	XMLName   xml.Name `xml:"testcase"`
	Name      string   `xml:"name,attr"`
	ClassName string   `xml:"classname,attr"`
	Time      string   `xml:"time,attr"`
	Failure   *Failure `xml:"failure,omitempty"`
	Error     *Failure `xml:"error,omitempty"`
}

type Failure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Formatter implements JUnit XML output formatting
type Formatter struct{}

// NewFormatter creates a new JUnit XML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "junit"
}

func (f *Formatter) Description() string {
	return "JUnit XML format for CI/CD integration and test reporting"
}

func (f *Formatter) FileExtension() string {
	return ".xml"
}

// Format writes one suite for validations, with a test case per card,
// and one for scan findings, with a test case per file.
func (f *Formatter) Format(report formatters.Report, options formatters.FormatterOptions) (string, error) {
	testSuites := TestSuites{
		Name: "cardcheck",
		Time: "0.000",
	}

	if len(report.Validations) > 0 {
		suite := f.validationSuite(report.Validations)
		testSuites.TestSuites = append(testSuites.TestSuites, suite)
		testSuites.Tests += suite.Tests
		testSuites.Failures += suite.Failures
		testSuites.Errors += suite.Errors
	}

	findings := shared.FilterMatchesByConfidence(report.Findings, options)
	if len(findings) > 0 || len(report.Validations) == 0 {
		suite := f.scanSuite(findings, options)
		testSuites.TestSuites = append(testSuites.TestSuites, suite)
		testSuites.Tests += suite.Tests
		testSuites.Failures += suite.Failures
	}

	xmlData, err := xml.MarshalIndent(testSuites, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}

	return xml.Header + string(xmlData), nil
}

func (f *Formatter) validationSuite(outcomes []batch.Outcome) TestSuite {
	suite := TestSuite{
		Name: "card-validation",
		Time: "0.000",
	}

	for _, o := range outcomes {
		testCase := TestCase{
			Name:      fmt.Sprintf("card[%d]", o.Index),
			ClassName: "card-validation",
			Time:      "0.001",
		}
		if o.Result != nil {
			testCase.Name = fmt.Sprintf("card[%d] %s %s", o.Index, o.Result.Type, o.Result.Number)
		}

		switch shared.Status(o) {
		case shared.StatusInvalid:
			failed := o.Result.Failures()
			testCase.Failure = &Failure{
				Message: "failed checks: " + strings.Join(failed, ", "),
				Type:    shared.StatusInvalid,
			}
			if o.Err != nil {
				testCase.Failure.Content = o.Err.Error()
			}
			suite.Failures++
		case shared.StatusError:
			testCase.Error = &Failure{
				Message: o.Err.Error(),
				Type:    shared.StatusError,
			}
			suite.Errors++
		}

		suite.TestCases = append(suite.TestCases, testCase)
		suite.Tests++
	}

	return suite
}

func (f *Formatter) scanSuite(matches []detector.Match, options formatters.FormatterOptions) TestSuite {
	suite := TestSuite{
		Name: "card-scan",
		Time: "0.000",
	}

	fileGroups := f.groupMatchesByFile(matches)
	filenames := make([]string, 0, len(fileGroups))
	for filename := range fileGroups {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	for _, filename := range filenames {
		testCase := f.createTestCaseForFile(filename, fileGroups[filename], options)
		suite.TestCases = append(suite.TestCases, testCase)
		suite.Tests++
		suite.Failures++
	}

	return suite
}

// groupMatchesByFile groups matches by filename
func (f *Formatter) groupMatchesByFile(matches []detector.Match) map[string][]detector.Match {
	groups := make(map[string][]detector.Match)
	for _, match := range matches {
		groups[match.Filename] = append(groups[match.Filename], match)
	}
	return groups
}

// createTestCaseForFile creates a failing test case for a file with findings
func (f *Formatter) createTestCaseForFile(filename string, matches []detector.Match, options formatters.FormatterOptions) TestCase {
	failure := f.createFailureFromMatches(matches, options)
	return TestCase{
		Name:      filepath.Base(filename),
		ClassName: "card-scan",
		Time:      "0.001",
		Failure:   &failure,
	}
}

// createFailureFromMatches creates a JUnit failure from card findings
func (f *Formatter) createFailureFromMatches(matches []detector.Match, options formatters.FormatterOptions) Failure {
	var messageBuilder strings.Builder
	var contentBuilder strings.Builder

	sorted := append([]detector.Match(nil), matches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	if len(sorted) == 1 {
		match := sorted[0]
		messageBuilder.WriteString(fmt.Sprintf("%s card number found", match.Type))
		if options.ShowMatch {
			messageBuilder.WriteString(fmt.Sprintf(": %s", shared.MatchText(match, options)))
		}
	} else {
		messageBuilder.WriteString(fmt.Sprintf("%d card numbers found", len(sorted)))
	}

	for i, match := range sorted {
		if i > 0 {
			contentBuilder.WriteString("\n")
		}

		contentBuilder.WriteString(fmt.Sprintf("Line %d: %s card number with %.1f%% confidence (%s)",
			match.LineNumber, match.Type, match.Confidence, shared.GetConfidenceLevel(match.Confidence)))
		contentBuilder.WriteString(fmt.Sprintf("\nMatch: %s", shared.MatchText(match, options)))

		if options.Verbose && match.Context.FullLine != "" {
			contentBuilder.WriteString(fmt.Sprintf("\nContext: %s", shared.ContextText(match.Context.FullLine, options)))
		}
	}

	return Failure{
		Message: messageBuilder.String(),
		Type:    f.getFailureType(sorted),
		Content: contentBuilder.String(),
	}
}

// getFailureType is the network name for a single finding
func (f *Formatter) getFailureType(matches []detector.Match) string {
	if len(matches) == 1 {
		return matches[0].Type.String()
	}
	return "CARD_NUMBERS"
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
