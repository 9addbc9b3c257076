// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"cardcheck/internal/observability"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxPDFPages bounds the pages read from a single PDF
const DefaultMaxPDFPages = 50

const pdfWorkers = 8

// PDFExtractor reads text and AcroForm values from PDF documents
type PDFExtractor struct {
	maxPages int
	observer *observability.StandardObserver
}

// NewPDFExtractor creates a PDF extractor. maxPages <= 0 selects
// DefaultMaxPDFPages.
func NewPDFExtractor(maxPages int) *PDFExtractor {
	if maxPages <= 0 {
		maxPages = DefaultMaxPDFPages
	}
	return &PDFExtractor{maxPages: maxPages}
}

// SetObserver sets the observability component
func (p *PDFExtractor) SetObserver(observer *observability.StandardObserver) {
	p.observer = observer
}

// GetName returns the name of this extractor
func (p *PDFExtractor) GetName() string {
	return "PDF Extractor"
}

// GetSupportedExtensions returns the file extensions this extractor supports
func (p *PDFExtractor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks the file extension
func (p *PDFExtractor) CanProcess(filePath string) bool {
	return hasExtension(filePath, p.GetSupportedExtensions())
}

// Process extracts the text of up to maxPages pages followed by any form
// field values. Pages that fail to decode are skipped.
func (p *PDFExtractor) Process(filePath string) (*Content, error) {
	var finishTiming func(bool, map[string]interface{})
	if p.observer != nil {
		finishTiming = p.observer.StartTiming("pdf_extractor", "process_file", filePath)
	}

	text, pages, failed, err := p.extractText(filePath)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	content := newContent(filePath, "PDF", "pdf", text)
	content.PageCount = pages

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"page_count":   pages,
			"failed_pages": failed,
			"word_count":   content.WordCount,
		})
	}
	return content, nil
}

func (p *PDFExtractor) extractText(filePath string) (string, int, int, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, 0, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > p.maxPages {
		pageCount = p.maxPages
	}

	pageTexts := make([]string, pageCount)
	pageErrs := make([]error, pageCount)

	var g errgroup.Group
	g.SetLimit(pdfWorkers)
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			page := r.Page(i + 1)
			if page.V.IsNull() {
				pageErrs[i] = fmt.Errorf("null page %d", i+1)
				return nil
			}
			pageTexts[i], pageErrs[i] = pageText(page)
			return nil
		})
	}
	_ = g.Wait()

	var buf bytes.Buffer
	failed := 0
	for i, text := range pageTexts {
		if pageErrs[i] != nil {
			failed++
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}

	if formData := formFields(r); formData != "" {
		buf.WriteString("\n")
		buf.WriteString(formData)
	}

	return cleanLines(buf.String()), pageCount, failed, nil
}

// pageText rebuilds the page row by row, falling back to plain text
// extraction when rows cannot be read.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		if line := rowText(row.Content); strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the glyph runs of a row, inserting a space where the
// horizontal gap exceeds a fraction of the font size
func rowText(texts []pdf.Text) string {
	sorted := append([]pdf.Text(nil), texts...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap := sorted[i+1].X - (t.X + t.W); gap > fontSize*0.25 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// formFields lists AcroForm field names and values, one per line
func formFields(r *pdf.Reader) string {
	fields := r.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.Kind() != pdf.Array {
		return ""
	}

	var buf bytes.Buffer
	for i := 0; i < fields.Len(); i++ {
		field := fields.Index(i)
		if field.Kind() != pdf.Dict {
			continue
		}
		name := field.Key("T").Text()
		value := fieldValue(field.Key("V"))
		if value == "" {
			value = fieldValue(field.Key("DV"))
		}
		if name != "" && value != "" {
			fmt.Fprintf(&buf, "%s: %s\n", name, value)
		}
	}
	return buf.String()
}

func fieldValue(v pdf.Value) string {
	switch v.Kind() {
	case pdf.String:
		return v.Text()
	case pdf.Name:
		return v.Name()
	}
	return ""
}

// cleanLines trims every line, drops empty ones and collapses runs of
// spaces and tabs to a single space
func cleanLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
