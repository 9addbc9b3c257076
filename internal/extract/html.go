// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardcheck/internal/observability"

	"github.com/PuerkitoBio/goquery"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "td": true, "th": true,
	"tr": true, "ul": true,
}

// HTMLExtractor renders the visible text of HTML documents, one block
// element per line, followed by the values of form inputs.
type HTMLExtractor struct {
	observer *observability.StandardObserver
}

// NewHTMLExtractor creates a new HTML extractor
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// SetObserver sets the observability component
func (h *HTMLExtractor) SetObserver(observer *observability.StandardObserver) {
	h.observer = observer
}

// GetName returns the name of this extractor
func (h *HTMLExtractor) GetName() string {
	return "HTML Extractor"
}

// GetSupportedExtensions returns the file extensions this extractor supports
func (h *HTMLExtractor) GetSupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// CanProcess checks the file extension
func (h *HTMLExtractor) CanProcess(filePath string) bool {
	return hasExtension(filePath, h.GetSupportedExtensions())
}

// Process parses the document and extracts its text
func (h *HTMLExtractor) Process(filePath string) (*Content, error) {
	var finishTiming func(bool, map[string]interface{})
	if h.observer != nil {
		finishTiming = h.observer.StartTiming("html_extractor", "process_file", filePath)
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		err = fmt.Errorf("failed to read file: %w", err)
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	text, err := HTMLText(data)
	if err != nil {
		if finishTiming != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
		}
		return nil, err
	}

	content := newContent(filePath, "HTML", "html", text)
	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{"word_count": content.WordCount})
	}
	return content, nil
}

// HTMLText returns the visible text of an HTML document.
func HTMLText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	doc.Find("script, style, noscript, template").Remove()

	var buf strings.Builder
	writeText(&buf, doc.Find("body"))

	// Prefilled form values are not part of the text nodes
	doc.Find("input[value], textarea").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		value, ok := s.Attr("value")
		if !ok {
			value = s.Text()
		}
		if value = strings.TrimSpace(value); value == "" {
			return
		}
		if name != "" {
			buf.WriteString(name + ": ")
		}
		buf.WriteString(value + "\n")
	})

	return cleanLines(buf.String()), nil
}

func writeText(buf *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		if name == "#text" {
			buf.WriteString(c.Text())
			return
		}
		block := blockElements[name]
		if block {
			buf.WriteString("\n")
		}
		writeText(buf, c)
		if block {
			buf.WriteString("\n")
		} else if name == "span" || name == "a" || name == "label" {
			buf.WriteString(" ")
		}
	})
}
