// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scanner finds payment-card numbers in free text and scores how
// likely each candidate is to be a real card.
package scanner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"cardcheck/internal/detector"
	"cardcheck/internal/digits"
	"cardcheck/internal/luhn"
	"cardcheck/internal/network"
	"cardcheck/internal/observability"
	"cardcheck/internal/security"
)

// Scanner implements detector.Detector using a candidate regex, the
// network rule table, the Luhn checksum and keyword context analysis.
type Scanner struct {
	pattern string
	regex   *regexp.Regexp

	// Pre-compiled test patterns for fast rejection
	testPatterns []*regexp.Regexp

	multiSpace *regexp.Regexp
	financial  *regexp.Regexp

	// Keywords for context analysis
	positiveKeywords map[string]bool
	negativeKeywords map[string]bool

	minConfidence float64

	observer *observability.StandardObserver
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMinConfidence drops matches scoring below min.
func WithMinConfidence(min float64) Option {
	return func(s *Scanner) {
		s.minConfidence = min
	}
}

// New creates a Scanner with the default patterns and keywords.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		// Candidates are delimited by whitespace, punctuation used in tabular
		// data, or line boundaries so digits inside longer numbers are skipped.
		// Grouped forms cover 4-4-4-4 (and shorter final groups), Amex 4-6-5
		// and 4-4-4-4-3 for 19 digit cards.
		pattern: `(?:^|[\s,;|"'(){}[\]<>:=])(\d{4}[ \-]\d{4}[ \-]\d{4}[ \-]\d{4}[ \-]\d{3}|\d{4}[ \-]\d{4}[ \-]\d{4}[ \-]\d{1,4}|\d{4}[ \-]\d{6}[ \-]\d{5}|\d{4}[ \-]\d{6}[ \-]\d{4}|\d{12,19})(?:[\s,;|"'(){}[\]<>.]|$)`,

		positiveKeywords: toSet(
			"credit", "card", "visa", "mastercard", "amex", "american", "discover",
			"jcb", "diners", "maestro", "unionpay", "rupay", "verve", "cardholder",
			"payment", "transaction", "purchase", "expiration", "expiry", "exp",
			"cvv", "cvc", "billing", "checkout", "pay", "paid", "pci", "merchant", "pan",
		),

		negativeKeywords: toSet(
			"account", "id", "identifier", "serial", "tracking", "reference",
			"order", "invoice", "timestamp", "unix", "epoch", "phone", "tel",
			"md5", "sha", "hash", "uuid", "guid", "crc", "checksum",
			"version", "build", "test", "example", "fake", "mock", "sample",
		),
	}

	s.regex = regexp.MustCompile(s.pattern)
	s.multiSpace = regexp.MustCompile(`\s{2,}`)
	s.financial = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+\s+\d{4}[\s-]?\d{4}`)

	s.testPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^1234567890123456$`),
		regexp.MustCompile(`^(?:0{12,19}|1{12,19}|2{12,19}|3{12,19}|4{12,19}|5{12,19}|6{12,19}|7{12,19}|8{12,19}|9{12,19})$`),
		regexp.MustCompile(`^1111222233334444$`),
		regexp.MustCompile(`^1212121212121212$`),
		regexp.MustCompile(`^4111111111111111$`), // Common test Visa
		regexp.MustCompile(`^4242424242424242$`), // Common test Visa
		regexp.MustCompile(`^5555555555554444$`), // Common test Mastercard
		regexp.MustCompile(`^5105105105105100$`), // Common test Mastercard
		regexp.MustCompile(`^4000000000000002$`),
		regexp.MustCompile(`^5100000000000008$`),
		regexp.MustCompile(`^378282246310005$`), // Common test Amex
		regexp.MustCompile(`^340000000000009$`),
		regexp.MustCompile(`^6011111111111117$`), // Common test Discover
		regexp.MustCompile(`^3566002020360505$`), // Common test JCB
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// GetComponentName implements observability.Observable
func (s *Scanner) GetComponentName() string {
	return "scanner"
}

// SetObserver sets the observability component
func (s *Scanner) SetObserver(observer *observability.StandardObserver) {
	s.observer = observer
}

// ScanContent finds card numbers in content. originalPath is only recorded
// on the matches.
func (s *Scanner) ScanContent(content string, originalPath string) ([]detector.Match, error) {
	var finishTiming func(bool, map[string]interface{})
	if s.observer != nil {
		finishTiming = s.observer.StartTiming(s.GetComponentName(), "scan_content", originalPath)
	}

	var matches []detector.Match
	lines := strings.Split(content, "\n")

	for lineNum, line := range lines {
		for _, regexMatch := range s.regex.FindAllStringSubmatch(line, -1) {
			if len(regexMatch) < 2 {
				continue
			}

			match := regexMatch[1]
			cleanMatch := cleanCardNumber(match)
			seq := digits.Parse(cleanMatch)

			if seq.Len() < 12 || seq.Len() > 19 {
				continue
			}

			// Luhn before the more expensive context work
			if ok, err := luhn.Valid(cleanMatch); err != nil || !ok {
				s.logLuhnFailure(match, lineNum+1, originalPath)
				continue
			}

			confidence, checks := s.calculateConfidence(seq, cleanMatch)

			contextInfo := s.buildContextInfo(line, match)
			contextImpact := s.analyzeContext(&contextInfo)
			confidence += contextImpact

			if s.isTabularData(line) {
				confidence += 10
			}

			confidence = clamp(confidence, 0, 100)

			// Test patterns and suspicious numbers stay reportable but never score high
			if !checks["not_test"] || !checks["not_repeating"] {
				confidence = clamp(confidence, 1, 15)
			}

			if confidence <= 0 || confidence < s.minConfidence {
				continue
			}

			matches = append(matches, detector.Match{
				Text:       security.Mask(match),
				SecureText: security.NewSecureString(cleanMatch),
				LineNumber: lineNum + 1,
				Type:       network.ClassifySequence(seq),
				Confidence: confidence,
				Checks:     checks,
				Filename:   originalPath,
				Context:    contextInfo,
			})
		}
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"match_count":     len(matches),
			"lines_processed": len(lines),
			"content_length":  len(content),
		})
	}

	return matches, nil
}

// CalculateConfidence implements detector.Detector for a single candidate.
func (s *Scanner) CalculateConfidence(match string) (float64, map[string]bool) {
	cleanMatch := cleanCardNumber(match)
	seq := digits.Parse(cleanMatch)

	confidence, checks := s.calculateConfidence(seq, cleanMatch)

	luhnOK, err := luhn.Valid(cleanMatch)
	checks["luhn"] = err == nil && luhnOK
	checks["digits"] = seq.Decimal()
	if !checks["luhn"] {
		confidence = clamp(confidence-40, 0, 100)
	}
	return confidence, checks
}

// AnalyzeContext implements detector.Detector.
func (s *Scanner) AnalyzeContext(match string, context detector.ContextInfo) float64 {
	return s.analyzeContext(&context)
}

// calculateConfidence scores a Luhn-valid candidate.
func (s *Scanner) calculateConfidence(seq digits.Sequence, cleanMatch string) (float64, map[string]bool) {
	checks := map[string]bool{
		"length":        false,
		"digits":        true,
		"luhn":          true,
		"network":       false,
		"not_test":      true,
		"entropy":       false,
		"not_repeating": false,
	}

	// Start with moderate confidence - we need to prove this is a real card
	confidence := 60.0

	cardType := network.ClassifySequence(seq)
	if rule, ok := network.RuleFor(cardType); ok {
		checks["network"] = true
		confidence += 15
		if rule.LengthOK(seq.Len()) {
			checks["length"] = true
		} else {
			confidence -= 15
		}
	} else {
		confidence -= 20
	}

	if s.isKnownTestPattern(cleanMatch) {
		confidence = 5.0
		checks["not_test"] = false
	}

	if hasRepeatingPatterns(cleanMatch) {
		confidence -= 35
	} else {
		checks["not_repeating"] = true
		confidence += 10
	}

	entropy := digitSpread(cleanMatch)
	if entropy < 2.5 {
		confidence -= 20
	} else if entropy >= 3.5 {
		confidence += 10
		checks["entropy"] = true
	}

	confidence = clamp(confidence, 0, 100)

	// No amount of context should make obvious test patterns high confidence
	if !checks["not_test"] || !checks["not_repeating"] {
		confidence = clamp(confidence, 5, 15)
	}

	return confidence, checks
}

func (s *Scanner) isKnownTestPattern(number string) bool {
	for _, pattern := range s.testPatterns {
		if pattern.MatchString(number) {
			return true
		}
	}
	return false
}

// hasRepeatingPatterns flags long runs, alternating and sequential digits.
func hasRepeatingPatterns(number string) bool {
	// Real cards can have some repetition, but 8+ consecutive is suspicious
	consecutiveCount := 1
	for i := 1; i < len(number); i++ {
		if number[i] == number[i-1] {
			consecutiveCount++
			if consecutiveCount >= 8 {
				return true
			}
		} else {
			consecutiveCount = 1
		}
	}

	if len(number) >= 8 {
		alternating := true
		for i := 2; i < len(number); i++ {
			if number[i] != number[i-2] {
				alternating = false
				break
			}
		}
		if alternating && number[0] != number[1] {
			return true
		}
	}

	for i := 1; i < len(number); i++ {
		if int(number[i]-'0') != (int(number[i-1]-'0')+1)%10 {
			return false
		}
	}
	return true
}

// digitSpread approximates entropy from the number of distinct digits.
func digitSpread(number string) float64 {
	var seen [10]bool
	unique := 0
	for _, r := range number {
		if r >= '0' && r <= '9' && !seen[r-'0'] {
			seen[r-'0'] = true
			unique++
		}
	}
	return float64(unique) * 0.5
}

// analyzeContext scores the words on the line and records which keywords hit.
func (s *Scanner) analyzeContext(context *detector.ContextInfo) float64 {
	words := strings.FieldsFunc(strings.ToLower(context.BeforeText+" "+context.AfterText), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for _, word := range words {
		if s.negativeKeywords[word] {
			context.NegativeKeywords = append(context.NegativeKeywords, word)
		}
		if s.positiveKeywords[word] {
			context.PositiveKeywords = append(context.PositiveKeywords, word)
		}
	}

	impact := 0.0
	switch {
	case len(context.NegativeKeywords) > 0:
		impact = -100
	case len(context.PositiveKeywords) > 0:
		// Only count one positive keyword to avoid over-boosting
		impact = 15
	}
	context.ConfidenceImpact = impact
	return impact
}

// buildContextInfo keeps up to 30 characters either side of the match
func (s *Scanner) buildContextInfo(line, match string) detector.ContextInfo {
	contextInfo := detector.ContextInfo{FullLine: line}

	matchIndex := strings.Index(line, match)
	if matchIndex < 0 {
		return contextInfo
	}

	start := matchIndex - 30
	if start < 0 {
		start = 0
	}
	end := matchIndex + len(match) + 30
	if end > len(line) {
		end = len(line)
	}

	contextInfo.BeforeText = line[start:matchIndex]
	contextInfo.AfterText = line[matchIndex+len(match) : end]
	return contextInfo
}

// isTabularData checks if the card number appears in delimited or columnar data
func (s *Scanner) isTabularData(line string) bool {
	if strings.Count(line, "\t") > 0 || strings.Count(line, ",") >= 2 ||
		strings.Count(line, ";") >= 2 || strings.Count(line, "|") >= 2 {
		return true
	}

	// Fixed-width columns
	if len(s.multiSpace.FindAllString(line, -1)) >= 2 {
		return true
	}

	// Names followed by a card number
	return s.financial.MatchString(line)
}

func (s *Scanner) logLuhnFailure(originalMatch string, lineNum int, filePath string) {
	if s.observer == nil || s.observer.DebugObserver == nil {
		return
	}
	s.observer.DebugObserver.LogDetail(s.GetComponentName(),
		fmt.Sprintf("luhn check failed for %s at %s:%d", security.Mask(originalMatch), filePath, lineNum))
}

func cleanCardNumber(number string) string {
	return strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
