// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package network holds the per-network length and IIN rules and the
// classifier that maps a card number to its network.
package network

import (
	"fmt"
	"strings"

	"cardcheck/internal/digits"
)

// Predicate names the check that rejected a number.
type Predicate string

const (
	PredicateLength Predicate = "length"
	PredicateIIN    Predicate = "iin"
	PredicateLuhn   Predicate = "luhn"
)

// ValidationResult is the outcome of a rule check. Failed is empty when Valid.
type ValidationResult struct {
	Valid  bool      `json:"valid" yaml:"valid"`
	Failed Predicate `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Classify parses number and returns its network.
func Classify(number string) CardType {
	return ClassifySequence(digits.Parse(number))
}

// ClassifySequence walks the rule table top to bottom. A rule whose IIN and
// length both match wins; failing that, the first rule whose IIN alone
// matches is reported so the caller can flag the length separately.
func ClassifySequence(seq digits.Sequence) CardType {
	fallback := Unknown
	for _, rule := range rules {
		if !rule.IINOK(seq) {
			continue
		}
		if rule.LengthOK(seq.Len()) {
			return rule.Type
		}
		if fallback == Unknown {
			fallback = rule.Type
		}
	}
	return fallback
}

func (s Span) String() string {
	if s.Lo == s.Hi {
		return fmt.Sprintf("%d", s.Lo)
	}
	return fmt.Sprintf("%d-%d", s.Lo, s.Hi)
}

// DescribeLengths renders the allowed lengths, e.g. "16, 19".
func (r Rule) DescribeLengths() string {
	parts := make([]string, len(r.Lengths))
	for i, span := range r.Lengths {
		parts[i] = span.String()
	}
	return strings.Join(parts, ", ")
}

// DescribeIIN renders the IIN ranges, e.g. "51-55, 2221-2720".
func (r Rule) DescribeIIN() string {
	parts := make([]string, len(r.IIN))
	for i, iin := range r.IIN {
		parts[i] = iin.String()
	}
	return strings.Join(parts, ", ")
}
