// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package expiry parses card expiration dates and compares them with a
// caller-supplied current date.
package expiry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cardcheck/internal/digits"
)

// ErrMalformedDate is returned for dates that are not MM/YY or MMYY.
var ErrMalformedDate = errors.New("malformed expiration date")

// Policy decides whether a card expiring in the current month is usable.
type Policy string

const (
	// PolicyInclusive treats a card as valid through its expiry month.
	PolicyInclusive Policy = "inclusive"
	// PolicyStrict requires the expiry month to be after the current month.
	PolicyStrict Policy = "strict"
)

// ParsePolicy maps a config value to a Policy. Empty selects the default.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyInclusive:
		return PolicyInclusive, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown expiry policy %q", s)
	}
}

// Date is a card expiration month with a two digit year.
type Date struct {
	Month int
	Year  int
}

// String formats the date as MM/YY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d", d.Month, d.Year)
}

// Normalize removes every slash from s.
func Normalize(s string) string {
	return strings.ReplaceAll(s, "/", "")
}

// Field parses s[start:end] as a base-10 integer.
func Field(s string, start, end int) (int, error) {
	if start < 0 || end > len(s) || start > end {
		return 0, fmt.Errorf("substring [%d:%d] of %d characters: %w", start, end, len(s), digits.ErrOutOfRange)
	}
	n, err := strconv.Atoi(s[start:end])
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s[start:end], ErrMalformedDate)
	}
	return n, nil
}

// Parse reads an expiration date written as MM/YY or MMYY.
func Parse(s string) (Date, error) {
	normalized := Normalize(strings.TrimSpace(s))
	if len(normalized) != 4 || !digits.Parse(normalized).Decimal() {
		return Date{}, fmt.Errorf("%q: %w", s, ErrMalformedDate)
	}

	month, err := Field(normalized, 0, 2)
	if err != nil {
		return Date{}, err
	}
	year, err := Field(normalized, 2, 4)
	if err != nil {
		return Date{}, err
	}

	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("month %d in %q: %w", month, s, ErrMalformedDate)
	}
	return Date{Month: month, Year: year}, nil
}

// YearAfter reports whether the expiry year is strictly after the current one.
func YearAfter(expYear, currentYear int) bool {
	return expYear > currentYear
}

// Check reports whether d is still valid at now.
func Check(d Date, now time.Time, policy Policy) bool {
	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if YearAfter(d.Year, currentYear) {
		return true
	}
	if d.Year != currentYear {
		return false
	}

	if policy == PolicyStrict {
		return d.Month > currentMonth
	}
	return d.Month >= currentMonth
}

// Valid parses s and checks it against now. Unparseable dates are not valid.
func Valid(s string, now time.Time, policy Policy) bool {
	d, err := Parse(s)
	if err != nil {
		return false
	}
	return Check(d, now, policy)
}
