// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package digits converts card-number strings into digit sequences and
// extracts Issuer Identification Number prefixes from them.
package digits

import (
	"errors"
	"fmt"
	"strings"
)

// Invalid marks a character that has no radix-36 value.
const Invalid = -1

var (
	// ErrNullInput is returned when a required string is absent.
	ErrNullInput = errors.New("input is absent")

	// ErrMalformedDigit is returned when a decimal digit was required but
	// the sequence holds a letter or a non-alphanumeric sentinel.
	ErrMalformedDigit = errors.New("malformed digit")

	// ErrOutOfRange is returned when a width or bound exceeds the input.
	ErrOutOfRange = errors.New("out of range")
)

// Sequence is an immutable ordered list of per-character values in [-1, 35].
type Sequence struct {
	values []int
}

// Parse converts every rune of s to its radix-36 value. Separators,
// whitespace and other symbols become Invalid rather than being dropped,
// so the result always has one entry per input rune.
func Parse(s string) Sequence {
	values := make([]int, 0, len(s))
	for _, r := range s {
		values = append(values, runeValue(r))
	}
	return Sequence{values: values}
}

// ParseNullable is Parse for optional inputs such as batch file fields.
func ParseNullable(s *string) (Sequence, error) {
	if s == nil {
		return Sequence{}, ErrNullInput
	}
	return Parse(*s), nil
}

func runeValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	// fullwidth forms
	case r >= '０' && r <= '９':
		return int(r - '０')
	case r >= 'Ａ' && r <= 'Ｚ':
		return int(r-'Ａ') + 10
	case r >= 'ａ' && r <= 'ｚ':
		return int(r-'ａ') + 10
	default:
		return Invalid
	}
}

// Len returns the number of entries.
func (s Sequence) Len() int {
	return len(s.values)
}

// At returns the entry at index i. It panics if i is out of range.
func (s Sequence) At(i int) int {
	return s.values[i]
}

// Values returns a copy of the entries.
func (s Sequence) Values() []int {
	out := make([]int, len(s.values))
	copy(out, s.values)
	return out
}

// Decimal reports whether every entry is a decimal digit.
func (s Sequence) Decimal() bool {
	for _, v := range s.values {
		if !isDecimal(v) {
			return false
		}
	}
	return true
}

// String renders the sequence back to text, using '?' for Invalid entries.
func (s Sequence) String() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	b.Grow(len(s.values))
	for _, v := range s.values {
		if v == Invalid {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(alphabet[v])
	}
	return b.String()
}

// ExtractPrefix concatenates the first width entries as decimal digits.
// Every entry in the window must be 0-9.
func ExtractPrefix(seq Sequence, width int) (int, error) {
	if width <= 0 || width > seq.Len() {
		return 0, fmt.Errorf("prefix width %d for %d digits: %w", width, seq.Len(), ErrOutOfRange)
	}

	prefix := 0
	for i := 0; i < width; i++ {
		v := seq.values[i]
		if !isDecimal(v) {
			return 0, fmt.Errorf("prefix position %d: %w", i, ErrMalformedDigit)
		}
		prefix = prefix*10 + v
	}
	return prefix, nil
}

func isDecimal(v int) bool {
	return v >= 0 && v <= 9
}
