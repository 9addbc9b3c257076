// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"regexp"
	"strings"
)

// Runs of six or more digits, optionally split by single spaces or dashes
var digitRun = regexp.MustCompile(`\d(?:[ \-]?\d){5,}`)

// SecureString holds a card number with best-effort memory scrubbing on Clear.
//
// Go's garbage collector may copy memory and String() creates an immutable
// copy, so Clear only narrows the exposure window.
type SecureString struct {
	data []byte
}

// NewSecureString copies s into a mutable byte slice.
func NewSecureString(s string) *SecureString {
	data := make([]byte, len(s))
	copy(data, s)
	return &SecureString{data: data}
}

// String returns the raw value. Each call creates a copy Clear cannot reach.
func (ss *SecureString) String() string {
	return string(ss.data)
}

// Masked returns the value with its middle digits hidden.
func (ss *SecureString) Masked() string {
	return Mask(string(ss.data))
}

// Clear zeroes the internal byte slice and releases it.
func (ss *SecureString) Clear() {
	if ss.data != nil {
		for i := range ss.data {
			ss.data[i] = 0
		}
		ss.data = nil
	}
}

// Mask keeps the first six and last four digits of a card number and
// replaces the other digits with '*'. Separators stay in place. Numbers
// with ten or fewer digits keep only the last four.
func Mask(number string) string {
	total := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			total++
		}
	}

	keepHead := 6
	if total <= 10 {
		keepHead = 0
	}
	keepTail := 4
	if total < keepTail {
		keepTail = total
	}

	var b strings.Builder
	b.Grow(len(number))
	seen := 0
	for _, r := range number {
		if r < '0' || r > '9' {
			b.WriteRune(r)
			continue
		}
		if seen < keepHead || seen >= total-keepTail {
			b.WriteRune(r)
		} else {
			b.WriteByte('*')
		}
		seen++
	}
	return b.String()
}

// MaskText applies Mask to every run of six or more digits in s, so
// lines quoted around a finding never carry a full card number.
func MaskText(s string) string {
	return digitRun.ReplaceAllStringFunc(s, Mask)
}
