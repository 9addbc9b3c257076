// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cvv checks card verification values. Only the length is checked.
package cvv

import "unicode/utf8"

const (
	MinLength = 3
	MaxLength = 4
)

// Valid reports whether s has between MinLength and MaxLength characters.
func Valid(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= MinLength && n <= MaxLength
}
