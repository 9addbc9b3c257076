// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package luhn implements the mod-10 checksum used by payment cards.
package luhn

import (
	"fmt"

	"cardcheck/internal/digits"
)

// Valid reports whether number passes the Luhn checksum. Every character
// must be a decimal digit; an empty number is not valid.
func Valid(number string) (bool, error) {
	seq := digits.Parse(number)
	if seq.Len() == 0 {
		return false, nil
	}

	sum, err := Sum(seq)
	if err != nil {
		return false, fmt.Errorf("luhn check: %w", err)
	}
	return sum%10 == 0, nil
}

// Sum returns the Luhn sum of seq. Starting from the rightmost digit,
// every second digit is doubled and reduced by 9 when it exceeds 9.
func Sum(seq digits.Sequence) (int, error) {
	sum := 0
	double := false

	for i := seq.Len() - 1; i >= 0; i-- {
		digit := seq.At(i)
		if digit < 0 || digit > 9 {
			return 0, fmt.Errorf("position %d: %w", i, digits.ErrMalformedDigit)
		}

		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		double = !double
	}

	return sum, nil
}

// CheckDigit returns the digit that, appended to partial, makes the
// result pass the checksum.
func CheckDigit(partial string) (int, error) {
	// Appending a zero shifts every existing digit into its final position.
	sum, err := Sum(digits.Parse(partial + "0"))
	if err != nil {
		return 0, fmt.Errorf("check digit: %w", err)
	}
	return (10 - sum%10) % 10, nil
}
