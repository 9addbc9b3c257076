// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package digits

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromValues(values ...int) Sequence {
	return Sequence{values: values}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"empty string", "", []int{}},
		{"single digit", "5", []int{5}},
		{"separator kept as sentinel", "12-34", []int{1, 2, Invalid, 3, 4}},
		{"spaces kept as sentinel", "1 2 3", []int{1, Invalid, 2, Invalid, 3}},
		{"upper case letters", "ABC", []int{10, 11, 12}},
		{"lower case letters", "xyz", []int{33, 34, 35}},
		{"fullwidth digits", "４５", []int{4, 5}},
		{"fullwidth letters", "Ａｚ", []int{10, 35}},
		{"symbols", "#/!", []int{Invalid, Invalid, Invalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := Parse(tt.input)
			assert.Equal(t, tt.expected, seq.Values())
			assert.Equal(t, utf8.RuneCountInString(tt.input), seq.Len())
		})
	}
}

func TestParse_LongInput(t *testing.T) {
	seq := Parse("12345678901234567890123456789012345678901234567890")
	assert.Equal(t, 50, seq.Len())
	assert.True(t, seq.Decimal())
}

func TestParseNullable(t *testing.T) {
	_, err := ParseNullable(nil)
	require.ErrorIs(t, err, ErrNullInput)

	number := "4532"
	seq, err := ParseNullable(&number)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 3, 2}, seq.Values())
}

func TestSequence_ValuesIsCopy(t *testing.T) {
	seq := Parse("123")
	values := seq.Values()
	values[0] = 9
	assert.Equal(t, 1, seq.At(0), "mutating Values() must not change the sequence")
}

func TestSequence_String(t *testing.T) {
	assert.Equal(t, "12?34", Parse("12-34").String())
	assert.Equal(t, "ab", Parse("AB").String())
}

func TestExtractPrefix(t *testing.T) {
	card := fromValues(4, 5, 3, 2, 0, 1, 5, 1, 1, 2)

	expected := map[int]int{1: 4, 2: 45, 3: 453, 4: 4532, 5: 45320, 6: 453201}
	for width, want := range expected {
		got, err := ExtractPrefix(card, width)
		require.NoError(t, err, "width %d", width)
		assert.Equal(t, want, got, "width %d", width)
	}

	full, err := ExtractPrefix(card, 10)
	require.NoError(t, err)
	assert.Equal(t, 4532015112, full)
}

func TestExtractPrefix_OutOfRange(t *testing.T) {
	card := fromValues(4, 5, 3, 2, 0, 1, 5, 1, 1, 2)

	for _, width := range []int{0, -1, 11} {
		_, err := ExtractPrefix(card, width)
		assert.ErrorIs(t, err, ErrOutOfRange, "width %d", width)
	}

	_, err := ExtractPrefix(fromValues(1, 2), 6)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ExtractPrefix(Parse(""), 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestExtractPrefix_MalformedWindow(t *testing.T) {
	_, err := ExtractPrefix(Parse("4-12"), 2)
	assert.ErrorIs(t, err, ErrMalformedDigit)

	_, err = ExtractPrefix(Parse("4A12"), 3)
	assert.ErrorIs(t, err, ErrMalformedDigit)

	// Garbage after the window does not matter.
	got, err := ExtractPrefix(Parse("45-X"), 2)
	require.NoError(t, err)
	assert.Equal(t, 45, got)
}

func FuzzParse(f *testing.F) {
	f.Add("")
	f.Add("4532015112830366")
	f.Add("4532-0151-1283-0366")
	f.Add("ABCD efgh")
	f.Add(string([]byte{0xff, 0x00, '1'}))

	f.Fuzz(func(t *testing.T, input string) {
		seq := Parse(input)

		if seq.Len() != utf8.RuneCountInString(input) {
			t.Fatalf("length %d, want %d", seq.Len(), utf8.RuneCountInString(input))
		}
		for i := 0; i < seq.Len(); i++ {
			if v := seq.At(i); v < Invalid || v > 35 {
				t.Fatalf("entry %d out of range: %d", i, v)
			}
		}

		if seq.Len() > 0 {
			if _, err := ExtractPrefix(seq, 1); err != nil && seq.Decimal() {
				t.Fatalf("decimal sequence rejected: %v", err)
			}
		}
	})
}
