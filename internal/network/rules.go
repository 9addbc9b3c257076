// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package network

import (
	"cardcheck/internal/digits"
)

// Span is a closed integer interval. A single value is a Span with Lo == Hi.
type Span struct {
	Lo int
	Hi int
}

// Contains reports whether Lo <= n <= Hi.
func (s Span) Contains(n int) bool {
	return n >= s.Lo && n <= s.Hi
}

// IINRange matches the first Width digits of a number against a closed interval.
type IINRange struct {
	Width int
	Span
}

// Match reports whether the prefix of seq falls in the range. A sequence
// shorter than Width, or with a non-decimal entry in the window, never matches.
func (r IINRange) Match(seq digits.Sequence) (bool, error) {
	prefix, err := digits.ExtractPrefix(seq, r.Width)
	if err != nil {
		return false, err
	}
	return r.Contains(prefix), nil
}

// Rule describes one network's allowed lengths and IIN ranges.
type Rule struct {
	Type    CardType
	Name    string
	Lengths []Span
	IIN     []IINRange
}

// LengthOK reports whether n is an allowed number length for the network.
func (r Rule) LengthOK(n int) bool {
	for _, span := range r.Lengths {
		if span.Contains(n) {
			return true
		}
	}
	return false
}

// MatchIIN evaluates every IIN range in order and reports the first match.
// The last extraction error is returned only when no range matched, so a
// short number can still match a narrower range.
func (r Rule) MatchIIN(seq digits.Sequence) (bool, error) {
	var lastErr error
	for _, iin := range r.IIN {
		ok, err := iin.Match(seq)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, lastErr
}

// IINOK is MatchIIN with extraction errors treated as a mismatch.
func (r Rule) IINOK(seq digits.Sequence) bool {
	ok, _ := r.MatchIIN(seq)
	return ok
}

// Validate checks length first, then the IIN ranges.
func (r Rule) Validate(seq digits.Sequence) ValidationResult {
	if !r.LengthOK(seq.Len()) {
		return ValidationResult{Failed: PredicateLength}
	}
	if !r.IINOK(seq) {
		return ValidationResult{Failed: PredicateIIN}
	}
	return ValidationResult{Valid: true}
}

func exact(width, value int) IINRange {
	return IINRange{Width: width, Span: Span{Lo: value, Hi: value}}
}

func between(width, lo, hi int) IINRange {
	return IINRange{Width: width, Span: Span{Lo: lo, Hi: hi}}
}

func lengths(lo, hi int) Span {
	return Span{Lo: lo, Hi: hi}
}

// rules is evaluated top to bottom by the classifier; earlier entries win
// when IIN ranges overlap. Never mutated.
var rules = []Rule{
	{
		Type:    Visa,
		Name:    "Visa",
		Lengths: []Span{lengths(13, 19)},
		IIN:     []IINRange{exact(1, 4)},
	},
	{
		Type:    VisaElectron,
		Name:    "Visa Electron",
		Lengths: []Span{lengths(16, 16)},
		IIN: []IINRange{
			exact(6, 417500),
			exact(4, 4026),
			exact(4, 4405),
			exact(4, 4508),
			exact(4, 4844),
			exact(4, 4913),
			exact(4, 4917),
		},
	},
	{
		Type:    Mastercard,
		Name:    "Mastercard",
		Lengths: []Span{lengths(16, 16)},
		IIN:     []IINRange{between(2, 51, 55), between(4, 2221, 2720)},
	},
	{
		Type:    AmericanExpress,
		Name:    "American Express",
		Lengths: []Span{lengths(15, 15)},
		IIN:     []IINRange{between(2, 34, 37)},
	},
	{
		Type:    Discover,
		Name:    "Discover",
		Lengths: []Span{lengths(16, 16)},
		IIN: []IINRange{
			exact(4, 6011),
			between(6, 622126, 622925),
			between(3, 644, 649),
			exact(2, 65),
		},
	},
	{
		Type:    Maestro,
		Name:    "Maestro",
		Lengths: []Span{lengths(12, 19)},
		IIN: []IINRange{
			exact(4, 5018),
			exact(4, 5020),
			exact(4, 5038),
			exact(4, 5612),
			exact(4, 5893),
			exact(4, 6304),
			exact(4, 6759),
			exact(4, 6761),
			exact(4, 6762),
			exact(4, 6763),
		},
	},
	{
		Type:    MaestroUK,
		Name:    "Maestro UK",
		Lengths: []Span{lengths(12, 19)},
		IIN:     []IINRange{between(6, 676770, 676774)},
	},
	{
		Type:    JCB,
		Name:    "JCB",
		Lengths: []Span{lengths(16, 16)},
		IIN:     []IINRange{between(4, 3528, 3589)},
	},
	{
		Type:    DinersClub,
		Name:    "Diners Club",
		Lengths: []Span{lengths(16, 16)},
		IIN:     []IINRange{between(2, 54, 55)},
	},
	{
		Type:    DinersClubInternational,
		Name:    "Diners Club International",
		Lengths: []Span{lengths(16, 16)},
		IIN:     []IINRange{between(3, 300, 305), exact(4, 3095), between(2, 38, 39)},
	},
	{
		Type:    RuPay,
		Name:    "RuPay",
		Lengths: []Span{lengths(16, 16)},
		IIN:     []IINRange{exact(2, 60), between(4, 6521, 6522)},
	},
	{
		Type:    ChinaUnionPay,
		Name:    "China UnionPay",
		Lengths: []Span{lengths(16, 19)},
		IIN:     []IINRange{exact(2, 62)},
	},
	{
		Type:    Verve,
		Name:    "Verve",
		Lengths: []Span{lengths(16, 16), lengths(19, 19)},
		IIN:     []IINRange{between(6, 506099, 506198), between(6, 650002, 650027)},
	},
}

// Rules returns a copy of the rule table in classification order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, rule := range rules {
		out[i] = rule.clone()
	}
	return out
}

// RuleFor returns the rule for t.
func RuleFor(t CardType) (Rule, bool) {
	for _, rule := range rules {
		if rule.Type == t {
			return rule.clone(), true
		}
	}
	return Rule{}, false
}

func (r Rule) clone() Rule {
	r.Lengths = append([]Span(nil), r.Lengths...)
	r.IIN = append([]IINRange(nil), r.IIN...)
	return r
}
