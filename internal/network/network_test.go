// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package network

import (
	"encoding/json"
	"strings"
	"testing"

	"cardcheck/internal/digits"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRule(t *testing.T, ct CardType) Rule {
	t.Helper()
	rule, ok := RuleFor(ct)
	require.True(t, ok, "no rule for %s", ct)
	return rule
}

// pad extends a prefix with zeros to the given length.
func pad(prefix string, length int) string {
	return prefix + strings.Repeat("0", length-len(prefix))
}

func TestIINRanges(t *testing.T) {
	tests := []struct {
		network CardType
		prefix  string
		want    bool
	}{
		{Visa, "4", true},
		{Visa, "3", false},

		{VisaElectron, "417500", true},
		{VisaElectron, "417501", false},
		{VisaElectron, "4026", true},
		{VisaElectron, "4405", true},
		{VisaElectron, "4508", true},
		{VisaElectron, "4844", true},
		{VisaElectron, "4913", true},
		{VisaElectron, "4917", true},
		{VisaElectron, "4914", false},
		{VisaElectron, "4000", false},

		{Mastercard, "50", false},
		{Mastercard, "51", true},
		{Mastercard, "55", true},
		{Mastercard, "56", false},
		{Mastercard, "2220", false},
		{Mastercard, "2221", true},
		{Mastercard, "272099", true},
		{Mastercard, "2721", false},
		{Mastercard, "40", false},

		{AmericanExpress, "33", false},
		{AmericanExpress, "34", true},
		{AmericanExpress, "35", true},
		{AmericanExpress, "37", true},
		{AmericanExpress, "38", false},

		{Discover, "6010", false},
		{Discover, "6011", true},
		{Discover, "622125", false},
		{Discover, "622126", true},
		{Discover, "622925", true},
		{Discover, "622926", false},
		{Discover, "643", false},
		{Discover, "644", true},
		{Discover, "649", true},
		{Discover, "65", true},
		{Discover, "50", false},

		{Maestro, "5018", true},
		{Maestro, "5019", false},
		{Maestro, "5020", true},
		{Maestro, "5038", true},
		{Maestro, "5612", true},
		{Maestro, "5893", true},
		{Maestro, "6304", true},
		{Maestro, "6759", true},
		{Maestro, "6760", false},
		{Maestro, "6761", true},
		{Maestro, "6762", true},
		{Maestro, "6763", true},
		{Maestro, "4000", false},

		{MaestroUK, "676769", false},
		{MaestroUK, "676770", true},
		{MaestroUK, "676771", true},
		{MaestroUK, "676772", true},
		{MaestroUK, "676773", true},
		{MaestroUK, "676774", true},
		{MaestroUK, "676775", false},
		{MaestroUK, "670000", false},

		{JCB, "3527", false},
		{JCB, "3528", true},
		{JCB, "3558", true},
		{JCB, "3589", true},
		{JCB, "3590", false},

		{DinersClub, "53", false},
		{DinersClub, "54", true},
		{DinersClub, "55", true},
		{DinersClub, "56", false},

		{DinersClubInternational, "299", false},
		{DinersClubInternational, "300", true},
		{DinersClubInternational, "303", true},
		{DinersClubInternational, "305", true},
		{DinersClubInternational, "306", false},
		{DinersClubInternational, "3094", false},
		{DinersClubInternational, "3095", true},
		{DinersClubInternational, "3096", false},
		{DinersClubInternational, "37", false},
		{DinersClubInternational, "38", true},
		{DinersClubInternational, "39", true},
		{DinersClubInternational, "40", false},

		{RuPay, "59", false},
		{RuPay, "60", true},
		{RuPay, "61", false},
		{RuPay, "6520", false},
		{RuPay, "6521", true},
		{RuPay, "6522", true},
		{RuPay, "6523", false},

		{ChinaUnionPay, "61", false},
		{ChinaUnionPay, "62", true},
		{ChinaUnionPay, "63", false},

		{Verve, "506098", false},
		{Verve, "506099", true},
		{Verve, "506150", true},
		{Verve, "506198", true},
		{Verve, "506199", false},
		{Verve, "650001", false},
		{Verve, "650002", true},
		{Verve, "650027", true},
		{Verve, "650028", false},
	}

	for _, tt := range tests {
		t.Run(tt.network.String()+"/"+tt.prefix, func(t *testing.T) {
			rule := mustRule(t, tt.network)
			assert.Equal(t, tt.want, rule.IINOK(digits.Parse(pad(tt.prefix, 16))))
		})
	}
}

func TestLengths(t *testing.T) {
	tests := []struct {
		network CardType
		length  int
		want    bool
	}{
		{Visa, 12, false},
		{Visa, 13, true},
		{Visa, 16, true},
		{Visa, 19, true},
		{Visa, 20, false},
		{AmericanExpress, 15, true},
		{AmericanExpress, 16, false},
		{Mastercard, 16, true},
		{Mastercard, 17, false},
		{Maestro, 11, false},
		{Maestro, 12, true},
		{Maestro, 19, true},
		{Maestro, 20, false},
		{MaestroUK, 12, true},
		{MaestroUK, 19, true},
		{DinersClubInternational, 15, false},
		{DinersClubInternational, 16, true},
		{DinersClubInternational, 20, false},
		{RuPay, 17, false},
		{ChinaUnionPay, 15, false},
		{ChinaUnionPay, 16, true},
		{ChinaUnionPay, 19, true},
		{ChinaUnionPay, 20, false},
		{Verve, 16, true},
		{Verve, 17, false},
		{Verve, 18, false},
		{Verve, 19, true},
	}

	for _, tt := range tests {
		rule := mustRule(t, tt.network)
		assert.Equal(t, tt.want, rule.LengthOK(tt.length), "%s length %d", tt.network, tt.length)
	}
}

func TestIIN_ShortOrMalformedNumbers(t *testing.T) {
	visaElectron := mustRule(t, VisaElectron)

	// Six digit window is unavailable but the four digit ranges still apply.
	assert.True(t, visaElectron.IINOK(digits.Parse("4026")))

	ok, err := visaElectron.MatchIIN(digits.Parse("40"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, digits.ErrOutOfRange)

	dci := mustRule(t, DinersClubInternational)
	ok, err = dci.MatchIIN(digits.Parse("3-0000000000000000"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, digits.ErrMalformedDigit)

	// Letters never contribute to a prefix.
	assert.False(t, mustRule(t, Mastercard).IINOK(digits.Parse("5A00000000000000")))
}

func TestRuleValidate(t *testing.T) {
	visa := mustRule(t, Visa)

	assert.Equal(t, ValidationResult{Valid: true}, visa.Validate(digits.Parse("4532015112830366")))
	assert.Equal(t, ValidationResult{Failed: PredicateLength}, visa.Validate(digits.Parse("400000000000")))
	assert.Equal(t, ValidationResult{Failed: PredicateIIN}, visa.Validate(digits.Parse("3000000000000")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		number string
		want   CardType
	}{
		{"4532015112830366", Visa},
		{"5100000000000000", Mastercard},
		{"2221000000000000", Mastercard},
		{"340000000000000", AmericanExpress},
		{"6011000000000000", Discover},
		{"6221260000000000", Discover},
		{"6759000000000000", Maestro},
		{"6767700000000", MaestroUK},
		{"3528000000000000", JCB},
		{"3000000000000000", DinersClubInternational},
		{"3095000000000000", DinersClubInternational},
		{"6000000000000000", RuPay},
		{"6200000000000000", ChinaUnionPay},
		{"5060990000000000", Verve},
		{"9999999999999999", Unknown},
		{"", Unknown},
		{"-4532015112830366", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.number))
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Visa is listed before Visa Electron.
	assert.Equal(t, Visa, Classify("4026000000000000"))
	// Mastercard is listed before Diners Club for 54-55.
	assert.Equal(t, Mastercard, Classify("5400000000000000"))
	// Discover is listed before Verve for 650002-650027.
	assert.Equal(t, Discover, Classify("6500020000000000"))
}

func TestClassify_DiscoverChinaUnionPayBoundary(t *testing.T) {
	// Discover only covers 622126-622925 inside the 62 prefix.
	assert.Equal(t, ChinaUnionPay, Classify("6221000000000000"))
	assert.Equal(t, ChinaUnionPay, Classify("6221250000000000"))
	assert.Equal(t, Discover, Classify("6229250000000000"))
	assert.Equal(t, ChinaUnionPay, Classify("6229260000000000"))
}

func TestClassify_LengthMismatchFallsBackToIIN(t *testing.T) {
	// 35xx matches American Express by IIN but only JCB by length.
	assert.Equal(t, JCB, Classify("3528000000000000"))

	// No rule accepts 7 digits, so the first IIN match is reported.
	assert.Equal(t, Discover, Classify("6011000"))
	assert.Equal(t, Visa, Classify("4"))
}

func TestClassify_Idempotent(t *testing.T) {
	for _, number := range []string{"4532015112830366", "3528000000000000", "9999999999999999", "abc"} {
		first := Classify(number)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Classify(number))
		}
	}
}

func TestRules_CopyIsIndependent(t *testing.T) {
	table := Rules()
	require.Len(t, table, 13)
	assert.Equal(t, Visa, table[0].Type)
	assert.Equal(t, Verve, table[len(table)-1].Type)

	table[0].IIN[0] = exact(1, 9)
	assert.Equal(t, Visa, Classify("4532015112830366"))
}

func TestRules_EveryTypeHasARule(t *testing.T) {
	for ct := range cardTypeNames {
		if ct == Unknown {
			continue
		}
		_, ok := RuleFor(ct)
		assert.True(t, ok, "missing rule for %s", ct)
	}
	_, ok := RuleFor(Unknown)
	assert.False(t, ok)
}

func TestCardType_Text(t *testing.T) {
	assert.Equal(t, "DINERS_CLUB_INTERNATIONAL", DinersClubInternational.String())
	assert.Equal(t, "CardType(99)", CardType(99).String())

	data, err := json.Marshal(map[string]CardType{"type": ChinaUnionPay})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"CHINA_UNIONPAY"}`, string(data))

	var decoded map[string]CardType
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ChinaUnionPay, decoded["type"])

	_, err = ParseCardType("NOPE")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	verve := mustRule(t, Verve)
	assert.Equal(t, "16, 19", verve.DescribeLengths())
	assert.Equal(t, "506099-506198, 650002-650027", verve.DescribeIIN())

	dci := mustRule(t, DinersClubInternational)
	assert.Equal(t, "300-305, 3095, 38-39", dci.DescribeIIN())
}
