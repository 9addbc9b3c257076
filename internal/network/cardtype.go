// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package network

import "fmt"

// CardType identifies a payment-card network.
type CardType int

const (
	Unknown CardType = iota
	Visa
	VisaElectron
	Mastercard
	AmericanExpress
	Discover
	Maestro
	MaestroUK
	JCB
	DinersClub
	DinersClubInternational
	RuPay
	ChinaUnionPay
	Verve
)

var cardTypeNames = map[CardType]string{
	Unknown:                 "UNKNOWN",
	Visa:                    "VISA",
	VisaElectron:            "VISA_ELECTRON",
	Mastercard:              "MASTERCARD",
	AmericanExpress:         "AMERICAN_EXPRESS",
	Discover:                "DISCOVER",
	Maestro:                 "MAESTRO",
	MaestroUK:               "MAESTRO_UK",
	JCB:                     "JCB",
	DinersClub:              "DINERS_CLUB",
	DinersClubInternational: "DINERS_CLUB_INTERNATIONAL",
	RuPay:                   "RUPAY",
	ChinaUnionPay:           "CHINA_UNIONPAY",
	Verve:                   "VERVE",
}

func (t CardType) String() string {
	if name, ok := cardTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CardType(%d)", int(t))
}

// MarshalText renders the network name, so JSON and YAML output carry
// "VISA" rather than an integer.
func (t CardType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a network name produced by MarshalText.
func (t *CardType) UnmarshalText(text []byte) error {
	parsed, err := ParseCardType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseCardType returns the CardType for a name such as "MASTERCARD".
func ParseCardType(name string) (CardType, error) {
	for t, n := range cardTypeNames {
		if n == name {
			return t, nil
		}
	}
	return Unknown, fmt.Errorf("unknown card type %q", name)
}
