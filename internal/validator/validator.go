// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validator combines network classification, length, IIN, Luhn,
// CVV and expiration checks for a single card.
package validator

import (
	"errors"
	"fmt"
	"time"

	"cardcheck/internal/cvv"
	"cardcheck/internal/digits"
	"cardcheck/internal/expiry"
	"cardcheck/internal/luhn"
	"cardcheck/internal/network"
	"cardcheck/internal/observability"
	"cardcheck/internal/security"
)

// ErrInvalidCard is returned by Validate when the Luhn checksum fails.
// The message is shown to users verbatim.
var ErrInvalidCard = errors.New("This card isn't invalid")

// Card is the caller's input. Expiry and CVV may be empty when only the
// number is being checked.
type Card struct {
	Number string `json:"number" yaml:"number"`
	Expiry string `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	CVV    string `json:"cvv,omitempty" yaml:"cvv,omitempty"`
}

// Result holds every individual check. Only a Luhn failure makes Validate
// return an error; the other flags are for the caller to act on.
type Result struct {
	Number   string                   `json:"number" yaml:"number"`
	Type     network.CardType         `json:"type" yaml:"type"`
	Rule     network.ValidationResult `json:"rule" yaml:"rule"`
	LengthOK bool                     `json:"length_ok" yaml:"length_ok"`
	IINOK    bool                     `json:"iin_ok" yaml:"iin_ok"`
	LuhnOK   bool                     `json:"luhn_ok" yaml:"luhn_ok"`
	CVVOK    bool                     `json:"cvv_ok" yaml:"cvv_ok"`
	ExpiryOK bool                     `json:"expiry_ok" yaml:"expiry_ok"`
	Expiry   string                   `json:"expiry,omitempty" yaml:"expiry,omitempty"`

	// ExpectedCheckDigit is the last digit that would pass Luhn. Set only
	// when the checksum fails.
	ExpectedCheckDigit *int `json:"expected_check_digit,omitempty" yaml:"expected_check_digit,omitempty"`
}

// Valid reports whether every check passed.
func (r *Result) Valid() bool {
	return r.Rule.Valid && r.LuhnOK && r.CVVOK && r.ExpiryOK
}

// Failures lists the names of the checks that did not pass.
func (r *Result) Failures() []string {
	var failed []string
	if !r.LengthOK {
		failed = append(failed, string(network.PredicateLength))
	}
	if !r.IINOK {
		failed = append(failed, string(network.PredicateIIN))
	}
	if !r.LuhnOK {
		failed = append(failed, string(network.PredicateLuhn))
	}
	if !r.CVVOK {
		failed = append(failed, "cvv")
	}
	if !r.ExpiryOK {
		failed = append(failed, "expiry")
	}
	return failed
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock sets the source of the current date. It is read once per
// Validate call.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// WithExpiryPolicy selects how a card expiring this month is treated.
func WithExpiryPolicy(p expiry.Policy) Option {
	return func(v *Validator) {
		v.policy = p
	}
}

// WithObserver attaches an observer for timing and failure logging.
func WithObserver(o *observability.StandardObserver) Option {
	return func(v *Validator) {
		v.observer = o
	}
}

// WithMasking controls whether results carry masked numbers. On by default.
func WithMasking(mask bool) Option {
	return func(v *Validator) {
		v.mask = mask
	}
}

// Validator runs the card checks. It is safe for concurrent use.
type Validator struct {
	now      func() time.Time
	policy   expiry.Policy
	observer *observability.StandardObserver
	mask     bool
}

// New creates a Validator using the wall clock and inclusive expiry.
func New(opts ...Option) *Validator {
	v := &Validator{
		now:    time.Now,
		policy: expiry.PolicyInclusive,
		mask:   true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// GetComponentName implements observability.Observable
func (v *Validator) GetComponentName() string {
	return "validator"
}

// SetObserver implements observability.Observable
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// Validate runs every check on card. It returns ErrInvalidCard together
// with the populated result when the Luhn checksum fails, and a wrapped
// digits.ErrMalformedDigit when the number is not decimal.
func (v *Validator) Validate(card Card) (*Result, error) {
	var finishTiming func(bool, map[string]interface{})
	if v.observer != nil {
		finishTiming = v.observer.StartTiming(v.GetComponentName(), "validate", security.Mask(card.Number))
	}

	result, err := v.validate(card, v.now())

	if finishTiming != nil {
		metadata := map[string]interface{}{}
		if result != nil {
			metadata["card_type"] = result.Type.String()
			metadata["failures"] = result.Failures()
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}

	return result, err
}

func (v *Validator) validate(card Card, now time.Time) (*Result, error) {
	seq := digits.Parse(card.Number)
	cardType := network.ClassifySequence(seq)

	result := &Result{
		Number:   card.Number,
		Type:     cardType,
		CVVOK:    v.CheckCVV(card.CVV),
		ExpiryOK: v.checkExpiration(card.Expiry, now),
		Rule:     network.ValidationResult{Failed: network.PredicateIIN},
	}
	if v.mask {
		result.Number = security.Mask(card.Number)
	}
	if d, err := expiry.Parse(card.Expiry); err == nil {
		result.Expiry = d.String()
	}

	if rule, ok := network.RuleFor(cardType); ok {
		result.LengthOK = rule.LengthOK(seq.Len())
		result.IINOK = rule.IINOK(seq)
		result.Rule = rule.Validate(seq)
	}

	luhnOK, err := v.CheckLuhn(card.Number)
	if err != nil {
		return result, err
	}
	result.LuhnOK = luhnOK
	if !luhnOK {
		if runes := []rune(card.Number); len(runes) > 1 {
			if d, err := luhn.CheckDigit(string(runes[:len(runes)-1])); err == nil {
				result.ExpectedCheckDigit = &d
			}
		}
		if result.Rule.Valid {
			result.Rule = network.ValidationResult{Failed: network.PredicateLuhn}
		}
		return result, ErrInvalidCard
	}

	return result, nil
}

// CheckLuhn runs the checksum on number.
func (v *Validator) CheckLuhn(number string) (bool, error) {
	ok, err := luhn.Valid(number)
	if err != nil {
		return false, fmt.Errorf("validate card: %w", err)
	}
	return ok, nil
}

// CheckCVV reports whether code has an acceptable length.
func (v *Validator) CheckCVV(code string) bool {
	return cvv.Valid(code)
}

// CheckExpiration reports whether date is still valid today.
func (v *Validator) CheckExpiration(date string) bool {
	return v.checkExpiration(date, v.now())
}

func (v *Validator) checkExpiration(date string, now time.Time) bool {
	return expiry.Valid(date, now, v.policy)
}
