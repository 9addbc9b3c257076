// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package batch loads lists of cards from YAML or JSON files and validates
// them concurrently.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cardcheck/internal/digits"
	"cardcheck/internal/validator"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// ErrEmpty is returned when a batch file holds no cards.
var ErrEmpty = errors.New("batch contains no cards")

// Entry is one card as written in the file. A missing or null field
// decodes to nil.
type Entry struct {
	Number *string `yaml:"number"`
	Expiry *string `yaml:"expiry"`
	CVV    *string `yaml:"cvv"`
}

// File is the batch file layout
type File struct {
	Cards []Entry `yaml:"cards"`
}

// Card converts the entry for the validator. A nil number fails with
// digits.ErrNullInput; nil expiry and CVV become empty strings.
func (e Entry) Card() (validator.Card, error) {
	if _, err := digits.ParseNullable(e.Number); err != nil {
		return validator.Card{}, err
	}
	return validator.Card{
		Number: *e.Number,
		Expiry: deref(e.Expiry),
		CVV:    deref(e.CVV),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Load reads a batch file. JSON files are read with the YAML decoder.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes either a document with a top-level "cards" list or a
// bare list of cards.
func Parse(data []byte) ([]Entry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse batch: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, ErrEmpty
	}

	var entries []Entry
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to parse batch: %w", err)
		}
	default:
		var f File
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse batch: %w", err)
		}
		entries = f.Cards
	}

	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	return entries, nil
}

// Outcome is the validation of one entry. Result is nil when the entry
// could not be converted to a card.
type Outcome struct {
	Index  int
	Result *validator.Result
	Err    error
}

// Valid reports whether the card passed every check
func (o Outcome) Valid() bool {
	return o.Err == nil && o.Result != nil && o.Result.Valid()
}

// Run validates entries with up to workers goroutines. Outcomes keep the
// input order. Run stops early only when ctx is cancelled.
func Run(ctx context.Context, v *validator.Validator, entries []Entry, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]Outcome, len(entries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i].Index = i
			card, err := entry.Card()
			if err != nil {
				outcomes[i].Err = err
				return nil
			}
			outcomes[i].Result, outcomes[i].Err = v.Validate(card)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
