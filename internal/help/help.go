// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"cardcheck/internal/network"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a check
type CheckInfo struct {
	Name                string             // Name of the check (e.g., "SCANNER")
	ShortDescription    string             // Short description for the checks list
	DetailedDescription string             // Detailed description of what the check does
	Patterns            []string           // Patterns the check looks for
	SupportedFormats    []string           // Formats or types supported by the check
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Keywords that increase confidence
	NegativeKeywords    []string           // Keywords that decrease confidence
	ConfigurationInfo   string             // Information about how to configure the check
	Examples            []string           // Usage examples
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Points added to or removed from the score
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	out       io.Writer
	providers map[string]Provider
	colors    map[string]*color.Color
}

// NewSystem creates a new help system writing to out
func NewSystem(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"positive": color.New(color.FgGreen),
		"negative": color.New(color.FgRed),
		"warning":  color.New(color.FgYellow),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}

	return &System{
		out:       out,
		providers: make(map[string]Provider),
		colors:    colors,
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

func (h *System) println(a ...interface{}) {
	fmt.Fprintln(h.out, a...)
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Fprintln(h.out, "cardcheck - Payment Card Validation and Detection Tool")
	h.println("======================================================")
	h.println()
	h.colors["header"].Fprintln(h.out, "USAGE:")
	h.println("  cardcheck -number <pan> [-expiry MM/YY] [-cvv <code>] [options]")
	h.println("  cardcheck -batch <cards.yaml|cards.json> [options]")
	h.println("  cardcheck -scan <path> [<path>...] [-recursive] [options]")
	h.println("  cardcheck -networks | -version | -help [topic]")
	h.println()

	h.colors["header"].Fprintln(h.out, "OPTIONS:")

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -number\t<pan>\tCard number to validate")
	fmt.Fprintln(w, "  -expiry\t<date>\tExpiration date as MM/YY or MMYY")
	fmt.Fprintln(w, "  -cvv\t<code>\tCard verification code (3 or 4 digits)")
	fmt.Fprintln(w, "  -batch\t<path>\tValidate every card in a YAML or JSON file")
	fmt.Fprintln(w, "  -scan\t\tScan the given files or directories for card numbers")
	fmt.Fprintln(w, "  -recursive\t\tRecursively scan directories")
	fmt.Fprintln(w, "  -networks\t\tList the supported card networks and their rules")
	fmt.Fprintln(w, "  -format\t<format>\tOutput format: text, json, yaml, csv, junit (default: text)")
	fmt.Fprintln(w, "  -confidence\t<levels>\tConfidence levels to display: high,medium,low,all (default: all)")
	fmt.Fprintln(w, "  -config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  -profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  -list-profiles\t\tList available profiles")
	fmt.Fprintln(w, "  -expiry-policy\t<policy>\tinclusive (valid through the expiry month) or strict")
	fmt.Fprintln(w, "  -verbose\t\tDisplay every check for each card and the context of each finding")
	fmt.Fprintln(w, "  -debug\t\tLog each step to stderr")
	fmt.Fprintln(w, "  -no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  -show-number\t\tDisplay full card numbers instead of masked ones")
	fmt.Fprintln(w, "  -version\t\tShow version information")
	fmt.Fprintln(w, "  -help\t\tShow this help message")
	fmt.Fprintln(w, "  -help networks\t\tSame as -networks")
	fmt.Fprintln(w, "  -help <NETWORK>\t\tShow the rule for one network, e.g. -help VISA")
	fmt.Fprintln(w, "  -help scanner\t\tExplain how scan findings are scored")
	w.Flush()

	h.println()
	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  cardcheck -number 4532015112830366 -expiry 12/27 -cvv 123")
	h.colors["example"].Fprintln(h.out, "  cardcheck -batch cards.yaml -format json")
	h.colors["example"].Fprintln(h.out, "  cardcheck -scan ./exports -recursive -confidence high,medium")
	h.println()

	h.colors["header"].Fprintln(h.out, "EXIT STATUS:")
	h.println("  0  every card validated and no findings")
	h.println("  1  a card failed validation or the scan reported findings")
	h.println("  2  usage or configuration error")
	h.println()

	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	h.println("  Project config: cardcheck.yaml or .cardcheck.yaml (in current directory)")
	h.println("  User config: ~/.cardcheck.yaml or $XDG_CONFIG_HOME/cardcheck/config.yaml")
	h.println("  Environment: CARDCHECK_<SECTION>_<KEY>, e.g. CARDCHECK_DEFAULTS_FORMAT=json")
}

// ShowNetworks lists every network rule in classification order
func (h *System) ShowNetworks() {
	h.colors["title"].Fprintln(h.out, "Supported Card Networks")
	h.println("=======================")
	h.println()
	h.println("Rules are tried top to bottom. The first network whose IIN and length")
	h.println("both match wins; otherwise the first network whose IIN matches is reported.")
	h.println()

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  NETWORK\tLENGTHS\tIIN RANGES")
	h.colors["header"].Fprintln(w, "  -------\t-------\t----------")
	for _, rule := range network.Rules() {
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", rule.Type)
		fmt.Fprintf(w, "\t%s\t%s\n", rule.DescribeLengths(), rule.DescribeIIN())
	}
	w.Flush()
}

// ShowNetworkHelp displays the rule for one network. It returns false if
// name is not a known network.
func (h *System) ShowNetworkHelp(name string) bool {
	cardType, err := network.ParseCardType(strings.ToUpper(name))
	if err != nil {
		return false
	}
	rule, ok := network.RuleFor(cardType)
	if !ok {
		return false
	}

	h.colors["title"].Fprintf(h.out, "%s (%s)\n", rule.Type, rule.Name)
	h.println(strings.Repeat("=", len(rule.Type.String())+len(rule.Name)+3))
	h.println()
	h.colors["header"].Fprintln(h.out, "LENGTHS:")
	h.println("  " + rule.DescribeLengths())
	h.println()
	h.colors["header"].Fprintln(h.out, "IIN RANGES:")
	for _, iin := range rule.IIN {
		fmt.Fprintf(h.out, "  - ")
		h.colors["item"].Fprintf(h.out, "%s", iin.Span)
		fmt.Fprintf(h.out, " (first %d digits)\n", iin.Width)
	}
	return true
}

// ShowChecksHelp displays information about all registered providers
func (h *System) ShowChecksHelp() {
	names := make([]string, 0, len(h.providers))
	for name := range h.providers {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  CHECK\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  -----\t-----------")
	for _, name := range names {
		info := h.providers[name].GetCheckInfo()
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()
}

// ShowCheckHelp displays detailed help for a registered provider
func (h *System) ShowCheckHelp(checkName string) bool {
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(h.out, "%s Check\n", info.Name)
	h.println(strings.Repeat("=", len(info.Name)+6))
	h.println()
	h.println(info.DetailedDescription)
	h.println()

	if len(info.Patterns) > 0 {
		h.colors["header"].Fprintln(h.out, "PATTERNS DETECTED:")
		for _, pattern := range info.Patterns {
			fmt.Fprint(h.out, "  - ")
			h.colors["item"].Fprintln(h.out, pattern)
		}
		h.println()
	}

	if len(info.SupportedFormats) > 0 {
		h.colors["header"].Fprintln(h.out, "SUPPORTED FORMATS:")
		for _, format := range info.SupportedFormats {
			fmt.Fprint(h.out, "  - ")
			h.colors["item"].Fprintln(h.out, format)
		}
		h.println()
	}

	if len(info.ConfidenceFactors) > 0 {
		h.colors["header"].Fprintln(h.out, "CONFIDENCE SCORING:")
		for _, factor := range info.ConfidenceFactors {
			fmt.Fprint(h.out, "   - ")
			h.colors["item"].Fprintf(h.out, "%s ", factor.Name)
			fmt.Fprintf(h.out, "(%+.0f): %s\n", factor.Weight, factor.Description)
		}
		h.println()
	}

	if len(info.PositiveKeywords) > 0 {
		fmt.Fprint(h.out, "   Positive keywords: ")
		h.colors["positive"].Fprintln(h.out, strings.Join(info.PositiveKeywords, ", "))
	}
	if len(info.NegativeKeywords) > 0 {
		fmt.Fprint(h.out, "   Negative keywords: ")
		h.colors["negative"].Fprintln(h.out, strings.Join(info.NegativeKeywords, ", "))
	}
	if len(info.PositiveKeywords) > 0 || len(info.NegativeKeywords) > 0 {
		h.println()
	}

	h.colors["header"].Fprintln(h.out, "Confidence Levels:")
	fmt.Fprint(h.out, "- ")
	h.colors["negative"].Fprint(h.out, "HIGH")
	h.println(" (90-100%): Very likely to be a real card number")
	fmt.Fprint(h.out, "- ")
	h.colors["warning"].Fprint(h.out, "MEDIUM")
	h.println(" (60-89%): Possibly a card number")
	fmt.Fprint(h.out, "- ")
	h.colors["positive"].Fprint(h.out, "LOW")
	h.println(" (0-59%): Test number or likely false positive")
	h.println()

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
		h.println(info.ConfigurationInfo)
		h.println()
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(h.out, "  ")
			h.colors["example"].Fprintln(h.out, example)
		}
	}

	return true
}

// ShowTopic dispatches -help <topic>. It returns false for unknown topics.
func (h *System) ShowTopic(topic string) bool {
	switch strings.ToLower(topic) {
	case "":
		h.ShowGeneralHelp()
		return true
	case "networks":
		h.ShowNetworks()
		return true
	case "checks":
		h.ShowChecksHelp()
		return true
	}
	if h.ShowCheckHelp(topic) {
		return true
	}
	return h.ShowNetworkHelp(topic)
}
