// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"cardcheck/internal/batch"
	"cardcheck/internal/config"
	"cardcheck/internal/detector"
	"cardcheck/internal/expiry"
	"cardcheck/internal/extract"
	"cardcheck/internal/formatters"
	_ "cardcheck/internal/formatters/csv"
	_ "cardcheck/internal/formatters/json"
	_ "cardcheck/internal/formatters/junit"
	_ "cardcheck/internal/formatters/text"
	_ "cardcheck/internal/formatters/yaml"
	"cardcheck/internal/help"
	"cardcheck/internal/observability"
	"cardcheck/internal/scanner"
	"cardcheck/internal/validator"
	"cardcheck/internal/version"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// Exit codes
const (
	exitOK      = 0
	exitFailed  = 1
	exitUsage   = 2
	usageSuffix = "Run 'cardcheck -help' for usage."
)

// cliFlags holds command line flag values
type cliFlags struct {
	number       string
	expiry       string
	cvv          string
	batchFile    string
	scan         bool
	recursive    bool
	networks     bool
	format       string
	confidence   string
	configFile   string
	profileName  string
	listProfiles bool
	expiryPolicy string
	verbose      bool
	debug        bool
	noColor      bool
	showNumber   bool
	showVersion  bool
	showHelp     bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format           string
	confidenceLevels map[string]bool
	expiryPolicy     expiry.Policy
	verbose          bool
	debug            bool
	noColor          bool
	showNumber       bool
	recursive        bool
	minConfidence    float64
	maxPDFPages      int
	workers          int
	excludePatterns  []string
}

// environment is what run needs from the process. Tests substitute it.
type environment struct {
	stdout     io.Writer
	stderr     io.Writer
	isTerminal bool
}

func main() {
	env := environment{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: isTerminal(os.Stdout),
	}
	os.Exit(run(os.Args[1:], env))
}

func newFlagSet(flags *cliFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("cardcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usageSuffix)
	}

	fs.StringVar(&flags.number, "number", "", "Card number to validate")
	fs.StringVar(&flags.expiry, "expiry", "", "Expiration date as MM/YY or MMYY")
	fs.StringVar(&flags.cvv, "cvv", "", "Card verification code")
	fs.StringVar(&flags.batchFile, "batch", "", "Validate every card in a YAML or JSON file")
	fs.BoolVar(&flags.scan, "scan", false, "Scan the given files or directories for card numbers")
	fs.BoolVar(&flags.recursive, "recursive", false, "Recursively scan directories")
	fs.BoolVar(&flags.networks, "networks", false, "List the supported card networks")
	fs.StringVar(&flags.format, "format", "", "Output format: text, json, yaml, csv, junit")
	fs.StringVar(&flags.confidence, "confidence", "", "Confidence levels to display: high,medium,low,all")
	fs.StringVar(&flags.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&flags.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&flags.listProfiles, "list-profiles", false, "List available profiles")
	fs.StringVar(&flags.expiryPolicy, "expiry-policy", "", "inclusive or strict")
	fs.BoolVar(&flags.verbose, "verbose", false, "Display every check and finding context")
	fs.BoolVar(&flags.debug, "debug", false, "Log each step to stderr")
	fs.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&flags.showNumber, "show-number", false, "Display full card numbers")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")
	fs.BoolVar(&flags.showHelp, "help", false, "Show help, optionally for a topic")
	return fs
}

// parseInterleaved parses flags that appear before, between or after the
// positional arguments, so "-scan ./dir -recursive" works. A lone "--"
// ends flag parsing.
func parseInterleaved(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if len(args) > len(rest) && args[len(args)-len(rest)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// run is main without the process exit, returning the exit code
func run(args []string, env environment) int {
	var flags cliFlags
	fs := newFlagSet(&flags, env.stderr)
	positional, err := parseInterleaved(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			showHelp(env, true, "")
			return exitOK
		}
		return exitUsage
	}

	if flags.showVersion {
		if !flags.verbose {
			fmt.Fprintln(env.stdout, version.Info())
			return exitOK
		}
		full := version.Full()
		keys := make([]string, 0, len(full))
		for k := range full {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(env.stdout, "%-10s %s\n", k+":", full[k])
		}
		return exitOK
	}

	if flags.showHelp {
		topic := strings.Join(positional, " ")
		if !showHelp(env, flags.noColor || !env.isTerminal, topic) {
			fmt.Fprintf(env.stderr, "Error: unknown help topic '%s'\n", topic)
			return exitUsage
		}
		return exitOK
	}

	if flags.networks {
		help.NewSystem(env.stdout, flags.noColor || !env.isTerminal).ShowNetworks()
		return exitOK
	}

	cfg, err := loadConfiguration(flags.configFile)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return exitUsage
	}

	if flags.listProfiles {
		handleListProfiles(env.stdout, cfg)
		return exitOK
	}

	final, err := resolveConfiguration(cfg, &flags)
	if err != nil {
		fmt.Fprintf(env.stderr, "Error: %v\n", err)
		return exitUsage
	}
	if !env.isTerminal {
		final.noColor = true
	}

	modes := 0
	for _, set := range []bool{flags.number != "", flags.batchFile != "", flags.scan} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		fmt.Fprintf(env.stderr, "Error: exactly one of -number, -batch or -scan is required. %s\n", usageSuffix)
		return exitUsage
	}
	if flags.scan && len(positional) == 0 {
		fmt.Fprintf(env.stderr, "Error: -scan needs at least one file or directory. %s\n", usageSuffix)
		return exitUsage
	}

	var debugObs *observability.DebugObserver
	if final.debug {
		debugObs = observability.NewDebugObserver(env.stderr)
		debugObs.LogDetail("main", fmt.Sprintf("format=%s expiry_policy=%s workers=%d", final.format, final.expiryPolicy, final.workers))
	}

	ctx := context.Background()
	var report formatters.Report

	switch {
	case flags.number != "":
		report.Validations = validateSingle(final, debugObs, &flags)
	case flags.batchFile != "":
		outcomes, err := validateBatch(ctx, final, debugObs, flags.batchFile)
		if err != nil {
			fmt.Fprintf(env.stderr, "Error: %v\n", err)
			return exitUsage
		}
		report.Validations = outcomes
	default:
		findings, err := scanPaths(ctx, final, debugObs, positional, env.stderr)
		if err != nil {
			fmt.Fprintf(env.stderr, "Error: %v\n", err)
			return exitUsage
		}
		report.Findings = findings
	}

	output, err := formatters.Export(final.format, report, formatters.FormatterOptions{
		ConfidenceLevel: final.confidenceLevels,
		Verbose:         final.verbose,
		NoColor:         final.noColor,
		ShowMatch:       final.showNumber,
	})
	if err != nil {
		fmt.Fprintf(env.stderr, "Error formatting output: %v\n", err)
		return exitUsage
	}
	fmt.Fprint(env.stdout, output)
	if output != "" && !strings.HasSuffix(output, "\n") {
		fmt.Fprintln(env.stdout)
	}

	// Findings hidden by -confidence do not fail the run
	if final.confidenceLevels != nil {
		report.Findings = filterFindings(report.Findings, final.confidenceLevels)
	}
	if report.Failed() {
		return exitFailed
	}
	return exitOK
}

func showHelp(env environment, noColor bool, topic string) bool {
	h := help.NewSystem(env.stdout, noColor)
	h.RegisterProvider(scanner.New())
	return h.ShowTopic(topic)
}

// loadConfiguration loads the configuration file or the defaults when
// none is found. An explicit -config path that fails to load is an error.
func loadConfiguration(configFile string) (*config.Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	return config.LoadConfig(configPath)
}

func handleListProfiles(out io.Writer, cfg *config.Config) {
	names := cfg.ListProfiles()
	sort.Strings(names)

	fmt.Fprintln(out, "Available profiles:")
	for _, name := range names {
		fmt.Fprintf(out, "  %-12s %s\n", name, cfg.Profiles[name].Description)
	}
}

// resolveConfiguration applies the profile and then the command line
// flags over the loaded configuration
func resolveConfiguration(cfg *config.Config, flags *cliFlags) (*finalConfiguration, error) {
	if flags.profileName != "" {
		if err := cfg.ApplyProfile(flags.profileName); err != nil {
			return nil, err
		}
	}

	if flags.format != "" {
		cfg.Defaults.Format = strings.ToLower(flags.format)
	}
	if flags.confidence != "" {
		cfg.Defaults.ConfidenceLevels = flags.confidence
	}
	if flags.expiryPolicy != "" {
		cfg.Validation.ExpiryPolicy = flags.expiryPolicy
	}
	cfg.Defaults.Verbose = cfg.Defaults.Verbose || flags.verbose
	cfg.Defaults.Debug = cfg.Defaults.Debug || flags.debug
	cfg.Defaults.NoColor = cfg.Defaults.NoColor || flags.noColor
	cfg.Defaults.ShowNumber = cfg.Defaults.ShowNumber || flags.showNumber
	cfg.Scan.Recursive = cfg.Scan.Recursive || flags.recursive

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	levels, _ := cfg.ConfidenceLevels()
	policy, _ := cfg.ExpiryPolicy()

	return &finalConfiguration{
		format:           cfg.Defaults.Format,
		confidenceLevels: levels,
		expiryPolicy:     policy,
		verbose:          cfg.Defaults.Verbose,
		debug:            cfg.Defaults.Debug,
		noColor:          cfg.Defaults.NoColor,
		showNumber:       cfg.Defaults.ShowNumber,
		recursive:        cfg.Scan.Recursive,
		minConfidence:    cfg.Scan.MinConfidence,
		maxPDFPages:      cfg.Scan.MaxPDFPages,
		workers:          cfg.Scan.Workers,
		excludePatterns:  cfg.Scan.ExcludePatterns,
	}, nil
}

func newValidator(final *finalConfiguration, debugObs *observability.DebugObserver) *validator.Validator {
	v := validator.New(
		validator.WithExpiryPolicy(final.expiryPolicy),
		validator.WithMasking(!final.showNumber),
	)
	if debugObs != nil {
		attachObserver(debugObs, v)
	}
	return v
}

// attachObserver hands the debug observer to each component
func attachObserver(debugObs *observability.DebugObserver, components ...observability.Observable) {
	for _, c := range components {
		c.SetObserver(debugObs.StandardObserver)
		debugObs.LogDetail("main", fmt.Sprintf("observer attached to %s", c.GetComponentName()))
	}
}

func validateSingle(final *finalConfiguration, debugObs *observability.DebugObserver, flags *cliFlags) []batch.Outcome {
	v := newValidator(final, debugObs)
	result, err := v.Validate(validator.Card{
		Number: flags.number,
		Expiry: flags.expiry,
		CVV:    flags.cvv,
	})
	return []batch.Outcome{{Index: 0, Result: result, Err: err}}
}

func validateBatch(ctx context.Context, final *finalConfiguration, debugObs *observability.DebugObserver, path string) ([]batch.Outcome, error) {
	entries, err := batch.Load(path)
	if err != nil {
		return nil, err
	}

	var finishStep func(bool, string)
	if debugObs != nil {
		finishStep = debugObs.StartStep("main", "batch", path)
	}

	outcomes, err := batch.Run(ctx, newValidator(final, debugObs), entries, final.workers)

	if finishStep != nil {
		finishStep(err == nil, fmt.Sprintf("%d cards", len(entries)))
	}
	return outcomes, err
}

// scanPaths extracts the text of every file under paths and runs the
// scanner over it. Unreadable or unsupported files are reported on
// stderr and skipped.
func scanPaths(ctx context.Context, final *finalConfiguration, debugObs *observability.DebugObserver, paths []string, stderr io.Writer) ([]detector.Match, error) {
	files, err := collectFiles(paths, final.recursive, final.excludePatterns, stderr)
	if err != nil {
		return nil, err
	}

	manager := extract.NewManager(final.maxPDFPages)
	s := scanner.New(scanner.WithMinConfidence(final.minConfidence))
	if debugObs != nil {
		manager.SetObserver(debugObs.StandardObserver)
		attachObserver(debugObs, s)
		debugObs.LogDetail("main", fmt.Sprintf("scanning %d files", len(files)))
	}

	workers := final.workers
	if workers <= 0 {
		workers = 1
	}

	perFile := make([][]detector.Match, len(files))
	warnings := make([]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := manager.ProcessFile(file)
			if err != nil {
				if errors.Is(err, extract.ErrUnsupported) {
					if debugObs != nil {
						debugObs.LogDetail("main", fmt.Sprintf("skipping unsupported file %s", file))
					}
					return nil
				}
				warnings[i] = fmt.Sprintf("Warning: Skipping %s: %v", file, err)
				return nil
			}
			matches, err := s.ScanContent(content.Text, file)
			if err != nil {
				warnings[i] = fmt.Sprintf("Warning: Error scanning %s: %v", file, err)
				return nil
			}
			if debugObs != nil {
				debugObs.LogMetric("scanner", "matches in "+file, len(matches))
			}
			perFile[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []detector.Match
	for i := range files {
		if warnings[i] != "" {
			fmt.Fprintln(stderr, warnings[i])
		}
		findings = append(findings, perFile[i]...)
	}
	return findings, nil
}

func filterFindings(findings []detector.Match, levels map[string]bool) []detector.Match {
	var kept []detector.Match
	for _, m := range findings {
		if levels[strings.ToLower(m.ConfidenceLevel())] {
			kept = append(kept, m)
		}
	}
	return kept
}

// isTerminal checks if the file descriptor is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
