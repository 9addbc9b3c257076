// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cardcheck/internal/expiry"
	"cardcheck/internal/formatters"
	_ "cardcheck/internal/formatters/csv"
	_ "cardcheck/internal/formatters/json"
	_ "cardcheck/internal/formatters/junit"
	_ "cardcheck/internal/formatters/text"
	_ "cardcheck/internal/formatters/yaml"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// CARDCHECK_DEFAULTS_FORMAT or CARDCHECK_SCAN_WORKERS.
const EnvPrefix = "CARDCHECK_"

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format           string `yaml:"format" env:"FORMAT"`
		ConfidenceLevels string `yaml:"confidence_levels" env:"CONFIDENCE_LEVELS"`
		Verbose          bool   `yaml:"verbose" env:"VERBOSE"`
		Debug            bool   `yaml:"debug" env:"DEBUG"`
		NoColor          bool   `yaml:"no_color" env:"NO_COLOR"`
		ShowNumber       bool   `yaml:"show_number" env:"SHOW_NUMBER"`
	} `yaml:"defaults" envPrefix:"DEFAULTS_"`

	Validation struct {
		ExpiryPolicy string `yaml:"expiry_policy" env:"EXPIRY_POLICY"`
	} `yaml:"validation" envPrefix:"VALIDATION_"`

	Scan struct {
		Recursive       bool     `yaml:"recursive" env:"RECURSIVE"`
		MinConfidence   float64  `yaml:"min_confidence" env:"MIN_CONFIDENCE"`
		MaxPDFPages     int      `yaml:"max_pdf_pages" env:"MAX_PDF_PAGES"`
		Workers         int      `yaml:"workers" env:"WORKERS"`
		ExcludePatterns []string `yaml:"exclude_patterns" env:"EXCLUDE_PATTERNS" envSeparator:","`
	} `yaml:"scan" envPrefix:"SCAN_"`

	// Profiles for different run scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile overrides a subset of the defaults. Empty fields leave the
// defaults untouched.
type Profile struct {
	Description      string  `yaml:"description"`
	Format           string  `yaml:"format"`
	ConfidenceLevels string  `yaml:"confidence_levels"`
	ExpiryPolicy     string  `yaml:"expiry_policy"`
	MinConfidence    float64 `yaml:"min_confidence"`
	NoColor          bool    `yaml:"no_color"`
	Recursive        bool    `yaml:"recursive"`
}

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.Format = "text"
	config.Defaults.ConfidenceLevels = "all"

	config.Validation.ExpiryPolicy = string(expiry.PolicyInclusive)

	config.Scan.MaxPDFPages = 50
	config.Scan.Workers = 4

	config.Profiles["ci"] = Profile{
		Description:      "Machine-readable output with only high and medium confidence findings",
		Format:           "json",
		ConfidenceLevels: "high,medium",
		NoColor:          true,
		Recursive:        true,
	}
	config.Profiles["strict"] = Profile{
		Description:  "Cards expiring this month are rejected",
		ExpiryPolicy: string(expiry.PolicyStrict),
	}

	return config
}

// LoadConfig loads configuration from the specified file path, applies
// environment overrides and validates the result. An empty path yields
// the defaults plus environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := os.ReadFile(filepath.Clean(configPath))
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		// Profiles in the file are merged over the built-in ones
		builtin := config.Profiles
		config.Profiles = nil
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		for name, profile := range builtin {
			if _, exists := config.Profiles[name]; !exists {
				if config.Profiles == nil {
					config.Profiles = make(map[string]Profile)
				}
				config.Profiles[name] = profile
			}
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("error reading environment overrides: %w", err)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory,
// the home directory and the XDG config directory. It returns "" if none
// exists.
func FindConfigFile() string {
	for _, name := range []string{"cardcheck.yaml", "cardcheck.yml", ".cardcheck.yaml", ".cardcheck.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		if configFile := filepath.Join(dir, "config.yaml"); fileExists(configFile) {
			return configFile
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	for _, name := range []string{".cardcheck.yaml", ".cardcheck.yml"} {
		if homeConfig := filepath.Join(home, name); fileExists(homeConfig) {
			return homeConfig
		}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	for _, name := range []string{"config.yaml", "config.yml"} {
		if xdgConfigFile := filepath.Join(xdgConfig, "cardcheck", name); fileExists(xdgConfigFile) {
			return xdgConfigFile
		}
	}

	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the names of all profiles
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// GetProfile returns the named profile, or nil if it does not exist
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile copies the non-empty fields of the named profile over the
// defaults and revalidates
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile '%s' not found", name)
	}

	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.ConfidenceLevels != "" {
		c.Defaults.ConfidenceLevels = profile.ConfidenceLevels
	}
	if profile.ExpiryPolicy != "" {
		c.Validation.ExpiryPolicy = profile.ExpiryPolicy
	}
	if profile.MinConfidence > 0 {
		c.Scan.MinConfidence = profile.MinConfidence
	}
	if profile.NoColor {
		c.Defaults.NoColor = true
	}
	if profile.Recursive {
		c.Scan.Recursive = true
	}

	return ValidateConfig(c)
}

// ConfidenceLevels parses Defaults.ConfidenceLevels into the formatter
// filter. "all" or an empty value returns nil, which keeps every level.
func (c *Config) ConfidenceLevels() (map[string]bool, error) {
	return ParseConfidenceLevels(c.Defaults.ConfidenceLevels)
}

// ParseConfidenceLevels parses a comma separated list of high, medium and low
func ParseConfidenceLevels(value string) (map[string]bool, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || value == "all" {
		return nil, nil
	}

	levels := make(map[string]bool)
	for _, level := range strings.Split(value, ",") {
		level = strings.TrimSpace(level)
		switch level {
		case "high", "medium", "low":
			levels[level] = true
		default:
			return nil, fmt.Errorf("invalid confidence level '%s'", level)
		}
	}
	return levels, nil
}

// ExpiryPolicy returns the parsed Validation.ExpiryPolicy
func (c *Config) ExpiryPolicy() (expiry.Policy, error) {
	return expiry.ParsePolicy(c.Validation.ExpiryPolicy)
}

// ValidateConfig checks values that would otherwise fail later at run time
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if _, exists := formatters.Get(config.Defaults.Format); !exists {
		return fmt.Errorf("unsupported format '%s'", config.Defaults.Format)
	}

	if _, err := config.ConfidenceLevels(); err != nil {
		return err
	}

	if _, err := config.ExpiryPolicy(); err != nil {
		return err
	}

	if config.Scan.MinConfidence < 0 || config.Scan.MinConfidence > 100 {
		return fmt.Errorf("scan.min_confidence must be between 0 and 100, got %g", config.Scan.MinConfidence)
	}
	if config.Scan.MaxPDFPages < 0 {
		return fmt.Errorf("scan.max_pdf_pages cannot be negative")
	}
	if config.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers cannot be negative")
	}

	for _, pattern := range config.Scan.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}
