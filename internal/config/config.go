// Package config loads the optional run configuration for the rowlint CLI.
// A config file supplies defaults for flags; flags given on the command line
// always win. Missing file paths are an error, but not having a config at
// all is the normal case.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Run holds the CLI defaults a config file may set.
type Run struct {
	// MaxIssues caps the diagnostic list; 0 means unlimited.
	MaxIssues int `yaml:"max_issues"`

	// Output selects the report rendering: "text" or "json".
	Output string `yaml:"output"`

	// LogLevel and LogFormat configure slog ("debug".."error", "text"/"json").
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Lang selects the diagnostic label language ("en"/"ja").
	Lang string `yaml:"lang"`

	// FixedPolicy selects short/long fixed-width line handling:
	// "strict" (fatal) or "pad" (pad short lines, cut long ones).
	FixedPolicy string `yaml:"fixed_policy"`
}

// Default returns the configuration used when no file is given.
func Default() Run {
	return Run{
		Output:      "text",
		LogLevel:    "info",
		LogFormat:   "text",
		Lang:        "en",
		FixedPolicy: "strict",
	}
}

// Load reads a YAML config file and merges it over the defaults. Keys the
// file omits keep their default value.
func Load(path string) (Run, error) {
	run := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return run, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &run); err != nil {
		return run, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := run.Validate(); err != nil {
		return run, fmt.Errorf("config %s: %w", path, err)
	}
	return run, nil
}

// Validate rejects values no subsystem would accept.
func (r Run) Validate() error {
	if r.MaxIssues < 0 {
		return fmt.Errorf("max_issues must not be negative, got %d", r.MaxIssues)
	}
	switch r.Output {
	case "text", "json":
	default:
		return fmt.Errorf("output must be \"text\" or \"json\", got %q", r.Output)
	}
	switch r.FixedPolicy {
	case "strict", "pad":
	default:
		return fmt.Errorf("fixed_policy must be \"strict\" or \"pad\", got %q", r.FixedPolicy)
	}
	return nil
}
