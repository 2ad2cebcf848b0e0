// Package config loads the optional YAML configuration overlay that tunes
// scheduler mode, RNG seed, property-engine caps and default output
// format — grounded on the teacher's YAML-backed
// internal/eval_harness.BenchmarkSpec loader. CLI flags always override a
// value this file supplies.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional aura.config.yaml overlay. Every numeric field is
// a pointer so "not present in the file" is distinguishable from "present
// and zero"; the string fields use "" for "not present,"
// letting CLI flag defaults win only when the file is silent.
type Config struct {
	SchedulerMode    string `yaml:"scheduler_mode"`    // "immediate" | "deterministic"
	Seed             *int   `yaml:"seed"`
	PropertyIters    *int   `yaml:"property_iterations"`
	ShrinkCap        *int   `yaml:"shrink_attempt_cap"`
	GenAttemptCap    *int   `yaml:"generation_attempt_cap"`
	OutputFormat     string `yaml:"output_format"`     // "text" | "json"
}

// Load reads path and parses it as YAML. A missing file is not an error —
// it simply means no overlay is present, matching the CLI's "config is
// optional" contract.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return &cfg, nil
}

// IntOr returns *p when set, else def.
func IntOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
