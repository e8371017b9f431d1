// Package config loads syncedit settings from TOML or YAML files,
// selected by extension, with SYNCEDIT_* environment overrides applied
// on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds the session settings the CLI and hosts wire into the
// engine.
type Config struct {
	// CaseSensitive controls pattern matching case folding.
	CaseSensitive bool `toml:"case_sensitive" yaml:"case_sensitive"`

	// UseRegex treats patterns as regular expressions instead of
	// literals.
	UseRegex bool `toml:"use_regex" yaml:"use_regex"`

	// WholeWord anchors pattern matches on word boundaries.
	WholeWord bool `toml:"whole_word" yaml:"whole_word"`

	// IndexThreshold is the occurrence count above which the approximate
	// index stops recounting.
	IndexThreshold int `toml:"index_threshold" yaml:"index_threshold"`

	// ContextLines is the margin kept visible around each occurrence
	// when hiding context.
	ContextLines int `toml:"context_lines" yaml:"context_lines"`

	// Placeholder is the token IncrementAll replaces.
	Placeholder string `toml:"placeholder" yaml:"placeholder"`

	// HookScript is an optional Lua script path with lifecycle hooks.
	HookScript string `toml:"hook_script" yaml:"hook_script"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		CaseSensitive:  true,
		IndexThreshold: 1000,
		ContextLines:   0,
		Placeholder:    "#",
	}
}

// Load reads the config file at path, falling back to defaults for an
// empty path, and applies environment overrides. The format follows the
// extension: .toml, or .yaml/.yml.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings' ranges.
func (c *Config) Validate() error {
	if c.IndexThreshold <= 0 {
		return fmt.Errorf("%w: index_threshold must be positive, got %d",
			ErrInvalidValue, c.IndexThreshold)
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("%w: context_lines must not be negative, got %d",
			ErrInvalidValue, c.ContextLines)
	}
	if c.Placeholder == "" {
		return fmt.Errorf("%w: placeholder must not be empty", ErrInvalidValue)
	}
	return nil
}

// applyEnv overrides settings from SYNCEDIT_* environment variables.
func (c *Config) applyEnv() error {
	bools := map[string]*bool{
		"SYNCEDIT_CASE_SENSITIVE": &c.CaseSensitive,
		"SYNCEDIT_USE_REGEX":      &c.UseRegex,
		"SYNCEDIT_WHOLE_WORD":     &c.WholeWord,
	}
	for name, dst := range bools {
		if val, ok := os.LookupEnv(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, val)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"SYNCEDIT_INDEX_THRESHOLD": &c.IndexThreshold,
		"SYNCEDIT_CONTEXT_LINES":   &c.ContextLines,
	}
	for name, dst := range ints {
		if val, ok := os.LookupEnv(name); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, val)
			}
			*dst = n
		}
	}

	if val, ok := os.LookupEnv("SYNCEDIT_PLACEHOLDER"); ok {
		c.Placeholder = val
	}
	if val, ok := os.LookupEnv("SYNCEDIT_HOOK_SCRIPT"); ok {
		c.HookScript = val
	}
	return nil
}
