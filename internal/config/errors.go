package config

import "errors"

// Configuration errors.
var (
	// ErrUnsupportedFormat indicates a config file extension that is
	// neither TOML nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported config format")

	// ErrInvalidValue indicates a setting outside its valid range.
	ErrInvalidValue = errors.New("invalid config value")
)
