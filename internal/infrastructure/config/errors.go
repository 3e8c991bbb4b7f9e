package config

import "errors"

// ErrInvalidConfig is returned when a setting fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrUnsupportedProfile is returned for profile files that are neither YAML nor TOML.
var ErrUnsupportedProfile = errors.New("unsupported profile format")
