package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Profile overrides guard settings from a file. Empty fields keep the value
// loaded from the environment.
type Profile struct {
	Name                 string   `yaml:"name" toml:"name"`
	DangerAction         string   `yaml:"danger_action" toml:"danger_action"`
	OverlayDelay         string   `yaml:"overlay_delay" toml:"overlay_delay"`
	Debounce             string   `yaml:"debounce" toml:"debounce"`
	ExtensionOrigin      string   `yaml:"extension_origin" toml:"extension_origin"`
	BlockPageURL         string   `yaml:"block_page_url" toml:"block_page_url"`
	SystemScoreThreshold *float64 `yaml:"system_score_threshold" toml:"system_score_threshold"`
	Enrich               *bool    `yaml:"enrich" toml:"enrich"`
}

// ReadProfile parses a profile file. The format is chosen by extension:
// .yaml/.yml or .toml.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse TOML profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProfile, path)
	}
	return &p, nil
}

// ApplyProfile reads path and merges it into g.
func ApplyProfile(g *GuardConfig, path string) error {
	p, err := ReadProfile(path)
	if err != nil {
		return err
	}
	return p.Apply(g)
}

// Apply merges the profile into g.
func (p *Profile) Apply(g *GuardConfig) error {
	if p.DangerAction != "" {
		g.DangerAction = strings.ToLower(p.DangerAction)
	}
	if p.OverlayDelay != "" {
		d, err := time.ParseDuration(p.OverlayDelay)
		if err != nil {
			return fmt.Errorf("%w: overlay_delay: %v", ErrInvalidConfig, err)
		}
		g.OverlayDelay = d
	}
	if p.Debounce != "" {
		d, err := time.ParseDuration(p.Debounce)
		if err != nil {
			return fmt.Errorf("%w: debounce: %v", ErrInvalidConfig, err)
		}
		g.Debounce = d
	}
	if p.ExtensionOrigin != "" {
		g.ExtensionOrigin = p.ExtensionOrigin
	}
	if p.BlockPageURL != "" {
		g.BlockPageURL = p.BlockPageURL
	}
	if p.SystemScoreThreshold != nil {
		g.SystemScoreThreshold = *p.SystemScoreThreshold
	}
	if p.Enrich != nil {
		g.Enrich = *p.Enrich
	}
	return nil
}
