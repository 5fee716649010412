package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scenescribe/scenescribe/internal/project"
)

// generationDefaults mirrors the optional YAML overlay file. Empty fields
// fall back to the built-in baseline.
type generationDefaults struct {
	Platform              string `yaml:"platform"`
	AspectRatio           string `yaml:"aspect_ratio"`
	Tone                  string `yaml:"tone"`
	Style                 string `yaml:"style"`
	TargetDurationSeconds int    `yaml:"target_duration_seconds"`
}

// GenerationDefaults returns the baseline generation config, overlaid with
// the YAML defaults file when one is configured.
func (c *Config) GenerationDefaults() (project.GenerationConfig, error) {
	base := project.DefaultConfig()
	if c.GenerationDefaultsPath == "" {
		return base, nil
	}

	raw, err := os.ReadFile(c.GenerationDefaultsPath)
	if err != nil {
		return base, fmt.Errorf("read generation defaults: %w", err)
	}
	var d generationDefaults
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return base, fmt.Errorf("parse generation defaults: %w", err)
	}

	if d.Platform != "" {
		base.Platform = project.Platform(d.Platform)
	}
	if d.AspectRatio != "" {
		base.AspectRatio = project.AspectRatio(d.AspectRatio)
	}
	if d.Tone != "" {
		base.Tone = project.Tone(d.Tone)
	}
	if d.Style != "" {
		base.Style = project.Style(d.Style)
	}
	if d.TargetDurationSeconds > 0 {
		base.TargetDurationSeconds = d.TargetDurationSeconds
	}
	return base, nil
}
