// Package config provides configuration handling for declmap.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/declmap/internal/model"
)

// Config represents the complete configuration.
type Config struct {
	Discovery Discovery `yaml:"discovery" json:"discovery"`
	Template  Template  `yaml:"template" json:"template"`
}

// Discovery controls which source files are scanned.
type Discovery struct {
	Extensions  []string `yaml:"extensions" json:"extensions"`
	Exclude     []string `yaml:"exclude" json:"exclude"`
	MaxFileSize int      `yaml:"maxFileSize" json:"maxFileSize"`
}

// Template holds the tokens recognised by the projection engine.
type Template struct {
	Placeholders     map[model.Kind][]string `yaml:"placeholders" json:"placeholders"`
	SummaryToken     string                  `yaml:"summaryToken" json:"summaryToken"`
	OneSentenceToken string                  `yaml:"oneSentenceToken" json:"oneSentenceToken"`
	Fallback         string                  `yaml:"fallback" json:"fallback"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Discovery: DefaultDiscovery(),
		Template:  DefaultTemplate(),
	}
}

// LoadFile loads configuration from a file (YAML or JSON based on extension)
// and merges it over the current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &loaded); err != nil {
			return fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			if err := json.Unmarshal(data, &loaded); err != nil {
				return fmt.Errorf("unable to parse config as YAML or JSON")
			}
		}
	}

	if err := loaded.validate(); err != nil {
		return err
	}
	c.merge(&loaded)
	return nil
}

func (c *Config) validate() error {
	for kind := range c.Template.Placeholders {
		if !knownKind(kind) {
			return fmt.Errorf("unknown construct kind %q in placeholders", kind)
		}
	}
	if c.Discovery.MaxFileSize < 0 {
		return fmt.Errorf("maxFileSize must not be negative")
	}
	return nil
}

// merge merges the loaded config into the current config. Non-empty loaded
// values replace the current ones.
func (c *Config) merge(loaded *Config) {
	if len(loaded.Discovery.Extensions) > 0 {
		c.Discovery.Extensions = normalizeExtensions(loaded.Discovery.Extensions)
	}
	if len(loaded.Discovery.Exclude) > 0 {
		c.Discovery.Exclude = loaded.Discovery.Exclude
	}
	if loaded.Discovery.MaxFileSize > 0 {
		c.Discovery.MaxFileSize = loaded.Discovery.MaxFileSize
	}

	for kind, tokens := range loaded.Template.Placeholders {
		if len(tokens) > 0 {
			c.Template.Placeholders[kind] = tokens
		}
	}
	if loaded.Template.SummaryToken != "" {
		c.Template.SummaryToken = loaded.Template.SummaryToken
	}
	if loaded.Template.OneSentenceToken != "" {
		c.Template.OneSentenceToken = loaded.Template.OneSentenceToken
	}
	if loaded.Template.Fallback != "" {
		c.Template.Fallback = loaded.Template.Fallback
	}
}

// normalizeExtensions lower-cases extensions and adds the leading dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}

func knownKind(k model.Kind) bool {
	for _, known := range model.Kinds {
		if k == known {
			return true
		}
	}
	return false
}
