package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// fileTimeouts is the on-disk spelling of Timeouts ("20s", "1m").
type fileTimeouts struct {
	Dial        string `json:"dial" yaml:"dial" toml:"dial"`
	ChainRead   string `json:"chain_read" yaml:"chain_read" toml:"chain_read"`
	DryRun      string `json:"dry_run" yaml:"dry_run" toml:"dry_run"`
	ChainSubmit string `json:"chain_submit" yaml:"chain_submit" toml:"chain_submit"`
	Upload      string `json:"upload" yaml:"upload" toml:"upload"`
}

type fileConfig struct {
	Config   `yaml:",inline"`
	Timeouts fileTimeouts `json:"timeouts" yaml:"timeouts" toml:"timeouts"`
}

// LoadFile reads a configuration file, choosing the decoder by extension:
// .yaml/.yml, .toml or .json. The result is validated before it is returned.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (with or without the dot).
// It does not call Validate.
func Parse(ext string, data []byte) (*Config, error) {
	var fc fileConfig
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg := fc.Config
	t, err := fc.Timeouts.parse()
	if err != nil {
		return nil, err
	}
	cfg.Timeouts = t
	return &cfg, nil
}

func (f fileTimeouts) parse() (Timeouts, error) {
	var t Timeouts
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"dial", f.Dial, &t.Dial},
		{"chain_read", f.ChainRead, &t.ChainRead},
		{"dry_run", f.DryRun, &t.DryRun},
		{"chain_submit", f.ChainSubmit, &t.ChainSubmit},
		{"upload", f.Upload, &t.Upload},
	}
	for _, fl := range fields {
		if fl.raw == "" {
			continue
		}
		d, err := time.ParseDuration(fl.raw)
		if err != nil {
			return Timeouts{}, fmt.Errorf("invalid timeouts.%s: %w", fl.name, err)
		}
		*fl.dst = d
	}
	return t, nil
}
