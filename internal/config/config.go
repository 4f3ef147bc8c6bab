// Package config loads analysis settings. Settings come from
// .pycm/config.json when present, otherwise from the [tool.pycm] table
// of pyproject.toml, otherwise from defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	pycmerrors "pycm/internal/errors"
)

// Settings represents the complete pycm configuration
type Settings struct {
	ExcludePatterns          []string      `json:"excludePatterns" mapstructure:"excludePatterns" toml:"excludePatterns"`
	InstabilityThresholdHigh float64       `json:"instabilityThresholdHigh" mapstructure:"instabilityThresholdHigh" toml:"instabilityThresholdHigh"`
	InstabilityThresholdLow  float64       `json:"instabilityThresholdLow" mapstructure:"instabilityThresholdLow" toml:"instabilityThresholdLow"`
	CouplingThresholdHigh    int           `json:"couplingThresholdHigh" mapstructure:"couplingThresholdHigh" toml:"couplingThresholdHigh"`
	LinesThresholdLarge      int           `json:"linesThresholdLarge" mapstructure:"linesThresholdLarge" toml:"linesThresholdLarge"`
	MaxFileSizeBytes         int           `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes" toml:"maxFileSizeBytes"`
	Workers                  int           `json:"workers" mapstructure:"workers" toml:"workers"`
	Logging                  LoggingConfig `json:"logging" mapstructure:"logging" toml:"logging"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level"`
}

// DefaultSettings returns the default configuration. The exclusion list
// covers the usual generated and vendored directories of Python layouts.
func DefaultSettings() *Settings {
	return &Settings{
		ExcludePatterns: []string{
			"__pycache__",
			".git",
			".pytest_cache",
			"node_modules",
			".venv",
			"venv",
			".mypy_cache",
			".tox",
			"build",
			"dist",
		},
		InstabilityThresholdHigh: 0.8,
		InstabilityThresholdLow:  0.2,
		CouplingThresholdHigh:    5,
		LinesThresholdLarge:      200,
		MaxFileSizeBytes:         1000000,
		Workers:                  0, // 0 means runtime.NumCPU at analysis time
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// pyprojectFile mirrors the subset of pyproject.toml we care about.
type pyprojectFile struct {
	Tool struct {
		Pycm *Settings `toml:"pycm"`
	} `toml:"tool"`
}

// Load loads configuration for a project root.
func Load(projectRoot string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ".pycm"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return loadPyproject(projectRoot)
		}
		return nil, pycmerrors.Wrap(pycmerrors.ConfigInvalid, "failed to read .pycm/config.json", err)
	}

	cfg := DefaultSettings()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.ConfigInvalid, "failed to decode .pycm/config.json", err)
	}
	return cfg, nil
}

// loadPyproject reads the [tool.pycm] table from pyproject.toml. A missing
// file or missing table yields the defaults.
func loadPyproject(projectRoot string) (*Settings, error) {
	path := filepath.Join(projectRoot, "pyproject.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, pycmerrors.Wrap(pycmerrors.ConfigInvalid, "failed to read pyproject.toml", err)
	}

	cfg := DefaultSettings()
	var pp pyprojectFile
	pp.Tool.Pycm = cfg
	if err := toml.Unmarshal(data, &pp); err != nil {
		return nil, pycmerrors.Wrap(pycmerrors.ConfigInvalid, "failed to parse pyproject.toml", err)
	}
	return cfg, nil
}

// Save writes the configuration to .pycm/config.json
func (s *Settings) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, ".pycm")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (s *Settings) Validate() error {
	if s.InstabilityThresholdHigh < 0 || s.InstabilityThresholdHigh > 1 {
		return pycmerrors.New(pycmerrors.ConfigInvalid, "instabilityThresholdHigh must be within [0,1]")
	}
	if s.InstabilityThresholdLow < 0 || s.InstabilityThresholdLow > 1 {
		return pycmerrors.New(pycmerrors.ConfigInvalid, "instabilityThresholdLow must be within [0,1]")
	}
	if s.InstabilityThresholdLow > s.InstabilityThresholdHigh {
		return pycmerrors.New(pycmerrors.ConfigInvalid, "instabilityThresholdLow must not exceed instabilityThresholdHigh")
	}
	if s.CouplingThresholdHigh < 0 {
		return pycmerrors.New(pycmerrors.ConfigInvalid, "couplingThresholdHigh must be >= 0")
	}
	if s.LinesThresholdLarge < 0 {
		return pycmerrors.New(pycmerrors.ConfigInvalid, "linesThresholdLarge must be >= 0")
	}
	if s.Workers < 0 {
		return pycmerrors.New(pycmerrors.ConfigInvalid, "workers must be >= 0")
	}
	return nil
}
