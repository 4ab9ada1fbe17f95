// Copyright 2025 The eqsat-ai Authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the engine's project configuration: which
// abstract domain to run an interpretation under, its widening
// threshold, and the Datalog fixpoint engine's round limit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RArbore/eqsat-ai/internal/errors"
)

const (
	defaultConfigDir  = ".eqsat"
	defaultConfigFile = "project.yaml"
	configVersion     = "1"
)

// DomainConfig selects and tunes the abstract domain the interp
// subcommand runs a program under.
type DomainConfig struct {
	// Name is one of "interval", "constant", "unit", or "essa".
	Name              string `yaml:"name"`
	WideningThreshold int    `yaml:"widening_threshold,omitempty"`
}

// XlogConfig tunes the Datalog fixpoint engine.
type XlogConfig struct {
	MaxRounds int `yaml:"max_rounds,omitempty"`
}

// Config is the .eqsat/project.yaml configuration file.
type Config struct {
	Version string       `yaml:"version"`
	Domain  DomainConfig `yaml:"domain"`
	Xlog    XlogConfig   `yaml:"xlog,omitempty"`
}

// DefaultConfig returns a config with sensible defaults: the interval
// domain with no widening threshold configured, and an unbounded
// Datalog round count.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Domain: DomainConfig{
			Name: "interval",
		},
		Xlog: XlogConfig{
			MaxRounds: 0,
		},
	}
}

// ConfigPath returns <dir>/.eqsat/project.yaml.
func ConfigPath(dir string) string {
	return filepath.Join(dir, defaultConfigDir, defaultConfigFile)
}

// ConfigDir returns <dir>/.eqsat.
func ConfigDir(dir string) string {
	return filepath.Join(dir, defaultConfigDir)
}

// LoadConfig loads configuration from configPath, or finds
// .eqsat/project.yaml by walking up from the working directory when
// configPath is empty. Returns DefaultConfig unmodified if no config
// file exists anywhere in the search path — this engine runs
// perfectly well with no project configuration at all.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		var err error
		configPath, err = findConfigFile()
		if err != nil {
			return nil, err
		}
		if configPath == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", configPath),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			"YAML parsing failed - the config file contains syntax errors",
			fmt.Sprintf("Edit %s to fix syntax errors, or delete it to fall back to defaults", configPath),
			err,
		)
	}

	if cfg.Version != configVersion {
		return nil, errors.NewConfigError(
			"Unsupported configuration version",
			fmt.Sprintf("Config version '%s' is not supported (expected '%s')", cfg.Version, configVersion),
			"Update the 'version' field or delete the config to regenerate defaults",
			nil,
		)
	}

	return cfg, nil
}

// SaveConfig writes cfg to configPath as YAML, creating its directory
// if necessary.
func SaveConfig(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug. Please report it",
			err,
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewPermissionError(
			"Cannot create configuration directory",
			fmt.Sprintf("Permission denied creating %s", dir),
			"Check directory permissions or run with appropriate privileges",
			err,
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", configPath),
			"Check file permissions and available disk space",
			err,
		)
	}
	return nil
}

// findConfigFile walks up from the working directory looking for
// .eqsat/project.yaml, returning "" (not an error) if none is found.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot access working directory",
			"Failed to determine current directory path",
			"Check system permissions and try again",
			err,
		)
	}

	for {
		p := ConfigPath(dir)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
