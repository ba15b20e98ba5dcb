// Package config provides project-level configuration for revi.
// It supports loading configuration from .revi/config.yaml files with
// proper precedence: CLI flags > project config > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name for revi configuration
	ConfigDir = ".revi"
	// ConfigFile is the name of the configuration file
	ConfigFile = "config.yaml"
	// ConfigPath is the full path to the config file relative to project root
	ConfigPath = ConfigDir + "/" + ConfigFile
)

// ProjectConfig represents the project-level configuration for revi.
// It provides defaults that can be overridden by CLI flags.
type ProjectConfig struct {
	// Remote is the git remote consulted for repository discovery
	// (default "origin").
	Remote string `yaml:"remote,omitempty"`

	// BaseURL overrides the API prefix, for Azure DevOps Server installs.
	// Must be the full ".../_apis/git" prefix.
	BaseURL string `yaml:"base_url,omitempty"`

	// APIVersion overrides the REST api-version query parameter.
	APIVersion string `yaml:"api_version,omitempty"`

	// TimeoutSeconds bounds each HTTP call when non-zero.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// DefaultStatus is the default pull request list filter
	// (active, completed or abandoned).
	DefaultStatus string `yaml:"default_status,omitempty"`

	// Bearer sends the token as a Bearer header instead of Basic auth
	// (Microsoft Entra access tokens).
	Bearer bool `yaml:"bearer,omitempty"`
}

// Load loads the project configuration from the given directory.
// It searches for .revi/config.yaml in the directory and its parents.
//
// If no config file is found, it returns a zero config and nil error.
// If a config file is found but cannot be parsed, it returns an error.
func Load(dir string) (*ProjectConfig, error) {
	configPath, err := findConfigPath(dir)
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		// No config file found, return zero config
		return &ProjectConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// findConfigPath searches for .revi/config.yaml in dir and its parent
// directories. It returns the full path to the config file, or empty string
// if not found.
func findConfigPath(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Search upward through directory tree
	for {
		configPath := filepath.Join(absDir, ConfigPath)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parentDir := filepath.Dir(absDir)
		if parentDir == absDir {
			// Reached root without finding config
			return "", nil
		}
		absDir = parentDir
	}
}

// ResolveString returns the effective value for a string configuration field.
// Precedence: cliValue > configValue > defaultValue.
func (c *ProjectConfig) ResolveString(cliValue, configValue, defaultValue string) string {
	if cliValue != "" {
		return cliValue
	}
	if configValue != "" {
		return configValue
	}
	return defaultValue
}

// ResolveRemote returns the effective git remote name.
func (c *ProjectConfig) ResolveRemote(cliValue string) string {
	return c.ResolveString(cliValue, c.Remote, "origin")
}

// ResolveStatusFilter returns the effective pull request list filter.
func (c *ProjectConfig) ResolveStatusFilter(cliValue string) string {
	return c.ResolveString(cliValue, c.DefaultStatus, "")
}
