package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the configuration file agentdeck looks for.
const FileName = "agentdeck.json"

// Config represents the agentdeck.json configuration file
type Config struct {
	Version          string `json:"version"`
	BinaryPath       string `json:"binary_path,omitempty"`
	Model            string `json:"model"`
	KillGraceSeconds int    `json:"kill_grace_seconds"`
	EventLogDir      string `json:"event_log_dir,omitempty"`
}

// GenerateDefault creates a new Config with default values
func GenerateDefault() *Config {
	return &Config{
		Version:          "1.0",
		Model:            "sonnet",
		KillGraceSeconds: 5,
	}
}

// Validate checks the configuration for errors and returns user-friendly error messages
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("configuration error: missing required field 'version'\n\nHint: Add a version field like:\n  \"version\": \"1.0\"")
	}
	if c.Model == "" {
		return fmt.Errorf("configuration error: missing required field 'model'\n\nHint: Set a default model:\n  \"model\": \"sonnet\"")
	}
	if c.KillGraceSeconds <= 0 {
		return fmt.Errorf("configuration error: invalid 'kill_grace_seconds' value: %d\n\nHint: The grace period before a forceful kill must be positive:\n  \"kill_grace_seconds\": 5", c.KillGraceSeconds)
	}
	return nil
}

// KillGracePeriod returns the configured grace period as a duration.
func (c *Config) KillGracePeriod() time.Duration {
	return time.Duration(c.KillGraceSeconds) * time.Second
}

// LoadFromFile loads a configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// SaveToFile writes a configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// Discover resolves the config to use: an explicit path if given, else
// agentdeck.json in the working directory, else the per-user config under
// $HOME/.config/agentdeck. When none exists, defaults apply.
func Discover(explicit string) (*Config, error) {
	if explicit != "" {
		return LoadFromFile(explicit)
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, FileName)
		if _, err := os.Stat(local); err == nil {
			return LoadFromFile(local)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		user := filepath.Join(home, ".config", "agentdeck", FileName)
		if _, err := os.Stat(user); err == nil {
			return LoadFromFile(user)
		}
	}

	return GenerateDefault(), nil
}
