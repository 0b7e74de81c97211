// Package config reads and writes the per-install configuration file
// under ~/.booknest.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		// Backend selects the key-value backend: "sqlite" or "file".
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`
	Session struct {
		// Secret signs session tokens. Generated once at init.
		Secret    string `yaml:"secret"`
		TokenPath string `yaml:"token_path"`
	} `yaml:"session"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	UI struct {
		ShowRatings   bool `yaml:"show_ratings"`
		CompactView   bool `yaml:"compact_view"`
		Notifications bool `yaml:"notifications"`
		EmailUpdates  bool `yaml:"email_updates"`
	} `yaml:"ui"`
}

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".booknest"), nil
}

func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

func LoadFrom(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(configPath, config)
}

func SaveTo(configPath string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Default returns a fresh config pointing everything at dir.
func Default(dir string) *Config {
	config := &Config{}
	config.Storage.Backend = "sqlite"
	config.Storage.Path = filepath.Join(dir, "data", "booknest.db")
	config.Session.Secret = uuid.NewString()
	config.Session.TokenPath = filepath.Join(dir, "session.token")
	config.Logging.Level = "info"
	config.UI.ShowRatings = true
	config.UI.Notifications = true
	return config
}

// Init creates the config directory tree and writes a default config.
// Re-running it leaves an existing config untouched.
func Init() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(configDir, "data"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	if existing, err := LoadFrom(configPath); err == nil {
		return existing, nil
	}

	config := Default(configDir)
	if err := SaveTo(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}
