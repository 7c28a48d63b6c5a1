package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".wikigraph"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads wiki configurations from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	// Initialize Wikis map if nil
	if cf.Wikis == nil {
		cf.Wikis = make(map[string]WikiConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .wikigraph in the current directory
// 3. Look for .wikigraph in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// LoadEnv loads a .env file from the current directory if one exists and
// applies environment overrides to the config. A missing .env file is not
// an error; environment variables set by other means still apply.
//
// Supported variables:
//   - WIKIGRAPH_WIKI: default wiki name
//   - WIKIGRAPH_DB_DIR: database directory
//   - WIKIGRAPH_USER_AGENT: HTTP User-Agent header
func LoadEnv(cfg *Config) {
	// Best effort: the .env file is a development convenience.
	_ = godotenv.Load() //nolint:errcheck // Missing .env is the common case

	if v := os.Getenv("WIKIGRAPH_WIKI"); v != "" {
		cfg.WikiName = v
	}
	if v := os.Getenv("WIKIGRAPH_DB_DIR"); v != "" {
		cfg.DBDir = v
	}
	if v := os.Getenv("WIKIGRAPH_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
}
