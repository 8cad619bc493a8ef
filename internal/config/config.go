package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig points the pipeline at the analytics database.
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ProviderConfig selects the language model backend.
type ProviderConfig struct {
	Kind    string `json:"kind" yaml:"kind"`
	Model   string `json:"model" yaml:"model"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// ChartsConfig controls where rendered chart images land.
type ChartsConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// HistoryConfig controls session persistence.
type HistoryConfig struct {
	Path string `json:"path" yaml:"path"`
}

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	Provider ProviderConfig `json:"provider" yaml:"provider"`
	Charts   ChartsConfig   `json:"charts" yaml:"charts"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Persona  string         `json:"persona" yaml:"persona"`
	AuditLog string         `json:"audit_log" yaml:"audit_log"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "data.db"},
		Provider: ProviderConfig{Kind: "openai"},
		Charts:   ChartsConfig{Dir: "charts"},
		History:  HistoryConfig{Path: filepath.Join(".text2sql", "history.db")},
	}
}

// Load reads a configuration file (JSON or YAML) and fills unset fields
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s (use .json or .yaml)", ext)
	}

	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = keyFromEnv(cfg.Provider.Kind)
	}
	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent fields.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Provider.Kind {
	case "openai", "ollama", "gemini", "anthropic", "":
	default:
		return fmt.Errorf("unknown provider kind: %s", c.Provider.Kind)
	}
	return nil
}

func keyFromEnv(kind string) string {
	switch kind {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}
