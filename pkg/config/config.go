// Package config resolves the chat client's endpoint, credentials and limits
// from configuration files and environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultHistoryLength = 10
	DefaultMaxTokens     = 1500
	DefaultAPIVersion    = "2023-05-15"
)

// Config holds all runtime configuration. It is immutable once loaded.
type Config struct {
	Endpoint      string `json:"openAiUri" yaml:"openAiUri"`
	APIKey        string `json:"openAiKey" yaml:"openAiKey"`
	Deployment    string `json:"deployment" yaml:"deployment"`
	APIVersion    string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
	HistoryLength int    `json:"historyLength" yaml:"historyLength"`
	MaxTokens     int    `json:"maxTokens" yaml:"maxTokens"`

	// Source names where the values came from, for diagnostics only.
	Source string `json:"-" yaml:"-"`
}

// Loader produces a Config from one source.
type Loader interface {
	Load() (Config, error)
}

// ErrNotFound is returned by a Loader whose source does not exist.
var ErrNotFound = errors.New("configuration source not found")

// ConfigError lists every problem found while validating a Config.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		APIVersion:    DefaultAPIVersion,
		HistoryLength: DefaultHistoryLength,
		MaxTokens:     DefaultMaxTokens,
	}
}

// Normalize trims string values and fills the API version default.
func Normalize(cfg Config) Config {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Deployment = strings.TrimSpace(cfg.Deployment)
	cfg.APIVersion = strings.TrimSpace(cfg.APIVersion)
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	return cfg
}

// Validate reports missing required values and out-of-range limits.
func Validate(cfg Config) error {
	var problems []string
	if cfg.Endpoint == "" {
		problems = append(problems, "endpoint URI is not set")
	}
	if cfg.APIKey == "" {
		problems = append(problems, "API key is not set")
	}
	if cfg.Deployment == "" {
		problems = append(problems, "deployment is not set")
	}
	if cfg.HistoryLength < 0 {
		problems = append(problems, fmt.Sprintf("history length must not be negative, got %d", cfg.HistoryLength))
	}
	if cfg.MaxTokens <= 0 {
		problems = append(problems, fmt.Sprintf("max tokens must be positive, got %d", cfg.MaxTokens))
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// Load runs the loader, normalizes the result and validates it.
func Load(loader Loader) (Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return Config{}, err
	}
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() map[string]any {
	key := ""
	if c.APIKey != "" {
		key = "***"
	}
	return map[string]any{
		"endpoint":       c.Endpoint,
		"api_key":        key,
		"deployment":     c.Deployment,
		"api_version":    c.APIVersion,
		"history_length": c.HistoryLength,
		"max_tokens":     c.MaxTokens,
		"source":         c.Source,
	}
}
