package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvEndpoint      = "OPENAI_URL"
	EnvAPIKey        = "OPENAI_KEY"
	EnvDeployment    = "OPENAI_DEPLOYMENT"
	EnvAPIVersion    = "OPENAI_API_VERSION"
	EnvHistoryLength = "MAGNUS_HISTORY_LENGTH"
	EnvMaxTokens     = "MAGNUS_MAX_TOKENS"
)

// EnvLoader overlays environment variables on Base. Values from DotEnvFiles
// are used for variables the process environment does not set.
type EnvLoader struct {
	Base        Config
	DotEnvFiles []string
	LookupEnv   func(string) (string, bool)
}

// Load returns Base with every set variable applied.
func (l EnvLoader) Load() (Config, error) {
	lookup, err := l.lookup()
	if err != nil {
		return Config{}, err
	}

	cfg := l.Base
	applied := false
	setString := func(name string, dst *string) {
		if v := lookup(name); v != "" {
			*dst = v
			applied = true
		}
	}
	setInt := func(name string, dst *int) error {
		v := lookup(name)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		*dst = n
		applied = true
		return nil
	}

	setString(EnvEndpoint, &cfg.Endpoint)
	setString(EnvAPIKey, &cfg.APIKey)
	setString(EnvDeployment, &cfg.Deployment)
	setString(EnvAPIVersion, &cfg.APIVersion)
	if err := setInt(EnvHistoryLength, &cfg.HistoryLength); err != nil {
		return Config{}, err
	}
	if err := setInt(EnvMaxTokens, &cfg.MaxTokens); err != nil {
		return Config{}, err
	}

	if applied {
		if cfg.Source == "" {
			cfg.Source = "environment"
		} else {
			cfg.Source += "+environment"
		}
	}
	return cfg, nil
}

func (l EnvLoader) lookup() (func(string) string, error) {
	lookupEnv := l.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	dotenv := map[string]string{}
	for _, file := range l.DotEnvFiles {
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", file, err)
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range values {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}

	return func(name string) string {
		if v, ok := lookupEnv(name); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(dotenv[name])
	}, nil
}

// ChainLoader reads the configuration file, if any, then applies the
// environment on top of it.
type ChainLoader struct {
	File FileLoader
	Env  EnvLoader
}

// Load resolves the combined configuration. A missing file is not an error.
func (l ChainLoader) Load() (Config, error) {
	cfg, err := l.File.Load()
	switch {
	case errors.Is(err, ErrNotFound):
		cfg = DefaultConfig()
	case err != nil:
		return Config{}, err
	}

	env := l.Env
	env.Base = cfg
	return env.Load()
}
