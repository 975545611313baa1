// Package config supplies credentials to the fetch pipeline. Providers are
// read fresh before every fetch so a token or proxy change takes effect on
// the next call without a restart.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the credentials the transport needs.
type Config struct {
	AuthToken string `json:"authToken"`
	ProxyURL  string `json:"proxyUrl,omitempty"`
}

// Provider is the settings collaborator boundary. Load must be cheap; it is
// called on every fetch.
type Provider interface {
	Load() (Config, error)
}

// Static is a fixed in-memory provider, mainly for tests and the CLI.
type Static Config

func (s Static) Load() (Config, error) {
	return Config(s), nil
}

// EnvProvider reads credentials from the environment on every call.
type EnvProvider struct{}

func (EnvProvider) Load() (Config, error) {
	return Config{
		AuthToken: os.Getenv("CURSORWATCH_TOKEN"),
		ProxyURL:  os.Getenv("CURSORWATCH_PROXY"),
	}, nil
}

// FileProvider re-reads a JSON settings file on every call, so edits apply on
// the next fetch. A missing file is not an error; it just means no token is
// configured yet.
type FileProvider struct {
	Path string
}

func (f FileProvider) Load() (Config, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
