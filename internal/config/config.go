// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package config loads and validates TourMind configuration.
//
// Values come from three layers, later layers winning: compiled-in
// defaults, a YAML config file, and command-line flags. The file
// defaults to config.yaml under the XDG config directory and is
// optional; an explicitly passed path must exist.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/tourmind/tourmind/internal/graph"
	"github.com/tourmind/tourmind/internal/logging"
	"github.com/tourmind/tourmind/internal/xdg"
)

// Config is the full runtime configuration.
type Config struct {
	LogLevel    string        `koanf:"log_level"`
	LogFormat   string        `koanf:"log_format"`
	MetricsAddr string        `koanf:"metrics_addr"`
	Graph       graph.Config  `koanf:"graph"`
	LLM         LLMConfig     `koanf:"llm"`
	Weather     WeatherConfig `koanf:"weather"`
	Router      RouterConfig  `koanf:"router"`
}

// LLMConfig points at the Ollama-compatible chat endpoint.
type LLMConfig struct {
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

// WeatherConfig points at the OpenWeather API. An empty APIKey leaves
// the weather route disabled.
type WeatherConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

// RouterConfig extends the built-in weather keyword set.
type RouterConfig struct {
	ExtraKeywords []string `koanf:"extra_keywords"`
}

// Default values for configuration fields.
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultGraphURI    = "bolt://localhost:7687"
	DefaultGraphUser   = "neo4j"
	DefaultLLMBaseURL  = "http://localhost:11434"
	DefaultLLMModel    = "mistral"
	DefaultWeatherBase = "https://api.openweathermap.org"
)

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Graph: graph.Config{
			URI:      DefaultGraphURI,
			Username: DefaultGraphUser,
			Database: graph.DefaultDatabase,
		},
		LLM: LLMConfig{
			BaseURL: DefaultLLMBaseURL,
			Model:   DefaultLLMModel,
		},
		Weather: WeatherConfig{
			BaseURL: DefaultWeatherBase,
		},
	}
}

// flagKeys maps command-line flag names to config keys. Flags not
// listed here (like --config itself) never reach the config map.
var flagKeys = map[string]string{
	"log-level":       "log_level",
	"log-format":      "log_format",
	"metrics-addr":    "metrics_addr",
	"graph-uri":       "graph.uri",
	"graph-username":  "graph.username",
	"graph-password":  "graph.password",
	"graph-database":  "graph.database",
	"llm-base-url":    "llm.base_url",
	"llm-model":       "llm.model",
	"weather-api-key": "weather.api_key",
}

// Load builds a Config from defaults, the YAML file at path (or the
// XDG default when path is empty), and the given flags. A nil flag
// set skips the flag layer. The result is validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = xdg.ConfigFile()
	}
	if explicit || fileExists(path) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").
				With("path", path).
				Wrapf(err, "load config file")
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return oops.Code("CONFIG_INVALID").
			With("field", "log_level").
			Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("field", "log_format").
			Errorf("log_format must be json or text, got %q", c.LogFormat)
	}
	if c.Graph.URI == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "graph.uri").
			Errorf("graph.uri is required")
	}
	if c.Graph.Username == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "graph.username").
			Errorf("graph.username is required")
	}
	if c.LLM.BaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "llm.base_url").
			Errorf("llm.base_url is required")
	}
	if c.LLM.Model == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "llm.model").
			Errorf("llm.model is required")
	}
	if c.Weather.BaseURL == "" {
		return oops.Code("CONFIG_INVALID").
			With("field", "weather.base_url").
			Errorf("weather.base_url is required")
	}
	for i, kw := range c.Router.ExtraKeywords {
		if strings.TrimSpace(kw) == "" {
			return oops.Code("CONFIG_INVALID").
				With("field", "router.extra_keywords").
				With("index", i).
				Errorf("router keywords must not be blank")
		}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
