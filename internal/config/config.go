package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/triage-ai/triage/internal/normalize"
)

// Config holds triage service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Input     InputConfig     `yaml:"input"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Directory DirectoryConfig `yaml:"directory"`
	Audit     AuditConfig     `yaml:"audit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"` // HTTP listen address, e.g. ":8080"
}

type InputConfig struct {
	MaxLength int `yaml:"max_length"` // maximum symptom text length in runes
}

type CatalogConfig struct {
	Path  string `yaml:"path"`  // YAML rule catalog; empty selects the built-in rules
	Watch bool   `yaml:"watch"` // hot-reload the catalog file on change
}

type DirectoryConfig struct {
	Path string `yaml:"path"` // YAML service directory; empty selects the built-in one
}

type AuditConfig struct {
	Sinks []SinkConfig `yaml:"sinks"`
}

type SinkConfig struct {
	Type string `yaml:"type"` // file_jsonl | log
	Path string `yaml:"path"` // required for file_jsonl
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug | info | warn | error
	Development bool   `yaml:"development"`
}

// Load reads configuration from a YAML file.
// If the file doesn't exist, it returns a default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Input.MaxLength == 0 {
		cfg.Input.MaxLength = normalize.DefaultMaxRunes
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if len(cfg.Audit.Sinks) == 0 {
		cfg.Audit.Sinks = []SinkConfig{{Type: "log"}}
	}
}
