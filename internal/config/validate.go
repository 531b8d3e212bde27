package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the loaded config for required fields and safe values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if cfg.Input.MaxLength <= 0 {
		return errors.New("input.max_length must be positive")
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", cfg.Logging.Level)
	}

	for i, s := range cfg.Audit.Sinks {
		switch strings.ToLower(strings.TrimSpace(s.Type)) {
		case "file_jsonl":
			if strings.TrimSpace(s.Path) == "" {
				return fmt.Errorf("audit sink %d (file_jsonl) missing path", i)
			}
		case "log":
		default:
			return fmt.Errorf("audit sink %d has unknown type %q", i, s.Type)
		}
	}

	if cfg.Catalog.Watch && strings.TrimSpace(cfg.Catalog.Path) == "" {
		return errors.New("catalog.watch requires catalog.path")
	}

	return nil
}
