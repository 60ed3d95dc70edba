// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all agenda configuration.
type Config struct {
	Storage Storage `yaml:"storage"`
	Log     Log     `yaml:"log"`
	UI      UI      `yaml:"ui"`
}

// Storage selects the persistence backend and where it keeps data.
type Storage struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Dir     string `yaml:"dir"`
	Key     string `yaml:"key"`
}

// Log holds logger settings.
type Log struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file"`  // Empty: stderr for commands, discarded by the TUI.
}

// UI holds terminal UI settings.
type UI struct {
	AltScreen bool `yaml:"alt_screen"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			Backend: "file",
			Dir:     ".agenda",
			Key:     "contacts",
		},
		Log: Log{
			Level: "warn",
		},
		UI: UI{
			AltScreen: true,
		},
	}
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped; invalid YAML
// or unknown fields are an error.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite", "memory":
		// valid
	default:
		return fmt.Errorf("config: storage.backend must be \"file\", \"sqlite\" or \"memory\", got %q", c.Storage.Backend)
	}
	if c.Storage.Dir == "" && c.Storage.Backend != "memory" {
		return errors.New("config: storage.dir cannot be empty")
	}
	if c.Storage.Key == "" {
		return errors.New("config: storage.key cannot be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: AGENDA_BACKEND, AGENDA_DIR, AGENDA_LOG_LEVEL, AGENDA_LOG_FILE.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("AGENDA_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("AGENDA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("AGENDA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AGENDA_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage *rawStorage `yaml:"storage"`
	Log     *rawLog     `yaml:"log"`
	UI      *rawUI      `yaml:"ui"`
}

type rawStorage struct {
	Backend *string `yaml:"backend"`
	Dir     *string `yaml:"dir"`
	Key     *string `yaml:"key"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

type rawUI struct {
	AltScreen *bool `yaml:"alt_screen"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if s := layer.Storage; s != nil {
		if s.Backend != nil {
			c.Storage.Backend = *s.Backend
		}
		if s.Dir != nil {
			c.Storage.Dir = *s.Dir
		}
		if s.Key != nil {
			c.Storage.Key = *s.Key
		}
	}
	if l := layer.Log; l != nil {
		if l.Level != nil {
			c.Log.Level = *l.Level
		}
		if l.File != nil {
			c.Log.File = *l.File
		}
	}
	if u := layer.UI; u != nil {
		if u.AltScreen != nil {
			c.UI.AltScreen = *u.AltScreen
		}
	}
}
