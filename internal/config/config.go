// Package config loads runtime settings and static scene property data
// from a YAML file, with environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/homestead/internal/grid"
	"github.com/talgya/homestead/internal/scene"
)

// ErrNoScenes is returned when a config defines no scenes.
var ErrNoScenes = errors.New("no scenes configured")

// Save backends.
const (
	BackendSQLite = "sqlite"
	BackendGdata  = "gdata"
	BackendNone   = "none"
)

// Scene is the static property data for one scene.
type Scene struct {
	Name       string             `yaml:"name"`
	Properties []grid.ConfigEntry `yaml:"properties"`
	Generate   *Generator         `yaml:"generate,omitempty"`
}

// Config holds everything the farmsim binary needs at startup.
type Config struct {
	LogLevel      string        `yaml:"log_level"`
	DBPath        string        `yaml:"db_path"`
	SaveBackend   string        `yaml:"save_backend"`
	GdataApp      string        `yaml:"gdata_app"`
	APIPort       int           `yaml:"api_port"`
	TickInterval  time.Duration `yaml:"tick_interval"`
	Speed         float64       `yaml:"speed"`
	Terminal      bool          `yaml:"terminal"` // draw decoration on the controlling terminal
	StartingScene string        `yaml:"starting_scene"`
	Scenes        []Scene       `yaml:"scenes"`

	// AdminKey is the bearer token for admin POSTs. Environment only.
	AdminKey string `yaml:"-"`
}

// Default returns a usable configuration with one generated farm scene.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		DBPath:        "data/homestead.db",
		SaveBackend:   BackendSQLite,
		GdataApp:      "homestead",
		APIPort:       8080,
		TickInterval:  time.Second,
		Speed:         1,
		StartingScene: "Farm",
		Scenes: []Scene{
			{
				Name: "Farm",
				Generate: &Generator{
					Width:     24,
					Height:    16,
					Seed:      42,
					Threshold: 0.45,
					Flag:      string(grid.FlagDiggable),
				},
			},
		},
	}
}

// Load reads a YAML config from path on top of Default, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from HOMESTEAD_* environment variables.
func (c *Config) ApplyEnv() {
	c.AdminKey = os.Getenv("HOMESTEAD_ADMIN_KEY")
	c.DBPath = envOrDefault("HOMESTEAD_DB", c.DBPath)
	c.APIPort = envIntOrDefault("HOMESTEAD_PORT", c.APIPort)
}

// Validate checks the scene list and backend selection.
func (c *Config) Validate() error {
	if len(c.Scenes) == 0 {
		return ErrNoScenes
	}
	seen := make(map[string]bool, len(c.Scenes))
	for _, s := range c.Scenes {
		if s.Name == "" {
			return errors.New("scene with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate scene %q", s.Name)
		}
		seen[s.Name] = true
	}
	if c.StartingScene != "" && !seen[c.StartingScene] {
		return fmt.Errorf("starting scene %q is not configured", c.StartingScene)
	}
	switch c.SaveBackend {
	case BackendSQLite, BackendGdata, BackendNone:
	default:
		return fmt.Errorf("unknown save backend %q", c.SaveBackend)
	}
	return nil
}

// Definitions converts the configured scenes into ordered property triples.
// Generated cells come first so explicit properties can override them.
func (c *Config) Definitions() []scene.Definition {
	defs := make([]scene.Definition, 0, len(c.Scenes))
	for _, s := range c.Scenes {
		var entries []grid.ConfigEntry
		if s.Generate != nil {
			entries = append(entries, Generate(*s.Generate)...)
		}
		entries = append(entries, s.Properties...)
		defs = append(defs, scene.Definition{Name: s.Name, Entries: entries})
	}
	return defs
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
