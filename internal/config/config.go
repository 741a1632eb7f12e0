package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const appName = "wayfind"

// Config is the persisted application configuration. Environment variables
// with the WAYFIND_ prefix override file values (WAYFIND_API_KEY etc.), and
// GOOGLE_PLACES_API_KEY is honored as the conventional key variable.
type Config struct {
	APIKey         string         `koanf:"api_key" yaml:"api_key,omitempty"`
	TimeoutSeconds int            `koanf:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
	Location       LocationConfig `koanf:"location" yaml:"location,omitempty"`
	Server         ServerConfig   `koanf:"server" yaml:"server,omitempty"`
}

// LocationConfig is a saved default location for searches.
type LocationConfig struct {
	DefaultLat    *float64 `koanf:"default_lat" yaml:"default_lat,omitempty"`
	DefaultLng    *float64 `koanf:"default_lng" yaml:"default_lng,omitempty"`
	DefaultRadius *float64 `koanf:"default_radius" yaml:"default_radius,omitempty"`
	Label         string   `koanf:"label" yaml:"label,omitempty"`
}

// ServerConfig holds serve-mode settings.
type ServerConfig struct {
	Port int `koanf:"port" yaml:"port,omitempty"`
}

// Load reads the config file (missing file is fine) and applies
// environment overrides.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := Path(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("could not read config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider("WAYFIND_", ".", func(s string) string {
		switch s {
		case "WAYFIND_API_KEY":
			return "api_key"
		case "WAYFIND_TIMEOUT_SECONDS":
			return "timeout_seconds"
		case "WAYFIND_SERVER_PORT":
			return "server.port"
		}
		return ""
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not read environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GOOGLE_PLACES_API_KEY")
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 10
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}

	return cfg, nil
}

// Save writes the config file, creating the directory if needed. The API
// key is not persisted; it belongs in the environment.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return fmt.Errorf("could not determine config directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	persisted := *c
	persisted.APIKey = ""

	contents, err := yamlv3.Marshal(&persisted)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}
	return nil
}

// SetLocation records a default location.
func (c *Config) SetLocation(lat, lng float64, radius *float64, label string) {
	c.Location = LocationConfig{
		DefaultLat:    &lat,
		DefaultLng:    &lng,
		DefaultRadius: radius,
		Label:         label,
	}
}

// ClearLocation removes the default location.
func (c *Config) ClearLocation() {
	c.Location = LocationConfig{}
}

// DefaultLocation returns the saved location if both coordinates are set.
func (c *Config) DefaultLocation() (lat, lng float64, ok bool) {
	if c.Location.DefaultLat != nil && c.Location.DefaultLng != nil {
		return *c.Location.DefaultLat, *c.Location.DefaultLng, true
	}
	return 0, 0, false
}

// DefaultRadius returns the saved radius or a 1 km fallback.
func (c *Config) DefaultRadius() float64 {
	if c.Location.DefaultRadius != nil {
		return *c.Location.DefaultRadius
	}
	return 1000
}

// Path returns the config file location, ~/.config/wayfind/config.yaml on
// most systems.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.yaml")
}
