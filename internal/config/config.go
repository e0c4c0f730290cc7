// Package config loads and validates the switcher configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys holds the key bindings. Next and Prev are keybind chord
// sequences; Kill is a bare key pressed while browsing; Modifier names
// the modifier whose release commits the selection.
type Keys struct {
	Next     string `yaml:"next"`
	Prev     string `yaml:"prev"`
	Kill     string `yaml:"kill"`
	Modifier string `yaml:"modifier"`
}

// Layout holds the overlay geometry settings.
type Layout struct {
	WidthPercent    int `yaml:"width_percent"`
	LocationPercent int `yaml:"location_percent"`
	TaskHeight      int `yaml:"task_height"`
	Gap             int `yaml:"gap"`
}

// Colors holds the overlay palette as "#rrggbb" strings. The switcher
// core never interprets these; they pass through to the overlay.
type Colors struct {
	Background         string `yaml:"background"`
	Border             string `yaml:"border"`
	TaskBackground     string `yaml:"task_background"`
	TaskForeground     string `yaml:"task_foreground"`
	SelectedBackground string `yaml:"selected_background"`
	SelectedForeground string `yaml:"selected_foreground"`
	SelectedBorder     string `yaml:"selected_border"`
}

// Config is the full switcher configuration.
type Config struct {
	Keys           Keys   `yaml:"keys"`
	Layout         Layout `yaml:"layout"`
	Colors         Colors `yaml:"colors"`
	Marker         string `yaml:"marker"`
	BorderWidth    int    `yaml:"border_width"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Keys: Keys{
			Next:     "Mod4-Tab",
			Prev:     "Mod4-Shift-Tab",
			Kill:     "d",
			Modifier: "mod4",
		},
		Layout: Layout{
			WidthPercent:    60,
			LocationPercent: 40,
			TaskHeight:      40,
			Gap:             6,
		},
		Colors: Colors{
			Background:         "#1f2933",
			Border:             "#3e4c59",
			TaskBackground:     "#323f4b",
			TaskForeground:     "#e4e7eb",
			SelectedBackground: "#3498db",
			SelectedForeground: "#f5f7fa",
			SelectedBorder:     "#f5f7fa",
		},
		Marker:         ">",
		BorderWidth:    1,
		TimeoutSeconds: 10,
	}
}

// DefaultConfigPath returns ~/.config/goto/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "goto", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates a configuration file. A missing
// file yields the defaults; a malformed or invalid one is an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and color formats.
func (c *Config) Validate() error {
	if c.Layout.WidthPercent < 1 || c.Layout.WidthPercent > 100 {
		return fmt.Errorf("layout.width_percent must be 1-100, got %d", c.Layout.WidthPercent)
	}
	if c.Layout.LocationPercent < 0 || c.Layout.LocationPercent > 100 {
		return fmt.Errorf("layout.location_percent must be 0-100, got %d", c.Layout.LocationPercent)
	}
	if c.Layout.TaskHeight < 1 {
		return fmt.Errorf("layout.task_height must be positive, got %d", c.Layout.TaskHeight)
	}
	if c.Layout.Gap < 0 {
		return fmt.Errorf("layout.gap must be non-negative, got %d", c.Layout.Gap)
	}
	if c.BorderWidth < 0 {
		return fmt.Errorf("border_width must be non-negative, got %d", c.BorderWidth)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be non-negative, got %d", c.TimeoutSeconds)
	}

	if c.Keys.Next == "" {
		return fmt.Errorf("keys.next must not be empty")
	}
	if c.Keys.Prev == "" {
		return fmt.Errorf("keys.prev must not be empty")
	}
	if c.Keys.Modifier == "" {
		return fmt.Errorf("keys.modifier must not be empty")
	}

	colors := []struct {
		name  string
		value string
	}{
		{"colors.background", c.Colors.Background},
		{"colors.border", c.Colors.Border},
		{"colors.task_background", c.Colors.TaskBackground},
		{"colors.task_foreground", c.Colors.TaskForeground},
		{"colors.selected_background", c.Colors.SelectedBackground},
		{"colors.selected_foreground", c.Colors.SelectedForeground},
		{"colors.selected_border", c.Colors.SelectedBorder},
	}
	for _, color := range colors {
		if _, err := ParseColor(color.value); err != nil {
			return fmt.Errorf("%s: %w", color.name, err)
		}
	}

	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ParseColor converts a "#rrggbb" string to an X11 pixel value.
func ParseColor(s string) (uint32, error) {
	value := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(value) != 6 {
		return 0, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	pixel, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(pixel), nil
}
