package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config errored: %v", err)
	}
	if cfg.Keys.Next != Default().Keys.Next {
		t.Errorf("expected default bindings, got %q", cfg.Keys.Next)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
keys:
  next: "Mod1-Tab"
  modifier: "mod1"
layout:
  width_percent: 80
  task_height: 24
marker: "*"
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Keys.Next != "Mod1-Tab" {
		t.Errorf("next binding not overridden: %q", cfg.Keys.Next)
	}
	if cfg.Layout.WidthPercent != 80 {
		t.Errorf("width_percent not overridden: %d", cfg.Layout.WidthPercent)
	}
	if cfg.Marker != "*" {
		t.Errorf("marker not overridden: %q", cfg.Marker)
	}
	// Untouched keys keep their defaults.
	if cfg.Keys.Prev != Default().Keys.Prev {
		t.Errorf("prev binding lost its default: %q", cfg.Keys.Prev)
	}
	if cfg.Layout.Gap != Default().Layout.Gap {
		t.Errorf("gap lost its default: %d", cfg.Layout.Gap)
	}
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := writeConfig(t, "keys: [not a map")
	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"width too high", func(c *Config) { c.Layout.WidthPercent = 101 }, "width_percent"},
		{"width zero", func(c *Config) { c.Layout.WidthPercent = 0 }, "width_percent"},
		{"location negative", func(c *Config) { c.Layout.LocationPercent = -1 }, "location_percent"},
		{"task height zero", func(c *Config) { c.Layout.TaskHeight = 0 }, "task_height"},
		{"gap negative", func(c *Config) { c.Layout.Gap = -2 }, "gap"},
		{"empty next", func(c *Config) { c.Keys.Next = "" }, "keys.next"},
		{"empty modifier", func(c *Config) { c.Keys.Modifier = "" }, "keys.modifier"},
		{"bad color", func(c *Config) { c.Colors.Background = "red" }, "colors.background"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"#ffffff", 0xffffff, false},
		{"#1f2933", 0x1f2933, false},
		{"000000", 0x000000, false},
		{" #3498db ", 0x3498db, false},
		{"#fff", 0, true},
		{"#gggggg", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Marker = "->"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Marker != "->" {
		t.Errorf("marker lost in round trip: %q", loaded.Marker)
	}
}
