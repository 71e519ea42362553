// Package config persists the CLI's display preferences between runs:
// the probability-heatmap color theme, whether the live watch view comes
// up by default, and the default board input path.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Theme selects the probability-heatmap color scheme.
type Theme string

const (
	ThemeHeatmap Theme = "heatmap" // go-colorful green->red BlendLuv gradient
	ThemeMono    Theme = "mono"    // one flat grey for every probability
	ThemeMatrix  Theme = "matrix"  // single-hue intensity ramp
)

// Config stores user preferences persisted to disk.
type Config struct {
	Theme          Theme  `json:"theme"`
	WatchByDefault bool   `json:"watch_by_default"`
	DefaultInput   string `json:"default_input"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Theme:          ThemeHeatmap,
		WatchByDefault: false,
		DefaultInput:   "minesweeper.inp",
	}
}

// Store manages settings persistence.
type Store struct {
	path   string
	Config Config
}

// Load reads settings from the default location.
func Load() (*Store, error) {
	return LoadFrom("")
}

// LoadFrom reads settings from a specific path. If path is empty, uses
// ~/.mineprobe/settings.json.
func LoadFrom(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			c := DefaultConfig()
			return &Store{Config: c}, err
		}
		path = filepath.Join(home, ".mineprobe", "settings.json")
	}

	s := &Store{path: path, Config: DefaultConfig()}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from UserHomeDir or test-controlled input
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}

	if err := json.Unmarshal(data, &s.Config); err != nil {
		return s, err
	}
	s.normalize()
	return s, nil
}

// Save writes the settings to disk.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// normalize ensures all config values are valid, falling back to defaults.
func (s *Store) normalize() {
	switch s.Config.Theme {
	case ThemeHeatmap, ThemeMono, ThemeMatrix:
	default:
		s.Config.Theme = ThemeHeatmap
	}
	if s.Config.DefaultInput == "" {
		s.Config.DefaultInput = "minesweeper.inp"
	}
}
