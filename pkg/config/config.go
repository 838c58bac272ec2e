// Package config loads slama settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"slama/pkg/text"
)

type Config struct {
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	ScrollbarWidth int    `toml:"scrollbar_width"`
	ScrollStep     int    `toml:"scroll_step"`
	LogLevel       string `toml:"log_level"`
	Scripts        bool   `toml:"scripts"`

	Fonts text.FontConfig `toml:"fonts"`
}

func Default() Config {
	return Config{
		Width:      800,
		Height:     600,
		ScrollStep: 100,
		LogLevel:   "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("parsing config %s: unknown key %s", path, undecoded[0])
	}
	return cfg, cfg.Validate()
}

// ContentWidth is the width available to layout once the scrollbar gutter
// is reserved.
func (c Config) ContentWidth(surfaceWidth int) int {
	return surfaceWidth - c.ScrollbarWidth
}

func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height))
	}
	if c.ScrollbarWidth < 0 || c.ScrollbarWidth >= c.Width {
		errs = append(errs, fmt.Errorf("scrollbar_width %d must be in [0, width)", c.ScrollbarWidth))
	}
	if c.ScrollStep <= 0 {
		errs = append(errs, fmt.Errorf("scroll_step %d must be positive", c.ScrollStep))
	}
	return errors.Join(errs...)
}
