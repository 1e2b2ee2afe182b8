package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"

	"github.com/rendis/flowedit/internal/canvas"
	"github.com/rendis/flowedit/internal/validation"
)

// Config holds all flowedit host configuration.
// Priority: env vars > settings.toml > defaults.
type Config struct {
	LogLevel      string  `toml:"log_level"`
	LogFormat     string  `toml:"log_format"`
	LogFile       string  `toml:"log_file"`
	GridSize      float64 `toml:"grid_size"`
	Width         float64 `toml:"width"`
	Height        float64 `toml:"height"`
	StraightLinks bool    `toml:"straight_links"`
	EventBuffer   int     `toml:"event_buffer"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:    "info",
		LogFormat:   "text",
		LogFile:     filepath.Join(floweditDir(), "flowedit.log"),
		GridSize:    canvas.DefaultGridSize,
		Width:       canvas.DefaultWidth,
		Height:      canvas.DefaultHeight,
		EventBuffer: 64,
	}
}

func floweditDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowedit"
	}
	return filepath.Join(home, ".flowedit")
}

func settingsPath() string {
	return filepath.Join(floweditDir(), "settings.toml")
}

// loadConfig layers the settings file at path (the default location when
// empty) and FLOWEDIT_* env vars over the defaults. A missing file is not
// an error; a file that fails the settings schema is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		path = settingsPath()
	}

	// Layer 2: settings.toml.
	if err := decodeSettings(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load %s: %w", path, err)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("FLOWEDIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLOWEDIT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("FLOWEDIT_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("FLOWEDIT_GRID_SIZE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.GridSize = f
		}
	}
	if v := os.Getenv("FLOWEDIT_WIDTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Width = f
		}
	}
	if v := os.Getenv("FLOWEDIT_HEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Height = f
		}
	}
	if v := os.Getenv("FLOWEDIT_STRAIGHT_LINKS"); v != "" {
		cfg.StraightLinks = v == "true" || v == "1"
	}
	if v := os.Getenv("FLOWEDIT_EVENT_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EventBuffer = n
		}
	}

	return cfg, nil
}

func decodeSettings(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return err
	}
	v, err := validation.NewSettingsValidator()
	if err != nil {
		return err
	}
	if err := v.Validate(doc); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "toml",
		Result:  cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(doc)
}

// canvasOptions maps the configuration onto canvas options.
func (c Config) canvasOptions() []canvas.Option {
	opts := []canvas.Option{
		canvas.WithGridSize(c.GridSize),
		canvas.WithExtent(c.Width, c.Height),
	}
	if c.StraightLinks {
		opts = append(opts, canvas.WithStraightLinks())
	}
	return opts
}
