// Package config loads the fwgraph configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"firewall-network-graph/internal/layout"
	"firewall-network-graph/internal/parser"
)

type Config struct {
	Listen string       `yaml:"listen" validate:"required,hostname_port"`
	Source SourceConfig `yaml:"source"`
	Canvas CanvasConfig `yaml:"canvas"`
	Layout LayoutConfig `yaml:"layout"`
	Watch  WatchConfig  `yaml:"watch"`
	Log    LogConfig    `yaml:"log"`
}

// SourceConfig selects the record source. A non-empty DSN wins over Path.
type SourceConfig struct {
	Path   string `yaml:"path" validate:"required_without=DSN"`
	Format string `yaml:"format" validate:"omitempty,oneof=auto xlsx csv fortigate"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table" validate:"required_with=DSN"`
}

type CanvasConfig struct {
	Width        float64 `yaml:"width" validate:"gt=0"`
	Height       float64 `yaml:"height" validate:"gt=0"`
	NodeRadius   float64 `yaml:"node_radius" validate:"gt=0"`
	LinkDistance float64 `yaml:"link_distance" validate:"gt=0"`
	Charge       float64 `yaml:"charge" validate:"lt=0"`
}

type LayoutConfig struct {
	Mode string `yaml:"mode" validate:"omitempty,oneof=global zone"`
}

type WatchConfig struct {
	Enabled       *bool         `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval" validate:"gt=0"`
	NoticeTimeout time.Duration `yaml:"notice_timeout" validate:"gt=0"`
}

// IsEnabled treats an unset flag as enabled.
func (w WatchConfig) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
	File   string `yaml:"file"`
}

func Default() Config {
	enabled := true
	return Config{
		Listen: ":3000",
		Source: SourceConfig{
			Path:   "firewall.xlsx",
			Format: string(parser.FormatAuto),
			Table:  "firewall_rules",
		},
		Canvas: CanvasConfig{
			Width:        800,
			Height:       600,
			NodeRadius:   12,
			LinkDistance: 300,
			Charge:       -1500,
		},
		Layout: LayoutConfig{Mode: string(layout.ModeGlobal)},
		Watch: WatchConfig{
			Enabled:       &enabled,
			Interval:      30 * time.Second,
			NoticeTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "INFO", Format: "json"},
	}
}

// Load reads path, fills every unset field from Default and validates the
// result. An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("merging config defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LayoutConfig is the canvas section as layout tuning.
func (c Config) LayoutConfig() layout.Config {
	return layout.Config{
		Width:        c.Canvas.Width,
		Height:       c.Canvas.Height,
		NodeRadius:   c.Canvas.NodeRadius,
		LinkDistance: c.Canvas.LinkDistance,
		Charge:       c.Canvas.Charge,
	}
}

func (c Config) LayoutMode() (layout.Mode, error) {
	return layout.ParseMode(c.Layout.Mode)
}

// NewSource opens the configured record source. The returned close func is
// never nil.
func (c Config) NewSource() (parser.Source, func() error, error) {
	if c.Source.DSN != "" {
		src, err := parser.NewMariaDBSource(c.Source.DSN, c.Source.Table)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
	src := parser.NewFileSource(c.Source.Path, parser.Format(c.Source.Format))
	return src, func() error { return nil }, nil
}
