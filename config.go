package bramble

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config describes the window and loop of an App.
type Config struct {
	Title     string `json:"title" toml:"title" yaml:"title"`
	Width     int    `json:"width" toml:"width" yaml:"width"`
	Height    int    `json:"height" toml:"height" yaml:"height"`
	FrameRate int    `json:"frameRate" toml:"frame_rate" yaml:"frameRate"`
	// Background is a "#rrggbb" or "#rrggbbaa" color.
	Background string `json:"background" toml:"background" yaml:"background"`
	// SmoothMode selects linear texture filtering instead of nearest.
	SmoothMode bool `json:"smoothMode" toml:"smooth_mode" yaml:"smoothMode"`
	Debug      bool `json:"debug" toml:"debug" yaml:"debug"`
}

// DefaultConfig returns the configuration used for unset fields.
func DefaultConfig() Config {
	return Config{
		Title:      "bramble",
		Width:      800,
		Height:     600,
		FrameRate:  60,
		Background: "#000000",
	}
}

// LoadConfig reads the config file p from fsys. The codec is picked by
// extension: .toml, .yaml/.yml or .json. Zero fields take their defaults.
func LoadConfig(fsys fs.FS, p string) (Config, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return Config{}, &ResourceError{Op: "load config", Path: p, Err: err}
	}
	var cfg Config
	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return Config{}, &ResourceError{Op: "load config", Path: p, Err: err}
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, &ResourceError{Op: "load config", Path: p, Err: err}
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Width == 0 {
		c.Width = d.Width
	}
	if c.Height == 0 {
		c.Height = d.Height
	}
	if c.FrameRate == 0 {
		c.FrameRate = d.FrameRate
	}
	if c.Background == "" {
		c.Background = d.Background
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("invalid frame rate %d", c.FrameRate)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	return nil
}

// BackgroundColor parses Background. An empty value is black.
func (c Config) BackgroundColor() (Color, error) {
	if c.Background == "" {
		return ColorBlack, nil
	}
	return ParseHexColor(c.Background)
}
