// Package config loads the application configuration from defaults, an
// optional toml file, an optional .env file and the process environment,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("invalid configuration")

var Backends = []string{"all", "primary", "secondary", "vulkan", "metal", "dx12", "gl"}
var PowerPreferences = []string{"", "low", "high"}
var Indexings = []string{"uniform", "non_uniform"}
var Profiles = []string{"", "cpu", "mem"}
var LogLevels = []string{"debug", "info", "warn", "error"}

// MaxTextureSlots limits the number of texture slots a renderer may declare.
const MaxTextureSlots = 16

type Config struct {
	Window   Window   `toml:"window"`
	Graphics Graphics `toml:"graphics"`
	Renderer Renderer `toml:"renderer"`
	Log      Log      `toml:"log"`

	// Profile enables profiling, either "cpu" or "mem".
	Profile string `toml:"profile"`
}

type Window struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

type Graphics struct {
	Backend              string `toml:"backend"`
	PowerPreference      string `toml:"power_preference"`
	AdapterName          string `toml:"adapter_name"`
	ForceFallbackAdapter bool   `toml:"force_fallback_adapter"`
	TracePath            string `toml:"trace_path"`
	LogLevel             string `toml:"log_level"`
}

type Renderer struct {
	Indexing    string     `toml:"indexing"`
	MaxTextures uint32     `toml:"max_textures"`
	ShaderPath  string     `toml:"shader"`
	ClearColor  [4]float32 `toml:"clear_color"`
}

type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

func Default() Config {
	return Config{
		Window: Window{
			Title:     "tessel",
			Width:     800,
			Height:    600,
			Resizable: true,
		},
		Graphics: Graphics{
			Backend: "primary",
		},
		Renderer: Renderer{
			Indexing:    "uniform",
			MaxTextures: 2,
			ClearColor:  [4]float32{0, 0, 0, 1},
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads the configuration. The toml file at path is optional, pass an
// empty path to skip it. Variables in dotenv are merged below the process environment,
// a missing dotenv file is not an error.
func Load(path string, dotenv string) (Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}

		if err := toml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	vars := map[string]string{}

	if dotenv != "" {
		parsed, err := godotenv.Read(dotenv)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// no .env file
		case err != nil:
			return Config{}, fmt.Errorf("read %q: %w", dotenv, err)
		default:
			vars = parsed
		}
	}

	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}

		value, ok := vars[key]
		return value, ok
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	check := func(name, value string, allowed []string) {
		if !slices.Contains(allowed, value) {
			errs = append(errs, fmt.Errorf("%w: %s must be one of %q, got %q", ErrInvalid, name, allowed, value))
		}
	}

	check("graphics.backend", c.Graphics.Backend, Backends)
	check("graphics.power_preference", c.Graphics.PowerPreference, PowerPreferences)
	check("renderer.indexing", c.Renderer.Indexing, Indexings)
	check("log.level", c.Log.Level, LogLevels)
	check("profile", c.Profile, Profiles)

	if c.Renderer.MaxTextures == 0 || c.Renderer.MaxTextures > MaxTextureSlots {
		errs = append(errs, fmt.Errorf("%w: renderer.max_textures must be in [1, %d], got %d",
			ErrInvalid, MaxTextureSlots, c.Renderer.MaxTextures))
	}

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size must be positive, got %dx%d",
			ErrInvalid, c.Window.Width, c.Window.Height))
	}

	return errors.Join(errs...)
}
