// Package config loads game settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid config")

// Config holds every tunable setting.
type Config struct {
	Loop      Loop      `toml:"loop"`
	Game      Game      `toml:"game"`
	Log       Log       `toml:"log"`
	Telemetry Telemetry `toml:"telemetry"`
	Audio     Audio     `toml:"audio"`
}

// Loop controls the fixed-step frame loop.
type Loop struct {
	// TickRate is the number of simulation frames per second.
	TickRate int `toml:"tick_rate"`
	// MaxCatchupFrames bounds how many frames run after a stall.
	MaxCatchupFrames int `toml:"max_catchup_frames"`
	// TimeDilation scales the game time stream.
	TimeDilation float64 `toml:"time_dilation"`
}

// Game holds world setup options.
type Game struct {
	// Seed for random number generation. A seed of 0 means a random seed.
	Seed          int64 `toml:"seed"`
	CreatureCount int   `toml:"creature_count"`
	// Script is the patrol behaviour for creatures that name none. Empty
	// means the built-in patrol.
	Script string `toml:"script"`
	// ScriptDir is searched for *.lua files after the embedded scripts.
	ScriptDir string `toml:"script_dir"`
	// Headless runs without a terminal screen.
	Headless bool `toml:"headless"`
	// MaxFrames stops the loop after this many frames. 0 means unbounded.
	MaxFrames int `toml:"max_frames"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Telemetry controls OpenTelemetry tracing.
type Telemetry struct {
	Enabled      bool   `toml:"enabled"`
	ServiceName  string `toml:"service_name"`
	SampleFrames int    `toml:"sample_frames"`
}

// Audio controls the cue mixer.
type Audio struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Loop: Loop{
			TickRate:         60,
			MaxCatchupFrames: 5,
			TimeDilation:     1,
		},
		Game: Game{
			CreatureCount: 3,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Telemetry: Telemetry{
			ServiceName:  "corun",
			SampleFrames: 60,
		},
		Audio: Audio{
			SampleRate: 44100,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Loop.TickRate <= 0:
		return fmt.Errorf("%w: loop.tick_rate must be positive, got %d", ErrInvalid, c.Loop.TickRate)
	case c.Loop.MaxCatchupFrames < 1:
		return fmt.Errorf("%w: loop.max_catchup_frames must be at least 1, got %d", ErrInvalid, c.Loop.MaxCatchupFrames)
	case c.Loop.TimeDilation < 0:
		return fmt.Errorf("%w: loop.time_dilation must not be negative, got %g", ErrInvalid, c.Loop.TimeDilation)
	case c.Game.CreatureCount < 0:
		return fmt.Errorf("%w: game.creature_count must not be negative, got %d", ErrInvalid, c.Game.CreatureCount)
	case c.Game.MaxFrames < 0:
		return fmt.Errorf("%w: game.max_frames must not be negative, got %d", ErrInvalid, c.Game.MaxFrames)
	case c.Log.Format != "text" && c.Log.Format != "json":
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	case c.Telemetry.SampleFrames < 1:
		return fmt.Errorf("%w: telemetry.sample_frames must be at least 1, got %d", ErrInvalid, c.Telemetry.SampleFrames)
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: audio.sample_rate must be positive, got %d", ErrInvalid, c.Audio.SampleRate)
	}
	return nil
}

// FrameDT returns the fixed simulation step in seconds.
func (c *Config) FrameDT() float64 {
	return 1 / float64(c.Loop.TickRate)
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
