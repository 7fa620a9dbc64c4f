package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"go-apcmini/apc"
	"go-apcmini/grid"
	"go-apcmini/protocol"
)

// ControllersConfig controls discovery and id assignment.
type ControllersConfig struct {
	Max         int    `yaml:"max"`
	ManualIDs   bool   `yaml:"manual_ids"`
	PortPrefix  string `yaml:"port_prefix,omitempty"` // empty means the platform default
	Orientation string `yaml:"orientation,omitempty"`
}

// EffectsConfig sets the tempo all pad effects follow.
type EffectsConfig struct {
	BPM float64 `yaml:"bpm"`
}

// AnimationsConfig sets how long the id selector intro and outro play.
type AnimationsConfig struct {
	IntroMS int `yaml:"intro_ms"`
	OutroMS int `yaml:"outro_ms"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Controllers ControllersConfig `yaml:"controllers"`
	Effects     EffectsConfig     `yaml:"effects"`
	Animations  AnimationsConfig  `yaml:"animations"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controllers: ControllersConfig{
			Max:         1,
			Orientation: grid.Default.String(),
		},
		Effects: EffectsConfig{
			BPM: apc.DefaultBPM,
		},
		Animations: AnimationsConfig{
			IntroMS: 1000,
			OutroMS: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "apcmini"), nil
}

// ConfigPath returns the full path to config.yaml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default path, or returns defaults if there
// is no file yet.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadFile reads a YAML config on top of the defaults. Unknown fields and
// trailing documents are rejected.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config yaml: %w", err)
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode config yaml: unexpected trailing document")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks config invariants and returns a user-friendly error.
func (c *Config) Validate() error {
	if c.Controllers.Max < 1 {
		return errors.New("controllers.max must be >= 1")
	}
	if c.Controllers.ManualIDs && c.Controllers.Max > protocol.Buttons {
		return fmt.Errorf("controllers.max must be <= %d with manual_ids", protocol.Buttons)
	}
	if _, err := grid.ParseOrientation(c.Controllers.Orientation); err != nil {
		return fmt.Errorf("controllers.orientation: %w", err)
	}
	if c.Effects.BPM <= 0 {
		return errors.New("effects.bpm must be > 0")
	}
	if c.Animations.IntroMS < 0 || c.Animations.OutroMS < 0 {
		return errors.New("animations durations must be >= 0")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

func (a AnimationsConfig) Intro() time.Duration {
	return time.Duration(a.IntroMS) * time.Millisecond
}

func (a AnimationsConfig) Outro() time.Duration {
	return time.Duration(a.OutroMS) * time.Millisecond
}

// Options converts the file config into controller options. Transport and
// timing fields are left for the caller.
func (c *Config) Options() (apc.Options, error) {
	o, err := grid.ParseOrientation(c.Controllers.Orientation)
	if err != nil {
		return apc.Options{}, fmt.Errorf("controllers.orientation: %w", err)
	}
	return apc.Options{
		MaxControllers: c.Controllers.Max,
		ManualIDs:      c.Controllers.ManualIDs,
		Orientation:    o,
		BPM:            c.Effects.BPM,
		PortPrefix:     c.Controllers.PortPrefix,
	}, nil
}
