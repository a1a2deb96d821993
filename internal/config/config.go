// Package config loads rail-engine configuration.
//
// Configuration is read from a single YAML file named by the --config flag or
// the RAIL_ENGINE_CONFIG environment variable. There is no automatic
// discovery; without a file every value comes from Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cxd309/rail-engine/internal/curve"
	"github.com/cxd309/rail-engine/internal/rail"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "RAIL_ENGINE_CONFIG"

// Config is the full configuration.
type Config struct {
	// RailRoot is the directory baked rail IDs are resolved against.
	RailRoot string `yaml:"rail_root"`

	// Granularity is the rail spline node spacing, seconds.
	Granularity float64 `yaml:"granularity"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Curve configures the default constant-speed curve builder.
	Curve curve.ConstSpeed `yaml:"curve"`

	// Simulation configures follower simulation defaults.
	Simulation SimulationConfig `yaml:"simulation"`
}

// SimulationConfig holds follower simulation defaults.
type SimulationConfig struct {
	// TimeStep is used when a simulation input does not set one, seconds.
	TimeStep float64 `yaml:"time_step"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RailRoot:    ".",
		Granularity: rail.DefaultGranularity,
		LogLevel:    "info",
		Curve:       curve.NewConstSpeed(),
		Simulation:  SimulationConfig{TimeStep: 0.1},
	}
}

// Path returns the config path to use: flagValue if set, otherwise EnvVar.
// An empty result means no config file.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvVar)
}

// Load reads path over Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data over cfg and validates the result. Unknown keys
// are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate checks every field, naming the offending key.
func (c Config) Validate() error {
	if c.RailRoot == "" {
		return errors.New("rail_root must not be empty")
	}
	if !(c.Granularity > 0) {
		return fmt.Errorf("granularity must be positive, got %g", c.Granularity)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Curve.DefaultSpeed < 0 {
		return fmt.Errorf("curve.default_speed must not be negative, got %g", c.Curve.DefaultSpeed)
	}
	if c.Curve.DefaultReliableDistance < 0 {
		return fmt.Errorf("curve.reliable_distance must not be negative, got %g", c.Curve.DefaultReliableDistance)
	}
	if !(c.Simulation.TimeStep > 0) {
		return fmt.Errorf("simulation.time_step must be positive, got %g", c.Simulation.TimeStep)
	}
	return nil
}

// ParseLevel maps a log_level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}
