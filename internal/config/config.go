package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Setting keys. Command-line flags use the same names.
const (
	KeyDisplay         = "display"
	KeyCapacity        = "capacity"
	KeyStartupAttempts = "startup-attempts"
	KeyStartupInterval = "startup-interval"
	KeyLogLevel        = "log-level"
)

// Keys lists every setting in display order.
var Keys = []string{KeyDisplay, KeyCapacity, KeyStartupAttempts, KeyStartupInterval, KeyLogLevel}

// envVars maps environment variables to setting keys, in the order of Keys.
var envVars = []struct {
	env string
	key string
}{
	{"DISPLAY", KeyDisplay},
	{"MINWM_CAPACITY", KeyCapacity},
	{"MINWM_STARTUP_ATTEMPTS", KeyStartupAttempts},
	{"MINWM_STARTUP_INTERVAL", KeyStartupInterval},
	{"MINWM_LOG_LEVEL", KeyLogLevel},
}

const maxCapacity = 65535

// Source records where a setting's value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Config is the window manager's runtime configuration.
type Config struct {
	// Display is the X display name; empty means $DISPLAY.
	Display string `yaml:"display"`
	// Capacity bounds the window registry, root slot included.
	Capacity        int           `yaml:"capacity"`
	StartupAttempts int           `yaml:"startup_attempts"`
	StartupInterval time.Duration `yaml:"startup_interval"`
	LogLevel        string        `yaml:"log_level"`

	sources map[string]Source
}

// ValidationError describes a setting that failed to parse or validate.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source != "" && e.Source != SourceDefault {
		return fmt.Sprintf("%s (from %s): %v", e.Path, e.Source, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Display:         "",
		Capacity:        256,
		StartupAttempts: 21,
		StartupInterval: 100 * time.Millisecond,
		LogLevel:        "info",
		sources:         make(map[string]Source),
	}
}

// FromEnv builds a configuration from the defaults and the environment.
// lookup is usually os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()
	for _, v := range envVars {
		value, ok := lookup(v.env)
		if !ok || value == "" {
			continue
		}
		if err := cfg.Set(v.key, value, SourceEnv); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				ve.Path = v.env
			}
			return nil, err
		}
	}
	return cfg, nil
}

// Set parses value into the setting named key and records its source.
func (c *Config) Set(key, value string, src Source) error {
	value = strings.TrimSpace(value)
	fail := func(err error) error {
		return &ValidationError{Path: key, Source: src, Err: err}
	}

	switch key {
	case KeyDisplay:
		c.Display = value
	case KeyCapacity:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fail(fmt.Errorf("capacity must be an integer"))
		}
		c.Capacity = n
	case KeyStartupAttempts:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fail(fmt.Errorf("startup attempts must be an integer"))
		}
		c.StartupAttempts = n
	case KeyStartupInterval:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fail(fmt.Errorf("startup interval must be a duration such as 100ms"))
		}
		c.StartupInterval = d
	case KeyLogLevel:
		c.LogLevel = strings.ToLower(value)
	default:
		return fail(fmt.Errorf("unknown setting"))
	}

	if c.sources == nil {
		c.sources = make(map[string]Source)
	}
	c.sources[key] = src
	return nil
}

// SourceOf reports where a setting came from.
func (c *Config) SourceOf(key string) Source {
	if src, ok := c.sources[key]; ok {
		return src
	}
	return SourceDefault
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Capacity < 2 || c.Capacity > maxCapacity {
		return &ValidationError{Path: KeyCapacity, Source: c.SourceOf(KeyCapacity),
			Err: fmt.Errorf("capacity must be between 2 and %d", maxCapacity)}
	}
	if c.StartupAttempts < 1 {
		return &ValidationError{Path: KeyStartupAttempts, Source: c.SourceOf(KeyStartupAttempts),
			Err: fmt.Errorf("startup attempts must be at least 1")}
	}
	if c.StartupInterval <= 0 {
		return &ValidationError{Path: KeyStartupInterval, Source: c.SourceOf(KeyStartupInterval),
			Err: fmt.Errorf("startup interval must be positive")}
	}
	if _, err := c.Level(); err != nil {
		return &ValidationError{Path: KeyLogLevel, Source: c.SourceOf(KeyLogLevel),
			Err: fmt.Errorf("log level must be one of: debug, info, warn, error")}
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// Setting is one configuration value with its origin, for display.
type Setting struct {
	Key    string `yaml:"key" json:"key"`
	Value  string `yaml:"value" json:"value"`
	Source Source `yaml:"source" json:"source"`
}

// Explain lists every setting with its current value and source.
func (c *Config) Explain() []Setting {
	out := make([]Setting, 0, len(Keys))
	for _, key := range Keys {
		out = append(out, Setting{Key: key, Value: c.value(key), Source: c.SourceOf(key)})
	}
	return out
}

func (c *Config) value(key string) string {
	switch key {
	case KeyDisplay:
		return c.Display
	case KeyCapacity:
		return strconv.Itoa(c.Capacity)
	case KeyStartupAttempts:
		return strconv.Itoa(c.StartupAttempts)
	case KeyStartupInterval:
		return c.StartupInterval.String()
	case KeyLogLevel:
		return c.LogLevel
	}
	return ""
}
