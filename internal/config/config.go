package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`

	// Record, when set, names a file that all sign traffic is written to.
	Record string `yaml:"record"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Port          string `yaml:"port"`
	Driver        string `yaml:"driver"` // "bugst" or "tarm"
	Mock          bool   `yaml:"mock"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
	RateLimitMs   int    `yaml:"rate_limit_ms"`
}

// ---- DISPLAY ----

type DisplayConfig struct {
	Mode       string `yaml:"mode"` // "fixed" or "target"
	Fixed      *int   `yaml:"fixed"`
	Target     *int   `yaml:"target"` // annual target
	IntervalMs int    `yaml:"interval_ms"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"

	ModeFixed  = "fixed"
	ModeTarget = "target"

	FormatConsole = "console"
	FormatJSON    = "json"
)

// Load reads a YAML config file. An empty path yields an empty config,
// which Normalize fills with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, rejecting unknown keys.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}
