package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It performs declarative validation only and does not mutate cfg.
func Validate(cfg *Config) error {
	switch cfg.Serial.Driver {
	case "", DriverBugst, DriverTarm:
	default:
		return fmt.Errorf("serial.driver %q: must be %q or %q", cfg.Serial.Driver, DriverBugst, DriverTarm)
	}

	if cfg.Serial.ReadTimeoutMs < 0 {
		return fmt.Errorf("serial.read_timeout_ms must not be negative")
	}
	if cfg.Serial.RateLimitMs < 0 {
		return fmt.Errorf("serial.rate_limit_ms must not be negative")
	}

	switch cfg.Display.Mode {
	case "", ModeTarget:
	case ModeFixed:
		if cfg.Display.Fixed == nil {
			return fmt.Errorf("display.mode %q requires display.fixed", ModeFixed)
		}
	default:
		return fmt.Errorf("display.mode %q: must be %q or %q", cfg.Display.Mode, ModeFixed, ModeTarget)
	}

	if t := cfg.Display.Target; t != nil && *t < 0 {
		return fmt.Errorf("display.target %d: must not be negative", *t)
	}
	if cfg.Display.IntervalMs < 0 {
		return fmt.Errorf("display.interval_ms must not be negative")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch cfg.Log.Format {
	case "", FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("log.format %q: must be %q or %q", cfg.Log.Format, FormatConsole, FormatJSON)
	}

	return nil
}
