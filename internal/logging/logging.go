// Package logging builds the zerolog logger used by the sign commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel  = "SIGN_LOG_LEVEL"
	EnvLogFormat = "SIGN_LOG_FORMAT"
)

type Config struct {
	Level  string
	Format string // "console" or "json"
}

// New returns a logger writing to w. SIGN_LOG_LEVEL and SIGN_LOG_FORMAT
// override the configured values when set.
func New(cfg Config, w io.Writer) (zerolog.Logger, error) {
	applyEnvOverrides(&cfg)

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), err
		}
		level = l
	}

	if cfg.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Format = strings.ToLower(v)
	}
}
