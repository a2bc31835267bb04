package config

import "time"

// Defaults for an attached sign.
const (
	DefaultPort        = "/dev/ttyUSB0"
	DefaultReadTimeout = time.Second
	DefaultRateLimit   = time.Second
	DefaultInterval    = time.Second
	DefaultTarget      = 443000

	maxCount = 999999
)

// Normalize fills unset fields with defaults and clamps a fixed count to
// what the sign can show.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Serial.Port == "" {
		cfg.Serial.Port = DefaultPort
	}
	if cfg.Serial.Driver == "" {
		cfg.Serial.Driver = DriverBugst
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = int(DefaultReadTimeout / time.Millisecond)
	}
	if cfg.Serial.RateLimitMs == 0 {
		cfg.Serial.RateLimitMs = int(DefaultRateLimit / time.Millisecond)
	}

	if cfg.Display.Mode == "" {
		cfg.Display.Mode = ModeTarget
	}
	if cfg.Display.Target == nil {
		t := DefaultTarget
		cfg.Display.Target = &t
	}
	if f := cfg.Display.Fixed; f != nil {
		n := min(max(*f, 0), maxCount)
		cfg.Display.Fixed = &n
	}
	if cfg.Display.IntervalMs == 0 {
		cfg.Display.IntervalMs = int(DefaultInterval / time.Millisecond)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = FormatConsole
	}
}

func (s SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}

func (s SerialConfig) RateLimit() time.Duration {
	return time.Duration(s.RateLimitMs) * time.Millisecond
}

func (d DisplayConfig) Interval() time.Duration {
	return time.Duration(d.IntervalMs) * time.Millisecond
}
