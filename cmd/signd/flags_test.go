package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"go.tigermatt.uk/sign/internal/config"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sign.yaml")
	err := os.WriteFile(path, []byte("serial:\n  port: /dev/ttyS0\n  driver: tarm\nlog:\n  level: info\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	var f flags
	cmd := &cobra.Command{Use: "signd"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "--port", "/dev/ttyUSB3", "--mock"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	cfg, err := f.loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Serial.Port != "/dev/ttyUSB3" {
		t.Errorf("port = %q, want flag value", cfg.Serial.Port)
	}
	if cfg.Serial.Driver != config.DriverTarm {
		t.Errorf("driver = %q, want file value", cfg.Serial.Driver)
	}
	if !cfg.Serial.Mock {
		t.Error("mock flag ignored")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want file value", cfg.Log.Level)
	}
}

func TestFixedRejectsBadCount(t *testing.T) {
	cmd := rootCommand()
	cmd.SetArgs([]string{"fixed", "lots"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for non-numeric count")
	}
}

func TestFixedClampsOutOfRangeCount(t *testing.T) {
	for _, c := range []struct {
		arg  string
		want int
	}{
		{"1000000", 999999},
		{"-5", 0},
		{"1234", 1234},
	} {
		mode, err := fixedMode(c.arg)
		if err != nil {
			t.Fatalf("fixedMode(%q): %v", c.arg, err)
		}
		cfg := &config.Config{}
		mode(cfg)
		if err := config.Validate(cfg); err != nil {
			t.Fatalf("fixed %s: Validate: %v", c.arg, err)
		}
		config.Normalize(cfg)

		if cfg.Display.Mode != config.ModeFixed || *cfg.Display.Fixed != c.want {
			t.Errorf("fixed %s: display = %s %d, want fixed %d", c.arg, cfg.Display.Mode, *cfg.Display.Fixed, c.want)
		}
	}
}

func TestTargetArgument(t *testing.T) {
	for _, c := range []struct {
		name string
		args []string
		file *int
		want int
	}{
		{name: "default", want: config.DefaultTarget},
		{name: "from file", file: intp(1000), want: 1000},
		{name: "explicit", args: []string{"5000"}, file: intp(1000), want: 5000},
		{name: "explicit zero", args: []string{"0"}, file: intp(1000), want: 0},
	} {
		mode, err := targetMode(c.args)
		if err != nil {
			t.Fatalf("%s: targetMode: %v", c.name, err)
		}
		cfg := &config.Config{Display: config.DisplayConfig{Target: c.file}}
		mode(cfg)
		config.Normalize(cfg)

		if *cfg.Display.Target != c.want {
			t.Errorf("%s: target = %d, want %d", c.name, *cfg.Display.Target, c.want)
		}
	}

	if _, err := targetMode([]string{"many"}); err == nil {
		t.Error("expected error for non-numeric target")
	}
}

func intp(n int) *int { return &n }

func TestTargetRejectsBadArgs(t *testing.T) {
	cmd := rootCommand()
	cmd.SetArgs([]string{"target", "1", "2"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for extra arguments")
	}
}
