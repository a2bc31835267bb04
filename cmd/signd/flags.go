package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"go.tigermatt.uk/sign/internal/config"
)

type flags struct {
	configPath string
	port       string
	driver     string
	mock       bool
	record     string
	logLevel   string
}

func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	pf.StringVarP(&f.port, "port", "p", config.DefaultPort, "Serial port device")
	pf.StringVar(&f.driver, "driver", config.DriverBugst, "Serial driver (bugst or tarm)")
	pf.BoolVarP(&f.mock, "mock", "m", false, "Use a mock sign connection for local testing")
	pf.StringVar(&f.record, "record", "", "Record all sign traffic to FILE")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

// loadConfig reads the config file and lays explicitly set flags over it.
func (f *flags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Serial.Port = f.port
	}
	if changed("driver") {
		cfg.Serial.Driver = f.driver
	}
	if changed("mock") {
		cfg.Serial.Mock = f.mock
	}
	if changed("record") {
		cfg.Record = f.record
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	return cfg, nil
}

func fixedCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "fixed COUNT",
		Short: "Keep a constant count on the sign",
		Long:  "Keep a constant count on the sign. Counts outside 0..999999 are clamped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := fixedMode(args[0])
			if err != nil {
				return err
			}
			return run(cmd, f, mode)
		},
	}
}

func targetCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "target [ANNUAL]",
		Short: "Count up through the year towards an annual target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := targetMode(args)
			if err != nil {
				return err
			}
			return run(cmd, f, mode)
		},
	}
}

func fixedMode(arg string) (func(*config.Config), error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("parsing count %q: %w", arg, err)
	}
	return func(cfg *config.Config) {
		cfg.Display.Mode = config.ModeFixed
		cfg.Display.Fixed = &n
	}, nil
}

// targetMode leaves the configured target alone unless ANNUAL is given.
func targetMode(args []string) (func(*config.Config), error) {
	var target *int
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("parsing target %q: %w", args[0], err)
		}
		target = &n
	}
	return func(cfg *config.Config) {
		cfg.Display.Mode = config.ModeTarget
		if target != nil {
			cfg.Display.Target = target
		}
	}, nil
}
