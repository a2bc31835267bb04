package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/sign"
	"go.tigermatt.uk/sign/internal/config"
	"go.tigermatt.uk/sign/internal/display"
	"go.tigermatt.uk/sign/internal/logging"
	"go.tigermatt.uk/sign/internal/serialport"
)

const (
	homePoll        = time.Second
	testPatternHold = 2 * time.Second
)

func run(cmd *cobra.Command, f *flags, mode func(*config.Config)) error {
	cfg, err := f.loadConfig(cmd)
	if err != nil {
		return err
	}
	if mode != nil {
		mode(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	config.Normalize(cfg)

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr)
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}

	port, err := openPort(cfg.Serial)
	if err != nil {
		return err
	}
	defer port.Close()

	opts := []sign.Option{
		sign.WithLogger(log),
		sign.WithRateLimit(cfg.Serial.RateLimit()),
	}
	if cfg.Record != "" {
		out, err := os.Create(cfg.Record)
		if err != nil {
			return fmt.Errorf("creating recording: %w", err)
		}
		defer out.Close()
		opts = append(opts, sign.WithTracer(&sign.Recorder{Dest: out}))
	}

	ctrl := sign.NewController(port, opts...)

	g, ctx := errgroup.WithContext(log.WithContext(listenStop(log)))
	g.Go(ctrl.Run)
	g.Go(func() error {
		select {
		case <-ctx.Done():
		case <-ctrl.Done():
		}
		ctrl.RequestExit()
		return nil
	})
	g.Go(func() error {
		return drive(ctx, ctrl, cfg.Display)
	})

	return g.Wait()
}

func openPort(cfg config.SerialConfig) (serialport.Port, error) {
	if cfg.Mock {
		return serialport.NewMock(cfg.ReadTimeout()), nil
	}

	return serialport.Open(serialport.Options{
		Name:        cfg.Port,
		Driver:      cfg.Driver,
		ReadTimeout: cfg.ReadTimeout(),
	})
}

// drive syncs with the sign, shows the test pattern, then runs the
// configured display mode until ctx ends or the controller stops.
func drive(ctx context.Context, ctrl *sign.Controller, cfg config.DisplayConfig) error {
	if ok, err := display.WaitForHome(ctx, ctrl, homePoll); !ok || err != nil {
		return err
	}
	if ok, err := display.TestPattern(ctx, ctrl, testPatternHold); !ok || err != nil {
		return err
	}

	switch cfg.Mode {
	case config.ModeFixed:
		return display.Fixed(ctx, ctrl, *cfg.Fixed, cfg.Interval())
	default:
		return display.Target(ctx, ctrl, *cfg.Target, cfg.Interval(), time.Now)
	}
}

// listenStop returns a context cancelled on the first interrupt.
func listenStop(log zerolog.Logger) context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		<-sigCh
		log.Info().Msg("interrupted, cleaning up")
		cancel()
	}()

	return ctx
}
