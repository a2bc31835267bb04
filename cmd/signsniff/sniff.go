package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"go.tigermatt.uk/sign"
	"go.tigermatt.uk/sign/internal/serialport"
)

var (
	sniffDriver  = serialport.DriverBugst
	sniffOut     = ""
	sniffTimeout = time.Second
	sniffDecode  = false
)

func sniffCommand() *cobra.Command {
	cmd := cobra.Command{
		Use:  "sniff DEVICE",
		Args: cobra.ExactArgs(1),
		RunE: sniff,
	}
	cmd.Flags().StringVar(&sniffDriver, "driver", sniffDriver, "Serial driver (bugst or tarm)")
	cmd.Flags().StringVarP(&sniffOut, "out", "o", sniffOut, "Also record reads to FILE for later dump")
	cmd.Flags().DurationVar(&sniffTimeout, "read-timeout", sniffTimeout, "Serial read timeout")
	cmd.Flags().BoolVar(&sniffDecode, "decode", sniffDecode, "Also print what each read decodes to")

	return &cmd
}

func listenStop() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx
}

func sniff(cmd *cobra.Command, args []string) error {
	ctx := listenStop()

	port, err := serialport.Open(serialport.Options{
		Name:        args[0],
		Driver:      sniffDriver,
		ReadTimeout: sniffTimeout,
	})
	if err != nil {
		return err
	}
	defer port.Close()

	var rec *sign.Recorder
	if sniffOut != "" {
		f, err := os.Create(sniffOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", sniffOut, err)
		}
		defer f.Close()
		rec = &sign.Recorder{Dest: f}
	}

	out := cmd.OutOrStdout()
	s := &sign.Sniffer{
		Port: port,
		OnReceive: func(bs []byte) {
			printRead(out, bs)
			if rec == nil {
				return
			}
			f := sign.Frame{Data: bs, Timestamp: time.Now(), Direction: sign.FromSign}
			if err := rec.Receive(f); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "recording: %s\n", err)
			}
		},
	}
	if sniffDecode {
		s.OnMessage = func(m sign.Message, err error) { printMessage(out, m, err) }
	}

	return s.Consume(ctx)
}

// printRead writes one line per read: length, hex and printable ASCII.
func printRead(w io.Writer, bs []byte) {
	fmt.Fprintf(w, "%d %s %s\n", len(bs), sign.Hexify(bs), printable(bs))
}

func printMessage(w io.Writer, m sign.Message, err error) {
	fmt.Fprintf(w, "  %s\n", formatMessage(m, err))
}

// printable replaces bytes outside printable ASCII with '#'.
func printable(bs []byte) string {
	var sb strings.Builder
	for _, b := range bs {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}
