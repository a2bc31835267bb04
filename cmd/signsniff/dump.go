package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.tigermatt.uk/sign"
)

var interFrameGap = 50 * time.Millisecond

func dumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:  "dump FILE",
		Args: cobra.ExactArgs(1),
		RunE: dump,
	}
	cmd.Flags().DurationVar(&interFrameGap, "gap", interFrameGap, "Reads closer together than this are joined")

	return cmd
}

func dump(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	defer f.Close()

	frames := make(chan sign.Frame, 100)

	var g errgroup.Group
	g.Go(func() error { return processFrames(cmd.OutOrStdout(), frames, interFrameGap) })
	g.Go(func() error { return sign.ReadIn(frames, f) })

	return g.Wait()
}

// processFrames joins reads in the same direction that arrive within gap
// of each other, since one report from the sign can span several reads,
// and prints each joined message with what it decodes to.
func processFrames(w io.Writer, frames <-chan sign.Frame, gap time.Duration) error {
	var start, lastRead time.Time
	var dir sign.Direction
	var msg bytes.Buffer

	flush := func() {
		if msg.Len() > 0 {
			printFrame(w, start, dir, msg.Bytes())
		}
		msg.Reset()
	}

	for f := range frames {
		if msg.Len() > 0 && (f.Direction != dir || f.Timestamp.Sub(lastRead) > gap) {
			flush()
		}
		if msg.Len() == 0 {
			start = f.Timestamp
			dir = f.Direction
		}
		lastRead = f.Timestamp

		if _, err := msg.Write(f.Data); err != nil {
			return err
		}
	}
	flush()

	return nil
}

func printFrame(w io.Writer, at time.Time, dir sign.Direction, bs []byte) {
	fmt.Fprintf(w, "%s %s %-41s %s\n", at.Format("15:04:05.000"), dir, sign.Hexify(bs), describe(dir, bs))
}

func describe(dir sign.Direction, bs []byte) string {
	if dir == sign.ToSign {
		if len(bs) == 1 && bs[0] == sign.CursorLeft {
			return "CURSOR LEFT"
		}
		return fmt.Sprintf("COUNT %q", bs)
	}

	var out bytes.Buffer
	sign.DecodeAll(bs, func(m sign.Message, err error) {
		if out.Len() > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(formatMessage(m, err))
	})
	return out.String()
}

func formatMessage(m sign.Message, err error) string {
	switch {
	case err != nil:
		return fmt.Sprintf("[%s]", err)
	case m.Kind == sign.CursorReport:
		return fmt.Sprintf("CURSOR %+d", m.Value)
	default:
		return fmt.Sprintf("COUNT %d", m.Value)
	}
}
