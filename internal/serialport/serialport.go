// Package serialport opens the serial line to the sign.
//
// The sign talks 4800 baud, 7 data bits, odd parity and two stop bits with
// no flow control. Reads time out so the controller can notice shutdown
// requests on a quiet line.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
	"go.bug.st/serial"
)

const (
	BaudRate = 4800
	DataBits = 7

	DriverBugst = "bugst"
	DriverTarm  = "tarm"
)

// Port is an open connection to the sign. Read returns 0, nil when the
// read timeout passes without data.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

type Options struct {
	Name        string
	Driver      string
	ReadTimeout time.Duration
}

func Open(opts Options) (Port, error) {
	switch opts.Driver {
	case "", DriverBugst:
		return openBugst(opts)
	case DriverTarm:
		return openTarm(opts)
	default:
		return nil, fmt.Errorf("unknown serial driver %q", opts.Driver)
	}
}

type bugstPort struct {
	serial.Port
}

func openBugst(opts Options) (Port, error) {
	p, err := serial.Open(opts.Name, &serial.Mode{
		BaudRate: BaudRate,
		DataBits: DataBits,
		Parity:   serial.OddParity,
		StopBits: serial.TwoStopBits,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", opts.Name, err)
	}

	if err := p.SetReadTimeout(opts.ReadTimeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("setting read timeout on %s: %w", opts.Name, err)
	}

	return &bugstPort{Port: p}, nil
}

// Flush blocks until everything written has left the UART.
func (p *bugstPort) Flush() error {
	return p.Port.Drain()
}

type tarmPort struct {
	p *tarm.Port
}

func openTarm(opts Options) (Port, error) {
	p, err := tarm.OpenPort(&tarm.Config{
		Name:        opts.Name,
		Baud:        BaudRate,
		ReadTimeout: opts.ReadTimeout,
		Size:        DataBits,
		Parity:      tarm.ParityOdd,
		StopBits:    tarm.Stop2,
	})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s: %w", opts.Name, err)
	}

	return &tarmPort{p: p}, nil
}

// Read maps the EOF tarm reports on a read timeout to an empty read.
func (t *tarmPort) Read(b []byte) (int, error) {
	n, err := t.p.Read(b)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

func (t *tarmPort) Write(b []byte) (int, error) { return t.p.Write(b) }

// Flush is a no-op: tarm writes go straight to the tty, and its own Flush
// discards pending data rather than sending it.
func (t *tarmPort) Flush() error { return nil }

func (t *tarmPort) Close() error { return t.p.Close() }
