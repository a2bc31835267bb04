package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.tigermatt.uk/sign"
)

func TestPrintable(t *testing.T) {
	for _, c := range []struct {
		in   []byte
		want string
	}{
		{in: nil, want: ""},
		{in: []byte(" 12345"), want: " 12345"},
		{in: sign.EncodeCursor(0), want: "#Y*E"},
		{in: []byte{0x15, 0x7f, 'a'}, want: "##a"},
	} {
		if got := printable(c.in); got != c.want {
			t.Errorf("printable(% 02X) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPrintRead(t *testing.T) {
	var buf bytes.Buffer
	printRead(&buf, []byte("    99"))

	if got, want := buf.String(), "6 20:20:20:20:39:39     99\n"; got != want {
		t.Errorf("printRead = %q, want %q", got, want)
	}
}

func TestProcessFramesJoinsSplitReports(t *testing.T) {
	at := time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC)
	report := append(append(sign.EncodeCursor(0), "123456"...), sign.EncodeCursor(0)...)

	frames := make(chan sign.Frame, 4)
	frames <- sign.Frame{Data: report[:5], Timestamp: at, Direction: sign.FromSign}
	frames <- sign.Frame{Data: report[5:], Timestamp: at.Add(10 * time.Millisecond), Direction: sign.FromSign}
	frames <- sign.Frame{Data: []byte{sign.CursorLeft}, Timestamp: at.Add(20 * time.Millisecond), Direction: sign.ToSign}
	frames <- sign.Frame{Data: []byte("xx"), Timestamp: at.Add(time.Minute), Direction: sign.FromSign}
	close(frames)

	var buf bytes.Buffer
	if err := processFrames(&buf, frames, 50*time.Millisecond); err != nil {
		t.Fatalf("processFrames: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "CURSOR +0 COUNT 123456 CURSOR +0") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "CURSOR LEFT") || !strings.Contains(lines[1], " > ") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "too few bytes") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestDescribeCount(t *testing.T) {
	if got := describe(sign.ToSign, sign.EncodeCount(99)); got != `COUNT "    99"` {
		t.Errorf("describe = %q", got)
	}
}

func TestSniffDecodesEachRead(t *testing.T) {
	port := bytes.NewReader(append(sign.EncodeCursor(2), "   42x"...))

	var out bytes.Buffer
	s := &sign.Sniffer{
		Port:      port,
		OnReceive: func(bs []byte) { printRead(&out, bs) },
		OnMessage: func(m sign.Message, err error) { printMessage(&out, m, err) },
	}
	if err := s.Consume(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Consume = %v, want EOF", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "10 1b:59:2a:47:") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if got := strings.TrimSpace(lines[1]); got != "CURSOR +2" {
		t.Errorf("line 1 = %q", got)
	}
	if !strings.Contains(lines[2], "unexpected count value") {
		t.Errorf("line 2 = %q", lines[2])
	}
}
