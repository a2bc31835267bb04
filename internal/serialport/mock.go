package serialport

import (
	"sync"
	"time"

	"go.tigermatt.uk/sign"
)

// Mock stands in for a sign when no hardware is attached. It announces a
// home cursor on the first read and echoes counts back the way the sign
// does.
type Mock struct {
	readTimeout time.Duration

	mu      sync.Mutex
	pending []byte
}

func NewMock(readTimeout time.Duration) *Mock {
	return &Mock{
		readTimeout: readTimeout,
		pending:     sign.EncodeCursor(0),
	}
}

func (m *Mock) Read(b []byte) (int, error) {
	m.mu.Lock()
	if len(m.pending) > 0 {
		n := copy(b, m.pending)
		m.pending = m.pending[n:]
		m.mu.Unlock()
		return n, nil
	}
	m.mu.Unlock()

	time.Sleep(m.readTimeout)
	return 0, nil
}

// Write queues the sign's reply: a cursor report for a cursor press, the
// digits plus a home cursor for a count.
func (m *Mock) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case len(b) == 1 && b[0] == sign.CursorLeft:
		m.pending = append(m.pending, sign.EncodeCursor(0)...)
	case len(b) == 6:
		m.pending = append(m.pending, b...)
		m.pending = append(m.pending, sign.EncodeCursor(0)...)
	}
	return len(b), nil
}

func (m *Mock) Flush() error { return nil }

func (m *Mock) Close() error { return nil }
