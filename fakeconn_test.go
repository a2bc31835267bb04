package sign

import (
	"sync"
	"testing"
	"time"
)

// fakeConn feeds queued chunks to Read one at a time and records every
// Write.
type fakeConn struct {
	reads  chan []byte
	writes chan []byte

	mu      sync.Mutex
	readErr error
	flushes int
	calls   int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan []byte, 256),
		writes: make(chan []byte, 1024),
	}
}

func (f *fakeConn) Read(p []byte) (int, error) {
	f.mu.Lock()
	f.calls++
	err := f.readErr
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}

	select {
	case bs := <-f.reads:
		return copy(p, bs), nil
	case <-time.After(5 * time.Millisecond):
		return 0, nil
	}
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.writes <- append([]byte(nil), p...)
	return len(p), nil
}

func (f *fakeConn) Flush() error {
	f.mu.Lock()
	f.flushes++
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) feed(bs ...[]byte) {
	var chunk []byte
	for _, b := range bs {
		chunk = append(chunk, b...)
	}
	f.reads <- chunk
}

func (f *fakeConn) failReads(err error) {
	f.mu.Lock()
	f.readErr = err
	f.mu.Unlock()
}

// waitForWrite returns the next write, or nil if none arrives in time.
func (f *fakeConn) waitForWrite(timeout time.Duration) []byte {
	select {
	case bs := <-f.writes:
		return bs
	case <-time.After(timeout):
		return nil
	}
}

// waitForDrain reports whether every queued chunk has been read.
func (f *fakeConn) waitForDrain(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(f.reads) == 0 {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func (f *fakeConn) readCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// waitForApplied waits until the loop has come back for two more reads
// after the last fed chunk. The chunk is taken by one of the next two
// calls, and the loop only reads again once it has finished with it.
func (f *fakeConn) waitForApplied(t *testing.T) {
	t.Helper()

	n := f.readCalls()
	if !f.waitForDrain(time.Second) {
		t.Fatal("chunk not consumed")
	}
	waitFor(t, "chunk applied", func() bool { return f.readCalls() >= n+2 })
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func countIs(c *Controller, want int) func() bool {
	return func() bool {
		n, ok := c.Count()
		return ok && n == want
	}
}

func cursorIs(c *Controller, want int) func() bool {
	return func() bool {
		n, ok := c.Cursor()
		return ok && n == want
	}
}

func periodic(count string) [][]byte {
	return [][]byte{EncodeCursor(0), []byte(count), EncodeCursor(0)}
}
