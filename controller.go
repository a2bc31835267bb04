package sign

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRateLimit is how long the controller waits after steering the
// cursor before it issues anything else.
const DefaultRateLimit = time.Second

// ErrCursorNotHome is returned by SetCount while the cursor is away from
// home or its position is not yet known.
var ErrCursorNotHome = errors.New("cursor is not at home")

// Conn is the link to the sign. Read must return within a bounded time,
// reporting zero bytes and a nil error when nothing arrived.
type Conn interface {
	io.ReadWriter
	Flush() error
}

// Controller keeps an estimate of what the sign is showing and where its
// cursor is, and steers the cursor home so a new count can be entered at
// any time.
//
// The count and cursor are unknown until the sign reports them, which it
// does on its own roughly once a minute. Ping prompts an earlier report.
type Controller struct {
	conn      Conn
	log       zerolog.Logger
	rateLimit time.Duration
	tracer    Tracer

	mu     sync.Mutex
	count  *int
	cursor *int

	exit  atomic.Bool
	start sync.Once
	done  chan struct{}
	err   error
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithRateLimit(d time.Duration) Option {
	return func(c *Controller) { c.rateLimit = d }
}

// WithTracer copies all traffic to t. Tracer errors are logged and
// otherwise ignored.
func WithTracer(t Tracer) Option {
	return func(c *Controller) { c.tracer = t }
}

func NewController(conn Conn, opts ...Option) *Controller {
	c := &Controller{
		conn:      conn,
		log:       zerolog.Nop(),
		rateLimit: DefaultRateLimit,
		done:      make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Count returns the last count the sign reported.
func (c *Controller) Count() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deref(c.count)
}

// Cursor returns the last cursor offset the sign reported; 0 is home.
func (c *Controller) Cursor() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return deref(c.cursor)
}

// State returns count and cursor from the same critical section.
func (c *Controller) State() (count int, countOK bool, cursor int, cursorOK bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count, countOK = deref(c.count)
	cursor, cursorOK = deref(c.cursor)
	return
}

// SetCount sends n, clamped to the displayable range, to the sign. The
// sign only takes a new count with the cursor at home, so the call is
// refused with ErrCursorNotHome otherwise and nothing is written. The
// stored count is not touched; it follows the sign's next report.
func (c *Controller) SetCount(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor == nil || *c.cursor != 0 {
		ev := c.log.Warn()
		if c.cursor != nil {
			ev = ev.Int("cursor", *c.cursor)
		}
		ev.Msg("cannot set count, cursor not at home")
		return ErrCursorNotHome
	}

	return c.send(EncodeCount(n))
}

// Ping sends a cursor-left press, which makes the sign report its status
// without waiting for the next periodic update.
func (c *Controller) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send([]byte{CursorLeft})
}

// RequestExit asks the read loop to stop. It returns immediately; the
// loop notices on its next pass, so Wait may take up to one read timeout.
func (c *Controller) RequestExit() {
	c.exit.Store(true)
}

// Start runs the read loop in a new goroutine. Later calls do nothing.
func (c *Controller) Start() {
	c.start.Do(func() {
		go func() {
			defer close(c.done)
			c.err = c.loop()
		}()
	})
}

// Done is closed once the read loop has returned.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Wait blocks until the read loop returns and reports why it stopped. A
// nil error means RequestExit was honoured.
func (c *Controller) Wait() error {
	<-c.done
	return c.err
}

// Run starts the controller and waits for it.
func (c *Controller) Run() error {
	c.Start()
	return c.Wait()
}

func (c *Controller) loop() error {
	buf := make([]byte, ReadSize)
	for !c.exit.Load() {
		n, err := c.conn.Read(buf)
		if err != nil {
			return fmt.Errorf("reading from sign: %w", err)
		}
		if n == 0 {
			continue
		}

		if err := c.receive(buf[:n]); err != nil {
			return err
		}
	}

	c.log.Debug().Msg("sign controller exiting")
	return nil
}

// receive applies one inbound chunk and steers the cursor, all under the
// lock so readers never see a partly applied report.
func (c *Controller) receive(chunk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Debug().Str("bytes", Hexify(chunk)).Msg("read")
	c.trace(chunk, FromSign)

	DecodeAll(chunk, c.apply)
	return c.steer()
}

func (c *Controller) apply(msg Message, err error) {
	if err != nil {
		c.log.Warn().Err(err).Msg("unexpected data from sign")
		return
	}

	v := msg.Value
	switch msg.Kind {
	case CursorReport:
		c.cursor = &v
	case DigitReport:
		if c.count == nil || *c.count != v {
			c.log.Debug().Int("count", v).Msg("count changed")
		}
		c.count = &v
	}
}

// steer presses cursor-left once if the cursor is known to be away from
// home, then holds off for the rate limit so the sign can report back
// before anything else is sent.
func (c *Controller) steer() error {
	if c.cursor == nil || *c.cursor == 0 {
		return nil
	}

	c.log.Info().Int("cursor", *c.cursor).Msg("adjusting cursor")
	if err := c.send([]byte{CursorLeft}); err != nil {
		return err
	}
	time.Sleep(c.rateLimit)
	return nil
}

// send writes and flushes bs. Callers hold c.mu.
func (c *Controller) send(bs []byte) error {
	c.log.Debug().Str("bytes", Hexify(bs)).Msg("write")
	c.trace(bs, ToSign)

	if _, err := c.conn.Write(bs); err != nil {
		return fmt.Errorf("writing to sign: %w", err)
	}
	if err := c.conn.Flush(); err != nil {
		return fmt.Errorf("flushing to sign: %w", err)
	}
	return nil
}

func (c *Controller) trace(bs []byte, dir Direction) {
	if c.tracer == nil {
		return
	}

	f := Frame{
		Data:      append([]byte(nil), bs...),
		Timestamp: time.Now(),
		Direction: dir,
	}
	if err := c.tracer.Receive(f); err != nil {
		c.log.Warn().Err(err).Msg("recording traffic")
	}
}

func deref(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
