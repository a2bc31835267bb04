package sign

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

type Direction int

const (
	FromSign Direction = iota
	ToSign
)

func (d Direction) String() string {
	if d == ToSign {
		return ">"
	}
	return "<"
}

// Frame is one chunk of traffic as it crossed the serial line.
type Frame struct {
	Data      []byte
	Timestamp time.Time
	Direction Direction
}

// Tracer observes traffic passing through a Controller.
type Tracer interface {
	Receive(Frame) error
}

// Recorder writes frames to Dest as a gob stream.
type Recorder struct {
	Dest io.Writer

	enc  *gob.Encoder
	once sync.Once
	mu   sync.Mutex
}

func (r *Recorder) Receive(f Frame) error {
	r.init()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(f)
}

func (r *Recorder) init() {
	r.once.Do(func() {
		r.enc = gob.NewEncoder(r.Dest)
	})
}

// ReadIn replays a recording into out, closing it on return.
func ReadIn(out chan<- Frame, r io.Reader) error {
	defer close(out)

	dec := gob.NewDecoder(r)

	for {
		var f Frame
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("while decoding: %w", err)
		}

		out <- f
	}
}
