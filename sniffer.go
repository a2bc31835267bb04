package sign

import (
	"context"
	"fmt"
	"io"
)

// ReadSize is the largest chunk requested from the connection per read.
const ReadSize = 1024

// Sniffer passively watches a port. Every non-empty chunk goes to
// OnReceive, and when OnMessage is set the chunk is also decoded and each
// message or decode failure is passed on in wire order. Chunks are decoded
// on their own, just as the controller does.
type Sniffer struct {
	Port      io.Reader
	OnReceive func([]byte)
	OnMessage func(Message, error)
}

// Consume reads until ctx is cancelled or the port fails.
func (s *Sniffer) Consume(ctx context.Context) error {
	bs := make([]byte, ReadSize)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := s.Port.Read(bs)
		if err != nil {
			return fmt.Errorf("reading from serial port: %w", err)
		}
		if n == 0 {
			continue
		}

		chunk := append([]byte(nil), bs[:n]...)
		if s.OnReceive != nil {
			s.OnReceive(chunk)
		}
		if s.OnMessage != nil {
			DecodeAll(chunk, s.OnMessage)
		}
	}
}
