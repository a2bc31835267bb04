package sign

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Wire bytes used by the sign.
const (
	Escape       byte = 0x1B
	CursorMagic1 byte = 0x59
	CursorMagic2 byte = 0x2A
	CursorHome   byte = 0x45
	CursorLeft   byte = 0x15
)

const (
	cursorReportLen = 4
	digitReportLen  = 6

	// MaxCount is the largest value six digits can show.
	MaxCount = 999999
)

var (
	ErrUnknownEscape = errors.New("unknown escape sequence")
	ErrBadDigits     = errors.New("unexpected count value")
	ErrShortBuffer   = errors.New("too few bytes to classify")
)

// DecodeError carries the bytes that were discarded along with the reason.
type DecodeError struct {
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, Hexify(e.Raw))
}

func (e *DecodeError) Unwrap() error { return e.Err }

type MessageKind int

const (
	CursorReport MessageKind = iota + 1
	DigitReport
)

func (k MessageKind) String() string {
	switch k {
	case CursorReport:
		return "cursor"
	case DigitReport:
		return "digits"
	default:
		return fmt.Sprintf("MessageKind(%d)", int(k))
	}
}

// Message is one decoded report. Value is the cursor offset for a
// CursorReport and the displayed count for a DigitReport.
type Message struct {
	Kind  MessageKind
	Value int
}

// Decode reads one message from the front of buf and returns the number of
// bytes it used. Bytes are consumed even when decoding fails, since the
// protocol has nothing finer to resynchronise on; a *DecodeError is
// returned in that case. When buf is too short to classify, all of it is
// consumed and ErrShortBuffer is reported.
func Decode(buf []byte) (Message, int, error) {
	switch {
	case len(buf) >= cursorReportLen && buf[0] == Escape:
		raw := buf[:cursorReportLen]
		if raw[1] != CursorMagic1 || raw[2] != CursorMagic2 {
			return Message{}, cursorReportLen, &DecodeError{Raw: raw, Err: ErrUnknownEscape}
		}
		return Message{Kind: CursorReport, Value: int(raw[3]) - int(CursorHome)}, cursorReportLen, nil

	case len(buf) >= digitReportLen:
		raw := buf[:digitReportLen]
		n, ok := parseDigits(raw)
		if !ok {
			return Message{}, digitReportLen, &DecodeError{Raw: raw, Err: ErrBadDigits}
		}
		return Message{Kind: DigitReport, Value: n}, digitReportLen, nil

	default:
		return Message{}, len(buf), &DecodeError{Raw: buf, Err: ErrShortBuffer}
	}
}

// DecodeAll walks buf left to right, calling fn for each message or
// decode failure in wire order. Trailing bytes too short to classify are
// reported once and dropped; nothing is carried over to the next call.
func DecodeAll(buf []byte, fn func(Message, error)) {
	for len(buf) > 0 {
		msg, n, err := Decode(buf)
		fn(msg, err)
		buf = buf[n:]
	}
}

// parseDigits accepts a field of ASCII digits padded with spaces.
func parseDigits(raw []byte) (int, bool) {
	s := strings.Trim(string(raw), " ")
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClampCount limits n to what the sign can display.
func ClampCount(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}

// EncodeCount renders n as the six-byte count command. Non-positive
// values are sent as all zeros, anything else is right-justified with
// leading spaces.
func EncodeCount(n int) []byte {
	n = ClampCount(n)
	if n == 0 {
		return []byte("000000")
	}
	return []byte(fmt.Sprintf("%*d", digitReportLen, n))
}

// EncodeCursor renders the cursor report the sign sends for offset.
func EncodeCursor(offset int) []byte {
	return []byte{Escape, CursorMagic1, CursorMagic2, byte(int(CursorHome) + offset)}
}

// Hexify formats bs as colon separated hex pairs, e.g. "20:31:32".
func Hexify(bs []byte) string {
	var sb strings.Builder
	for i, b := range bs {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}
