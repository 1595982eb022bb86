package can

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ID masks shared with SocketCAN tooling (<linux/can.h> values).
const (
	EFFFlag = 0x80000000
	RTRFlag = 0x40000000
	ERRFlag = 0x20000000
	SFFMask = 0x7FF
	EFFMask = 0x1FFFFFFF
)

// ErrOddHexLength is returned when a hex payload string has an odd digit count.
var ErrOddHexLength = errors.New("can: hex string must have even length")

// Frame is one bus transmission unit as seen by the decoder: a timestamped,
// bus-tagged identifier with up to 8 payload bytes. Produced by log replay or
// synthetic generators, consumed by the signal decoder.
type Frame struct {
	Timestamp time.Time
	Bus       uint8
	ID        uint32
	Data      []byte
}

// New builds a frame stamped with the current time.
func New(bus uint8, id uint32, data []byte) Frame {
	return Frame{Timestamp: time.Now().UTC(), Bus: bus, ID: id, Data: data}
}

// IsExtended reports whether the frame uses 29-bit addressing.
// Anything above the 11-bit standard range implies an extended ID.
func (f Frame) IsExtended() bool { return f.ID > SFFMask }

// Clone returns a frame with its own payload backing array.
func (f Frame) Clone() Frame {
	g := f
	g.Data = append([]byte(nil), f.Data...)
	return g
}

// HexData renders the payload as space-separated upper-case hex bytes.
func (f Frame) HexData() string {
	var b strings.Builder
	for i, d := range f.Data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", d)
	}
	return b.String()
}

// UnixSeconds returns the timestamp as fractional Unix seconds.
func (f Frame) UnixSeconds() float64 {
	return float64(f.Timestamp.UnixMilli()) / 1000.0
}

// ParseHex parses a payload hex string. Spaces and a leading 0x/0X prefix
// are tolerated ("12 34 AB CD" and "0x1234abcd" both parse).
func ParseHex(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		return nil, ErrOddHexLength
	}
	out := make([]byte, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		var b byte
		for j := 0; j < 2; j++ {
			b <<= 4
			c := s[i+j]
			switch {
			case c >= '0' && c <= '9':
				b |= c - '0'
			case c >= 'a' && c <= 'f':
				b |= c - 'a' + 10
			case c >= 'A' && c <= 'F':
				b |= c - 'A' + 10
			default:
				return nil, fmt.Errorf("can: invalid hex digit %q at offset %d", c, i+j)
			}
		}
		out = append(out, b)
	}
	return out, nil
}
