package can

import (
	"time"

	einride "go.einride.tech/can"
)

// ToEinride maps the frame into a go.einride.tech/can Frame so callers on
// that ecosystem can transmit it. Payloads beyond 8 bytes are truncated;
// the timestamp and bus tag have no einride equivalent and are dropped.
func (f Frame) ToEinride() einride.Frame {
	var ef einride.Frame
	ef.ID = f.ID & EFFMask
	ef.IsExtended = f.IsExtended()
	n := len(f.Data)
	if n > 8 {
		n = 8
	}
	ef.Length = uint8(n)
	copy(ef.Data[:], f.Data[:n])
	return ef
}

// FromEinride maps an einride frame into our timestamped form.
func FromEinride(bus uint8, ts time.Time, ef einride.Frame) Frame {
	data := make([]byte, ef.Length)
	copy(data, ef.Data[:ef.Length])
	return Frame{Timestamp: ts, Bus: bus, ID: ef.ID, Data: data}
}
