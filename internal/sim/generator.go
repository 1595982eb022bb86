// Package sim generates deterministic synthetic CAN traffic for testing
// the decode pipeline without hardware.
package sim

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/canviz/candbc/internal/can"
	"github.com/canviz/candbc/internal/metrics"
)

// Generator produces a repeating pattern of frames: IDs cycle through
// 0x100..0x109, the payload carries the frame counter (little-endian)
// followed by a fixed 0xDEADBEEF marker.
type Generator struct {
	Bus     uint8
	counter uint32
}

// Next returns the next synthetic frame, stamped with the current time.
func (g *Generator) Next() can.Frame {
	g.counter++
	id := 0x100 + g.counter%10

	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[:4], g.counter)
	copy(data[4:], []byte{0xDE, 0xAD, 0xBE, 0xEF})

	metrics.IncSimFrame()
	return can.New(g.Bus, id, data)
}

// Count returns how many frames have been generated.
func (g *Generator) Count() uint32 { return g.counter }

// Run emits frames at the given rate until ctx is done or limit frames
// have been produced (limit <= 0 means unbounded).
func (g *Generator) Run(ctx context.Context, rate time.Duration, limit int, fn func(can.Frame)) {
	t := time.NewTicker(rate)
	defer t.Stop()
	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn(g.Next())
			n++
			if limit > 0 && n >= limit {
				return
			}
		}
	}
}
