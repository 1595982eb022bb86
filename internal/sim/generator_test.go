package sim

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/canviz/candbc/internal/can"
)

func TestGenerator_Pattern(t *testing.T) {
	var g Generator
	f := g.Next()
	if f.ID != 0x101 {
		t.Fatalf("first id = %#x, want 0x101", f.ID)
	}
	if len(f.Data) != 8 {
		t.Fatalf("payload length = %d", len(f.Data))
	}
	if binary.LittleEndian.Uint32(f.Data[:4]) != 1 {
		t.Fatalf("counter bytes = % X", f.Data[:4])
	}
	if string(f.Data[4:]) != string([]byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Fatalf("marker = % X", f.Data[4:])
	}
}

func TestGenerator_IDCycle(t *testing.T) {
	var g Generator
	seen := map[uint32]bool{}
	for i := 0; i < 20; i++ {
		seen[g.Next().ID] = true
	}
	if len(seen) != 10 {
		t.Fatalf("saw %d distinct ids, want 10", len(seen))
	}
	for id := uint32(0x100); id < 0x10A; id++ {
		if !seen[id] {
			t.Fatalf("id %#x missing from cycle", id)
		}
	}
}

func TestGenerator_RunHonorsLimit(t *testing.T) {
	var g Generator
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got := 0
	g.Run(ctx, time.Millisecond, 5, func(can.Frame) { got++ })
	if got != 5 {
		t.Fatalf("delivered %d frames, want 5", got)
	}
	if ctx.Err() != nil {
		t.Fatalf("run did not stop before the deadline")
	}
}

func TestGenerator_RunStopsOnCancel(t *testing.T) {
	var g Generator
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	done := make(chan struct{})
	go func() {
		g.Run(ctx, time.Millisecond, 0, func(can.Frame) {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
}
