package stats

import (
	"testing"
	"time"

	"github.com/canviz/candbc/internal/can"
)

func sampleLog() []can.Frame {
	base := time.Unix(100, 0).UTC()
	mk := func(off time.Duration, bus uint8, id uint32, n int) can.Frame {
		return can.Frame{Timestamp: base.Add(off), Bus: bus, ID: id, Data: make([]byte, n)}
	}
	return []can.Frame{
		mk(0, 0, 0x100, 8),
		mk(1*time.Second, 0, 0x200, 4),
		mk(2*time.Second, 1, 0x100, 2),
		mk(3*time.Second, 0, 0x100, 8),
		mk(4*time.Second, 1, 0x200, 4),
	}
}

func TestCollector_Analyze(t *testing.T) {
	c := New()
	c.Analyze(sampleLog())

	if c.Total() != 5 || c.UniqueIDs() != 2 {
		t.Fatalf("total=%d unique=%d", c.Total(), c.UniqueIDs())
	}
	if c.Duration() != 4.0 {
		t.Fatalf("duration = %v", c.Duration())
	}

	s, ok := c.ID(0x100)
	if !ok {
		t.Fatalf("0x100 missing")
	}
	if s.Count != 3 || s.MinDLC != 2 || s.MaxDLC != 8 {
		t.Fatalf("0x100 stats = %+v", s)
	}
	if s.AverageRate != 3.0/4.0 {
		t.Fatalf("rate = %v", s.AverageRate)
	}
	if len(s.DataSamples) != 3 {
		t.Fatalf("samples = %d", len(s.DataSamples))
	}
}

func TestCollector_MessageCountsSorted(t *testing.T) {
	c := New()
	c.Analyze(sampleLog())
	counts := c.MessageCounts()
	if len(counts) != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	if counts[0].ID != 0x100 || counts[0].Count != 3 {
		t.Fatalf("most frequent = %+v", counts[0])
	}
}

func TestCollector_BusCounts(t *testing.T) {
	c := New()
	c.Analyze(sampleLog())
	buses := c.BusCounts()
	if buses[0] != 3 || buses[1] != 2 {
		t.Fatalf("buses = %v", buses)
	}
}

func TestCollector_SampleCap(t *testing.T) {
	base := time.Unix(0, 0)
	frames := make([]can.Frame, 25)
	for i := range frames {
		frames[i] = can.Frame{Timestamp: base.Add(time.Duration(i) * time.Millisecond), ID: 1, Data: []byte{byte(i)}}
	}
	c := New()
	c.Analyze(frames)
	s, _ := c.ID(1)
	if len(s.DataSamples) != maxDataSamples {
		t.Fatalf("samples = %d, want %d", len(s.DataSamples), maxDataSamples)
	}
}

func TestCollector_EmptyAndReuse(t *testing.T) {
	c := New()
	c.Analyze(nil)
	if c.Total() != 0 || c.Duration() != 0 {
		t.Fatalf("empty analyze left state: total=%d", c.Total())
	}
	c.Analyze(sampleLog())
	c.Analyze(nil)
	if c.Total() != 0 || c.UniqueIDs() != 0 {
		t.Fatalf("re-analyze did not clear: total=%d", c.Total())
	}
}
