// Package stats computes per-identifier summaries over a frame log.
package stats

import (
	"sort"
	"time"

	"github.com/canviz/candbc/internal/can"
)

// maxDataSamples bounds how many example payloads are retained per ID.
const maxDataSamples = 10

// IDStats summarizes the traffic of one CAN identifier.
type IDStats struct {
	Count       int
	FirstSeen   time.Time
	LastSeen    time.Time
	MinDLC      uint8
	MaxDLC      uint8
	DataSamples [][]byte
	// AverageRate is frames per second over the whole log span.
	AverageRate float64
}

// Collector accumulates statistics over an analyzed frame slice.
type Collector struct {
	perID     map[uint32]*IDStats
	perBus    map[uint8]int
	total     int
	startTime time.Time
	endTime   time.Time
	hasSpan   bool
}

// New returns an empty collector.
func New() *Collector {
	return &Collector{
		perID:  map[uint32]*IDStats{},
		perBus: map[uint8]int{},
	}
}

// Analyze replaces the collector's contents with statistics over frames,
// which are assumed to be in log order.
func (c *Collector) Analyze(frames []can.Frame) {
	c.Clear()
	if len(frames) == 0 {
		return
	}

	c.startTime = frames[0].Timestamp
	c.endTime = frames[len(frames)-1].Timestamp
	c.hasSpan = true
	c.total = len(frames)

	for _, f := range frames {
		c.perBus[f.Bus]++

		s, ok := c.perID[f.ID]
		if !ok {
			s = &IDStats{MinDLC: 8, FirstSeen: f.Timestamp, LastSeen: f.Timestamp}
			c.perID[f.ID] = s
		}
		s.Count++
		if dlc := uint8(len(f.Data)); dlc < s.MinDLC {
			s.MinDLC = dlc
		}
		if dlc := uint8(len(f.Data)); dlc > s.MaxDLC {
			s.MaxDLC = dlc
		}
		if f.Timestamp.Before(s.FirstSeen) {
			s.FirstSeen = f.Timestamp
		}
		if f.Timestamp.After(s.LastSeen) {
			s.LastSeen = f.Timestamp
		}
		if len(s.DataSamples) < maxDataSamples {
			s.DataSamples = append(s.DataSamples, append([]byte(nil), f.Data...))
		}
	}

	if dur := c.Duration(); dur > 0 {
		for _, s := range c.perID {
			s.AverageRate = float64(s.Count) / dur
		}
	}
}

// Clear resets the collector.
func (c *Collector) Clear() {
	c.perID = map[uint32]*IDStats{}
	c.perBus = map[uint8]int{}
	c.total = 0
	c.hasSpan = false
	c.startTime, c.endTime = time.Time{}, time.Time{}
}

// ID returns the statistics for one identifier.
func (c *Collector) ID(id uint32) (*IDStats, bool) {
	s, ok := c.perID[id]
	return s, ok
}

// IDCount is one row of the per-identifier count ranking.
type IDCount struct {
	ID    uint32
	Count int
}

// MessageCounts returns identifiers with their counts, most frequent
// first; ties break on ascending ID for stable output.
func (c *Collector) MessageCounts() []IDCount {
	out := make([]IDCount, 0, len(c.perID))
	for id, s := range c.perID {
		out = append(out, IDCount{ID: id, Count: s.Count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// BusCounts returns frame counts per bus tag.
func (c *Collector) BusCounts() map[uint8]int {
	out := make(map[uint8]int, len(c.perBus))
	for b, n := range c.perBus {
		out[b] = n
	}
	return out
}

// Total returns the analyzed frame count.
func (c *Collector) Total() int { return c.total }

// UniqueIDs returns how many distinct identifiers were seen.
func (c *Collector) UniqueIDs() int { return len(c.perID) }

// Duration returns the log span in seconds.
func (c *Collector) Duration() float64 {
	if !c.hasSpan {
		return 0
	}
	return c.endTime.Sub(c.startTime).Seconds()
}
