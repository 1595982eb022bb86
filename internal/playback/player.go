// Package playback replays a loaded frame log against a scaled virtual
// clock.
package playback

import (
	"sort"
	"sync"
	"time"

	"github.com/canviz/candbc/internal/can"
)

// State is the player's run state.
type State uint8

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

const (
	minSpeed = 0.1
	maxSpeed = 10.0
)

// Player steps through a frame slice in log-time order. All methods are
// safe for concurrent use; the frame slice itself is treated as immutable
// after construction.
type Player struct {
	mu sync.Mutex

	frames []can.Frame
	speed  float64
	loop   bool
	state  State
	pos    int

	wallStart time.Time // wall-clock instant Play was called
	logStart  time.Time // log timestamp at that instant
	now       func() time.Time
}

// New wraps frames, which must already be sorted by timestamp (Load
// produces them that way).
func New(frames []can.Frame) *Player {
	return &Player{frames: frames, speed: 1.0, now: time.Now}
}

// SetLoop enables wrap-around at the end of the log.
func (p *Player) SetLoop(loop bool) {
	p.mu.Lock()
	p.loop = loop
	p.mu.Unlock()
}

// SetSpeed clamps to 0.1..10 and re-anchors the virtual clock.
func (p *Player) SetSpeed(speed float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if speed < minSpeed {
		speed = minSpeed
	}
	if speed > maxSpeed {
		speed = maxSpeed
	}
	p.speed = speed
	p.anchorLocked()
}

// Speed returns the current playback speed.
func (p *Player) Speed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// Play starts or resumes playback. At the end of a non-looping log it does
// nothing.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos >= len(p.frames) {
		if !p.loop {
			return
		}
		p.pos = 0
	}
	p.state = Playing
	p.anchorLocked()
}

// Pause suspends playback in place.
func (p *Player) Pause() {
	p.mu.Lock()
	p.state = Paused
	p.mu.Unlock()
}

// Stop halts playback and rewinds to the start.
func (p *Player) Stop() {
	p.mu.Lock()
	p.state = Stopped
	p.pos = 0
	p.mu.Unlock()
}

// SeekToTime positions the cursor at the first frame at or after target.
func (p *Player) SeekToTime(target time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = p.searchLocked(target)
	p.anchorLocked()
}

// SeekToPosition clamps and sets the cursor index.
func (p *Player) SeekToPosition(pos int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > len(p.frames) {
		pos = len(p.frames)
	}
	p.pos = pos
	p.anchorLocked()
}

// StepForward advances one frame and pauses.
func (p *Player) StepForward() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos < len(p.frames)-1 {
		p.pos++
	}
	p.state = Paused
}

// StepBack rewinds one frame and pauses.
func (p *Player) StepBack() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos > 0 {
		p.pos--
	}
	p.state = Paused
}

// Update advances the cursor to match the scaled virtual clock and returns
// the frames crossed since the previous update, in log order. Returns nil
// unless playing. At the end of the log it stops, or wraps when looping.
func (p *Player) Update() []can.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing {
		return nil
	}

	elapsed := p.now().Sub(p.wallStart)
	scaled := time.Duration(float64(elapsed) * p.speed)
	target := p.logStart.Add(scaled)

	newPos := p.searchLocked(target)
	if newPos < p.pos {
		newPos = p.pos
	}
	crossed := p.frames[p.pos:newPos]
	p.pos = newPos

	if p.pos >= len(p.frames) {
		if p.loop {
			p.pos = 0
			p.anchorLocked()
		} else {
			p.state = Stopped
		}
	}

	if len(crossed) == 0 {
		return nil
	}
	out := make([]can.Frame, len(crossed))
	copy(out, crossed)
	return out
}

// Window returns the frames within [current-before, current+after).
func (p *Player) Window(before, after time.Duration) []can.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur, ok := p.currentTimeLocked()
	if !ok {
		return nil
	}
	lo := p.searchLocked(cur.Add(-before))
	hi := p.searchLocked(cur.Add(after))
	out := make([]can.Frame, hi-lo)
	copy(out, p.frames[lo:hi])
	return out
}

// Position returns the cursor index.
func (p *Player) Position() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Len returns the total frame count.
func (p *Player) Len() int { return len(p.frames) }

// State returns the current run state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// IsPlaying reports whether playback is active.
func (p *Player) IsPlaying() bool { return p.State() == Playing }

// CurrentTime returns the log timestamp at the cursor.
func (p *Player) CurrentTime() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentTimeLocked()
}

// StartTime returns the first frame's timestamp.
func (p *Player) StartTime() (time.Time, bool) {
	if len(p.frames) == 0 {
		return time.Time{}, false
	}
	return p.frames[0].Timestamp, true
}

// EndTime returns the last frame's timestamp.
func (p *Player) EndTime() (time.Time, bool) {
	if len(p.frames) == 0 {
		return time.Time{}, false
	}
	return p.frames[len(p.frames)-1].Timestamp, true
}

func (p *Player) currentTimeLocked() (time.Time, bool) {
	if p.pos >= len(p.frames) {
		if len(p.frames) == 0 {
			return time.Time{}, false
		}
		return p.frames[len(p.frames)-1].Timestamp, true
	}
	return p.frames[p.pos].Timestamp, true
}

// anchorLocked re-bases the virtual clock at the cursor's log time.
func (p *Player) anchorLocked() {
	p.wallStart = p.now()
	if t, ok := p.currentTimeLocked(); ok {
		p.logStart = t
	} else {
		p.logStart = p.wallStart
	}
}

// searchLocked returns the index of the first frame at or after target.
func (p *Player) searchLocked(target time.Time) int {
	return sort.Search(len(p.frames), func(i int) bool {
		return !p.frames[i].Timestamp.Before(target)
	})
}
