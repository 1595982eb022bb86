package dbc

import "fmt"

// Message is one BO_ record: a CAN identifier, a name, a declared payload
// size (DLC) and an ordered list of signals.
type Message struct {
	ID      uint32
	Name    string
	Size    uint8
	Signals []*Signal
}

// NewMessage returns a message with no signals.
func NewMessage(id uint32, name string, size uint8) *Message {
	return &Message{ID: id, Name: name, Size: size}
}

// AddSignal appends a signal. Names are not deduplicated; lookup by name
// returns the first match.
func (m *Message) AddSignal(s *Signal) {
	m.Signals = append(m.Signals, s)
}

// Signal returns the first signal with the given name.
func (m *Message) Signal(name string) (*Signal, bool) {
	for _, s := range m.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// RemoveSignal deletes all signals with the given name and reports whether
// any were removed.
func (m *Message) RemoveSignal(name string) bool {
	kept := m.Signals[:0]
	removed := false
	for _, s := range m.Signals {
		if s.Name == name {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	m.Signals = kept
	return removed
}

// Clone returns a deep copy.
func (m *Message) Clone() *Message {
	c := &Message{ID: m.ID, Name: m.Name, Size: m.Size}
	if len(m.Signals) > 0 {
		c.Signals = make([]*Signal, len(m.Signals))
		for i, s := range m.Signals {
			c.Signals[i] = s.Clone()
		}
	}
	return c
}

// Validate reports semantic problems as human-readable strings: a DLC above
// 8, pairwise signal overlaps, and signals extending past the message
// boundary. The overlap test compares raw DBC bit intervals and ignores
// byte order, so mixed-order pairs can report approximately; that is the
// documented behavior. Validation never mutates or rejects the message.
func (m *Message) Validate() []string {
	var errs []string

	if m.Size > 8 {
		errs = append(errs, fmt.Sprintf("Message %s has invalid DLC: %d", m.Name, m.Size))
	}

	for i := 0; i < len(m.Signals); i++ {
		for j := i + 1; j < len(m.Signals); j++ {
			if signalsOverlap(m.Signals[i], m.Signals[j]) {
				errs = append(errs, fmt.Sprintf(
					"Signals '%s' and '%s' overlap in message %s",
					m.Signals[i].Name, m.Signals[j].Name, m.Name))
			}
		}
	}

	maxBits := int(m.Size) * 8
	for _, s := range m.Signals {
		end := int(s.StartBit) + int(s.BitLength)
		if end > maxBits {
			errs = append(errs, fmt.Sprintf(
				"Signal '%s' extends beyond message boundary (%d > %d)",
				s.Name, end, maxBits))
		}
	}

	return errs
}

func signalsOverlap(a, b *Signal) bool {
	aStart, aEnd := int(a.StartBit), int(a.StartBit)+int(a.BitLength)
	bStart, bEnd := int(b.StartBit), int(b.StartBit)+int(b.BitLength)
	return aStart < bEnd && bStart < aEnd
}
