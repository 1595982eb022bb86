package dbc

// ByteOrder selects the bit numbering convention for a signal.
type ByteOrder uint8

const (
	// Motorola is big-endian: DBC bit N maps to byte N/8, bit 7-(N%8).
	Motorola ByteOrder = iota
	// Intel is little-endian: DBC bit N is a flat index, byte N/8, bit N%8.
	Intel
)

func (o ByteOrder) String() string {
	if o == Motorola {
		return "motorola"
	}
	return "intel"
}

// ValueType selects how raw extracted bits are interpreted.
type ValueType uint8

const (
	Unsigned ValueType = iota
	Signed
)

func (v ValueType) String() string {
	if v == Signed {
		return "signed"
	}
	return "unsigned"
}

// Multiplexor marks a signal's role in a multiplexed message. The decode
// path does not consult it; every signal is decoded unconditionally.
// Multiplex-aware decoding is an explicit extension, not current behavior.
type Multiplexor struct {
	// Selector is true for the multiplexor signal itself (DBC "M").
	Selector bool
	// SwitchValue is the selector value under which the signal is
	// present (DBC "m<n>"); meaningful only when Selector is false.
	SwitchValue uint8
}

// Signal describes one scaled, bit-positioned field within a message.
// StartBit is in DBC notation; its physical meaning depends on ByteOrder.
type Signal struct {
	Name      string
	StartBit  uint8
	BitLength uint8
	ByteOrder ByteOrder
	ValueType ValueType
	Factor    float64
	Offset    float64
	Minimum   *float64
	Maximum   *float64
	Unit      string
	Mux       *Multiplexor
}

// NewSignal returns an unsigned little-endian signal with unit scaling.
func NewSignal(name string, startBit, bitLength uint8) *Signal {
	return &Signal{
		Name:      name,
		StartBit:  startBit,
		BitLength: bitLength,
		ByteOrder: Intel,
		ValueType: Unsigned,
		Factor:    1.0,
		Offset:    0.0,
	}
}

// WithScaling sets factor and offset and returns the signal for chaining.
func (s *Signal) WithScaling(factor, offset float64) *Signal {
	s.Factor = factor
	s.Offset = offset
	return s
}

// WithUnit sets the display unit.
func (s *Signal) WithUnit(unit string) *Signal {
	s.Unit = unit
	return s
}

// WithRange sets the declared physical bounds. Informational only;
// decode does not enforce them.
func (s *Signal) WithRange(min, max float64) *Signal {
	s.Minimum = &min
	s.Maximum = &max
	return s
}

// Clone returns a deep copy.
func (s *Signal) Clone() *Signal {
	c := *s
	if s.Minimum != nil {
		v := *s.Minimum
		c.Minimum = &v
	}
	if s.Maximum != nil {
		v := *s.Maximum
		c.Maximum = &v
	}
	if s.Mux != nil {
		m := *s.Mux
		c.Mux = &m
	}
	return &c
}

// RawRange returns the unsigned raw value range representable in the field.
func (s *Signal) RawRange() (uint64, uint64) {
	if s.BitLength >= 64 {
		return 0, ^uint64(0)
	}
	return 0, (uint64(1) << s.BitLength) - 1
}

// PhysicalRange returns the physical range after factor/offset scaling.
func (s *Signal) PhysicalRange() (float64, float64) {
	rawMin, rawMax := s.RawRange()
	return float64(rawMin)*s.Factor + s.Offset, float64(rawMax)*s.Factor + s.Offset
}
