// Package decode binds a DBC document to the bit codec: raw frames in,
// scaled physical values out.
package decode

import (
	"time"

	"github.com/canviz/candbc/internal/can"
	"github.com/canviz/candbc/internal/dbc"
	"github.com/canviz/candbc/internal/metrics"
)

// DecodedSignal is one extracted, scaled signal value. Transient output;
// nothing in the core retains it.
type DecodedSignal struct {
	Name          string
	PhysicalValue float64
	// RawValue holds the extracted bits after sign extension; reinterpret
	// via RawInt64 for signed signals.
	RawValue  uint64
	Unit      string
	Timestamp time.Time
	MessageID uint32
}

// RawInt64 returns the raw value as a signed integer.
func (s DecodedSignal) RawInt64() int64 { return int64(s.RawValue) }

// Decoder holds zero or one active DBC document. Not internally
// synchronized: callers sharing a decoder across goroutines must serialize
// SetDocument/DecodeMessage themselves, or give each goroutine its own
// decoder over a cloned document.
type Decoder struct {
	doc *dbc.Document
}

// New returns a decoder with no document loaded.
func New() *Decoder { return &Decoder{} }

// SetDocument replaces the active document wholesale. No merge semantics.
func (d *Decoder) SetDocument(doc *dbc.Document) { d.doc = doc }

// ClearDocument drops the active document.
func (d *Decoder) ClearDocument() { d.doc = nil }

// Document returns the active document, or nil.
func (d *Decoder) Document() *dbc.Document { return d.doc }

// DecodeMessage decodes every signal of the message matching the frame's
// ID, in definition order. Returns an empty slice when no document is
// loaded or the ID has no definition. Signals whose bit range falls outside
// the payload are silently omitted; their absence means "unavailable for
// this frame", not an error.
func (d *Decoder) DecodeMessage(f can.Frame) []DecodedSignal {
	if d.doc == nil {
		metrics.IncFrameUnmatched()
		return nil
	}
	msg, ok := d.doc.Message(f.ID)
	if !ok {
		metrics.IncFrameUnmatched()
		return nil
	}

	out := make([]DecodedSignal, 0, len(msg.Signals))
	for _, sig := range msg.Signals {
		ds, ok := d.DecodeSignal(f, sig)
		if !ok {
			metrics.IncExtractFailure()
			continue
		}
		out = append(out, ds)
	}
	metrics.IncFrameDecoded()
	metrics.AddSignalsDecoded(len(out))
	return out
}

// DecodeSignal extracts one signal from the frame. The second return is
// false exactly when the underlying bit extraction fails.
func (d *Decoder) DecodeSignal(f can.Frame, sig *dbc.Signal) (DecodedSignal, bool) {
	raw, ok := dbc.ExtractBits(f.Data, sig.StartBit, sig.BitLength, sig.ByteOrder)
	if !ok {
		return DecodedSignal{}, false
	}
	if sig.ValueType == dbc.Signed {
		raw = dbc.SignExtend(raw, sig.BitLength)
	}

	// int64 conversion keeps sign-extended values negative in the scaling.
	var physical float64
	if sig.ValueType == dbc.Signed {
		physical = float64(int64(raw))*sig.Factor + sig.Offset
	} else {
		physical = float64(raw)*sig.Factor + sig.Offset
	}

	return DecodedSignal{
		Name:          sig.Name,
		PhysicalValue: physical,
		RawValue:      raw,
		Unit:          sig.Unit,
		Timestamp:     f.Timestamp,
		MessageID:     f.ID,
	}, true
}

// EncodeSignal writes a physical value into data at the signal's position.
// The inverse raw value is truncated toward zero and, when negative,
// re-encoded into the field width as two's complement. Returns the bit
// codec's success verbatim. sig.Factor must be non-zero; that precondition
// is the caller's to uphold.
func EncodeSignal(data []byte, sig *dbc.Signal, physical float64) bool {
	raw := int64((physical - sig.Offset) / sig.Factor)

	var rawUnsigned uint64
	if raw < 0 {
		mask := uint64(1)<<sig.BitLength - 1
		if sig.BitLength >= 64 {
			mask = ^uint64(0)
		}
		rawUnsigned = uint64(raw) & mask
	} else {
		rawUnsigned = uint64(raw)
	}

	return dbc.InsertBits(data, rawUnsigned, sig.StartBit, sig.BitLength, sig.ByteOrder)
}
