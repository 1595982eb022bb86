// Package dbc models the subset of the Vector DBC grammar used to describe
// CAN message and signal layouts (VERSION, BO_, SG_, VAL_), together with
// the bit-level field codec needed to decode and encode those signals.
package dbc

// ValueDescription is one entry of an enumerated value table.
type ValueDescription struct {
	Value       int64
	Description string
}

// Document is an in-memory DBC file: a version string, messages in
// insertion order with an ID-keyed index, and value tables keyed by signal
// name (file-level, not per-message — last VAL_ for a name wins).
//
// The ordered list and the index are always in sync: adding a message whose
// ID already exists replaces the existing list entry in place rather than
// appending a duplicate. A plain value type; Clone it when sharing across
// goroutines, mutation is not internally synchronized.
type Document struct {
	Version     string
	Messages    []*Message
	ValueTables map[string][]ValueDescription

	byID map[uint32]*Message
}

// New returns an empty document.
func New() *Document {
	return &Document{
		ValueTables: map[string][]ValueDescription{},
		byID:        map[uint32]*Message{},
	}
}

// AddMessage inserts m, replacing any existing message with the same ID in
// place (list position preserved).
func (d *Document) AddMessage(m *Message) {
	if old, ok := d.byID[m.ID]; ok {
		for i, e := range d.Messages {
			if e == old {
				d.Messages[i] = m
				break
			}
		}
	} else {
		d.Messages = append(d.Messages, m)
	}
	d.byID[m.ID] = m
}

// Message returns the message with the given CAN ID. The returned pointer
// aliases document state; mutations through it are visible to the document.
func (d *Document) Message(id uint32) (*Message, bool) {
	m, ok := d.byID[id]
	return m, ok
}

// RemoveMessage deletes the message with the given ID from both the ordered
// list and the index, reporting whether it existed.
func (d *Document) RemoveMessage(id uint32) bool {
	if _, ok := d.byID[id]; !ok {
		return false
	}
	delete(d.byID, id)
	kept := d.Messages[:0]
	for _, m := range d.Messages {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	d.Messages = kept
	return true
}

// MessageIDs returns the CAN IDs in document order.
func (d *Document) MessageIDs() []uint32 {
	ids := make([]uint32, len(d.Messages))
	for i, m := range d.Messages {
		ids[i] = m.ID
	}
	return ids
}

// Empty reports whether the document has no messages.
func (d *Document) Empty() bool { return len(d.Messages) == 0 }

// SetValueTable installs the value table for a signal name, replacing any
// previous table for that name.
func (d *Document) SetValueTable(signalName string, values []ValueDescription) {
	d.ValueTables[signalName] = values
}

// ValueTable returns the value table for a signal name.
func (d *Document) ValueTable(signalName string) ([]ValueDescription, bool) {
	v, ok := d.ValueTables[signalName]
	return v, ok
}

// DescribeValue resolves a raw value against a signal's value table.
func (d *Document) DescribeValue(signalName string, raw int64) (string, bool) {
	for _, vd := range d.ValueTables[signalName] {
		if vd.Value == raw {
			return vd.Description, true
		}
	}
	return "", false
}

// Validate runs per-message validation across the document and returns the
// concatenated report in message order.
func (d *Document) Validate() []string {
	var errs []string
	for _, m := range d.Messages {
		errs = append(errs, m.Validate()...)
	}
	return errs
}

// Clone returns a deep copy safe to hand to another goroutine.
func (d *Document) Clone() *Document {
	c := New()
	c.Version = d.Version
	for _, m := range d.Messages {
		c.AddMessage(m.Clone())
	}
	for name, vals := range d.ValueTables {
		c.ValueTables[name] = append([]ValueDescription(nil), vals...)
	}
	return c
}

// reindex rebuilds the ID index from the ordered list. Later entries win,
// matching last-definition-wins parse semantics.
func (d *Document) reindex() {
	d.byID = make(map[uint32]*Message, len(d.Messages))
	for _, m := range d.Messages {
		d.byID[m.ID] = m
	}
}
