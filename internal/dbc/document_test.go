package dbc

import "testing"

func TestDocument_AddMessageReplacesInPlace(t *testing.T) {
	doc := New()
	doc.AddMessage(NewMessage(1, "First", 8))
	doc.AddMessage(NewMessage(2, "Other", 8))
	doc.AddMessage(NewMessage(1, "Replacement", 4))

	if len(doc.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(doc.Messages))
	}
	if doc.Messages[0].Name != "Replacement" {
		t.Fatalf("list position not preserved: %q", doc.Messages[0].Name)
	}
	m, _ := doc.Message(1)
	if m.Name != "Replacement" || m.Size != 4 {
		t.Fatalf("index not updated: %+v", m)
	}
}

func TestDocument_RemoveMessage(t *testing.T) {
	doc := New()
	doc.AddMessage(NewMessage(1, "A", 8))
	doc.AddMessage(NewMessage(2, "B", 8))

	if !doc.RemoveMessage(1) {
		t.Fatalf("expected removal")
	}
	if doc.RemoveMessage(1) {
		t.Fatalf("second removal should report false")
	}
	if _, ok := doc.Message(1); ok {
		t.Fatalf("message still indexed")
	}
	if len(doc.Messages) != 1 || doc.Messages[0].ID != 2 {
		t.Fatalf("list = %+v", doc.MessageIDs())
	}
}

func TestDocument_MessageIDs(t *testing.T) {
	doc := New()
	for _, id := range []uint32{5, 3, 9} {
		doc.AddMessage(NewMessage(id, "M", 8))
	}
	ids := doc.MessageIDs()
	if len(ids) != 3 || ids[0] != 5 || ids[1] != 3 || ids[2] != 9 {
		t.Fatalf("ids = %v, want document order", ids)
	}
}

func TestMessage_SignalLookupAndRemove(t *testing.T) {
	m := NewMessage(1, "M", 8)
	m.AddSignal(NewSignal("A", 0, 8))
	m.AddSignal(NewSignal("B", 8, 8))
	m.AddSignal(NewSignal("A", 16, 8)) // duplicate name; first match wins

	s, ok := m.Signal("A")
	if !ok || s.StartBit != 0 {
		t.Fatalf("lookup returned %+v", s)
	}
	if !m.RemoveSignal("A") {
		t.Fatalf("expected removal")
	}
	if len(m.Signals) != 1 || m.Signals[0].Name != "B" {
		t.Fatalf("RemoveSignal should drop every match: %+v", m.Signals)
	}
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := New()
	doc.Version = "1.0"
	m := NewMessage(1, "M", 8)
	m.AddSignal(NewSignal("S", 0, 8).WithRange(0, 255))
	doc.AddMessage(m)
	doc.SetValueTable("S", []ValueDescription{{Value: 0, Description: "zero"}})

	c := doc.Clone()
	cm, _ := c.Message(1)
	cm.Name = "Changed"
	cm.Signals[0].Name = "Renamed"
	*cm.Signals[0].Maximum = 1
	c.ValueTables["S"][0].Description = "mutated"

	if m.Name != "M" || m.Signals[0].Name != "S" || *m.Signals[0].Maximum != 255 {
		t.Fatalf("clone shares message state")
	}
	if doc.ValueTables["S"][0].Description != "zero" {
		t.Fatalf("clone shares value tables")
	}
}

func TestSignal_PhysicalRange(t *testing.T) {
	s := NewSignal("S", 0, 8).WithScaling(0.5, -40)
	lo, hi := s.PhysicalRange()
	if lo != -40 || hi != 87.5 {
		t.Fatalf("range = [%v, %v], want [-40, 87.5]", lo, hi)
	}
}
