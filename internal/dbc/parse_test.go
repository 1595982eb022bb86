package dbc

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
)

func TestParse_MessageLine(t *testing.T) {
	doc := Parse("BO_ 256 StatusMessage: 8 Vector__XXX\n")
	m, ok := doc.Message(256)
	if !ok {
		t.Fatalf("message 256 not found")
	}
	if m.Name != "StatusMessage" || m.Size != 8 {
		t.Fatalf("got %q size %d", m.Name, m.Size)
	}
}

func TestParse_SignalLine(t *testing.T) {
	text := "BO_ 256 StatusMessage: 8 Vector__XXX\n" +
		` SG_ Speed : 0|16@1+ (0.1,0) [0|6553.5] "km/h" Vector__XXX` + "\n"
	doc := Parse(text)
	m, _ := doc.Message(256)
	if len(m.Signals) != 1 {
		t.Fatalf("got %d signals, want 1", len(m.Signals))
	}
	s := m.Signals[0]
	if s.Name != "Speed" || s.StartBit != 0 || s.BitLength != 16 {
		t.Fatalf("position mismatch: %+v", s)
	}
	if s.ByteOrder != Intel || s.ValueType != Unsigned {
		t.Fatalf("order/type mismatch: %v %v", s.ByteOrder, s.ValueType)
	}
	if s.Factor != 0.1 || s.Offset != 0 {
		t.Fatalf("scaling mismatch: %v %v", s.Factor, s.Offset)
	}
	if s.Unit != "km/h" {
		t.Fatalf("unit = %q", s.Unit)
	}
	if s.Minimum == nil || s.Maximum == nil || *s.Minimum != 0 || *s.Maximum != 6553.5 {
		t.Fatalf("range mismatch: %v %v", s.Minimum, s.Maximum)
	}
}

func TestParse_SignalVariants(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		check func(t *testing.T, s *Signal)
	}{
		{
			"motorola signed",
			`SG_ Temp : 7|12@0- (0.5,-40) [-40|1983.5] "degC" ECU1`,
			func(t *testing.T, s *Signal) {
				if s.ByteOrder != Motorola || s.ValueType != Signed {
					t.Fatalf("order/type: %v %v", s.ByteOrder, s.ValueType)
				}
				if s.Factor != 0.5 || s.Offset != -40 {
					t.Fatalf("scaling: %v %v", s.Factor, s.Offset)
				}
			},
		},
		{
			"mux selector",
			`SG_ Mode M : 0|4@1+ (1,0) [0|15] "" Vector__XXX`,
			func(t *testing.T, s *Signal) {
				if s.Mux == nil || !s.Mux.Selector {
					t.Fatalf("expected selector mux, got %+v", s.Mux)
				}
			},
		},
		{
			"mux value",
			`SG_ Detail m3 : 8|8@1+ (1,0) [0|255] "" Vector__XXX`,
			func(t *testing.T, s *Signal) {
				if s.Mux == nil || s.Mux.Selector || s.Mux.SwitchValue != 3 {
					t.Fatalf("expected switch value 3, got %+v", s.Mux)
				}
			},
		},
		{
			"empty unit",
			`SG_ Counter : 0|8@1+ (1,0) [0|255] "" Vector__XXX`,
			func(t *testing.T, s *Signal) {
				if s.Unit != "" {
					t.Fatalf("unit = %q", s.Unit)
				}
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			doc := Parse("BO_ 1 M: 8 X\n " + c.line + "\n")
			m, _ := doc.Message(1)
			if len(m.Signals) != 1 {
				t.Fatalf("signal did not parse")
			}
			c.check(t, m.Signals[0])
		})
	}
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	text := strings.Join([]string{
		`VERSION "2.0"`,
		"BO_ notanumber Bad: 8 X",            // bad message id
		"BO_ 1 Good: 8 X",
		" SG_ Bad : 0|8@9+ (1,0) [0|1] \"\" X", // invalid order char
		" SG_ Bad2 : 0|8@1* (1,0) [0|1] \"\" X", // invalid sign char
		" SG_ Ok : 0|8@1+ (1,0) [0|255] \"\" X",
		"garbage line that matches nothing",
		"CM_ BO_ 1 \"comment record, unmodeled\";",
	}, "\n")
	doc := Parse(text)
	if doc.Version != "2.0" {
		t.Fatalf("version = %q", doc.Version)
	}
	if len(doc.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(doc.Messages))
	}
	m, _ := doc.Message(1)
	if len(m.Signals) != 1 || m.Signals[0].Name != "Ok" {
		t.Fatalf("signals = %+v", m.Signals)
	}
}

func TestParse_SignalBeforeMessageDropped(t *testing.T) {
	doc := Parse(` SG_ Orphan : 0|8@1+ (1,0) [0|255] "" X` + "\n")
	if !doc.Empty() {
		t.Fatalf("expected empty document")
	}
}

func TestParse_ValLine(t *testing.T) {
	text := `VAL_ 256 GearPosition 0 "Park" 1 "Reverse" 2 "Neutral" 3 "Drive" ;` + "\n"
	doc := Parse(text)
	vals, ok := doc.ValueTable("GearPosition")
	if !ok {
		t.Fatalf("value table missing")
	}
	if len(vals) != 4 {
		t.Fatalf("got %d entries, want 4", len(vals))
	}
	if vals[1].Value != 1 || vals[1].Description != "Reverse" {
		t.Fatalf("entry 1 = %+v", vals[1])
	}
	if desc, ok := doc.DescribeValue("GearPosition", 3); !ok || desc != "Drive" {
		t.Fatalf("DescribeValue = %q ok=%v", desc, ok)
	}
}

func TestParse_ValKeyedBySignalNameOnly(t *testing.T) {
	// The message id token is parsed past but does not form part of the
	// key; a later VAL_ for the same signal name replaces the earlier one.
	text := `VAL_ 100 Status 0 "Off" 1 "On" ;` + "\n" +
		`VAL_ 200 Status 0 "Closed" 1 "Open" ;` + "\n"
	doc := Parse(text)
	vals, _ := doc.ValueTable("Status")
	if len(vals) != 2 || vals[0].Description != "Closed" {
		t.Fatalf("expected last VAL_ to win, got %+v", vals)
	}
}

func TestParse_DuplicateMessageIDsLastWins(t *testing.T) {
	text := "BO_ 42 First: 8 X\n" +
		" SG_ A : 0|8@1+ (1,0) [0|255] \"\" X\n" +
		"BO_ 42 Second: 4 X\n" +
		" SG_ B : 0|8@1+ (1,0) [0|255] \"\" X\n"
	doc := Parse(text)
	if len(doc.Messages) != 1 {
		t.Fatalf("expected the duplicate to replace in place, got %d messages", len(doc.Messages))
	}
	m, _ := doc.Message(42)
	if m.Name != "Second" || m.Size != 4 {
		t.Fatalf("lookup returned %q size %d", m.Name, m.Size)
	}
	// Serialization iterates the list, which holds only the survivor.
	if n := strings.Count(doc.String(), "BO_ 42"); n != 1 {
		t.Fatalf("serialized %d BO_ 42 records, want 1", n)
	}
}

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader("BO_ 7 R: 8 X\n"))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if _, ok := doc.Message(7); !ok {
		t.Fatalf("message missing")
	}
}

func BenchmarkParse(b *testing.B) {
	text := buildBenchDBC(64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(text)
	}
}

func buildBenchDBC(n int) string {
	var sb strings.Builder
	sb.WriteString("VERSION \"1.0\"\n")
	for i := 0; i < n; i++ {
		id := strconv.Itoa(256 + i)
		fmt.Fprintf(&sb, "BO_ %s Msg%d: 8 Vector__XXX\n", id, i)
		fmt.Fprintf(&sb, " SG_ SigA%d : 0|16@1+ (0.1,0) [0|6553.5] \"km/h\" Vector__XXX\n", i)
		fmt.Fprintf(&sb, " SG_ SigB%d : 16|16@0- (1,-100) [-100|500] \"degC\" Vector__XXX\n", i)
	}
	return sb.String()
}
