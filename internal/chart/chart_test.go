package chart

import (
	"bytes"
	"testing"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/canviz/candbc/internal/decode"
)

func sampleSeries() *Series {
	s := NewSeries()
	base := time.Unix(100, 0).UTC()
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		s.Add(decode.DecodedSignal{Name: "EngineSpeed", PhysicalValue: float64(1000 + i*100), Timestamp: ts})
		s.Add(decode.DecodedSignal{Name: "CoolantTemp", PhysicalValue: float64(80 + i), Timestamp: ts})
	}
	return s
}

func TestSeries_Accumulate(t *testing.T) {
	s := sampleSeries()
	if s.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", s.Len())
	}
	names := s.Names()
	if len(names) != 2 || names[0] != "CoolantTemp" || names[1] != "EngineSpeed" {
		t.Fatalf("Names() = %v", names)
	}
	xys := s.points["EngineSpeed"]
	if xys[0].X != 0 || xys[4].X != 4 {
		t.Fatalf("X offsets = %v .. %v, want 0 .. 4", xys[0].X, xys[4].X)
	}
	if xys[2].Y != 1200 {
		t.Fatalf("Y = %v, want 1200", xys[2].Y)
	}
}

func TestSeries_PlotAndWrite(t *testing.T) {
	p, err := sampleSeries().Plot("sample")
	if err != nil {
		t.Fatalf("Plot() = %v", err)
	}
	var buf bytes.Buffer
	if err := WritePlot(p, 10*vg.Centimeter, 10*vg.Centimeter, &buf, "png"); err != nil {
		t.Fatalf("WritePlot() = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("no image bytes written")
	}
}

func TestSeries_EmptyPlot(t *testing.T) {
	p, err := NewSeries().Plot("empty")
	if err != nil {
		t.Fatalf("Plot() = %v", err)
	}
	if p == nil {
		t.Fatal("nil plot")
	}
}
