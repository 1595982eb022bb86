package sink

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/canviz/candbc/internal/decode"
)

func TestCombineErrors(t *testing.T) {
	e1 := errors.New("first")
	e2 := errors.New("second")

	tests := []struct {
		name string
		errs []error
		want string
	}{
		{"none", nil, ""},
		{"all nil", []error{nil, nil}, ""},
		{"single", []error{e1}, "first"},
		{"nil then error", []error{nil, e2}, "second"},
		{"two", []error{e1, e2}, "first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := combineErrors(tt.errs...)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("combineErrors() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("combineErrors() = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestCombineErrors_PreservesBoth(t *testing.T) {
	err := combineErrors(errors.New("flush failed"), errors.New("close failed"))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "flush failed") || !strings.Contains(msg, "close failed") {
		t.Fatalf("combined error lost a cause: %q", msg)
	}
}

func TestLogSink_Write(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	s := NewLogSink(l)
	s.Start(context.Background())
	s.Write(decode.DecodedSignal{
		Name:          "EngineSpeed",
		PhysicalValue: 1500.5,
		RawValue:      3001,
		Unit:          "rpm",
		Timestamp:     time.Unix(100, 0).UTC(),
		MessageID:     0x100,
	})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"EngineSpeed", "1500.5", "rpm"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogSink_DefaultLogger(t *testing.T) {
	s := NewLogSink(nil)
	if s.l == nil {
		t.Fatal("nil logger not defaulted")
	}
}
