package sink

import (
	"context"
	"log/slog"

	"github.com/canviz/candbc/internal/decode"
	"github.com/canviz/candbc/internal/logging"
	"github.com/canviz/candbc/internal/metrics"
)

// LogSink writes decoded signals to the structured log. The default sink
// when no database is configured.
type LogSink struct {
	l *slog.Logger
}

// NewLogSink wraps l, defaulting to the global logger.
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = logging.L()
	}
	return &LogSink{l: l}
}

var _ Sink = (*LogSink)(nil)

func (s *LogSink) Start(ctx context.Context) {}

func (s *LogSink) Write(d decode.DecodedSignal) {
	metrics.IncSinkWrite(metrics.SinkLog)
	s.l.Info("signal",
		"name", d.Name,
		"value", d.PhysicalValue,
		"raw", d.RawValue,
		"unit", d.Unit,
		"message_id", d.MessageID,
		"ts", d.Timestamp,
	)
}

func (s *LogSink) Close() error { return nil }
