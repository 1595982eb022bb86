package main

import (
	"fmt"
	"log/slog"

	"github.com/canviz/candbc/internal/metrics"
	"github.com/canviz/candbc/internal/sink"
)

// initSink builds the configured sink. A nil sink (kind "none") means
// decoded signals are discarded after counting.
func initSink(cfg *appConfig, l *slog.Logger) (sink.Sink, error) {
	switch cfg.sinkKind {
	case "none":
		return nil, nil
	case "log":
		return sink.NewLogSink(l), nil
	case "clickhouse":
		s, err := sink.NewClickHouseSink(sink.ClickHouseOptions{
			Addr:          cfg.chAddr,
			Database:      cfg.chDatabase,
			Username:      cfg.chUser,
			Password:      cfg.chPassword,
			BatchSize:     cfg.batchSize,
			FlushInterval: cfg.flushInterval,
		})
		if err != nil {
			metrics.IncError(metrics.ErrSinkConnect)
			return nil, err
		}
		return s, nil
	case "influx":
		s, err := sink.NewInfluxSink(sink.InfluxOptions{
			Host:          cfg.influxHost,
			Token:         cfg.influxToken,
			Database:      cfg.influxDatabase,
			BatchSize:     cfg.batchSize,
			FlushInterval: cfg.flushInterval,
		})
		if err != nil {
			metrics.IncError(metrics.ErrSinkConnect)
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sink: %s", cfg.sinkKind)
	}
}
