package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"

	"github.com/canviz/candbc/internal/can"
	"github.com/canviz/candbc/internal/canlog"
	"github.com/canviz/candbc/internal/chart"
	"github.com/canviz/candbc/internal/dbc"
	"github.com/canviz/candbc/internal/decode"
	"github.com/canviz/candbc/internal/metrics"
	"github.com/canviz/candbc/internal/stats"
)

func loadDBC(path string) (*dbc.Document, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		metrics.IncError(metrics.ErrDBCLoad)
		return nil, fmt.Errorf("read dbc: %w", err)
	}
	return dbc.Parse(string(text)), nil
}

func loadLog(path string) ([]can.Frame, error) {
	frames, err := canlog.LoadFile(path)
	if err != nil {
		metrics.IncError(metrics.ErrLogLoad)
		return nil, fmt.Errorf("load log: %w", err)
	}
	return frames, nil
}

// runDecode decodes a CSV frame log against a DBC and delivers the
// decoded signals to the configured sink, with optional chart output.
func runDecode(ctx context.Context, cfg *appConfig, l *slog.Logger) error {
	doc, err := loadDBC(cfg.dbcPath)
	if err != nil {
		return err
	}
	l.Info("dbc_loaded", "path", cfg.dbcPath, "messages", len(doc.Messages))

	frames, err := loadLog(cfg.logPath)
	if err != nil {
		return err
	}
	l.Info("log_loaded", "path", cfg.logPath, "frames", len(frames))

	col := stats.New()
	col.Analyze(frames)
	l.Info("log_stats",
		"frames", col.Total(),
		"unique_ids", col.UniqueIDs(),
		"duration_s", col.Duration(),
	)
	for _, mc := range col.MessageCounts() {
		s, _ := col.ID(mc.ID)
		l.Debug("id_stats",
			"id", fmt.Sprintf("0x%X", mc.ID),
			"count", mc.Count,
			"rate_hz", s.AverageRate,
			"min_dlc", s.MinDLC,
			"max_dlc", s.MaxDLC,
		)
	}

	out, err := initSink(cfg, l)
	if err != nil {
		return err
	}
	if out != nil {
		out.Start(ctx)
		defer func() {
			if cerr := out.Close(); cerr != nil {
				l.Error("sink_close_error", "error", cerr)
			}
		}()
	}

	var series *chart.Series
	if cfg.chartPath != "" {
		series = chart.NewSeries()
	}

	dec := decode.New()
	dec.SetDocument(doc)
	for _, f := range frames {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		for _, d := range dec.DecodeMessage(f) {
			if out != nil {
				out.Write(d)
			}
			if series != nil {
				series.Add(d)
			}
		}
	}
	snap := metrics.Snap()
	l.Info("decode_done",
		"frames_decoded", snap.FramesDecoded,
		"frames_unmatched", snap.FramesUnmatched,
		"signals_decoded", snap.SignalsDecoded,
	)

	if series != nil {
		p, err := series.Plot(filepath.Base(cfg.logPath))
		if err != nil {
			return fmt.Errorf("build chart: %w", err)
		}
		if err := chart.SavePlot(p, 25*vg.Centimeter, 15*vg.Centimeter, cfg.chartPath, "png"); err != nil {
			return fmt.Errorf("save chart: %w", err)
		}
		l.Info("chart_written", "path", cfg.chartPath, "points", series.Len())
	}
	return nil
}
