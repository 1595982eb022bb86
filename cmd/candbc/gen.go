package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/canviz/candbc/internal/can"
	"github.com/canviz/candbc/internal/canlog"
	"github.com/canviz/candbc/internal/metrics"
	"github.com/canviz/candbc/internal/sim"
)

// runGen writes synthetic frames to a CSV log until count frames are
// produced or the context is cancelled.
func runGen(ctx context.Context, cfg *appConfig, l *slog.Logger) (err error) {
	w, err := canlog.Create(cfg.outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	g := &sim.Generator{}
	l.Info("gen_started", "path", cfg.outPath, "rate", cfg.rate, "count", cfg.count)
	var writeErr error
	g.Run(ctx, cfg.rate, cfg.count, func(f can.Frame) {
		if writeErr != nil {
			return
		}
		if werr := w.Write(f); werr != nil {
			metrics.IncError(metrics.ErrLogWrite)
			writeErr = werr
		}
	})
	if writeErr != nil {
		return fmt.Errorf("write frame: %w", writeErr)
	}
	l.Info("gen_done", "frames", g.Count())
	return nil
}
