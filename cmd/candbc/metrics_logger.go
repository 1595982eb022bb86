package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/canviz/candbc/internal/metrics"
)

func startMetricsLogger(ctx context.Context, interval time.Duration, l *slog.Logger, wg *sync.WaitGroup) {
	if interval <= 0 {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				snap := metrics.Snap()
				l.Info("metrics_snapshot",
					"frames_decoded", snap.FramesDecoded,
					"frames_unmatched", snap.FramesUnmatched,
					"signals_decoded", snap.SignalsDecoded,
					"extract_failures", snap.ExtractFailures,
					"log_rows", snap.LogRows,
					"sim_frames", snap.SimFrames,
					"sink_writes", snap.SinkWrites,
					"sink_drops", snap.SinkDrops,
					"errors", snap.Errors,
				)
			case <-ctx.Done():
				return
			}
		}
	}()
}
