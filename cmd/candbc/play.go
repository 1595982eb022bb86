package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/canviz/candbc/internal/decode"
	"github.com/canviz/candbc/internal/playback"
)

// updateEvery bounds playback latency; each tick delivers the frames the
// virtual clock crossed since the last one.
const updateEvery = 20 * time.Millisecond

// runPlay replays a CSV frame log at the configured speed, decoding each
// frame as its virtual timestamp passes.
func runPlay(ctx context.Context, cfg *appConfig, l *slog.Logger) error {
	doc, err := loadDBC(cfg.dbcPath)
	if err != nil {
		return err
	}
	frames, err := loadLog(cfg.logPath)
	if err != nil {
		return err
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

	dec := decode.New()
	dec.SetDocument(doc)

	p := playback.New(frames)
	p.SetSpeed(cfg.speed)
	p.SetLoop(cfg.loop)
	p.Play()
	l.Info("playback_started",
		"frames", p.Len(),
		"speed", p.Speed(),
		"loop", cfg.loop,
	)

	t := time.NewTicker(updateEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			l.Info("playback_interrupted", "position", p.Position())
			return nil
		case <-t.C:
			for _, f := range p.Update() {
				for _, d := range dec.DecodeMessage(f) {
					if out != nil {
						out.Write(d)
					}
				}
			}
			if p.State() == playback.Stopped {
				l.Info("playback_finished", "frames", p.Len())
				return nil
			}
		}
	}
}
