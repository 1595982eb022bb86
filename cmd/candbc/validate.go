package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/canviz/candbc/internal/dbc"
)

// runValidate parses a DBC, reports validation findings, and optionally
// re-serializes the parsed document for a round-trip check.
func runValidate(cfg *appConfig, l *slog.Logger) error {
	doc, err := loadDBC(cfg.dbcPath)
	if err != nil {
		return err
	}
	l.Info("dbc_loaded",
		"path", cfg.dbcPath,
		"version", doc.Version,
		"messages", len(doc.Messages),
	)

	findings := doc.Validate()
	for _, f := range findings {
		l.Warn("dbc_finding", "detail", f)
	}
	if len(findings) == 0 {
		l.Info("dbc_clean")
	}

	if cfg.outPath != "" {
		text := doc.String()
		if err := os.WriteFile(cfg.outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write dbc: %w", err)
		}
		reparsed := dbc.Parse(text)
		if got, want := len(reparsed.Messages), len(doc.Messages); got != want {
			return fmt.Errorf("round trip lost messages: %d != %d", got, want)
		}
		l.Info("dbc_written", "path", cfg.outPath, "messages", len(reparsed.Messages))
	}

	if len(findings) > 0 {
		return fmt.Errorf("%d validation finding(s)", len(findings))
	}
	return nil
}
