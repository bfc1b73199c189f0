package app

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns the service logger. Production runs ship JSON lines with a
// service tag for the shared log pipeline; everything else gets readable text
// with source locations.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg)
}

func newLogger(w io.Writer, cfg *Config) *slog.Logger {
	if cfg != nil && (cfg.LogFormat == "json" || cfg.IsProduction()) {
		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{})
		return slog.New(handler).With(slog.String("service", "users"))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true}))
}
