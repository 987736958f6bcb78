package config

import (
	"io"
	"log/slog"
)

// InitLogger installs a text handler on w as the default logger.
// Diagnostics go to the logger; benchmark output is printed directly.
func InitLogger(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
