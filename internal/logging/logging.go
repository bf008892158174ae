// Package logging builds the slog loggers used by the MCP applications.
//
// Loggers always write to the supplied writer (stderr in the binaries) so
// that the stdio transport keeps stdout for protocol traffic.
package logging

import (
	"io"
	"log/slog"

	"github.com/wagiedev/mcp-apps-go/internal/config"
)

// New returns a logger for cfg writing to w.
// Invalid levels fall back to info; cfg is expected to be validated already.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Nop returns a logger that discards all output.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
