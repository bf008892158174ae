package mcpapps

import (
	"io"
	"log/slog"

	"github.com/wagiedev/mcp-apps-go/internal/config"
	"github.com/wagiedev/mcp-apps-go/internal/logging"
)

// NopLogger returns a logger that discards all output.
// Use this when you want silent operation with no logging overhead.
func NopLogger() *slog.Logger {
	return logging.Nop()
}

// NewLogger returns a text or JSON logger writing to w at the level and
// format named in cfg.
func NewLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	return logging.New(cfg, w)
}
