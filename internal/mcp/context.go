package mcp

import (
	"context"
	"log/slog"
)

type callKey struct{}

type callInfo struct {
	id  string
	log *slog.Logger
}

func withCall(ctx context.Context, id string, log *slog.Logger) context.Context {
	return context.WithValue(ctx, callKey{}, callInfo{id: id, log: log})
}

// LoggerFromContext returns the per-call logger installed by the Toolset.
// Outside a tool call it returns a logger that discards everything.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if info, ok := ctx.Value(callKey{}).(callInfo); ok && info.log != nil {
		return info.log
	}

	return slog.New(slog.DiscardHandler)
}

// CallIDFromContext returns the ULID of the current tool call, or "".
func CallIDFromContext(ctx context.Context) string {
	if info, ok := ctx.Value(callKey{}).(callInfo); ok {
		return info.id
	}

	return ""
}
