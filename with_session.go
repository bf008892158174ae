package mcpapps

import (
	"context"
	"fmt"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
)

// WithSession manages an in-process client session with automatic cleanup.
//
// It starts a fresh server for app, connects a client over in-memory
// transports, executes the callback and closes both ends when done.
// The callback's error is returned to the caller.
//
// Example usage:
//
//	err := mcpapps.WithSession(ctx, app, func(s *mcp.ClientSession) error {
//	    res, err := s.CallTool(ctx, &mcp.CallToolParams{
//	        Name:      "subtract",
//	        Arguments: map[string]any{"a": 5, "b": 3},
//	    })
//	    if err != nil {
//	        return err
//	    }
//	    // inspect res...
//	    return nil
//	})
func WithSession(ctx context.Context, app *App, fn func(*mcpgo.ClientSession) error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	session, closeSession, err := app.toolset.Connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer closeSession()

	return fn(session)
}
