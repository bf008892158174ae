// Package mcp builds Model Context Protocol servers from a catalog of tools.
//
// A Toolset collects typed tool registrations and installs them on fresh
// servers from the official MCP SDK. Every call through an installed tool is
// instrumented: it gets a ULID call id, a scoped slog logger reachable from
// the handler context, an OpenTelemetry span and Prometheus metrics.
//
// The catalog is safe for concurrent use. Tools can also be invoked
// in-process through the real protocol stack with CallTool, which connects a
// client and server over in-memory transports.
package mcp
