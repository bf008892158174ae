// Package config provides configuration types for the MCP applications.
package config

import (
	"fmt"
	"strings"

	"github.com/wagiedev/mcp-apps-go/internal/errors"
)

// Transport names the wire transport a server listens on.
type Transport string

const (
	// TransportStdio serves a single session over stdin/stdout.
	TransportStdio Transport = "stdio"
	// TransportSSE serves sessions over Server-Sent Events.
	TransportSSE Transport = "sse"
	// TransportHTTP serves sessions over the streamable HTTP transport.
	TransportHTTP Transport = "http"
)

// IsHTTP reports whether the transport needs an HTTP listener.
func (t Transport) IsHTTP() bool {
	return t == TransportSSE || t == TransportHTTP
}

// NormalizeTransport maps transport aliases to their canonical names.
//
// Aliases:
//   - "streamable", "streamable-http" -> "http"
//   - "" -> "stdio"
func NormalizeTransport(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return string(TransportStdio)
	case "streamable", "streamable-http", "streamable_http":
		return string(TransportHTTP)
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}

// ParseTransport normalizes name and checks that it is a supported transport.
func ParseTransport(name string) (Transport, error) {
	switch t := Transport(NormalizeTransport(name)); t {
	case TransportStdio, TransportSSE, TransportHTTP:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownTransport, name)
	}
}
