package mcpapps

import "github.com/wagiedev/mcp-apps-go/internal/errors"

// Re-export error types from internal package

// AppError is the base interface for all application errors.
type AppError = errors.AppError

// ConfigError indicates a configuration value is missing or invalid.
type ConfigError = errors.ConfigError

// TransportError indicates the server transport failed to start or run.
type TransportError = errors.TransportError

// UpstreamError indicates a request to an upstream HTTP API failed.
type UpstreamError = errors.UpstreamError

// Re-export sentinel errors from internal package.
var (
	// ErrUnknownTransport indicates the configured transport name is not supported.
	ErrUnknownTransport = errors.ErrUnknownTransport

	// ErrRateLimited indicates an outbound request was throttled locally.
	ErrRateLimited = errors.ErrRateLimited

	// ErrCacheMiss indicates the requested key is not cached.
	ErrCacheMiss = errors.ErrCacheMiss

	// ErrInvalidCoordinates indicates a latitude or longitude could not be parsed.
	ErrInvalidCoordinates = errors.ErrInvalidCoordinates
)
