package errors

import (
	"errors"
	"fmt"
)

// AppError is the base interface for all application errors.
type AppError interface {
	error
	IsAppError() bool
}

// Compile-time verification that all error types implement AppError.
var (
	_ AppError = (*ConfigError)(nil)
	_ AppError = (*TransportError)(nil)
	_ AppError = (*UpstreamError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrUnknownTransport indicates the configured transport name is not supported.
	ErrUnknownTransport = errors.New("unknown transport")

	// ErrRateLimited indicates an outbound request was throttled locally.
	ErrRateLimited = errors.New("rate limited")

	// ErrCacheMiss indicates the requested key is not cached.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidCoordinates indicates a latitude or longitude could not be parsed.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// ConfigError indicates a configuration value is missing or invalid.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsAppError implements AppError.
func (e *ConfigError) IsAppError() bool { return true }

// TransportError indicates the server transport failed to start or run.
type TransportError struct {
	Transport string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failed: %v", e.Transport, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAppError implements AppError.
func (e *TransportError) IsAppError() bool { return true }

// UpstreamError indicates a request to an upstream HTTP API failed.
// StatusCode is zero when no response was received.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("request to %s failed: HTTP error! status: %d", e.URL, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsAppError implements AppError.
func (e *UpstreamError) IsAppError() bool { return true }
