// Package errors defines error types for the MCP applications.
//
// This package provides structured error types that wrap the failure
// scenarios of configuration loading, transport startup and upstream API
// calls. All error types support error unwrapping and can be checked using
// errors.Is, errors.As, and errors.AsType.
package errors
