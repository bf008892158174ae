// Package cli implements the command line of the MCP application binaries.
//
// # Flags
//
// Every binary accepts the same flags, applied on top of defaults, the
// optional YAML file and environment variables:
//
//	-config PATH      YAML configuration file
//	-transport NAME   stdio, sse or http
//	-addr HOST:PORT   listen address for sse and http
//	-log-level LEVEL  debug, info, warn or error
//	-version          print the version and exit
//
// # Environment
//
// Configuration fields are read from PREFIX_SECTION_FIELD variables, e.g.
// MCP_WEATHER_CACHE_ADDR. The weather binary also honours PORT.
//
// # Exit Codes
//
// Main returns 0 on clean shutdown (including SIGINT/SIGTERM), 2 on flag
// errors and 1 on any other startup or transport failure.
package cli
