package mcpapps

import (
	"log/slog"
	"net"
	"net/http"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Options holds the settings applied by Option functions.
type Options struct {
	// Logger receives application logs. Nil means silent operation.
	Logger *slog.Logger

	// Config replaces the application's default configuration. It is
	// validated by the App constructor.
	Config *Config

	// TracerProvider overrides the global provider for tool call spans.
	TracerProvider trace.TracerProvider

	// MeterProvider overrides the global provider for tool call instruments.
	MeterProvider metric.MeterProvider

	// HTTPClient is used for upstream API requests (weather only).
	HTTPClient *http.Client

	// Listener serves the sse and http transports instead of listening on
	// Config.Server.Addr.
	Listener net.Listener

	// StdioTransport replaces stdin/stdout for the stdio transport.
	StdioTransport mcpgo.Transport

	// Instructions are advertised to clients during initialization.
	Instructions string
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for application output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithTracerProvider sets the tracer provider for tool call spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) {
		o.TracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider for tool call instruments.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) {
		o.MeterProvider = mp
	}
}

// WithHTTPClient sets the HTTP client for upstream API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithListener serves HTTP transports on l.
func WithListener(l net.Listener) Option {
	return func(o *Options) {
		o.Listener = l
	}
}

// WithStdioTransport replaces stdin/stdout for the stdio transport.
func WithStdioTransport(t mcpgo.Transport) Option {
	return func(o *Options) {
		o.StdioTransport = t
	}
}

// WithInstructions sets the server instructions sent on initialize.
func WithInstructions(instructions string) Option {
	return func(o *Options) {
		o.Instructions = instructions
	}
}
