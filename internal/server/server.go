// Package server runs an MCP server over stdio, SSE or streamable HTTP.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/mcp-apps-go/internal/config"
	"github.com/wagiedev/mcp-apps-go/internal/errors"
	"github.com/wagiedev/mcp-apps-go/internal/metrics"
)

const readHeaderTimeout = 10 * time.Second

// Runner serves one MCP server instance on the configured transport.
type Runner struct {
	server   config.ServerConfig
	metrics  config.MetricsConfig
	stdio    mcpgo.Transport
	listener net.Listener

	collector *metrics.Collector
	log       *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics records HTTP metrics on c and serves them when enabled.
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Runner) {
		r.collector = c
	}
}

// WithListener serves HTTP transports on l instead of listening on the
// configured address.
func WithListener(l net.Listener) Option {
	return func(r *Runner) {
		r.listener = l
	}
}

// WithStdioTransport replaces the stdio transport, e.g. with an
// mcp.IOTransport in tests.
func WithStdioTransport(t mcpgo.Transport) Option {
	return func(r *Runner) {
		r.stdio = t
	}
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		server:  cfg.Server,
		metrics: cfg.Metrics,
		stdio:   &mcpgo.StdioTransport{},
		log:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.server.Transport = config.Transport(config.NormalizeTransport(string(r.server.Transport)))
	r.log = r.log.With("component", "server", "transport", string(r.server.Transport))

	return r
}

// Run serves server until ctx is canceled or the transport fails.
// Cancellation is a clean shutdown and returns nil.
func (r *Runner) Run(ctx context.Context, server *mcpgo.Server) error {
	transport, err := config.ParseTransport(string(r.server.Transport))
	if err != nil {
		return err
	}

	switch transport {
	case config.TransportStdio:
		return r.runStdio(ctx, server)
	default:
		return r.runHTTP(ctx, server)
	}
}

func (r *Runner) runStdio(ctx context.Context, server *mcpgo.Server) error {
	r.log.Info("Serving over stdio")

	err := server.Run(ctx, r.stdio)
	if err == nil || ctx.Err() != nil || stderrors.Is(err, io.EOF) {
		r.log.Info("Server stopped")
		return nil
	}

	return &errors.TransportError{Transport: string(config.TransportStdio), Err: err}
}

func (r *Runner) runHTTP(ctx context.Context, server *mcpgo.Server) error {
	transport := string(r.server.Transport)

	ln := r.listener
	if ln == nil {
		var err error

		ln, err = net.Listen("tcp", r.server.Addr)
		if err != nil {
			return &errors.TransportError{Transport: transport, Err: fmt.Errorf("failed to listen on %s: %w", r.server.Addr, err)}
		}
	}

	srv := &http.Server{
		Handler:           r.Handler(ctx, server),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r.log.Info("Serving over HTTP", "addr", ln.Addr().String(), "endpoint", r.Endpoint())

		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return &errors.TransportError{Transport: transport, Err: err}
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.server.ShutdownTimeout)
		defer cancel()

		r.log.Info("Shutting down HTTP server", "timeout", r.server.ShutdownTimeout)

		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.log.Warn("Graceful shutdown failed, closing connections", "error", err)
			_ = srv.Close()
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	r.log.Info("Server stopped")

	return nil
}

// Endpoint returns the path of the MCP endpoint for HTTP transports.
func (r *Runner) Endpoint() string {
	if r.server.Transport == config.TransportSSE {
		return r.server.SSEPath
	}

	return r.server.HTTPPath
}

// Handler returns the HTTP handler for the SSE or streamable HTTP transport,
// with /healthz, the metrics endpoint and the middleware chain.
// The rate limiter's background sweep stops when ctx is done.
func (r *Runner) Handler(ctx context.Context, server *mcpgo.Server) http.Handler {
	getServer := func(*http.Request) *mcpgo.Server { return server }

	mux := http.NewServeMux()

	var mcpHandler http.Handler
	if r.server.Transport == config.TransportSSE {
		mcpHandler = mcpgo.NewSSEHandler(getServer, nil)
	} else {
		mcpHandler = mcpgo.NewStreamableHTTPHandler(getServer, nil)
	}

	mux.Handle(r.Endpoint(), mcpHandler)
	mux.HandleFunc("GET /healthz", healthz)

	if r.metrics.Enabled && r.collector != nil {
		mux.Handle("GET "+r.metrics.Path, r.collector.Handler())
	}

	middlewares := []Middleware{
		Recovery(r.log),
		RequestLogger(r.log, r.collector, r.route),
	}

	if r.server.RateLimit > 0 {
		middlewares = append(middlewares, RateLimiter(ctx, r.server.RateLimit, r.server.RateBurst, r.log))
	}

	return Chain(mux, middlewares...)
}

func (r *Runner) route(path string) string {
	switch path {
	case r.Endpoint(), "/healthz":
		return path
	case r.metrics.Path:
		if r.metrics.Enabled {
			return path
		}
	}

	return "other"
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   code,
		"message": message,
	})
}
