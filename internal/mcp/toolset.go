package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/wagiedev/mcp-apps-go/internal/metrics"
)

const instrumentationName = "github.com/wagiedev/mcp-apps-go/internal/mcp"

// Toolset is a named, versioned catalog of tools that can be installed on
// any number of MCP servers.
type Toolset struct {
	name         string
	version      string
	instructions string
	log          *slog.Logger
	metrics      *metrics.Collector
	tracer       trace.Tracer

	meterProvider metric.MeterProvider
	callCounter   metric.Int64Counter
	callDuration  metric.Float64Histogram

	mu    sync.RWMutex
	tools map[string]*registeredTool
}

// registeredTool holds tool metadata and the closure that installs it with
// its concrete input and output types.
type registeredTool struct {
	tool    *mcpgo.Tool
	install func(*mcpgo.Server)
}

// Option configures a Toolset.
type Option func(*Toolset)

// WithLogger sets the parent logger for per-call loggers.
// If not set, logging is disabled.
func WithLogger(log *slog.Logger) Option {
	return func(ts *Toolset) {
		if log != nil {
			ts.log = log
		}
	}
}

// WithMetrics records tool call metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(ts *Toolset) {
		ts.metrics = c
	}
}

// WithTracerProvider sets the tracer provider used for tool call spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(ts *Toolset) {
		ts.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider sets the meter provider for the mcp.tool.calls and
// mcp.tool.duration instruments. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(ts *Toolset) {
		if mp != nil {
			ts.meterProvider = mp
		}
	}
}

// WithInstructions sets the instructions advertised to clients on initialize.
func WithInstructions(instructions string) Option {
	return func(ts *Toolset) {
		ts.instructions = instructions
	}
}

// NewToolset creates an empty catalog for a server called name.
func NewToolset(name, version string, opts ...Option) *Toolset {
	ts := &Toolset{
		name:    name,
		version: version,
		log:     slog.New(slog.DiscardHandler),
		tracer:  otel.GetTracerProvider().Tracer(instrumentationName),

		meterProvider: otel.GetMeterProvider(),

		tools: make(map[string]*registeredTool, 4),
	}

	for _, opt := range opts {
		opt(ts)
	}

	meter := ts.meterProvider.Meter(instrumentationName)

	ts.callCounter, _ = meter.Int64Counter(
		"mcp.tool.calls",
		metric.WithDescription("Total number of tool calls"),
		metric.WithUnit("{call}"),
	)
	ts.callDuration, _ = meter.Float64Histogram(
		"mcp.tool.duration",
		metric.WithDescription("Duration of tool calls"),
		metric.WithUnit("ms"),
	)

	ts.log = ts.log.With("component", "toolset", "server", name)

	return ts
}

// Name returns the server name.
func (ts *Toolset) Name() string {
	return ts.name
}

// Version returns the server version.
func (ts *Toolset) Version() string {
	return ts.version
}

// Logger returns the toolset logger.
func (ts *Toolset) Logger() *slog.Logger {
	return ts.log
}

// AddTool registers a typed tool handler with the catalog.
//
// If tool.InputSchema is nil it is inferred from In, so the catalog can list
// the schema before any server exists. Like the SDK's AddTool, it panics if
// the schema cannot be inferred. Registering a name twice replaces the
// earlier tool.
func AddTool[In, Out any](ts *Toolset, tool *mcpgo.Tool, handler mcpgo.ToolHandlerFor[In, Out]) {
	t := *tool

	if t.InputSchema == nil {
		schema, err := jsonschema.For[In](nil)
		if err != nil {
			panic(fmt.Sprintf("tool %q: infer input schema: %v", t.Name, err))
		}

		t.InputSchema = schema
	}

	wrapped := instrument(ts, t.Name, handler)

	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.tools[t.Name] = &registeredTool{
		tool: &t,
		install: func(s *mcpgo.Server) {
			installed := t
			mcpgo.AddTool(s, &installed, wrapped)
		},
	}

	ts.log.Debug("Registered tool", "tool", t.Name)
}

// Tools returns copies of the registered tool definitions, sorted by name.
func (ts *Toolset) Tools() []*mcpgo.Tool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	tools := make([]*mcpgo.Tool, 0, len(ts.tools))
	for _, rt := range ts.tools {
		t := *rt.tool
		tools = append(tools, &t)
	}

	slices.SortFunc(tools, func(a, b *mcpgo.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	return tools
}

// NewServer creates a server instance advertising the toolset's name and
// version with every registered tool installed.
func (ts *Toolset) NewServer() *mcpgo.Server {
	var opts *mcpgo.ServerOptions
	if ts.instructions != "" {
		opts = &mcpgo.ServerOptions{Instructions: ts.instructions}
	}

	server := mcpgo.NewServer(&mcpgo.Implementation{
		Name:    ts.name,
		Version: ts.version,
	}, opts)

	ts.mu.RLock()
	names := make([]string, 0, len(ts.tools))
	for name := range ts.tools {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		ts.tools[name].install(server)
	}
	ts.mu.RUnlock()

	ts.log.Debug("Server created", "tools", names)

	return server
}

// CallTool invokes a tool in-process. It starts a fresh server, connects a
// client over in-memory transports and issues tools/call, so arguments go
// through the same validation as remote calls.
func (ts *Toolset) CallTool(ctx context.Context, name string, args any) (*mcpgo.CallToolResult, error) {
	session, closeSession, err := ts.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer closeSession()

	result, err := session.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, fmt.Errorf("call tool %s: %w", name, err)
	}

	return result, nil
}

// Connect starts a fresh server and returns a client session connected to it
// over in-memory transports. The returned function closes both ends.
func (ts *Toolset) Connect(ctx context.Context) (*mcpgo.ClientSession, func(), error) {
	clientTransport, serverTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := ts.NewServer().Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("connect server: %w", err)
	}

	client := mcpgo.NewClient(&mcpgo.Implementation{
		Name:    ts.name + "-inprocess",
		Version: ts.version,
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		_ = serverSession.Close()
		return nil, nil, fmt.Errorf("connect client: %w", err)
	}

	closeFn := func() {
		if err := clientSession.Close(); err != nil {
			ts.log.Debug("Failed to close in-process client session", "error", err)
		}

		_ = serverSession.Wait()
	}

	return clientSession, closeFn, nil
}

// instrument wraps handler with call ids, logging, tracing, metrics and
// panic recovery.
func instrument[In, Out any](
	ts *Toolset,
	name string,
	handler mcpgo.ToolHandlerFor[In, Out],
) mcpgo.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcpgo.CallToolRequest, in In) (result *mcpgo.CallToolResult, out Out, err error) {
		callID := ulid.Make().String()
		log := ts.log.With("tool", name, "call_id", callID)

		ctx, span := ts.tracer.Start(ctx, "tools/call "+name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("mcp.server.name", ts.name),
				attribute.String("mcp.tool.name", name),
				attribute.String("mcp.call_id", callID),
			),
		)
		defer span.End()

		ctx = withCall(ctx, callID, log)
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				log.Error("Tool handler panicked", "panic", r)
				err = fmt.Errorf("tool %s panicked: %v", name, r)
				result = nil
			}

			elapsed := time.Since(start)
			status := "ok"

			switch {
			case err != nil:
				status = "error"

				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				log.Warn("Tool call failed", "error", err, "duration", elapsed)
			case result != nil && result.IsError:
				status = "error"

				span.SetStatus(codes.Error, "tool returned an error result")
				log.Debug("Tool call returned error result", "duration", elapsed)
			default:
				span.SetStatus(codes.Ok, "")
				log.Debug("Tool call completed", "duration", elapsed)
			}

			span.SetAttributes(attribute.String("mcp.tool.status", status))
			ts.metrics.RecordToolCall(name, status, elapsed)

			attrs := metric.WithAttributes(
				attribute.String("mcp.tool.name", name),
				attribute.String("mcp.tool.status", status),
			)
			ts.callCounter.Add(ctx, 1, attrs)
			ts.callDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
		}()

		return handler(ctx, req, in)
	}
}
