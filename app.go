package mcpapps

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-apps-go/internal/cache"
	"github.com/wagiedev/mcp-apps-go/internal/calc"
	"github.com/wagiedev/mcp-apps-go/internal/mcp"
	"github.com/wagiedev/mcp-apps-go/internal/metrics"
	"github.com/wagiedev/mcp-apps-go/internal/server"
	"github.com/wagiedev/mcp-apps-go/internal/telemetry"
	"github.com/wagiedev/mcp-apps-go/internal/weather"
)

// Tool is the definition of a registered tool.
type Tool = mcpgo.Tool

// CallToolResult is the result of a tool call.
type CallToolResult = mcpgo.CallToolResult

// App is one MCP application: its tools plus the logging, metrics,
// telemetry and cache infrastructure they use.
//
// Lifecycle: construct with NewCalculator or NewWeather, call Run once, then
// Close. Tools and CallTool may be used at any time before Close.
type App struct {
	cfg        *Config
	log        *slog.Logger
	toolset    *mcp.Toolset
	metrics    *metrics.Collector
	runnerOpts []server.Option
	closers    []func(context.Context) error
}

// NewCalculator creates the calculator application with the add and
// subtract tools. Defaults come from DefaultCalculatorConfig.
func NewCalculator(ctx context.Context, opts ...Option) (*App, error) {
	return newApp(ctx, DefaultCalculatorConfig, opts, func(_ context.Context, a *App, _ *Options) error {
		calc.Register(a.toolset)
		return nil
	})
}

// NewWeather creates the weather application with the getforecast tool.
// Defaults come from DefaultWeatherConfig.
//
// When the cache is enabled but Redis is unreachable, the application logs a
// warning and runs without a cache.
func NewWeather(ctx context.Context, opts ...Option) (*App, error) {
	return newApp(ctx, DefaultWeatherConfig, opts, func(ctx context.Context, a *App, o *Options) error {
		clientOpts := []weather.ClientOption{
			weather.WithLogger(a.log),
			weather.WithMetrics(a.metrics),
		}

		if o.HTTPClient != nil {
			clientOpts = append(clientOpts, weather.WithHTTPClient(o.HTTPClient))
		}

		if a.cfg.Cache.Enabled {
			store, err := cache.NewRedis(ctx, a.cfg.Cache, a.log)
			if err != nil {
				a.log.Warn("Cache unavailable, continuing without it", "addr", a.cfg.Cache.Addr, "error", err)
			} else {
				a.closers = append(a.closers, func(context.Context) error { return store.Close() })
				clientOpts = append(clientOpts, weather.WithCache(store, a.cfg.Cache.TTL))
			}
		}

		weather.Register(a.toolset, weather.NewClient(a.cfg.Weather, clientOpts...))

		return nil
	})
}

func newApp(
	ctx context.Context,
	defaults func() *Config,
	opts []Option,
	register func(context.Context, *App, *Options) error,
) (*App, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	options := applyOptions(opts)

	cfg := options.Config
	if cfg == nil {
		cfg = defaults()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	a := &App{
		cfg: cfg,
		log: log,
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewCollector(cfg.Metrics.Namespace)
	}

	providers, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Server.Name, cfg.Server.Version, log)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, providers.Shutdown)

	toolsetOpts := []mcp.Option{
		mcp.WithLogger(log),
		mcp.WithMetrics(a.metrics),
		mcp.WithInstructions(options.Instructions),
	}

	if options.TracerProvider != nil {
		toolsetOpts = append(toolsetOpts, mcp.WithTracerProvider(options.TracerProvider))
	}

	if options.MeterProvider != nil {
		toolsetOpts = append(toolsetOpts, mcp.WithMeterProvider(options.MeterProvider))
	}

	a.toolset = mcp.NewToolset(cfg.Server.Name, cfg.Server.Version, toolsetOpts...)

	if err := register(ctx, a, options); err != nil {
		_ = a.Close(context.WithoutCancel(ctx))
		return nil, err
	}

	a.runnerOpts = []server.Option{
		server.WithLogger(log),
		server.WithMetrics(a.metrics),
	}

	if options.Listener != nil {
		a.runnerOpts = append(a.runnerOpts, server.WithListener(options.Listener))
	}

	if options.StdioTransport != nil {
		a.runnerOpts = append(a.runnerOpts, server.WithStdioTransport(options.StdioTransport))
	}

	return a, nil
}

// Config returns the validated configuration.
func (a *App) Config() *Config {
	return a.cfg
}

// Name returns the server name advertised to clients.
func (a *App) Name() string {
	return a.toolset.Name()
}

// Tools returns the registered tool definitions, sorted by name.
func (a *App) Tools() []*Tool {
	return a.toolset.Tools()
}

// NewServer creates a server instance with every tool installed, for callers
// that manage transports themselves.
func (a *App) NewServer() *mcpgo.Server {
	return a.toolset.NewServer()
}

// CallTool invokes a tool in-process through an in-memory client session.
func (a *App) CallTool(ctx context.Context, name string, args any) (*CallToolResult, error) {
	return a.toolset.CallTool(ctx, name, args)
}

// Run serves the application on the configured transport and blocks until
// ctx is canceled or the transport fails. Cancellation returns nil.
func (a *App) Run(ctx context.Context) error {
	tools := a.toolset.Tools()

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}

	a.log.Info("Starting MCP server",
		"name", a.cfg.Server.Name,
		"version", a.cfg.Server.Version,
		"transport", string(a.cfg.Server.Transport),
		"tools", names,
	)

	return server.NewRunner(a.cfg, a.runnerOpts...).Run(ctx, a.toolset.NewServer())
}

// Close releases the cache connection and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error

	for _, closeFn := range slices.Backward(a.closers) {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	a.closers = nil

	return errors.Join(errs...)
}
