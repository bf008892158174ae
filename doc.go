// Package mcpapps provides small Model Context Protocol servers built on the
// official Go SDK.
//
// Two applications are available: a calculator exposing the add and subtract
// tools, and a weather server exposing getforecast, backed by the US National
// Weather Service API.
//
// # Running a Server
//
// Construct an App and hand it the process context. Run blocks until the
// context is canceled or the transport fails:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	app, err := mcpapps.NewCalculator(ctx,
//	    mcpapps.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close(context.Background())
//
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The transport is chosen by configuration: stdio (default), sse or http
// (streamable HTTP). Configuration is loaded with LoadConfig from defaults,
// an optional YAML file and environment variables.
//
// # In-Process Calls
//
// Tools can be called without a transport, through the same validation
// path a remote client would use:
//
//	result, err := app.CallTool(ctx, "add", map[string]any{"a": 2, "b": 3})
//
// WithSession opens a full client session for listing tools and making
// several calls:
//
//	err := mcpapps.WithSession(ctx, app, func(s *mcp.ClientSession) error {
//	    tools, err := s.ListTools(ctx, &mcp.ListToolsParams{})
//	    ...
//	})
//
// # Logging
//
// Applications log through log/slog. Without WithLogger they are silent.
// Loggers must not write to stdout when the stdio transport is used.
package mcpapps
