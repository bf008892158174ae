package mcpapps_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	mcpapps "github.com/wagiedev/mcp-apps-go"
)

func resultText(result *mcpapps.CallToolResult) string {
	var text string

	for _, c := range result.Content {
		if tc, ok := c.(*mcpgo.TextContent); ok {
			text += tc.Text
		}
	}

	return text
}

func TestNewCalculator_Defaults(t *testing.T) {
	app, err := mcpapps.NewCalculator(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	require.Equal(t, "mcp-calc", app.Name())
	require.Equal(t, mcpapps.TransportStdio, app.Config().Server.Transport)

	tools := app.Tools()
	require.Len(t, tools, 2)
	require.Equal(t, "add", tools[0].Name)
	require.Equal(t, "Add two numbers.", tools[0].Description)
	require.Equal(t, "subtract", tools[1].Name)
	require.Equal(t, "Subtract two numbers.", tools[1].Description)
}

func TestCalculator_CallTool(t *testing.T) {
	ctx := context.Background()

	app, err := mcpapps.NewCalculator(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	result, err := app.CallTool(ctx, "add", map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	require.Equal(t, "5", resultText(result))
	require.Equal(t, map[string]any{"result": float64(5)}, result.StructuredContent)

	result, err = app.CallTool(ctx, "subtract", map[string]any{"a": 0, "b": 7})
	require.NoError(t, err)
	require.Equal(t, "-7", resultText(result))
}

func TestNewCalculator_InvalidConfig(t *testing.T) {
	cfg := mcpapps.DefaultCalculatorConfig()
	cfg.Server.Transport = "pigeon"
	cfg.Log.Format = "xml"

	_, err := mcpapps.NewCalculator(context.Background(), mcpapps.WithConfig(cfg))
	require.Error(t, err)
	require.ErrorIs(t, err, mcpapps.ErrUnknownTransport)

	configErr, ok := errors.AsType[*mcpapps.ConfigError](err)
	require.True(t, ok)
	require.Equal(t, "server.transport", configErr.Field)
}

func TestNewCalculator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mcpapps.NewCalculator(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCalculator_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx := context.Background()

	app, err := mcpapps.NewCalculator(ctx, mcpapps.WithTracerProvider(tp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	_, err = app.CallTool(ctx, "subtract", map[string]any{"a": 5, "b": 3})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "tools/call subtract", spans[0].Name())
}

func TestCalculator_OTelMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	ctx := context.Background()

	app, err := mcpapps.NewCalculator(ctx, mcpapps.WithMeterProvider(mp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	_, err = app.CallTool(ctx, "add", map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := make([]string, 0, 2)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names = append(names, m.Name)
	}

	require.ElementsMatch(t, []string{"mcp.tool.calls", "mcp.tool.duration"}, names)
}

func TestWithSession(t *testing.T) {
	ctx := context.Background()

	app, err := mcpapps.NewCalculator(ctx, mcpapps.WithInstructions("Integer arithmetic."))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	err = mcpapps.WithSession(ctx, app, func(s *mcpgo.ClientSession) error {
		require.Equal(t, "Integer arithmetic.", s.InitializeResult().Instructions)

		list, err := s.ListTools(ctx, &mcpgo.ListToolsParams{})
		require.NoError(t, err)
		require.Len(t, list.Tools, 2)

		return nil
	})
	require.NoError(t, err)

	sentinel := errors.New("stop")
	err = mcpapps.WithSession(ctx, app, func(*mcpgo.ClientSession) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}

func TestWithSession_CancelledContext(t *testing.T) {
	app, err := mcpapps.NewCalculator(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = mcpapps.WithSession(ctx, app, func(*mcpgo.ClientSession) error {
		t.Error("callback should not be called with cancelled context")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCalculator_RunStdio(t *testing.T) {
	clientTransport, serverTransport := mcpgo.NewInMemoryTransports()

	app, err := mcpapps.NewCalculator(context.Background(), mcpapps.WithStdioTransport(serverTransport))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- app.Run(ctx) }()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), clientTransport, nil)
	require.NoError(t, err)

	result, err := session.CallTool(context.Background(), &mcpgo.CallToolParams{
		Name:      "add",
		Arguments: map[string]any{"a": -1, "b": 1},
	})
	require.NoError(t, err)
	require.Equal(t, "0", resultText(result))

	_ = session.Close()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}

	require.NoError(t, app.Close(context.Background()))
}

func TestCalculator_RunStreamableHTTP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := mcpapps.DefaultCalculatorConfig()
	cfg.Server.Transport = "streamable-http"

	app, err := mcpapps.NewCalculator(context.Background(), mcpapps.WithConfig(cfg), mcpapps.WithListener(ln))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- app.Run(ctx) }()

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &mcpgo.StreamableClientTransport{
		Endpoint: "http://" + ln.Addr().String() + "/mcp",
	}, nil)
	require.NoError(t, err)

	result, err := session.CallTool(context.Background(), &mcpgo.CallToolParams{
		Name:      "subtract",
		Arguments: map[string]any{"a": 5, "b": 3},
	})
	require.NoError(t, err)
	require.Equal(t, "2", resultText(result))

	_ = session.Close()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}
}

func newFakeNWS(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	var pointsHits int

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("GET /points/{coords}", func(w http.ResponseWriter, _ *http.Request) {
		pointsHits++
		_, _ = w.Write([]byte(`{"properties":{"forecast":"` + srv.URL + `/gridpoints/TOP/31,80/forecast"}}`))
	})
	mux.HandleFunc("GET /gridpoints/TOP/31,80/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"properties":{"periods":[{"name":"Today","temperature":72,"temperatureUnit":"F",` +
			`"windSpeed":"5 mph","windDirection":"S","shortForecast":"Sunny"}]}}`))
	})

	return srv, &pointsHits
}

func TestNewWeather_Defaults(t *testing.T) {
	app, err := mcpapps.NewWeather(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	require.Equal(t, "weather", app.Name())
	require.Equal(t, mcpapps.TransportSSE, app.Config().Server.Transport)
	require.Equal(t, ":3001", app.Config().Server.Addr)

	tools := app.Tools()
	require.Len(t, tools, 1)
	require.Equal(t, "getforecast", tools[0].Name)
}

func TestWeather_CallTool(t *testing.T) {
	nws, _ := newFakeNWS(t)

	cfg := mcpapps.DefaultWeatherConfig()
	cfg.Weather.BaseURL = nws.URL

	ctx := context.Background()

	app, err := mcpapps.NewWeather(ctx, mcpapps.WithConfig(cfg), mcpapps.WithHTTPClient(nws.Client()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	result, err := app.CallTool(ctx, "getforecast", map[string]any{"latitude": "39.7456", "longitude": "-97.0892"})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t,
		"Forecast for 39.7456, -97.0892:\n\nToday:\nTemperature: 72°F\nWind: 5 mph S\nSunny\n---",
		resultText(result),
	)
}

func TestWeather_Cache(t *testing.T) {
	nws, pointsHits := newFakeNWS(t)
	mr := miniredis.RunT(t)

	cfg := mcpapps.DefaultWeatherConfig()
	cfg.Weather.BaseURL = nws.URL
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = mr.Addr()

	ctx := context.Background()

	app, err := mcpapps.NewWeather(ctx, mcpapps.WithConfig(cfg))
	require.NoError(t, err)

	args := map[string]any{"latitude": "39.7456", "longitude": "-97.0892"}

	for range 3 {
		result, err := app.CallTool(ctx, "getforecast", args)
		require.NoError(t, err)
		require.False(t, result.IsError)
	}

	require.Equal(t, 1, *pointsHits)
	require.True(t, mr.Exists("nws:points:39.7456,-97.0892"))
	require.NoError(t, app.Close(ctx))
}

func TestWeather_CacheUnavailable(t *testing.T) {
	nws, _ := newFakeNWS(t)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := mcpapps.DefaultWeatherConfig()
	cfg.Weather.BaseURL = nws.URL
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = addr

	ctx := context.Background()

	app, err := mcpapps.NewWeather(ctx, mcpapps.WithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	result, err := app.CallTool(ctx, "getforecast", map[string]any{"latitude": "39.7456", "longitude": "-97.0892"})
	require.NoError(t, err)
	require.False(t, result.IsError)
}
