//go:build integration

package integration

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func newFakeNWS(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("GET /points/{coords}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("coords") != "39.7456,-97.0892" {
			http.NotFound(w, r)
			return
		}

		_, _ = w.Write([]byte(`{"properties":{"forecast":"` + srv.URL + `/gridpoints/TOP/31,80/forecast"}}`))
	})
	mux.HandleFunc("GET /gridpoints/TOP/31,80/forecast", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"properties":{"periods":[` +
			`{"name":"Tonight","temperature":48,"temperatureUnit":"F","windSpeed":"10 mph","windDirection":"NW","shortForecast":"Clear"},` +
			`{"name":"Wednesday","temperature":66,"temperatureUnit":"F","windSpeed":"5 mph","windDirection":"W","shortForecast":"Sunny"}` +
			`]}}`))
	})

	return srv
}

func TestWeather_SSE(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	nws := newFakeNWS(t)

	addr := freeAddr(t)
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	cmd := exec.Command(binary("mcp-weather"))
	cmd.Env = append(os.Environ(),
		"PORT="+port,
		"MCP_WEATHER_WEATHER_BASE_URL="+nws.URL,
	)
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		_ = cmd.Wait()
	})

	baseURL := "http://127.0.0.1:" + port
	waitHealthy(t, baseURL)

	session := connect(ctx, t, &mcpgo.SSEClientTransport{Endpoint: baseURL + "/sse"})

	result, err := session.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      "getforecast",
		Arguments: map[string]any{"latitude": "39.7456", "longitude": "-97.0892"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t,
		"Forecast for 39.7456, -97.0892:\n\n"+
			"Tonight:\nTemperature: 48°F\nWind: 10 mph NW\nClear\n---\n"+
			"Wednesday:\nTemperature: 66°F\nWind: 5 mph W\nSunny\n---",
		resultText(result),
	)

	result, err = session.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      "getforecast",
		Arguments: map[string]any{"latitude": "10", "longitude": "10"},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Contains(t, resultText(result), "Failed to retrieve grid point data for coordinates: 10, 10.")
}
