package weather

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mcp-apps-go/internal/config"
)

const forecastFixture = `{
  "properties": {
    "periods": [
      {
        "number": 1,
        "name": "Tonight",
        "temperature": 45,
        "temperatureUnit": "F",
        "windSpeed": "5 to 10 mph",
        "windDirection": "NW",
        "shortForecast": "Mostly Clear"
      },
      {
        "number": 2,
        "name": "Wednesday",
        "temperature": 61,
        "temperatureUnit": "F",
        "windSpeed": "10 mph",
        "windDirection": "W",
        "shortForecast": "Sunny"
      }
    ]
  }
}`

// fakeNWS serves /points and /gridpoints like api.weather.gov.
type fakeNWS struct {
	*httptest.Server

	pointsStatus   int
	pointsBody     string
	forecastStatus int
	forecastBody   string

	pointsHits   atomic.Int32
	forecastHits atomic.Int32
	lastHeaders  atomic.Pointer[http.Header]
}

func newFakeNWS(t *testing.T) *fakeNWS {
	t.Helper()

	f := &fakeNWS{
		pointsStatus:   http.StatusOK,
		forecastStatus: http.StatusOK,
		forecastBody:   forecastFixture,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /points/{coords}", func(w http.ResponseWriter, r *http.Request) {
		f.pointsHits.Add(1)
		h := r.Header.Clone()
		f.lastHeaders.Store(&h)

		body := f.pointsBody
		if body == "" {
			body = pointsBody(t, f.URL+"/gridpoints/OKX/33,35/forecast")
		}

		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(f.pointsStatus)
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("GET /gridpoints/{office}/{grid}/forecast", func(w http.ResponseWriter, r *http.Request) {
		f.forecastHits.Add(1)

		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(f.forecastStatus)
		_, _ = w.Write([]byte(f.forecastBody))
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	return f
}

func pointsBody(t *testing.T, forecastURL string) string {
	t.Helper()

	data, err := json.Marshal(map[string]any{
		"properties": map[string]any{
			"gridId":   "OKX",
			"gridX":    33,
			"gridY":    35,
			"forecast": forecastURL,
		},
	})
	require.NoError(t, err)

	return string(data)
}

func testConfig(baseURL string) config.WeatherConfig {
	cfg := config.DefaultConfig().Weather
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	cfg.RequestsPerSecond = 100
	cfg.Burst = 100

	return cfg
}

func lines(s string) []string {
	return strings.Split(s, "\n")
}
