package weather

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mcp-apps-go/internal/cache"
	"github.com/wagiedev/mcp-apps-go/internal/config"
	"github.com/wagiedev/mcp-apps-go/internal/errors"
	"github.com/wagiedev/mcp-apps-go/internal/metrics"
)

func TestClient_PointsURL(t *testing.T) {
	c := NewClient(testConfig("https://api.weather.gov/"))

	require.Equal(t, "https://api.weather.gov/points/40.7128,-74.0060", c.PointsURL(40.7128, -74.006))
	require.Equal(t, "https://api.weather.gov/points/39.0000,-77.1235", c.PointsURL(39, -77.12346))
}

func TestClient_PointsAndForecast(t *testing.T) {
	nws := newFakeNWS(t)
	c := NewClient(testConfig(nws.URL))
	ctx := context.Background()

	point, err := c.Points(ctx, 40.7128, -74.006)
	require.NoError(t, err)
	require.Equal(t, "OKX", point.Properties.GridID)
	require.Equal(t, nws.URL+"/gridpoints/OKX/33,35/forecast", point.Properties.Forecast)

	headers := nws.lastHeaders.Load()
	require.NotNil(t, headers)
	assert.Equal(t, "weather-app/1.0", headers.Get("User-Agent"))
	assert.Equal(t, "application/geo+json", headers.Get("Accept"))

	forecast, err := c.Forecast(ctx, point.Properties.Forecast)
	require.NoError(t, err)
	require.Len(t, forecast.Properties.Periods, 2)
	require.Equal(t, "Tonight", forecast.Properties.Periods[0].Name)
	require.NotNil(t, forecast.Properties.Periods[0].Temperature)
	require.InDelta(t, 45, *forecast.Properties.Periods[0].Temperature, 0)
}

func TestClient_UpstreamStatusError(t *testing.T) {
	nws := newFakeNWS(t)
	nws.pointsStatus = http.StatusNotFound
	nws.pointsBody = `{"title":"Data Unavailable For Requested Point"}`

	c := NewClient(testConfig(nws.URL))

	_, err := c.Points(context.Background(), 51.5, -0.12)
	require.Error(t, err)

	upstreamErr, ok := stderrors.AsType[*errors.UpstreamError](err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, upstreamErr.StatusCode)
	require.Equal(t, c.PointsURL(51.5, -0.12), upstreamErr.URL)
	require.ErrorContains(t, err, "HTTP error! status: 404")
}

func TestClient_DecodeError(t *testing.T) {
	nws := newFakeNWS(t)
	nws.forecastBody = `{"properties":`

	c := NewClient(testConfig(nws.URL))

	_, err := c.Forecast(context.Background(), nws.URL+"/gridpoints/OKX/1,1/forecast")
	require.ErrorContains(t, err, "failed to decode response")

	var upstreamErr *errors.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
}

func TestClient_ConnectionError(t *testing.T) {
	nws := newFakeNWS(t)
	url := nws.URL
	nws.Close()

	c := NewClient(testConfig(url))

	_, err := c.Points(context.Background(), 40, -74)
	require.Error(t, err)

	upstreamErr, ok := stderrors.AsType[*errors.UpstreamError](err)
	require.True(t, ok)
	require.Zero(t, upstreamErr.StatusCode)
}

func TestClient_RateLimited(t *testing.T) {
	nws := newFakeNWS(t)

	cfg := testConfig(nws.URL)
	cfg.RequestsPerSecond = 1
	cfg.Burst = 1

	c := NewClient(cfg)
	ctx := context.Background()

	_, err := c.Points(ctx, 40, -74)
	require.NoError(t, err)

	_, err = c.Points(ctx, 41, -74)
	require.ErrorIs(t, err, errors.ErrRateLimited)
	require.Equal(t, int32(1), nws.pointsHits.Load())
}

func TestClient_PointsCache(t *testing.T) {
	nws := newFakeNWS(t)
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := cache.NewRedis(ctx, config.CacheConfig{Addr: mr.Addr(), TTL: time.Hour}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	collector := metrics.NewCollector("test")
	c := NewClient(testConfig(nws.URL), WithCache(store, time.Hour), WithMetrics(collector))

	first, err := c.Points(ctx, 40.7128, -74.006)
	require.NoError(t, err)

	second, err := c.Points(ctx, 40.71281, -74.00601)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, int32(1), nws.pointsHits.Load())
	require.True(t, mr.Exists("nws:points:40.7128,-74.0060"))
	require.Equal(t, time.Hour, mr.TTL("nws:points:40.7128,-74.0060"))

	count, err := testutil.GatherAndCount(collector.Registry(), "test_cache_lookups_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestClient_PointsWithoutForecastNotCached(t *testing.T) {
	nws := newFakeNWS(t)
	nws.pointsBody = `{"properties":{}}`

	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := cache.NewRedis(ctx, config.CacheConfig{Addr: mr.Addr(), TTL: time.Hour}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	c := NewClient(testConfig(nws.URL), WithCache(store, time.Hour))

	point, err := c.Points(ctx, 40, -74)
	require.NoError(t, err)
	require.Empty(t, point.Properties.Forecast)
	require.False(t, mr.Exists("nws:points:40.0000,-74.0000"))
}

func TestClient_CacheFailureFallsBackToUpstream(t *testing.T) {
	nws := newFakeNWS(t)
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, err := cache.NewRedis(ctx, config.CacheConfig{Addr: mr.Addr(), TTL: time.Hour}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	mr.Close()

	c := NewClient(testConfig(nws.URL), WithCache(store, time.Hour))

	point, err := c.Points(ctx, 40, -74)
	require.NoError(t, err)
	require.NotEmpty(t, point.Properties.Forecast)
	require.Equal(t, int32(1), nws.pointsHits.Load())
}
