// Package weather implements the getforecast tool on top of the US National
// Weather Service API.
package weather

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/wagiedev/mcp-apps-go/internal/cache"
	"github.com/wagiedev/mcp-apps-go/internal/config"
	"github.com/wagiedev/mcp-apps-go/internal/errors"
	"github.com/wagiedev/mcp-apps-go/internal/metrics"
)

const (
	acceptHeader = "application/geo+json"

	// limiterKey is the token bucket shared by all outbound requests.
	limiterKey = "nws"

	maxResponseBytes = 4 << 20
)

type limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Point is the subset of a /points response used to locate a forecast.
type Point struct {
	Properties PointProperties `json:"properties"`
}

// PointProperties holds the grid coordinates and forecast links of a point.
type PointProperties struct {
	GridID         string `json:"gridId,omitempty"`
	GridX          int    `json:"gridX,omitempty"`
	GridY          int    `json:"gridY,omitempty"`
	Forecast       string `json:"forecast,omitempty"`
	ForecastHourly string `json:"forecastHourly,omitempty"`
}

// Forecast is the subset of a gridpoint forecast response used for display.
type Forecast struct {
	Properties ForecastProperties `json:"properties"`
}

// ForecastProperties holds the forecast periods.
type ForecastProperties struct {
	Periods []Period `json:"periods"`
}

// Period is one forecast period, e.g. "Tonight".
// Temperature is nil when the upstream value is null or absent.
type Period struct {
	Number          int      `json:"number"`
	Name            string   `json:"name"`
	Temperature     *float64 `json:"temperature"`
	TemperatureUnit string   `json:"temperatureUnit"`
	WindSpeed       string   `json:"windSpeed"`
	WindDirection   string   `json:"windDirection"`
	ShortForecast   string   `json:"shortForecast"`
}

// Client talks to the NWS API.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   limiter
	cache     cache.Cache
	cacheTTL  time.Duration
	metrics   *metrics.Collector
	log       *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is left untouched.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCache caches points lookups in store for ttl.
func WithCache(store cache.Cache, ttl time.Duration) ClientOption {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithMetrics records upstream requests and cache lookups on m.
func WithMetrics(m *metrics.Collector) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the client logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient creates an NWS client from cfg.
func NewClient(cfg config.WeatherConfig, opts ...ClientOption) *Client {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerSecond
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:     cfg.RequestsPerSecond,
			Burst:    burst,
			Interval: time.Second,
		}),
		cache: cache.Nop{},
		log:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.log = c.log.With("component", "weather_client")

	return c
}

// PointsURL returns the /points URL for the coordinates, rounded to four
// decimal places.
func (c *Client) PointsURL(lat, lon float64) string {
	return fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, lat, lon)
}

func pointsCacheKey(lat, lon float64) string {
	return fmt.Sprintf("nws:points:%.4f,%.4f", lat, lon)
}

// Points resolves coordinates to their NWS grid point. Results are served
// from the cache when possible.
func (c *Client) Points(ctx context.Context, lat, lon float64) (*Point, error) {
	key := pointsCacheKey(lat, lon)

	var point Point

	err := cache.GetJSON(ctx, c.cache, key, &point)
	switch {
	case err == nil:
		c.metrics.RecordCacheHit()
		c.log.Debug("Points cache hit", "key", key)

		return &point, nil
	case stderrors.Is(err, errors.ErrCacheMiss):
		c.metrics.RecordCacheMiss()
	default:
		c.metrics.RecordCacheMiss()
		c.log.Warn("Points cache lookup failed", "key", key, "error", err)
	}

	if err := c.getJSON(ctx, c.PointsURL(lat, lon), &point); err != nil {
		return nil, err
	}

	if point.Properties.Forecast != "" {
		if err := cache.SetJSON(ctx, c.cache, key, &point, c.cacheTTL); err != nil {
			c.log.Warn("Failed to cache points response", "key", key, "error", err)
		}
	}

	return &point, nil
}

// Forecast fetches the forecast at forecastURL, as returned by Points.
func (c *Client) Forecast(ctx context.Context, forecastURL string) (*Forecast, error) {
	var forecast Forecast
	if err := c.getJSON(ctx, forecastURL, &forecast); err != nil {
		return nil, err
	}

	return &forecast, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dest any) error {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	if !c.limiter.Allow(ctx, limiterKey) {
		c.log.Warn("Upstream request throttled", "url", rawURL)
		return fmt.Errorf("request to %s: %w", rawURL, errors.ErrRateLimited)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &errors.UpstreamError{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamRequest(host, 0)
		return &errors.UpstreamError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamRequest(host, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &errors.UpstreamError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dest); err != nil {
		return &errors.UpstreamError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	return nil
}
