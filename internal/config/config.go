package config

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/wagiedev/mcp-apps-go/internal/errors"
)

// Config is the complete configuration of one MCP application process.
type Config struct {
	Server    ServerConfig    `yaml:"server" env:"SERVER"`
	Log       LogConfig       `yaml:"log" env:"LOG"`
	Metrics   MetricsConfig   `yaml:"metrics" env:"METRICS"`
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
	Weather   WeatherConfig   `yaml:"weather" env:"WEATHER"`
	Cache     CacheConfig     `yaml:"cache" env:"CACHE"`
}

// ServerConfig configures the MCP server instance and its transport.
type ServerConfig struct {
	// Name is the implementation name advertised during initialization.
	Name string `yaml:"name" env:"NAME"`

	// Version is the implementation version advertised during initialization.
	Version string `yaml:"version" env:"VERSION"`

	// Transport selects stdio, sse or http.
	Transport Transport `yaml:"transport" env:"TRANSPORT"`

	// Addr is the listen address for the sse and http transports.
	Addr string `yaml:"addr" env:"ADDR"`

	// SSEPath is where the SSE handler is mounted.
	SSEPath string `yaml:"sse_path" env:"SSE_PATH"`

	// HTTPPath is where the streamable HTTP handler is mounted.
	HTTPPath string `yaml:"http_path" env:"HTTP_PATH"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	// RateLimit is the per-client request rate for HTTP transports.
	// Zero disables inbound rate limiting.
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`

	// RateBurst is the per-client burst for HTTP transports.
	RateBurst int `yaml:"rate_burst" env:"RATE_BURST"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`

	// Format is text or json.
	Format string `yaml:"format" env:"FORMAT"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Path      string `yaml:"path" env:"PATH"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// WeatherConfig configures the National Weather Service client.
type WeatherConfig struct {
	BaseURL           string        `yaml:"base_url" env:"BASE_URL"`
	UserAgent         string        `yaml:"user_agent" env:"USER_AGENT"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestsPerSecond int           `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" env:"BURST"`
}

// CacheConfig configures the optional Redis lookup cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled" env:"ENABLED"`
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// DefaultConfig returns the configuration shared by all applications.
// Applications override Server.Name and Server.Addr.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Version:         "1.0.0",
			Transport:       TransportStdio,
			Addr:            ":8000",
			SSEPath:         "/sse",
			HTTPPath:        "/mcp",
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       20,
			RateBurst:       40,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "mcp",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Weather: WeatherConfig{
			BaseURL:           "https://api.weather.gov",
			UserAgent:         "weather-app/1.0",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
	}
}

// Validate checks the configuration and reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	fail := func(field, format string, args ...any) {
		errs = append(errs, &errors.ConfigError{Field: field, Err: fmt.Errorf(format, args...)})
	}

	if strings.TrimSpace(c.Server.Name) == "" {
		fail("server.name", "must not be empty")
	}

	transport, err := ParseTransport(string(c.Server.Transport))
	if err != nil {
		errs = append(errs, &errors.ConfigError{Field: "server.transport", Err: err})
	}

	if transport.IsHTTP() {
		if c.Server.Addr == "" {
			fail("server.addr", "required for %s transport", transport)
		}

		if !strings.HasPrefix(c.Server.SSEPath, "/") {
			fail("server.sse_path", "must start with /")
		}

		if !strings.HasPrefix(c.Server.HTTPPath, "/") {
			fail("server.http_path", "must start with /")
		}
	}

	if c.Server.ShutdownTimeout <= 0 {
		fail("server.shutdown_timeout", "must be positive")
	}

	if c.Server.RateLimit < 0 {
		fail("server.rate_limit", "must not be negative")
	}

	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		fail("server.rate_burst", "must be positive when rate_limit is set")
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, &errors.ConfigError{Field: "log.level", Err: err})
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		fail("log.format", "must be text or json, got %q", c.Log.Format)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		fail("metrics.path", "must start with /")
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.OTLPEndpoint == "" {
			fail("telemetry.otlp_endpoint", "required when telemetry is enabled")
		}

		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			fail("telemetry.sample_rate", "must be within [0, 1]")
		}
	}

	// A zero weather section belongs to an application that never calls NWS.
	if c.Weather != (WeatherConfig{}) {
		if u, err := url.Parse(c.Weather.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			fail("weather.base_url", "must be an absolute URL, got %q", c.Weather.BaseURL)
		}

		if c.Weather.RequestsPerSecond <= 0 {
			fail("weather.requests_per_second", "must be positive")
		}
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			fail("cache.addr", "required when cache is enabled")
		}

		if c.Cache.TTL <= 0 {
			fail("cache.ttl", "must be positive")
		}
	}

	return stderrors.Join(errs...)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}

	return level, nil
}
