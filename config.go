package mcpapps

import (
	"github.com/wagiedev/mcp-apps-go/internal/config"
)

// Re-export configuration types from internal package.
type (
	// Config is the complete configuration of one application process.
	Config = config.Config

	// ServerConfig configures the server instance and its transport.
	ServerConfig = config.ServerConfig

	// LogConfig configures the slog logger.
	LogConfig = config.LogConfig

	// MetricsConfig configures the Prometheus endpoint.
	MetricsConfig = config.MetricsConfig

	// TelemetryConfig configures OpenTelemetry export.
	TelemetryConfig = config.TelemetryConfig

	// WeatherConfig configures the National Weather Service client.
	WeatherConfig = config.WeatherConfig

	// CacheConfig configures the optional Redis lookup cache.
	CacheConfig = config.CacheConfig

	// Transport names a server transport.
	Transport = config.Transport
)

// Supported transports.
const (
	TransportStdio = config.TransportStdio
	TransportSSE   = config.TransportSSE
	TransportHTTP  = config.TransportHTTP
)

// Application names, used as the default server names.
const (
	CalculatorName = "mcp-calc"
	WeatherName    = "weather"
)

// Environment variable prefixes read by LoadConfig in the binaries.
const (
	CalculatorEnvPrefix = "MCP_CALC"
	WeatherEnvPrefix    = "MCP_WEATHER"
)

// DefaultWeatherPort is the port the weather server listens on when
// neither configuration nor PORT say otherwise.
const DefaultWeatherPort = "3001"

// DefaultCalculatorConfig returns the calculator defaults: stdio transport,
// server name mcp-calc.
func DefaultCalculatorConfig() *Config {
	cfg := config.DefaultConfig()
	cfg.Server.Name = CalculatorName
	cfg.Weather = config.WeatherConfig{}

	return cfg
}

// DefaultWeatherConfig returns the weather defaults: SSE transport on port
// 3001, server name weather.
func DefaultWeatherConfig() *Config {
	cfg := config.DefaultConfig()
	cfg.Server.Name = WeatherName
	cfg.Server.Transport = config.TransportSSE
	cfg.Server.Addr = ":" + DefaultWeatherPort

	return cfg
}

// LoadConfig merges defaults, the YAML file at path (optional, may be empty
// or missing) and PREFIX_SECTION_FIELD environment variables, then
// validates the result.
func LoadConfig(defaults *Config, path, envPrefix string) (*Config, error) {
	loader := config.NewLoader(defaults).WithConfigPath(path)
	if envPrefix != "" {
		loader = loader.WithEnvPrefix(envPrefix)
	}

	return loader.Load()
}

// ParseTransport normalizes and validates a transport name.
func ParseTransport(name string) (Transport, error) {
	return config.ParseTransport(name)
}
