package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	mcpapps "github.com/wagiedev/mcp-apps-go"
)

// Version overrides the configured server version when set, e.g. with
// -ldflags "-X github.com/wagiedev/mcp-apps-go/internal/cli.Version=1.2.0".
var Version string

// App describes one binary.
type App struct {
	// Name is the binary name used in usage and version output.
	Name string

	// EnvPrefix is the prefix of configuration environment variables.
	EnvPrefix string

	// Defaults returns the application's default configuration.
	Defaults func() *mcpapps.Config

	// New constructs the application.
	New func(context.Context, ...mcpapps.Option) (*mcpapps.App, error)

	// HonorPort makes the PORT variable set the default listen address.
	HonorPort bool
}

// Calculator is the mcp-calc binary.
var Calculator = App{
	Name:      "mcp-calc",
	EnvPrefix: mcpapps.CalculatorEnvPrefix,
	Defaults:  mcpapps.DefaultCalculatorConfig,
	New:       mcpapps.NewCalculator,
}

// Weather is the mcp-weather binary.
var Weather = App{
	Name:      "mcp-weather",
	EnvPrefix: mcpapps.WeatherEnvPrefix,
	Defaults:  mcpapps.DefaultWeatherConfig,
	New:       mcpapps.NewWeather,
	HonorPort: true,
}

// Main runs app with the given arguments until ctx is canceled and returns
// the process exit code. Logs go to stderr; stdout is left to the stdio
// transport except for -version output.
func Main(ctx context.Context, app App, args []string, stdout, stderr io.Writer, opts ...mcpapps.Option) int {
	flags, err := ParseFlags(app.Name, args, stderr)
	if err != nil {
		if isHelp(err) {
			return 0
		}

		fmt.Fprintf(stderr, "%s: %v\n", app.Name, err)

		return 2
	}

	defaults := app.Defaults()
	if Version != "" {
		defaults.Server.Version = Version
	}

	if flags.Version {
		fmt.Fprintf(stdout, "%s %s\n", app.Name, defaults.Server.Version)
		return 0
	}

	if app.HonorPort {
		if addr, ok := portAddr(os.LookupEnv); ok {
			defaults.Server.Addr = addr
		}
	}

	cfg, err := mcpapps.LoadConfig(defaults, flags.ConfigPath, app.EnvPrefix)
	if err != nil {
		fmt.Fprintf(stderr, "%s: failed to load config: %v\n", app.Name, err)
		return 1
	}

	if err := flags.Apply(cfg); err != nil {
		fmt.Fprintf(stderr, "%s: invalid flags: %v\n", app.Name, err)
		return 1
	}

	log := mcpapps.NewLogger(cfg.Log, stderr).With("app", app.Name)

	a, err := app.New(ctx, append([]mcpapps.Option{
		mcpapps.WithConfig(cfg),
		mcpapps.WithLogger(log),
	}, opts...)...)
	if err != nil {
		log.Error("Failed to start", "error", err)
		return 1
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := a.Close(closeCtx); err != nil {
			log.Warn("Failed to release resources", "error", err)
		}
	}()

	if err := a.Run(ctx); err != nil {
		log.Error("Server failed", "error", err)
		return 1
	}

	log.Info("Shutdown complete")

	return 0
}
