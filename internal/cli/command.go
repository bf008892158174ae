package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/wagiedev/mcp-apps-go/internal/config"
)

// Flags holds the parsed command line.
type Flags struct {
	// ConfigPath is the YAML file to load. Empty means none.
	ConfigPath string

	// Transport overrides server.transport when set.
	Transport string

	// Addr overrides server.addr when set.
	Addr string

	// LogLevel overrides log.level when set.
	LogLevel string

	// Version requests the version banner instead of running.
	Version bool
}

// ParseFlags parses args for the binary called name. Usage and parse errors
// are written to output.
func ParseFlags(name string, args []string, output io.Writer) (*Flags, error) {
	f := &Flags{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.ConfigPath, "config", "", "path to YAML config file")
	fs.StringVar(&f.Transport, "transport", "", "transport: stdio, sse or http")
	fs.StringVar(&f.Addr, "addr", "", "listen address for sse and http transports")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&f.Version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	return f, nil
}

// Apply overrides cfg with the flags that were set and re-validates it.
func (f *Flags) Apply(cfg *config.Config) error {
	if f.Transport != "" {
		cfg.Server.Transport = config.Transport(config.NormalizeTransport(f.Transport))
	}

	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}

	if f.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(f.LogLevel)
	}

	return cfg.Validate()
}

func isHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
