// Command mcp-weather serves the getforecast tool over MCP, backed by the
// National Weather Service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/wagiedev/mcp-apps-go/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Main(ctx, cli.Weather, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
