// Command mcp-calc serves the add and subtract tools over MCP.
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

	code := cli.Main(ctx, cli.Calculator, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
