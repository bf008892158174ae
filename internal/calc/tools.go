package calc

import (
	"context"
	"strconv"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/mcp-apps-go/internal/mcp"
)

// Tool names.
const (
	ToolAdd      = "add"
	ToolSubtract = "subtract"
)

func annotations() *mcpgo.ToolAnnotations {
	return &mcpgo.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
	}
}

// Register adds the add and subtract tools to ts.
func Register(ts *mcp.Toolset) {
	mcp.AddTool(ts, &mcpgo.Tool{
		Name:        ToolAdd,
		Description: "Add two numbers.",
		Annotations: annotations(),
	}, handleAdd)

	mcp.AddTool(ts, &mcpgo.Tool{
		Name:        ToolSubtract,
		Description: "Subtract two numbers.",
		Annotations: annotations(),
	}, handleSubtract)
}

func handleAdd(ctx context.Context, _ *mcpgo.CallToolRequest, in AddRequest) (*mcpgo.CallToolResult, Result, error) {
	mcp.LoggerFromContext(ctx).Info("add", "a", in.A, "b", in.B)

	return result(Add(in.A, in.B))
}

func handleSubtract(ctx context.Context, _ *mcpgo.CallToolRequest, in SubtractRequest) (*mcpgo.CallToolResult, Result, error) {
	mcp.LoggerFromContext(ctx).Info("subtract", "a", in.A, "b", in.B)

	return result(Subtract(in.A, in.B))
}

func result(n int) (*mcpgo.CallToolResult, Result, error) {
	return mcp.TextResult(strconv.Itoa(n)), Result{Result: n}, nil
}
