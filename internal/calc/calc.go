// Package calc provides the add and subtract tools of the mcp-calc server.
package calc

// AddRequest is the input of the add tool.
type AddRequest struct {
	A int `json:"a" jsonschema:"first operand"`
	B int `json:"b" jsonschema:"second operand"`
}

// SubtractRequest is the input of the subtract tool.
type SubtractRequest struct {
	A int `json:"a" jsonschema:"number to subtract from"`
	B int `json:"b" jsonschema:"number to subtract"`
}

// Result is the structured output of both tools.
type Result struct {
	Result int `json:"result" jsonschema:"result of the operation"`
}

// Add returns a + b. Overflow wraps around.
func Add(a, b int) int {
	return a + b
}

// Subtract returns a - b. Overflow wraps around.
func Subtract(a, b int) int {
	return a - b
}
