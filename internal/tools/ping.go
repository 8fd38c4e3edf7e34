package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PingInput is the input schema for the ping tool.
type PingInput struct {
	Echo string `json:"echo,omitempty" jsonschema:"Text to echo back instead of pong"`
}

// NewPingHandler returns the connectivity-check handler: replies with
// "pong", or echoes the provided text.
func NewPingHandler(deps *Dependencies) mcp.ToolHandlerFor[PingInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PingInput) (*mcp.CallToolResult, any, error) {
		deps.Logger.Debug("ping", "echo", input.Echo)

		reply := input.Echo
		if reply == "" {
			reply = "pong"
		}
		return TextResult(reply), nil, nil
	}
}
