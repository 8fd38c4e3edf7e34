package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ErrorResult builds a tool failure with an optional recovery hint.
// IsError is set so the calling model sees the failure and can
// self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	if hint != "" {
		msg += ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// TextResult builds a successful text result.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
