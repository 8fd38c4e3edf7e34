package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SummaryInput defines the input schema for the memory_summary tool.
type SummaryInput struct {
	AgentID string `json:"agent_id" jsonschema:"required,The agent to summarize"`
}

// NewSummaryHandler creates the memory_summary tool handler.
func NewSummaryHandler(deps *Dependencies) mcp.ToolHandlerFor[SummaryInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SummaryInput) (*mcp.CallToolResult, any, error) {
		if input.AgentID == "" {
			return ErrorResult("agent_id cannot be empty", "Provide the agent identifier"), nil, nil
		}

		summary, err := deps.Agent.GetMemorySummary(ctx, input.AgentID)
		if err != nil {
			deps.Logger.Error("memory_summary failed", "agent_id", input.AgentID, "error", err)
			return ErrorResult("Summary failed", "Memory store may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(summary, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}
