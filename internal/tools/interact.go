package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/norbu09/memtier/internal/agent"
)

// InteractInput defines the input schema for the process_interaction tool.
type InteractInput struct {
	AgentID string `json:"agent_id" jsonschema:"required,The agent whose memory to use"`
	Query   string `json:"query" jsonschema:"required,The user message"`
}

// NewInteractHandler creates the process_interaction tool handler: one
// full interaction cycle including memory storage.
func NewInteractHandler(deps *Dependencies) mcp.ToolHandlerFor[InteractInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input InteractInput) (*mcp.CallToolResult, any, error) {
		if input.AgentID == "" {
			return ErrorResult("agent_id cannot be empty", "Provide the agent identifier"), nil, nil
		}
		if input.Query == "" {
			return ErrorResult("Query cannot be empty", "Provide the user message"), nil, nil
		}

		result, err := deps.Agent.ProcessInteraction(ctx, input.AgentID, input.Query)
		if err != nil {
			var ve *agent.ValidationError
			if errors.As(err, &ve) {
				return ErrorResult(ve.Error(), "Fix the input and retry"), nil, nil
			}
			deps.Logger.Error("process_interaction failed", "agent_id", input.AgentID, "error", err)
			return ErrorResult("Interaction failed", "Memory store may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")
		deps.Logger.Info("interaction processed",
			"agent_id", input.AgentID,
			"confidence", result.Context.Level,
			"degraded", result.Metadata.Degraded)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
