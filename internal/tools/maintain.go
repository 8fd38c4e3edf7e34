package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MaintainInput defines the input schema for the trigger_maintenance tool.
type MaintainInput struct {
	AgentID    string   `json:"agent_id" jsonschema:"required,The agent to maintain"`
	Operations []string `json:"operations,omitempty" jsonschema:"Operations to schedule (heat_update, capacity_check, knowledge_evaluation, shared_capacity, tier1_transfer); empty runs the default sweep"`
}

// NewMaintainHandler creates the trigger_maintenance tool handler. It
// schedules the selected background operations and returns per-op
// results without blocking on their completion.
func NewMaintainHandler(deps *Dependencies) mcp.ToolHandlerFor[MaintainInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input MaintainInput) (*mcp.CallToolResult, any, error) {
		if input.AgentID == "" {
			return ErrorResult("agent_id cannot be empty", "Provide the agent identifier"), nil, nil
		}

		reports, err := deps.Agent.TriggerMaintenance(ctx, input.AgentID, input.Operations)
		if err != nil {
			deps.Logger.Error("trigger_maintenance failed", "agent_id", input.AgentID, "error", err)
			return ErrorResult("Maintenance scheduling failed", "Memory store may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(reports, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}
