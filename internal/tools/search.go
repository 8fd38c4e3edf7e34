package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/norbu09/memtier/internal/agent"
)

// SearchInput defines the input schema for the search_memories tool.
type SearchInput struct {
	AgentID string `json:"agent_id" jsonschema:"required,The agent whose memory to search"`
	Query   string `json:"query" jsonschema:"required,The search query text"`
}

// NewSearchHandler creates the search_memories tool handler: a
// read-only retrieval across all four tiers, nothing stored.
func NewSearchHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
		if input.AgentID == "" {
			return ErrorResult("agent_id cannot be empty", "Provide the agent identifier"), nil, nil
		}
		if input.Query == "" {
			return ErrorResult("Query cannot be empty", "Provide a search query"), nil, nil
		}

		synth, err := deps.Agent.SearchMemories(ctx, input.AgentID, input.Query)
		if err != nil {
			var ve *agent.ValidationError
			if errors.As(err, &ve) {
				return ErrorResult(ve.Error(), "Fix the input and retry"), nil, nil
			}
			deps.Logger.Error("search_memories failed", "agent_id", input.AgentID, "error", err)
			return ErrorResult("Search failed", "Memory store may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(synth, "", "  ")

		queryLog := input.Query
		if len(queryLog) > 30 {
			queryLog = queryLog[:30] + "..."
		}
		deps.Logger.Info("memory search completed",
			"agent_id", input.AgentID,
			"query", queryLog,
			"results", len(synth.Memories))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
