package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Ping tool - test/placeholder
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// One full interaction cycle: retrieve, respond, remember
	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_interaction",
		Description: "Process a user message with full memory: retrieve context, generate a response, and store the turn",
	}, NewInteractHandler(deps))

	// Read-only retrieval across all four memory tiers
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_memories",
		Description: "Search an agent's memories across all tiers without storing anything",
	}, NewSearchHandler(deps))

	// Per-tier counts, averages, and distribution
	mcp.AddTool(server, &mcp.Tool{
		Name:        "memory_summary",
		Description: "Per-tier memory counts, averages, and percentage distribution for an agent",
	}, NewSummaryHandler(deps))

	// Background maintenance scheduling
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trigger_maintenance",
		Description: "Schedule background memory maintenance (heat update, capacity check, knowledge evaluation)",
	}, NewMaintainHandler(deps))
}
