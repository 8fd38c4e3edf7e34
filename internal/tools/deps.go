// Package tools provides MCP tool handlers and registration.
package tools

import (
	"context"
	"log/slog"

	"github.com/norbu09/memtier/internal/agent"
	"github.com/norbu09/memtier/internal/retrieval"
)

// MemoryAgent is the facade surface the tool handlers call.
// *agent.Agent satisfies it.
type MemoryAgent interface {
	ProcessInteraction(ctx context.Context, agentID, text string) (*agent.InteractionResult, error)
	SearchMemories(ctx context.Context, agentID, text string) (*retrieval.Context, error)
	GetMemorySummary(ctx context.Context, agentID string) (*agent.MemorySummary, error)
	TriggerMaintenance(ctx context.Context, agentID string, operations []string) ([]agent.OperationReport, error)
}

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Agent  MemoryAgent
	Logger *slog.Logger
}
