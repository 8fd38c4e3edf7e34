package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/engine"
)

// EngineExecutor maps job types onto engine operations, resolving the
// agent's tier configuration per execution.
type EngineExecutor struct {
	Engine   *engine.Engine
	Resolver *config.Resolver
}

var _ Executor = (*EngineExecutor)(nil)

// Execute runs one maintenance operation.
func (e *EngineExecutor) Execute(ctx context.Context, jobType Type, agentID string) (map[string]any, error) {
	cfg := e.Resolver.Resolve(agentID)

	switch jobType {
	case TypeTransfer:
		report, err := e.Engine.TransferRecentItems(ctx, agentID, cfg)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"unlinked":     report.Unlinked,
			"moved":        report.Moved,
			"attached":     report.Attached,
			"new_segments": report.NewSegment,
			"failed":       report.Failed,
		}, nil

	case TypeHeatUpdate:
		n, err := e.Engine.UpdateHeat(ctx, agentID, cfg)
		if err != nil {
			return nil, err
		}
		return map[string]any{"segments": n}, nil

	case TypeCapacityCheck:
		report, err := e.Engine.RunCapacityCheck(ctx, agentID, cfg)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"segments": report.Segments,
			"evicted":  len(report.Evicted),
			"promoted": len(report.Promoted),
			"failed":   report.Failed,
		}, nil

	case TypeKnowledgeEval:
		report, err := e.Engine.EvaluateAgentKnowledge(ctx, agentID, cfg)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"evaluated": report.Evaluated,
			"promoted":  report.Promoted,
			"failed":    report.Failed,
		}, nil

	case TypeSharedCapacity:
		evicted, err := e.Engine.EnforceSharedCapacity(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return map[string]any{"evicted": evicted}, nil
	}

	return nil, fmt.Errorf("unknown job type: %q", jobType)
}

// AgentLister enumerates agents with stored memories, for the periodic
// sweep. *db.Client satisfies it.
type AgentLister interface {
	ListAgentIDs(ctx context.Context) ([]string, error)
}

// StartCron schedules the periodic maintenance sweep: a capacity check
// and knowledge evaluation per known agent, plus one shared-pool
// capacity pass. Returns the running cron, which the caller stops on
// shutdown.
func (m *Manager) StartCron(spec string, agents AgentLister) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		ctx := context.Background()

		ids, err := agents.ListAgentIDs(ctx)
		if err != nil {
			m.logger.Error("maintenance sweep: listing agents failed", "error", err)
			return
		}

		for _, agentID := range ids {
			for _, jobType := range []Type{TypeCapacityCheck, TypeKnowledgeEval} {
				if _, err := m.Schedule(ctx, jobType, agentID); err != nil {
					m.logger.Warn("maintenance sweep: schedule failed",
						"type", jobType, "agent_id", agentID, "error", err)
				}
			}
		}

		if _, err := m.Schedule(ctx, TypeSharedCapacity, ""); err != nil {
			m.logger.Warn("maintenance sweep: schedule failed",
				"type", TypeSharedCapacity, "error", err)
		}

		m.logger.Info("maintenance sweep scheduled", "agents", len(ids))
	})
	if err != nil {
		return nil, fmt.Errorf("register maintenance cron: %w", err)
	}

	c.Start()
	m.logger.Info("maintenance cron started", "spec", spec)
	return c, nil
}
