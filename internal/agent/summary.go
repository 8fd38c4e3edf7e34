package agent

import (
	"context"
	"fmt"

	"github.com/norbu09/memtier/internal/jobs"
)

// TierSummary aggregates one tier: record count, the tier's
// characteristic average (heat, confidence, or importance), and the
// share of the agent's memories living in this tier.
type TierSummary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average,omitempty"`
	Percent float64 `json:"percent"`
}

// MemorySummary is the per-agent cross-tier aggregate.
type MemorySummary struct {
	AgentID   string      `json:"agent_id"`
	Recent    TierSummary `json:"recent"`
	Segments  TierSummary `json:"segments"`
	Knowledge TierSummary `json:"knowledge"`
	Shared    TierSummary `json:"shared"`
	Total     int         `json:"total"`
}

// GetMemorySummary aggregates per-tier counts and averages plus the
// percentage distribution across tiers. The shared pool is
// agent-agnostic but included for the full picture.
func (a *Agent) GetMemorySummary(ctx context.Context, agentID string) (*MemorySummary, error) {
	if err := validateAgentID(agentID); err != nil {
		return nil, err
	}

	summary := &MemorySummary{AgentID: agentID}

	var err error
	if summary.Recent.Count, err = a.store.CountRecentItems(ctx, agentID); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}
	if summary.Segments.Count, err = a.store.CountSegments(ctx, agentID); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}
	if summary.Segments.Average, err = a.store.AvgSegmentHeat(ctx, agentID); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}
	if summary.Knowledge.Count, err = a.store.CountKnowledge(ctx, agentID); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}
	if summary.Knowledge.Average, err = a.store.AvgKnowledgeConfidence(ctx, agentID); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}
	if summary.Shared.Count, err = a.store.CountSharedEntries(ctx); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}
	if summary.Shared.Average, err = a.store.AvgSharedImportance(ctx); err != nil {
		return nil, fmt.Errorf("memory summary: %w", err)
	}

	summary.Total = summary.Recent.Count + summary.Segments.Count +
		summary.Knowledge.Count + summary.Shared.Count

	if summary.Total > 0 {
		pct := func(n int) float64 {
			return float64(n) / float64(summary.Total) * 100
		}
		summary.Recent.Percent = pct(summary.Recent.Count)
		summary.Segments.Percent = pct(summary.Segments.Count)
		summary.Knowledge.Percent = pct(summary.Knowledge.Count)
		summary.Shared.Percent = pct(summary.Shared.Count)
	}

	return summary, nil
}

// OperationReport is the schedule outcome for one requested operation.
type OperationReport struct {
	Operation string `json:"operation"`
	JobID     string `json:"job_id,omitempty"`
	Scheduled bool   `json:"scheduled"`
	Error     string `json:"error,omitempty"`
}

// DefaultMaintenanceOps is the sweep run when no operations are named.
var DefaultMaintenanceOps = []string{
	string(jobs.TypeHeatUpdate),
	string(jobs.TypeCapacityCheck),
	string(jobs.TypeKnowledgeEval),
	string(jobs.TypeSharedCapacity),
}

// TriggerMaintenance schedules the selected background operations and
// reports per-operation success or failure without blocking on their
// completion. An unknown operation name fails that entry only.
func (a *Agent) TriggerMaintenance(ctx context.Context, agentID string, operations []string) ([]OperationReport, error) {
	if err := validateAgentID(agentID); err != nil {
		return nil, err
	}
	if len(operations) == 0 {
		operations = DefaultMaintenanceOps
	}

	reports := make([]OperationReport, 0, len(operations))
	for _, op := range operations {
		report := OperationReport{Operation: op}

		jobType, err := jobs.ParseType(op)
		if err != nil {
			report.Error = err.Error()
			reports = append(reports, report)
			continue
		}

		jobID, err := a.scheduler.Schedule(ctx, jobType, agentID)
		if err != nil {
			report.Error = err.Error()
		} else {
			report.JobID = jobID
			report.Scheduled = true
		}
		reports = append(reports, report)
	}

	return reports, nil
}
