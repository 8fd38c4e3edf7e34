// Package agent composes retrieval, generation, storage, and the job
// scheduler into the end-to-end interaction cycle, and exposes the
// summary and maintenance operations consumed by the outer layers.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/jobs"
	"github.com/norbu09/memtier/internal/llm"
	"github.com/norbu09/memtier/internal/metrics"
	"github.com/norbu09/memtier/internal/models"
	"github.com/norbu09/memtier/internal/retrieval"
)

// ValidationError rejects malformed input before any side effect.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Store is the storage surface the facade needs beyond what the
// retrieval orchestrator already covers. *db.Client satisfies it.
type Store interface {
	CreateRecentItem(ctx context.Context, id, agentID, query, response string) (*models.RecentItem, error)
	CountRecentItems(ctx context.Context, agentID string) (int, error)
	CountSegments(ctx context.Context, agentID string) (int, error)
	AvgSegmentHeat(ctx context.Context, agentID string) (float64, error)
	CountKnowledge(ctx context.Context, agentID string) (int, error)
	AvgKnowledgeConfidence(ctx context.Context, agentID string) (float64, error)
	CountSharedEntries(ctx context.Context) (int, error)
	AvgSharedImportance(ctx context.Context) (float64, error)
}

// Scheduler hands maintenance work to the background pool.
// *jobs.Manager satisfies it.
type Scheduler interface {
	Schedule(ctx context.Context, jobType jobs.Type, agentID string) (string, error)
}

// Agent is the memory engine facade.
type Agent struct {
	store        Store
	orchestrator *retrieval.Orchestrator
	generator    llm.Generator
	scheduler    Scheduler
	resolver     *config.Resolver
	collector    *metrics.Collector
	logger       *slog.Logger
}

// New creates the facade. collector and logger may be nil.
func New(store Store, orchestrator *retrieval.Orchestrator, generator llm.Generator, scheduler Scheduler, resolver *config.Resolver, collector *metrics.Collector, logger *slog.Logger) *Agent {
	if collector == nil {
		collector = metrics.NewCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		store:        store,
		orchestrator: orchestrator,
		generator:    generator,
		scheduler:    scheduler,
		resolver:     resolver,
		collector:    collector,
		logger:       logger,
	}
}

// Metrics exposes the collector snapshot.
func (a *Agent) Metrics() metrics.Snapshot {
	return a.collector.Snapshot()
}

func validateAgentID(agentID string) error {
	if agentID == "" {
		return &ValidationError{Field: "agent_id", Reason: "must not be empty"}
	}
	return nil
}
