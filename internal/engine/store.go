// Package engine implements the capacity-driven movement of memories
// between tiers: tier-1 overflow transfer into segments, heat-based
// segment eviction and promotion, and importance-based promotion of
// knowledge into the shared pool. Every operation is idempotent or
// self-correcting so the job scheduler can deliver it more than once.
package engine

import (
	"context"
	"log/slog"

	"github.com/norbu09/memtier/internal/embedding"
	"github.com/norbu09/memtier/internal/models"
)

// Store is the storage surface the engine needs. *db.Client satisfies it.
type Store interface {
	ListUnlinkedRecentItems(ctx context.Context, agentID string) ([]models.RecentItem, error)
	DeleteRecentItem(ctx context.Context, id string) (int, error)

	CreateSegment(ctx context.Context, id, agentID, summary string, keywords []string, embedding []float32) (*models.Segment, error)
	ListSegments(ctx context.Context, agentID string) ([]models.Segment, error)
	AttachToSegment(ctx context.Context, id string, keywords []string, embedding []float32) (*models.Segment, error)
	UpdateSegmentHeat(ctx context.Context, id string, heat float64) error
	DeleteSegments(ctx context.Context, ids ...string) (int, error)
	UnlinkSegmentItems(ctx context.Context, segmentID string) error

	CreateKnowledge(ctx context.Context, id string, k *models.PersonaKnowledge) (*models.PersonaKnowledge, error)
	GetKnowledge(ctx context.Context, id string) (*models.PersonaKnowledge, error)
	ListUnpromotedKnowledge(ctx context.Context, agentID string) ([]models.PersonaKnowledge, error)
	MarkKnowledgePromoted(ctx context.Context, id, sharedEntryID string) (bool, error)

	CreateSharedEntry(ctx context.Context, id, content, agentID string, importance float64) (*models.SharedEntry, error)
	CountSharedEntries(ctx context.Context) (int, error)
	ListSharedOverflow(ctx context.Context, n int) ([]models.SharedEntry, error)
	DeleteSharedEntries(ctx context.Context, ids ...string) (int, error)
}

// Engine moves memories between tiers.
type Engine struct {
	store    Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default.
func New(store Store, embedder embedding.Embedder, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}
