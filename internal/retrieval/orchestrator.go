package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/embedding"
	"github.com/norbu09/memtier/internal/models"
	"github.com/norbu09/memtier/internal/scoring"
)

// Store is the read surface the orchestrator needs. *db.Client
// satisfies it. BumpSegmentVisit is the one write: access tracking for
// retrieved segments, which feeds the heat formula.
type Store interface {
	ListRecentItems(ctx context.Context, agentID string, limit int) ([]models.RecentItem, error)
	ListSegments(ctx context.Context, agentID string) ([]models.Segment, error)
	BumpSegmentVisit(ctx context.Context, id string) error
	ListKnowledge(ctx context.Context, agentID string, limit int) ([]models.PersonaKnowledge, error)
	ListSharedEntries(ctx context.Context, limit int) ([]models.SharedEntry, error)
}

// Limits caps the number of results read per tier.
type Limits struct {
	Tier1 int
	Tier2 int
	Tier3 int
	Tier4 int
}

// DefaultLimits returns the standard per-tier retrieval caps.
func DefaultLimits() Limits {
	return Limits{
		Tier1: config.Tier1RetrieveLimit,
		Tier2: config.Tier2RetrieveLimit,
		Tier3: config.Tier3RetrieveLimit,
		Tier4: config.Tier4RetrieveLimit,
	}
}

// TierResults holds the raw per-tier reads. A tier that failed or
// timed out is simply empty; Degraded counts such tiers.
type TierResults struct {
	Recent    []models.RecentItem
	Segments  []models.Segment
	Knowledge []models.PersonaKnowledge
	Shared    []models.SharedEntry
	Degraded  int
}

// Orchestrator runs the multi-tier retrieval pipeline.
type Orchestrator struct {
	store    Store
	embedder embedding.Embedder
	logger   *slog.Logger
	timeout  time.Duration
}

// New creates an orchestrator with the default 30s join timeout.
func New(store Store, embedder embedding.Embedder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    store,
		embedder: embedder,
		logger:   logger,
		timeout:  config.RetrieveTimeout,
	}
}

// Retrieve reads all four tiers concurrently. Each tier is isolated: a
// failure or timeout in one degrades to an empty result without
// touching the others, favoring availability over completeness.
func (o *Orchestrator) Retrieve(ctx context.Context, qc *QueryContext, limits Limits) *TierResults {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	results := &TierResults{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(tier string, read func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := read(); err != nil {
				mu.Lock()
				results.Degraded++
				mu.Unlock()
				o.logger.Warn("tier read degraded to empty",
					"tier", tier,
					"agent_id", qc.AgentID,
					"error", err)
			}
		}()
	}

	run("recent", func() error {
		items, err := o.store.ListRecentItems(ctx, qc.AgentID, limits.Tier1)
		if err != nil {
			return err
		}
		results.Recent = items
		return nil
	})

	run("segments", func() error {
		segments, err := o.retrieveSegments(ctx, qc, limits.Tier2)
		if err != nil {
			return err
		}
		results.Segments = segments
		return nil
	})

	run("knowledge", func() error {
		knowledge, err := o.store.ListKnowledge(ctx, qc.AgentID, limits.Tier3)
		if err != nil {
			return err
		}
		results.Knowledge = knowledge
		return nil
	})

	run("shared", func() error {
		shared, err := o.store.ListSharedEntries(ctx, limits.Tier4)
		if err != nil {
			return err
		}
		results.Shared = shared
		return nil
	})

	wg.Wait()
	return results
}

// retrieveSegments ranks the agent's segments by fscore against the
// query, ties broken by heat descending, and bumps access tracking on
// the returned ones.
func (o *Orchestrator) retrieveSegments(ctx context.Context, qc *QueryContext, limit int) ([]models.Segment, error) {
	segments, err := o.store.ListSegments(ctx, qc.AgentID)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(segments))
	for i := range segments {
		scores[models.MustRecordIDString(segments[i].ID)] = scoring.FScore(
			segments[i].Embedding, qc.Embedding,
			segments[i].Keywords, qc.Keywords,
		)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		si := scores[models.MustRecordIDString(segments[i].ID)]
		sj := scores[models.MustRecordIDString(segments[j].ID)]
		if si != sj {
			return si > sj
		}
		return segments[i].Heat > segments[j].Heat
	})

	if len(segments) > limit {
		segments = segments[:limit]
	}

	for i := range segments {
		id := models.MustRecordIDString(segments[i].ID)
		if err := o.store.BumpSegmentVisit(ctx, id); err != nil {
			o.logger.Warn("segment access tracking failed", "segment_id", id, "error", err)
		}
	}

	return segments, nil
}

// ConfidenceLevel classifies overall retrieval confidence.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceNone   ConfidenceLevel = "none"
)

// Memory is one synthesized context entry.
type Memory struct {
	Tier    int     `json:"tier"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Context is the synthesized retrieval output: globally ranked
// memories, per-tier formatted groups, and a confidence summary.
type Context struct {
	Intent     Intent           `json:"intent"`
	Memories   []Memory         `json:"memories"`
	Tiers      map[int][]string `json:"tiers"`
	Confidence float64          `json:"confidence"`
	Level      ConfidenceLevel  `json:"confidence_level"`
}

// Tier base weights: the fresher the tier, the heavier it counts.
var tierWeights = map[int]float64{1: 1.0, 2: 0.8, 3: 0.6, 4: 0.4}

// Synthesize flattens the tier results into one ranked context. Each
// item's score is its tier base weight decayed by 1/(position+1)
// within the tier. Confidence is the average score over everything
// returned.
func Synthesize(qc *QueryContext, results *TierResults) *Context {
	out := &Context{
		Intent: qc.Intent,
		Tiers:  make(map[int][]string),
	}

	add := func(tier, pos int, content string) {
		score := tierWeights[tier] / float64(pos+1)
		out.Memories = append(out.Memories, Memory{Tier: tier, Content: content, Score: score})
		out.Tiers[tier] = append(out.Tiers[tier], content)
	}

	for i, item := range results.Recent {
		add(1, i, fmt.Sprintf("Q: %s A: %s", item.Query, item.Response))
	}
	for i, seg := range results.Segments {
		add(2, i, fmt.Sprintf("topic %q (%d interactions)", seg.Summary, seg.ItemCount))
	}
	for i, k := range results.Knowledge {
		add(3, i, fmt.Sprintf("%s: %s", k.Kind, k.Content))
	}
	for i, entry := range results.Shared {
		add(4, i, entry.Content)
	}

	sort.SliceStable(out.Memories, func(i, j int) bool {
		return out.Memories[i].Score > out.Memories[j].Score
	})

	if len(out.Memories) == 0 {
		out.Level = ConfidenceNone
		return out
	}

	var sum float64
	for _, m := range out.Memories {
		sum += m.Score
	}
	out.Confidence = sum / float64(len(out.Memories))

	switch {
	case out.Confidence > 0.7:
		out.Level = ConfidenceHigh
	case out.Confidence > 0.4:
		out.Level = ConfidenceMedium
	default:
		out.Level = ConfidenceLow
	}

	return out
}
