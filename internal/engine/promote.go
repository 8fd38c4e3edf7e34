package engine

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/models"
	"github.com/norbu09/memtier/internal/scoring"
)

// promoteSegment absorbs a hot segment into tier-3: one knowledge fact
// synthesized from the summary and keywords, plus derived traits from
// the segment's engagement pattern. The segment is removed only after
// every knowledge write succeeds, so a partial failure retries cleanly
// (re-creating a fact is harmless, losing a segment is not).
func (e *Engine) promoteSegment(ctx context.Context, agentID string, seg *models.Segment) error {
	id := models.MustRecordIDString(seg.ID)

	fact, err := segmentFact(agentID, seg)
	if err != nil {
		return fmt.Errorf("synthesize fact: %w", err)
	}
	if _, err := e.store.CreateKnowledge(ctx, uuid.New().String(), fact); err != nil {
		return fmt.Errorf("store fact: %w", err)
	}

	for _, trait := range segmentTraits(agentID, seg) {
		if _, err := e.store.CreateKnowledge(ctx, uuid.New().String(), trait); err != nil {
			return fmt.Errorf("store trait: %w", err)
		}
	}

	if err := e.store.UnlinkSegmentItems(ctx, id); err != nil {
		return err
	}
	if _, err := e.store.DeleteSegments(ctx, id); err != nil {
		return err
	}

	e.logger.Info("segment promoted",
		"agent_id", agentID,
		"segment_id", id,
		"summary", seg.Summary,
		"heat", seg.Heat)
	return nil
}

// segmentFact builds the knowledge fact for a promoted segment.
// Confidence scales with accumulated engagement, capped at 0.95 so a
// synthesized fact never outranks directly asserted knowledge.
func segmentFact(agentID string, seg *models.Segment) (*models.PersonaKnowledge, error) {
	content := fmt.Sprintf("recurring topic: %s", seg.Summary)
	if len(seg.Keywords) > 0 {
		content += " (" + strings.Join(seg.Keywords, ", ") + ")"
	}

	confidence := math.Min(0.5+0.05*float64(seg.ItemCount+seg.VisitCount), 0.95)

	fact, err := models.NewAgentKnowledge(agentID, models.KindFact, content, confidence)
	if err != nil {
		return nil, err
	}
	fact.Keywords = seg.Keywords
	return fact, nil
}

// segmentTraits derives 1..N trait entries from the segment's
// engagement pattern. The volume trait is always present; a revisit
// trait is added when retrieval kept coming back to the topic.
func segmentTraits(agentID string, seg *models.Segment) []*models.PersonaKnowledge {
	var traits []*models.PersonaKnowledge

	volume := "light engagement"
	switch {
	case seg.ItemCount >= 10:
		volume = "sustained engagement"
	case seg.ItemCount >= 4:
		volume = "moderate engagement"
	}
	t, err := models.NewAgentKnowledge(agentID, models.KindTrait,
		fmt.Sprintf("%s with topic %q (%d interactions)", volume, seg.Summary, seg.ItemCount),
		math.Min(0.3+0.05*float64(seg.ItemCount), 0.9))
	if err == nil {
		t.Keywords = seg.Keywords
		traits = append(traits, t)
	}

	if seg.VisitCount >= 3 {
		t, err := models.NewAgentKnowledge(agentID, models.KindTrait,
			fmt.Sprintf("frequently revisits topic %q (%d retrievals)", seg.Summary, seg.VisitCount),
			math.Min(0.3+0.1*float64(seg.VisitCount), 0.9))
		if err == nil {
			t.Keywords = seg.Keywords
			traits = append(traits, t)
		}
	}

	return traits
}

// PromotionReport summarizes a tier-3 evaluation pass.
type PromotionReport struct {
	Evaluated int `json:"evaluated"`
	Promoted  int `json:"promoted"`
	Failed    int `json:"failed"`
}

// EvaluateKnowledge scores a single tier-3 entry and promotes it to the
// shared pool when its importance clears the threshold. Idempotent: an
// already-promoted entry is re-scored but never duplicated - the
// promoted flag is claimed compare-and-swap style, and a lost claim
// rolls the fresh shared entry back. Returns whether a promotion
// happened and the computed importance.
func (e *Engine) EvaluateKnowledge(ctx context.Context, id string, cfg config.TierConfig) (bool, float64, error) {
	k, err := e.store.GetKnowledge(ctx, id)
	if err != nil {
		return false, 0, fmt.Errorf("evaluate knowledge: %w", err)
	}

	breakdown := scoring.Importance(k.Content, k.Created, len(k.Keywords))
	if k.Promoted || breakdown.Total < cfg.ImportanceThreshold {
		return false, breakdown.Total, nil
	}

	return e.promoteKnowledge(ctx, k, breakdown.Total)
}

// EvaluateAgentKnowledge runs importance evaluation over every
// unpromoted tier-3 entry of the agent, each in isolation.
func (e *Engine) EvaluateAgentKnowledge(ctx context.Context, agentID string, cfg config.TierConfig) (*PromotionReport, error) {
	entries, err := e.store.ListUnpromotedKnowledge(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("evaluate agent knowledge: %w", err)
	}

	report := &PromotionReport{Evaluated: len(entries)}
	for i := range entries {
		k := &entries[i]
		breakdown := scoring.Importance(k.Content, k.Created, len(k.Keywords))
		if breakdown.Total < cfg.ImportanceThreshold {
			continue
		}

		promoted, _, err := e.promoteKnowledge(ctx, k, breakdown.Total)
		if err != nil {
			report.Failed++
			e.logger.Warn("knowledge promotion failed",
				"agent_id", agentID,
				"knowledge_id", models.MustRecordIDString(k.ID),
				"error", err)
			continue
		}
		if promoted {
			report.Promoted++
		}
	}

	e.logger.Info("tier-3 evaluation complete",
		"agent_id", agentID,
		"evaluated", report.Evaluated,
		"promoted", report.Promoted,
		"failed", report.Failed)
	return report, nil
}

// promoteKnowledge creates the shared entry, then claims the promoted
// flag. Losing the claim (concurrent evaluation got there first) rolls
// the shared entry back so the pool never holds duplicates.
func (e *Engine) promoteKnowledge(ctx context.Context, k *models.PersonaKnowledge, importance float64) (bool, float64, error) {
	id := models.MustRecordIDString(k.ID)
	sharedID := uuid.New().String()

	if _, err := e.store.CreateSharedEntry(ctx, sharedID, k.Content, k.AgentID, importance); err != nil {
		return false, importance, fmt.Errorf("create shared entry: %w", err)
	}

	won, err := e.store.MarkKnowledgePromoted(ctx, id, sharedID)
	if err != nil {
		return false, importance, fmt.Errorf("mark promoted: %w", err)
	}
	if !won {
		if _, err := e.store.DeleteSharedEntries(ctx, sharedID); err != nil {
			e.logger.Warn("rollback of duplicate shared entry failed",
				"shared_entry_id", sharedID,
				"error", err)
		}
		return false, importance, nil
	}

	e.logger.Info("knowledge promoted to shared pool",
		"agent_id", k.AgentID,
		"knowledge_id", id,
		"shared_entry_id", sharedID,
		"importance", importance)
	return true, importance, nil
}

// EnforceSharedCapacity evicts the lowest-importance shared entries
// down to capacity. Archive-then-delete: the evicted content is logged
// before removal. Independent of individual promotion events.
func (e *Engine) EnforceSharedCapacity(ctx context.Context, cfg config.TierConfig) (int, error) {
	count, err := e.store.CountSharedEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("enforce shared capacity: %w", err)
	}
	if count <= cfg.Tier4Capacity {
		return 0, nil
	}

	overflow, err := e.store.ListSharedOverflow(ctx, count-cfg.Tier4Capacity)
	if err != nil {
		return 0, fmt.Errorf("enforce shared capacity: %w", err)
	}

	ids := make([]string, len(overflow))
	for i := range overflow {
		ids[i] = models.MustRecordIDString(overflow[i].ID)
		e.logger.Info("archiving evicted shared entry",
			"shared_entry_id", ids[i],
			"agent_id", overflow[i].AgentID,
			"importance", overflow[i].Importance,
			"content", overflow[i].Content)
	}

	deleted, err := e.store.DeleteSharedEntries(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("enforce shared capacity: %w", err)
	}

	e.logger.Info("shared pool capacity enforced", "evicted", deleted, "capacity", cfg.Tier4Capacity)
	return deleted, nil
}
