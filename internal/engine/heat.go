package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/models"
	"github.com/norbu09/memtier/internal/scoring"
)

// CapacityReport summarizes one tier-2 recompute cycle.
type CapacityReport struct {
	Segments int      `json:"segments"`
	Evicted  []string `json:"evicted,omitempty"`
	Promoted []string `json:"promoted,omitempty"`
	Failed   int      `json:"failed"`
}

// UpdateHeat recomputes and persists the heat score for every segment
// of the agent. Safe to repeat: heat is a pure function of current
// visit count, item count, and recency.
func (e *Engine) UpdateHeat(ctx context.Context, agentID string, cfg config.TierConfig) (int, error) {
	segments, err := e.recomputeHeat(ctx, agentID, cfg)
	if err != nil {
		return 0, err
	}
	return len(segments), nil
}

// RunCapacityCheck recomputes heat, then resolves tier-2 pressure.
// Over capacity, the lowest-heat segments are evicted down to capacity
// (ties broken by oldest access). Within capacity, segments at or above
// the promotion threshold are absorbed into tier-3 knowledge. The two
// paths are mutually exclusive per cycle; capacity takes priority.
func (e *Engine) RunCapacityCheck(ctx context.Context, agentID string, cfg config.TierConfig) (*CapacityReport, error) {
	segments, err := e.recomputeHeat(ctx, agentID, cfg)
	if err != nil {
		return nil, err
	}

	report := &CapacityReport{Segments: len(segments)}

	if len(segments) > cfg.Tier2Capacity {
		sort.SliceStable(segments, func(i, j int) bool {
			if segments[i].Heat != segments[j].Heat {
				return segments[i].Heat < segments[j].Heat
			}
			return segments[i].Accessed.Before(segments[j].Accessed)
		})

		for _, seg := range segments[:len(segments)-cfg.Tier2Capacity] {
			id := models.MustRecordIDString(seg.ID)
			if err := e.evictSegment(ctx, &seg); err != nil {
				report.Failed++
				e.logger.Warn("segment eviction failed", "agent_id", agentID, "segment_id", id, "error", err)
				continue
			}
			report.Evicted = append(report.Evicted, id)
		}

		e.logger.Info("tier-2 eviction complete",
			"agent_id", agentID,
			"evicted", len(report.Evicted),
			"failed", report.Failed)
		return report, nil
	}

	for i := range segments {
		if segments[i].Heat < cfg.PromotionThreshold {
			continue
		}
		id := models.MustRecordIDString(segments[i].ID)
		if err := e.promoteSegment(ctx, agentID, &segments[i]); err != nil {
			report.Failed++
			e.logger.Warn("segment promotion failed", "agent_id", agentID, "segment_id", id, "error", err)
			continue
		}
		report.Promoted = append(report.Promoted, id)
	}

	if len(report.Promoted) > 0 || report.Failed > 0 {
		e.logger.Info("tier-2 promotion complete",
			"agent_id", agentID,
			"promoted", len(report.Promoted),
			"failed", report.Failed)
	}

	return report, nil
}

// recomputeHeat loads the agent's segments and persists fresh heat
// scores, returning the segments with heat updated in place.
func (e *Engine) recomputeHeat(ctx context.Context, agentID string, cfg config.TierConfig) ([]models.Segment, error) {
	segments, err := e.store.ListSegments(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("recompute heat: %w", err)
	}

	for i := range segments {
		heat := scoring.HeatScore(
			segments[i].VisitCount,
			segments[i].ItemCount,
			scoring.RecencyFactor(segments[i].Accessed),
			cfg.HeatAlpha, cfg.HeatBeta, cfg.HeatGamma,
		)
		if err := e.store.UpdateSegmentHeat(ctx, models.MustRecordIDString(segments[i].ID), heat); err != nil {
			return nil, fmt.Errorf("recompute heat: %w", err)
		}
		segments[i].Heat = heat
	}

	return segments, nil
}

// evictSegment discards a segment, clearing any dangling tier-1 links
// first. The content is logged for the archival trail and then gone.
func (e *Engine) evictSegment(ctx context.Context, seg *models.Segment) error {
	id := models.MustRecordIDString(seg.ID)

	e.logger.Info("evicting segment",
		"agent_id", seg.AgentID,
		"segment_id", id,
		"summary", seg.Summary,
		"heat", seg.Heat,
		"items", seg.ItemCount)

	if err := e.store.UnlinkSegmentItems(ctx, id); err != nil {
		return err
	}
	if _, err := e.store.DeleteSegments(ctx, id); err != nil {
		return err
	}
	return nil
}
