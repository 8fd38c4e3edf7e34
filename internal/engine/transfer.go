package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/norbu09/memtier/internal/config"
	"github.com/norbu09/memtier/internal/models"
	"github.com/norbu09/memtier/internal/scoring"
)

// TransferReport summarizes one tier-1 overflow pass.
type TransferReport struct {
	Unlinked   int `json:"unlinked"`
	Moved      int `json:"moved"`
	Attached   int `json:"attached"`
	NewSegment int `json:"new_segments"`
	Failed     int `json:"failed"`
}

// TransferRecentItems moves tier-1 overflow into tier-2 segments. When
// the agent's unlinked item count exceeds tier-1 capacity, the oldest
// overflow items are matched against existing segments by fscore and
// either attached to the best match or seeded into a new segment. Each
// item is processed in isolation; one failure never blocks the rest.
// The tier-1 record is deleted only after its segment write succeeds,
// so a crash mid-transfer leaves items for the next pass, never loses
// them.
func (e *Engine) TransferRecentItems(ctx context.Context, agentID string, cfg config.TierConfig) (*TransferReport, error) {
	items, err := e.store.ListUnlinkedRecentItems(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	report := &TransferReport{Unlinked: len(items)}
	if len(items) <= cfg.Tier1Capacity {
		return report, nil
	}

	segments, err := e.store.ListSegments(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	overflow := items[:len(items)-cfg.Tier1Capacity]
	for _, item := range overflow {
		itemID := models.MustRecordIDString(item.ID)

		seg, attached, err := e.transferItem(ctx, agentID, &item, segments, cfg.MatchThreshold)
		if err != nil {
			report.Failed++
			e.logger.Warn("item transfer failed",
				"agent_id", agentID,
				"item_id", itemID,
				"error", err)
			continue
		}

		if attached {
			// Replace the stale local copy so later items match
			// against the merged keyword/embedding state.
			for i := range segments {
				if segments[i].ID == seg.ID {
					segments[i] = *seg
					break
				}
			}
			report.Attached++
		} else {
			segments = append(segments, *seg)
			report.NewSegment++
		}

		if _, err := e.store.DeleteRecentItem(ctx, itemID); err != nil {
			report.Failed++
			e.logger.Warn("transferred item cleanup failed",
				"agent_id", agentID,
				"item_id", itemID,
				"error", err)
			continue
		}
		report.Moved++
	}

	e.logger.Info("tier-1 transfer complete",
		"agent_id", agentID,
		"moved", report.Moved,
		"attached", report.Attached,
		"new_segments", report.NewSegment,
		"failed", report.Failed)

	return report, nil
}

// transferItem places one item: best-fscore segment at or above the
// match threshold wins, otherwise a fresh segment is seeded. Returns
// the written segment and whether it was an attachment.
func (e *Engine) transferItem(ctx context.Context, agentID string, item *models.RecentItem, segments []models.Segment, threshold float64) (*models.Segment, bool, error) {
	text := item.InteractionText()
	keywords := scoring.Keywords(text)

	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, false, fmt.Errorf("embed item: %w", err)
	}

	best := -1
	bestScore := 0.0
	for i := range segments {
		score := scoring.FScore(segments[i].Embedding, vec, segments[i].Keywords, keywords)
		if best == -1 || score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best >= 0 && bestScore >= threshold {
		target := &segments[best]
		merged := scoring.MergeEmbedding(target.Embedding, vec, target.ItemCount)
		seg, err := e.store.AttachToSegment(ctx, models.MustRecordIDString(target.ID), keywords, merged)
		if err != nil {
			return nil, false, fmt.Errorf("attach to segment: %w", err)
		}
		return seg, true, nil
	}

	seg, err := e.store.CreateSegment(ctx, uuid.New().String(), agentID, summarize(item.Query), keywords, vec)
	if err != nil {
		return nil, false, fmt.Errorf("seed segment: %w", err)
	}
	return seg, false, nil
}

// summarize derives a segment summary from the seed item's query.
func summarize(query string) string {
	s := strings.Join(strings.Fields(query), " ")
	if len(s) > 120 {
		s = s[:117] + "..."
	}
	return s
}
