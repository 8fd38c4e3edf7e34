package db

import (
	"context"
	"fmt"

	"github.com/norbu09/memtier/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateSegment seeds a new tier-2 segment from a single item.
func (c *Client) CreateSegment(ctx context.Context, id, agentID, summary string, keywords []string, embedding []float32) (*models.Segment, error) {
	if keywords == nil {
		keywords = []string{}
	}

	sql := `
		CREATE type::record("segment", $id) SET
			agent_id = $agent_id,
			summary = $summary,
			keywords = $keywords,
			embedding = $embedding,
			heat = 0.0,
			visit_count = 0,
			item_count = 1
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Segment](ctx, c.db, sql, map[string]any{
		"id":        id,
		"agent_id":  agentID,
		"summary":   summary,
		"keywords":  keywords,
		"embedding": embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("create segment: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create segment: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// ListSegments returns all tier-2 segments for an agent.
func (c *Client) ListSegments(ctx context.Context, agentID string) ([]models.Segment, error) {
	sql := `SELECT * FROM segment WHERE agent_id = $agent_id`

	results, err := surrealdb.Query[[]models.Segment](ctx, c.db, sql, map[string]any{
		"agent_id": agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.Segment{}, nil
	}
	return (*results)[0].Result, nil
}

// AttachToSegment merges an item into an existing segment: keyword
// union, embedding centroid, item count, and access timestamp change in
// a single UPDATE so concurrent attachments serialize at the record.
func (c *Client) AttachToSegment(ctx context.Context, id string, keywords []string, embedding []float32) (*models.Segment, error) {
	if keywords == nil {
		keywords = []string{}
	}

	sql := `
		UPDATE type::record("segment", $id) SET
			keywords = array::union(keywords, $keywords),
			embedding = $embedding,
			item_count += 1,
			accessed = time::now()
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Segment](ctx, c.db, sql, map[string]any{
		"id":        id,
		"keywords":  keywords,
		"embedding": embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("attach to segment: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("attach to segment: %w", ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// UpdateSegmentHeat persists a recomputed heat score.
func (c *Client) UpdateSegmentHeat(ctx context.Context, id string, heat float64) error {
	sql := `UPDATE type::record("segment", $id) SET heat = $heat`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{
		"id":   id,
		"heat": heat,
	})
	if err != nil {
		return fmt.Errorf("update segment heat: %w", wrapQueryError(err))
	}
	return nil
}

// BumpSegmentVisit updates access tracking for a retrieved segment.
func (c *Client) BumpSegmentVisit(ctx context.Context, id string) error {
	sql := `
		UPDATE type::record("segment", $id) SET
			accessed = time::now(),
			visit_count += 1
	`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("bump segment visit: %w", err)
	}
	return nil
}

// DeleteSegments removes segments by ID (eviction or post-promotion
// cleanup). Returns the count actually deleted - idempotent.
func (c *Client) DeleteSegments(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	recordIDs := make([]string, len(ids))
	for i, id := range ids {
		recordIDs[i] = "segment:" + id
	}

	sql := `DELETE segment WHERE id IN $ids RETURN BEFORE`

	results, err := surrealdb.Query[[]models.Segment](ctx, c.db, sql, map[string]any{
		"ids": recordIDs,
	})
	if err != nil {
		return 0, fmt.Errorf("delete segments: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

// UnlinkSegmentItems clears the segment link on any tier-1 items still
// referencing an evicted segment.
func (c *Client) UnlinkSegmentItems(ctx context.Context, segmentID string) error {
	sql := `UPDATE recent_item SET segment_id = NONE WHERE segment_id = $segment_id`

	_, err := surrealdb.Query[any](ctx, c.db, sql, map[string]any{"segment_id": segmentID})
	if err != nil {
		return fmt.Errorf("unlink segment items: %w", err)
	}
	return nil
}

// CountSegments returns the tier-2 segment count for an agent.
func (c *Client) CountSegments(ctx context.Context, agentID string) (int, error) {
	return c.countByAgent(ctx, "segment", agentID)
}

// AvgSegmentHeat returns the mean heat across an agent's segments,
// 0.0 when the agent has none.
func (c *Client) AvgSegmentHeat(ctx context.Context, agentID string) (float64, error) {
	sql := `SELECT math::mean(heat) AS avg FROM segment WHERE agent_id = $agent_id GROUP ALL`

	results, err := surrealdb.Query[[]struct {
		Avg float64 `json:"avg"`
	}](ctx, c.db, sql, map[string]any{"agent_id": agentID})
	if err != nil {
		return 0, fmt.Errorf("avg segment heat: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Avg, nil
}
