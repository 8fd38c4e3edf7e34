package db

import (
	"context"
	"fmt"

	"github.com/norbu09/memtier/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateRecentItem stores a new tier-1 interaction turn.
func (c *Client) CreateRecentItem(ctx context.Context, id, agentID, query, response string) (*models.RecentItem, error) {
	sql := `
		CREATE type::record("recent_item", $id) SET
			agent_id = $agent_id,
			query = $query,
			response = $response
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.RecentItem](ctx, c.db, sql, map[string]any{
		"id":       id,
		"agent_id": agentID,
		"query":    query,
		"response": response,
	})
	if err != nil {
		return nil, fmt.Errorf("create recent item: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create recent item: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// ListUnlinkedRecentItems returns every tier-1 item for the agent that
// has not yet been absorbed into a segment, oldest first. The transfer
// engine computes the overflow against the agent's capacity itself.
func (c *Client) ListUnlinkedRecentItems(ctx context.Context, agentID string) ([]models.RecentItem, error) {
	sql := `
		SELECT * FROM recent_item
		WHERE agent_id = $agent_id AND segment_id IS NONE
		ORDER BY created ASC
	`

	results, err := surrealdb.Query[[]models.RecentItem](ctx, c.db, sql, map[string]any{
		"agent_id": agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("list unlinked recent items: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.RecentItem{}, nil
	}
	return (*results)[0].Result, nil
}

// ListRecentItems returns the most recent tier-1 items for the agent,
// newest first, for retrieval.
func (c *Client) ListRecentItems(ctx context.Context, agentID string, limit int) ([]models.RecentItem, error) {
	sql := `
		SELECT * FROM recent_item
		WHERE agent_id = $agent_id
		ORDER BY created DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.RecentItem](ctx, c.db, sql, map[string]any{
		"agent_id": agentID,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list recent items: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.RecentItem{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteRecentItem removes a tier-1 record after its transfer succeeded.
// Returns the deleted count (0 if already gone - idempotent).
func (c *Client) DeleteRecentItem(ctx context.Context, id string) (int, error) {
	sql := `DELETE type::record("recent_item", $id) RETURN BEFORE`

	results, err := surrealdb.Query[[]models.RecentItem](ctx, c.db, sql, map[string]any{
		"id": id,
	})
	if err != nil {
		return 0, fmt.Errorf("delete recent item: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

// CountRecentItems returns the tier-1 item count for an agent.
func (c *Client) CountRecentItems(ctx context.Context, agentID string) (int, error) {
	return c.countByAgent(ctx, "recent_item", agentID)
}

// countByAgent runs a grouped count over a table filtered by agent.
func (c *Client) countByAgent(ctx context.Context, table, agentID string) (int, error) {
	sql := fmt.Sprintf(`SELECT count() AS c FROM %s WHERE agent_id = $agent_id GROUP ALL`, table)

	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, sql, map[string]any{"agent_id": agentID})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}
