package db

import (
	"context"
	"fmt"

	"github.com/norbu09/memtier/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateSharedEntry stores a tier-4 cross-agent knowledge record.
func (c *Client) CreateSharedEntry(ctx context.Context, id, content, agentID string, importance float64) (*models.SharedEntry, error) {
	sql := `
		CREATE type::record("shared_entry", $id) SET
			content = $content,
			agent_id = $agent_id,
			importance = $importance
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.SharedEntry](ctx, c.db, sql, map[string]any{
		"id":         id,
		"content":    content,
		"agent_id":   agentID,
		"importance": importance,
	})
	if err != nil {
		return nil, fmt.Errorf("create shared entry: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create shared entry: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// ListSharedEntries returns tier-4 entries ranked by importance
// descending. Agent-agnostic: the pool serves every agent.
func (c *Client) ListSharedEntries(ctx context.Context, limit int) ([]models.SharedEntry, error) {
	sql := `
		SELECT * FROM shared_entry
		ORDER BY importance DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.SharedEntry](ctx, c.db, sql, map[string]any{
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list shared entries: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.SharedEntry{}, nil
	}
	return (*results)[0].Result, nil
}

// ListSharedOverflow returns the n lowest-importance entries, ties
// broken by oldest first. These are the eviction candidates when the
// pool exceeds capacity.
func (c *Client) ListSharedOverflow(ctx context.Context, n int) ([]models.SharedEntry, error) {
	if n <= 0 {
		return []models.SharedEntry{}, nil
	}

	sql := `
		SELECT * FROM shared_entry
		ORDER BY importance ASC, created ASC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.SharedEntry](ctx, c.db, sql, map[string]any{
		"limit": n,
	})
	if err != nil {
		return nil, fmt.Errorf("list shared overflow: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.SharedEntry{}, nil
	}
	return (*results)[0].Result, nil
}

// DeleteSharedEntries removes tier-4 entries by ID.
// Returns the count actually deleted - idempotent.
func (c *Client) DeleteSharedEntries(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	recordIDs := make([]string, len(ids))
	for i, id := range ids {
		recordIDs[i] = "shared_entry:" + id
	}

	sql := `DELETE shared_entry WHERE id IN $ids RETURN BEFORE`

	results, err := surrealdb.Query[[]models.SharedEntry](ctx, c.db, sql, map[string]any{
		"ids": recordIDs,
	})
	if err != nil {
		return 0, fmt.Errorf("delete shared entries: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

// CountSharedEntries returns the total tier-4 pool size.
func (c *Client) CountSharedEntries(ctx context.Context) (int, error) {
	sql := `SELECT count() AS c FROM shared_entry GROUP ALL`

	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("count shared entries: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// AvgSharedImportance returns the mean importance across the pool,
// 0.0 when empty.
func (c *Client) AvgSharedImportance(ctx context.Context) (float64, error) {
	sql := `SELECT math::mean(importance) AS avg FROM shared_entry GROUP ALL`

	results, err := surrealdb.Query[[]struct {
		Avg float64 `json:"avg"`
	}](ctx, c.db, sql, nil)
	if err != nil {
		return 0, fmt.Errorf("avg shared importance: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Avg, nil
}
