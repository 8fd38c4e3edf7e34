package db

import (
	"context"
	"fmt"

	"github.com/norbu09/memtier/internal/models"
	"github.com/surrealdb/surrealdb.go"
)

// CreateKnowledge stores a tier-3 fact or trait. Build the record with
// the models constructors so the exclusive-owner rule holds before the
// schema assertion ever sees it.
func (c *Client) CreateKnowledge(ctx context.Context, id string, k *models.PersonaKnowledge) (*models.PersonaKnowledge, error) {
	keywords := k.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	sql := `
		CREATE type::record("persona_knowledge", $id) SET
			agent_id = $agent_id,
			owner = $owner,
			persona_id = $persona_id,
			kind = $kind,
			content = $content,
			confidence = $confidence,
			keywords = $keywords,
			promoted = false
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.PersonaKnowledge](ctx, c.db, sql, map[string]any{
		"id":         id,
		"agent_id":   k.AgentID,
		"owner":      string(k.Owner),
		"persona_id": k.PersonaID,
		"kind":       string(k.Kind),
		"content":    k.Content,
		"confidence": k.Confidence,
		"keywords":   keywords,
	})
	if err != nil {
		return nil, fmt.Errorf("create knowledge: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create knowledge: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// GetKnowledge retrieves a tier-3 record by ID. Returns ErrNotFound if
// it does not exist.
func (c *Client) GetKnowledge(ctx context.Context, id string) (*models.PersonaKnowledge, error) {
	sql := `SELECT * FROM type::record("persona_knowledge", $id)`

	results, err := surrealdb.Query[[]models.PersonaKnowledge](ctx, c.db, sql, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get knowledge: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get knowledge %q: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// ListKnowledge returns tier-3 records for an agent, newest first.
func (c *Client) ListKnowledge(ctx context.Context, agentID string, limit int) ([]models.PersonaKnowledge, error) {
	sql := `
		SELECT * FROM persona_knowledge
		WHERE agent_id = $agent_id
		ORDER BY created DESC
		LIMIT $limit
	`

	results, err := surrealdb.Query[[]models.PersonaKnowledge](ctx, c.db, sql, map[string]any{
		"agent_id": agentID,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list knowledge: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.PersonaKnowledge{}, nil
	}
	return (*results)[0].Result, nil
}

// ListUnpromotedKnowledge returns an agent's tier-3 records that have
// not been promoted to the shared pool yet, oldest first so stable
// entries are evaluated before fresh ones.
func (c *Client) ListUnpromotedKnowledge(ctx context.Context, agentID string) ([]models.PersonaKnowledge, error) {
	sql := `
		SELECT * FROM persona_knowledge
		WHERE agent_id = $agent_id AND promoted = false
		ORDER BY created ASC
	`

	results, err := surrealdb.Query[[]models.PersonaKnowledge](ctx, c.db, sql, map[string]any{
		"agent_id": agentID,
	})
	if err != nil {
		return nil, fmt.Errorf("list unpromoted knowledge: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return []models.PersonaKnowledge{}, nil
	}
	return (*results)[0].Result, nil
}

// MarkKnowledgePromoted flips the promoted flag, compare-and-swap style:
// the WHERE clause only matches unpromoted records, so a concurrent or
// repeated evaluation observes false and creates no duplicate SharedEntry.
// Returns whether this call won the flag.
func (c *Client) MarkKnowledgePromoted(ctx context.Context, id, sharedEntryID string) (bool, error) {
	sql := `
		UPDATE type::record("persona_knowledge", $id) SET
			promoted = true,
			shared_entry_id = $shared_entry_id
		WHERE promoted = false
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.PersonaKnowledge](ctx, c.db, sql, map[string]any{
		"id":              id,
		"shared_entry_id": sharedEntryID,
	})
	if err != nil {
		return false, fmt.Errorf("mark knowledge promoted: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return false, nil
	}
	return len((*results)[0].Result) > 0, nil
}

// DeleteKnowledge removes a tier-3 record by explicit request.
// Returns the deleted count (0 if not found - idempotent).
func (c *Client) DeleteKnowledge(ctx context.Context, id string) (int, error) {
	sql := `DELETE type::record("persona_knowledge", $id) RETURN BEFORE`

	results, err := surrealdb.Query[[]models.PersonaKnowledge](ctx, c.db, sql, map[string]any{"id": id})
	if err != nil {
		return 0, fmt.Errorf("delete knowledge: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return 0, nil
	}
	return len((*results)[0].Result), nil
}

// CountKnowledge returns the tier-3 record count for an agent.
func (c *Client) CountKnowledge(ctx context.Context, agentID string) (int, error) {
	return c.countByAgent(ctx, "persona_knowledge", agentID)
}

// AvgKnowledgeConfidence returns the mean confidence across an agent's
// tier-3 records, 0.0 when there are none.
func (c *Client) AvgKnowledgeConfidence(ctx context.Context, agentID string) (float64, error) {
	sql := `SELECT math::mean(confidence) AS avg FROM persona_knowledge WHERE agent_id = $agent_id GROUP ALL`

	results, err := surrealdb.Query[[]struct {
		Avg float64 `json:"avg"`
	}](ctx, c.db, sql, map[string]any{"agent_id": agentID})
	if err != nil {
		return 0, fmt.Errorf("avg knowledge confidence: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Avg, nil
}
