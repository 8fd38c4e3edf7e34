package db

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
)

// ListAgentIDs returns every agent with memories in any tier, for the
// periodic maintenance sweep.
func (c *Client) ListAgentIDs(ctx context.Context) ([]string, error) {
	sql := `
		SELECT agent_id FROM recent_item GROUP BY agent_id;
		SELECT agent_id FROM segment GROUP BY agent_id;
		SELECT agent_id FROM persona_knowledge GROUP BY agent_id;
	`

	results, err := surrealdb.Query[[]struct {
		AgentID string `json:"agent_id"`
	}](ctx, c.db, sql, nil)
	if err != nil {
		return nil, fmt.Errorf("list agent ids: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	if results != nil {
		for _, set := range *results {
			for _, row := range set.Result {
				if row.AgentID != "" && !seen[row.AgentID] {
					seen[row.AgentID] = true
					ids = append(ids, row.AgentID)
				}
			}
		}
	}
	return ids, nil
}
