package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// SharedEntry is a tier-4 cross-agent knowledge record. The contributing
// agent is a reference only; shared entries are agent-agnostic at
// retrieval time and evicted by importance rank when the pool exceeds
// capacity.
type SharedEntry struct {
	ID         surrealmodels.RecordID `json:"id"`
	Content    string                 `json:"content"`
	AgentID    string                 `json:"agent_id"`
	Importance float64                `json:"importance"`
	Created    time.Time              `json:"created,omitempty"`
}
