package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// Segment is a tier-2 topical cluster of recent items. Heat is always the
// last output of the heat formula; a segment with zero linked items is
// invalid and must not exist.
type Segment struct {
	ID         surrealmodels.RecordID `json:"id"`
	AgentID    string                 `json:"agent_id"`
	Summary    string                 `json:"summary"`
	Keywords   []string               `json:"keywords"`
	Embedding  []float32              `json:"embedding,omitempty"`
	Heat       float64                `json:"heat"`
	VisitCount int                    `json:"visit_count"`
	ItemCount  int                    `json:"item_count"`
	Accessed   time.Time              `json:"accessed,omitempty"`
	Created    time.Time              `json:"created,omitempty"`
}
