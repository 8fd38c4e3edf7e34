package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MaintenanceJob is a persisted background maintenance operation
// (heat update, capacity check, knowledge evaluation). Jobs execute with
// at-least-once semantics; the operations themselves are idempotent.
type MaintenanceJob struct {
	ID          surrealmodels.RecordID `json:"id"`
	JobType     string                 `json:"job_type"`
	AgentID     string                 `json:"agent_id"`
	Status      string                 `json:"status"`
	Attempts    int                    `json:"attempts"`
	Result      map[string]any         `json:"result,omitempty"`
	Error       *string                `json:"error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}
