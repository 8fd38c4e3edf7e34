// Package models defines data structures for the four memory tiers.
package models

import (
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecentItem is a single tier-1 interaction turn. Items are created on
// every interaction and removed once transferred into a segment; an item
// with a nil SegmentID belongs exclusively to tier 1.
type RecentItem struct {
	ID        surrealmodels.RecordID `json:"id"`
	AgentID   string                 `json:"agent_id"`
	Query     string                 `json:"query"`
	Response  string                 `json:"response"`
	SegmentID *string                `json:"segment_id,omitempty"`
	Created   time.Time              `json:"created,omitempty"`
}

// InteractionText returns the combined turn text used for embedding and
// keyword extraction during transfer.
func (r RecentItem) InteractionText() string {
	if r.Response == "" {
		return r.Query
	}
	return r.Query + "\n" + r.Response
}
