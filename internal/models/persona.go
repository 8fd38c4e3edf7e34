package models

import (
	"errors"
	"time"

	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// PersonaOwner identifies which persona holds a knowledge record.
type PersonaOwner string

const (
	// OwnerObject attaches knowledge to an entity the agent interacts with.
	OwnerObject PersonaOwner = "object"

	// OwnerAgent attaches knowledge to the agent's own identity.
	OwnerAgent PersonaOwner = "agent"
)

// KnowledgeKind distinguishes synthesized facts from derived traits.
type KnowledgeKind string

const (
	KindFact  KnowledgeKind = "fact"
	KindTrait KnowledgeKind = "trait"
)

// ErrPersonaOwner is returned when a knowledge record would violate the
// exclusive-owner rule.
var ErrPersonaOwner = errors.New("knowledge must belong to exactly one persona")

// PersonaKnowledge is a tier-3 fact or trait. Each record belongs to
// exactly one persona: an object persona (PersonaID names the entity) or
// the agent persona (PersonaID equals AgentID). The constructors enforce
// the exclusivity; do not build the struct by hand.
type PersonaKnowledge struct {
	ID            surrealmodels.RecordID `json:"id"`
	AgentID       string                 `json:"agent_id"`
	Owner         PersonaOwner           `json:"owner"`
	PersonaID     string                 `json:"persona_id"`
	Kind          KnowledgeKind          `json:"kind"`
	Content       string                 `json:"content"`
	Confidence    float64                `json:"confidence"`
	Keywords      []string               `json:"keywords,omitempty"`
	Promoted      bool                   `json:"promoted"`
	SharedEntryID *string                `json:"shared_entry_id,omitempty"`
	Created       time.Time              `json:"created,omitempty"`
}

// NewObjectKnowledge creates knowledge about an entity the agent
// interacts with.
func NewObjectKnowledge(agentID, personaID string, kind KnowledgeKind, content string, confidence float64) (*PersonaKnowledge, error) {
	if personaID == "" || personaID == agentID {
		return nil, ErrPersonaOwner
	}
	return newKnowledge(agentID, OwnerObject, personaID, kind, content, confidence), nil
}

// NewAgentKnowledge creates knowledge about the agent's own identity.
func NewAgentKnowledge(agentID string, kind KnowledgeKind, content string, confidence float64) (*PersonaKnowledge, error) {
	if agentID == "" {
		return nil, ErrPersonaOwner
	}
	return newKnowledge(agentID, OwnerAgent, agentID, kind, content, confidence), nil
}

func newKnowledge(agentID string, owner PersonaOwner, personaID string, kind KnowledgeKind, content string, confidence float64) *PersonaKnowledge {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return &PersonaKnowledge{
		AgentID:    agentID,
		Owner:      owner,
		PersonaID:  personaID,
		Kind:       kind,
		Content:    content,
		Confidence: confidence,
		Created:    time.Now(),
	}
}
