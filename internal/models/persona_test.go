package models

import "testing"

func TestNewObjectKnowledge(t *testing.T) {
	k, err := NewObjectKnowledge("agent-1", "user-42", KindFact, "prefers short answers", 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Owner != OwnerObject || k.PersonaID != "user-42" || k.AgentID != "agent-1" {
		t.Errorf("unexpected ownership: %+v", k)
	}
}

func TestNewObjectKnowledgeRejectsAgentOwner(t *testing.T) {
	tests := []struct {
		name      string
		personaID string
	}{
		{"empty persona", ""},
		{"persona equals agent", "agent-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewObjectKnowledge("agent-1", tt.personaID, KindFact, "x", 0.5); err == nil {
				t.Error("expected ErrPersonaOwner")
			}
		})
	}
}

func TestNewAgentKnowledge(t *testing.T) {
	k, err := NewAgentKnowledge("agent-1", KindTrait, "responds verbosely", 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Owner != OwnerAgent || k.PersonaID != "agent-1" {
		t.Errorf("agent knowledge must own itself: %+v", k)
	}

	if _, err := NewAgentKnowledge("", KindTrait, "x", 0.5); err == nil {
		t.Error("empty agent id should be rejected")
	}
}

func TestKnowledgeConfidenceClamped(t *testing.T) {
	k, _ := NewAgentKnowledge("a", KindFact, "x", 1.7)
	if k.Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped to 1.0", k.Confidence)
	}
	k, _ = NewAgentKnowledge("a", KindFact, "x", -0.2)
	if k.Confidence != 0.0 {
		t.Errorf("confidence = %v, want clamped to 0.0", k.Confidence)
	}
}
