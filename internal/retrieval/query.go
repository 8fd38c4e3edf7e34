// Package retrieval answers a query by reading all four memory tiers
// concurrently and synthesizing a ranked, confidence-scored context.
// It never writes memories; the only side effect is segment access
// tracking.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/norbu09/memtier/internal/scoring"
)

// ErrEmptyQuery rejects empty or whitespace-only query text.
var ErrEmptyQuery = errors.New("query text is empty")

// Intent is the closed set of query intents. Classification always
// lands on one of these for non-empty input.
type Intent string

const (
	IntentQuestion   Intent = "question"
	IntentCreation   Intent = "creation"
	IntentRecall     Intent = "recall"
	IntentAssistance Intent = "assistance"
	IntentGeneral    Intent = "general"
)

// QueryContext is the processed form of a raw query.
type QueryContext struct {
	AgentID   string    `json:"agent_id"`
	Text      string    `json:"text"`
	Intent    Intent    `json:"intent"`
	Keywords  []string  `json:"keywords"`
	Embedding []float32 `json:"-"`
}

// ProcessQuery validates the raw query and derives its embedding,
// keywords, and intent. The embedder sits behind the offline fallback,
// so embedding never fails the call.
func (o *Orchestrator) ProcessQuery(ctx context.Context, agentID, text string) (*QueryContext, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	vec, err := o.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return &QueryContext{
		AgentID:   agentID,
		Text:      text,
		Intent:    ClassifyIntent(text),
		Keywords:  scoring.Keywords(text),
		Embedding: vec,
	}, nil
}

var intentCues = []struct {
	intent Intent
	cues   []string
}{
	// Recall beats question: "what did we discuss before" is recall.
	{IntentRecall, []string{"remember", "recall", "last time", "previously", "we discussed", "we talked", "earlier"}},
	{IntentCreation, []string{"create", "make", "build", "generate", "write", "design", "draft", "compose"}},
	{IntentAssistance, []string{"help", "assist", "fix", "debug", "troubleshoot", "solve", "broken"}},
}

var questionWords = []string{"what", "who", "when", "where", "why", "how", "which", "is", "are", "can", "do", "does", "should", "could"}

// ClassifyIntent maps query text to one of the fixed intents by
// lexical cues. Never fails; the fallback is IntentGeneral.
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)

	for _, group := range intentCues {
		for _, cue := range group.cues {
			if strings.Contains(lower, cue) {
				return group.intent
			}
		}
	}

	if strings.Contains(lower, "?") {
		return IntentQuestion
	}
	fields := strings.Fields(lower)
	if len(fields) > 0 {
		for _, w := range questionWords {
			if fields[0] == w {
				return IntentQuestion
			}
		}
	}

	return IntentGeneral
}
