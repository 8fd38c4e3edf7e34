package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/norbu09/memtier/internal/jobs"
	"github.com/norbu09/memtier/internal/metrics"
	"github.com/norbu09/memtier/internal/retrieval"
)

// Metadata reports what happened around the response: storage and
// scheduling failures are surfaced here instead of failing the call
// once a response exists.
type Metadata struct {
	InteractionID string `json:"interaction_id,omitempty"`
	TransferJobID string `json:"transfer_job_id,omitempty"`
	StorageError  string `json:"storage_error,omitempty"`
	ScheduleError string `json:"schedule_error,omitempty"`
	Degraded      bool   `json:"degraded,omitempty"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

// InteractionResult is the full outcome of one interaction cycle.
type InteractionResult struct {
	Response string             `json:"response"`
	Context  *retrieval.Context `json:"context"`
	Metadata Metadata           `json:"metadata"`
}

// ProcessInteraction runs one end-to-end cycle: process the query,
// retrieve and synthesize memory context, generate a response, store
// the turn in tier 1, and schedule the asynchronous capacity check.
// Query-processing failure is fatal; storage or scheduling failure is
// reported in metadata with the response still returned.
func (a *Agent) ProcessInteraction(ctx context.Context, agentID, text string) (*InteractionResult, error) {
	start := time.Now()
	defer a.collector.Timed(metrics.OpInteraction, start)

	if err := validateAgentID(agentID); err != nil {
		return nil, err
	}

	qc, err := a.orchestrator.ProcessQuery(ctx, agentID, text)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
		}
		return nil, fmt.Errorf("process query: %w", err)
	}

	synth := a.retrieveAndSynthesize(ctx, qc)
	result := &InteractionResult{Context: synth}

	genStart := time.Now()
	response, err := a.generator.Respond(ctx, text, FormatContext(synth))
	a.collector.RecordTiming(metrics.OpGenerate, time.Since(genStart))
	if err != nil {
		// Degraded mode: reflect the memory context back rather than
		// failing the interaction.
		a.logger.Warn("response generation failed, returning degraded response",
			"agent_id", agentID, "error", err)
		response = degradedResponse(text, synth)
		result.Metadata.Degraded = true
	}
	result.Response = response

	itemID := uuid.New().String()
	if _, err := a.store.CreateRecentItem(ctx, itemID, agentID, text, response); err != nil {
		a.logger.Error("storing interaction failed", "agent_id", agentID, "error", err)
		result.Metadata.StorageError = err.Error()
	} else {
		result.Metadata.InteractionID = itemID

		jobID, err := a.scheduler.Schedule(ctx, jobs.TypeTransfer, agentID)
		if err != nil {
			a.logger.Warn("scheduling capacity check failed", "agent_id", agentID, "error", err)
			result.Metadata.ScheduleError = err.Error()
		} else {
			result.Metadata.TransferJobID = jobID
		}
	}

	result.Metadata.ElapsedMs = time.Since(start).Milliseconds()
	return result, nil
}

// SearchMemories answers a query from memory without storing a new
// interaction or generating a response.
func (a *Agent) SearchMemories(ctx context.Context, agentID, text string) (*retrieval.Context, error) {
	if err := validateAgentID(agentID); err != nil {
		return nil, err
	}

	qc, err := a.orchestrator.ProcessQuery(ctx, agentID, text)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			return nil, &ValidationError{Field: "query", Reason: "must not be empty"}
		}
		return nil, fmt.Errorf("process query: %w", err)
	}

	return a.retrieveAndSynthesize(ctx, qc), nil
}

func (a *Agent) retrieveAndSynthesize(ctx context.Context, qc *retrieval.QueryContext) *retrieval.Context {
	start := time.Now()
	defer a.collector.Timed(metrics.OpRetrieval, start)

	results := a.orchestrator.Retrieve(ctx, qc, retrieval.DefaultLimits())
	return retrieval.Synthesize(qc, results)
}

var tierLabels = map[int]string{
	1: "Recent conversation",
	2: "Related topics",
	3: "Known facts and traits",
	4: "Shared knowledge",
}

// FormatContext renders the synthesized context as the text block
// handed to the response generator.
func FormatContext(synth *retrieval.Context) string {
	if len(synth.Memories) == 0 {
		return ""
	}

	var b strings.Builder
	tiers := make([]int, 0, len(synth.Tiers))
	for tier := range synth.Tiers {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)

	for _, tier := range tiers {
		fmt.Fprintf(&b, "%s:\n", tierLabels[tier])
		for _, line := range synth.Tiers[tier] {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	fmt.Fprintf(&b, "(confidence: %s)", synth.Level)
	return b.String()
}

func degradedResponse(query string, synth *retrieval.Context) string {
	if len(synth.Memories) == 0 {
		return fmt.Sprintf("I have no stored memories related to %q yet.", query)
	}
	return fmt.Sprintf("Here is what I remember:\n%s", FormatContext(synth))
}
