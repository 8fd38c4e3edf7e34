// Package jobs runs maintenance operations as background jobs: a
// bounded worker pool consuming a buffered queue, with bounded retries
// and at-least-once delivery. Every operation the pool executes is
// idempotent at the engine level, so a redelivered job self-corrects.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type identifies a maintenance operation.
type Type string

const (
	TypeTransfer       Type = "tier1_transfer"
	TypeHeatUpdate     Type = "heat_update"
	TypeCapacityCheck  Type = "capacity_check"
	TypeKnowledgeEval  Type = "knowledge_evaluation"
	TypeSharedCapacity Type = "shared_capacity"
)

// ParseType validates a job type string.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeTransfer, TypeHeatUpdate, TypeCapacityCheck, TypeKnowledgeEval, TypeSharedCapacity:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown job type: %q", s)
}

// Status represents the state of a background job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Job represents one scheduled maintenance operation.
type Job struct {
	ID          string
	Type        Type
	AgentID     string
	Status      Status
	Attempts    int
	Result      map[string]any
	Error       string
	StartedAt   time.Time
	CompletedAt *time.Time

	mu sync.RWMutex
}

// Snapshot returns a thread-safe copy of job state.
func (j *Job) Snapshot() Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Job{
		ID:          j.ID,
		Type:        j.Type,
		AgentID:     j.AgentID,
		Status:      j.Status,
		Attempts:    j.Attempts,
		Result:      j.Result,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}

// Executor runs one maintenance operation to completion.
type Executor interface {
	Execute(ctx context.Context, jobType Type, agentID string) (map[string]any, error)
}

// Ledger persists job state. *db.Client satisfies it; nil disables
// persistence (in-memory tracking only).
type Ledger interface {
	CreateMaintenanceJob(ctx context.Context, id, jobType, agentID string) error
	UpdateJobStatus(ctx context.Context, id, status string) error
	CompleteJob(ctx context.Context, id string, result map[string]any) error
	FailJob(ctx context.Context, id, errMsg string) error
}

const (
	defaultQueueSize   = 256
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
)

// Manager tracks and runs background jobs.
type Manager struct {
	queue       chan *Job
	jobs        map[string]*Job
	mu          sync.RWMutex
	exec        Executor
	ledger      Ledger
	workers     int
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	wg          sync.WaitGroup
	started     bool
}

// NewManager creates a job manager with the given worker count.
func NewManager(exec Executor, ledger Ledger, workers int, logger *slog.Logger) *Manager {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		queue:       make(chan *Job, defaultQueueSize),
		jobs:        make(map[string]*Job),
		exec:        exec,
		ledger:      ledger,
		workers:     workers,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
		logger:      logger,
	}
}

// Start launches the worker pool. Workers drain the queue until Stop.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for job := range m.queue {
				m.run(ctx, job)
			}
		}()
	}
	m.logger.Info("job workers started", "workers", m.workers)
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.mu.Unlock()

	close(m.queue)
	m.wg.Wait()
	m.logger.Info("job workers stopped")
}

// Schedule enqueues a maintenance operation and returns its job ID.
// Fails fast when the queue is full rather than blocking the caller.
func (m *Manager) Schedule(ctx context.Context, jobType Type, agentID string) (string, error) {
	job := &Job{
		ID:        uuid.New().String()[:8],
		Type:      jobType,
		AgentID:   agentID,
		Status:    StatusPending,
		StartedAt: time.Now(),
	}

	if m.ledger != nil {
		if err := m.ledger.CreateMaintenanceJob(ctx, job.ID, string(jobType), agentID); err != nil {
			return "", fmt.Errorf("persist job: %w", err)
		}
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	select {
	case m.queue <- job:
	default:
		m.fail(ctx, job, fmt.Errorf("job queue full"))
		return "", fmt.Errorf("job queue full")
	}

	m.logger.Info("job scheduled", "job_id", job.ID, "type", jobType, "agent_id", agentID)
	return job.ID, nil
}

// Get retrieves a job by ID.
func (m *Manager) Get(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// List returns snapshots of all tracked jobs, most recent first.
func (m *Manager) List() []Job {
	m.mu.RLock()
	jobs := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job.Snapshot())
	}
	m.mu.RUnlock()

	slices.SortFunc(jobs, func(a, b Job) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return jobs
}

// run executes a job with bounded retries and panic recovery. A worker
// must never die with the process still up.
func (m *Manager) run(ctx context.Context, job *Job) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("job panicked", "job_id", job.ID, "panic", r)
			m.fail(ctx, job, fmt.Errorf("internal panic: %v", r))
		}
	}()

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			m.fail(ctx, job, ctx.Err())
			return
		}

		m.setRunning(ctx, job)

		result, err := m.exec.Execute(ctx, job.Type, job.AgentID)
		if err == nil {
			m.complete(ctx, job, result)
			return
		}
		lastErr = err

		m.logger.Warn("job attempt failed",
			"job_id", job.ID,
			"type", job.Type,
			"attempt", attempt,
			"error", err)

		if attempt < m.maxAttempts {
			select {
			case <-time.After(m.backoff * time.Duration(attempt)):
			case <-ctx.Done():
				m.fail(ctx, job, ctx.Err())
				return
			}
		}
	}

	m.fail(ctx, job, lastErr)
}

func (m *Manager) setRunning(ctx context.Context, job *Job) {
	job.mu.Lock()
	job.Status = StatusRunning
	job.Attempts++
	job.mu.Unlock()

	if m.ledger != nil {
		if err := m.ledger.UpdateJobStatus(ctx, job.ID, string(StatusRunning)); err != nil {
			m.logger.Warn("failed to persist job status", "job_id", job.ID, "error", err)
		}
	}
}

func (m *Manager) complete(ctx context.Context, job *Job, result map[string]any) {
	job.mu.Lock()
	job.Status = StatusCompleted
	job.Result = result
	now := time.Now()
	job.CompletedAt = &now
	job.mu.Unlock()

	if m.ledger != nil {
		if err := m.ledger.CompleteJob(ctx, job.ID, result); err != nil {
			m.logger.Warn("failed to persist job completion", "job_id", job.ID, "error", err)
		}
	}

	m.logger.Info("job completed", "job_id", job.ID, "type", job.Type, "agent_id", job.AgentID)
}

func (m *Manager) fail(ctx context.Context, job *Job, err error) {
	job.mu.Lock()
	job.Status = StatusFailed
	job.Error = err.Error()
	now := time.Now()
	job.CompletedAt = &now
	job.mu.Unlock()

	if m.ledger != nil {
		if dbErr := m.ledger.FailJob(ctx, job.ID, err.Error()); dbErr != nil {
			m.logger.Warn("failed to persist job failure", "job_id", job.ID, "error", dbErr)
		}
	}

	m.logger.Error("job failed", "job_id", job.ID, "type", job.Type, "error", err)
}
