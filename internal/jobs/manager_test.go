package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// fakeExecutor counts executions and fails a configurable number of
// times per job type before succeeding.
type fakeExecutor struct {
	mu        sync.Mutex
	calls     map[Type]int
	failFirst map[Type]int
	panicOn   Type
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		calls:     make(map[Type]int),
		failFirst: make(map[Type]int),
	}
}

func (f *fakeExecutor) Execute(_ context.Context, jobType Type, agentID string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[jobType]++
	if jobType == f.panicOn {
		panic("executor exploded")
	}
	if f.failFirst[jobType] > 0 {
		f.failFirst[jobType]--
		return nil, errors.New("transient failure")
	}
	return map[string]any{"agent_id": agentID}, nil
}

func (f *fakeExecutor) callCount(jobType Type) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[jobType]
}

func testManager(exec Executor) *Manager {
	m := NewManager(exec, nil, 2, slog.New(slog.DiscardHandler))
	m.backoff = time.Millisecond
	return m
}

func waitForStatus(t *testing.T, m *Manager, id string, want Status) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job := m.Get(id); job != nil {
			snap := job.Snapshot()
			if snap.Status == want {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %s", id, want)
	return Job{}
}

func TestScheduleAndComplete(t *testing.T) {
	exec := newFakeExecutor()
	m := testManager(exec)
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Schedule(context.Background(), TypeCapacityCheck, "agent-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 8 {
		t.Errorf("job id = %q, want 8-char short id", id)
	}

	snap := waitForStatus(t, m, id, StatusCompleted)
	if snap.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", snap.Attempts)
	}
	if snap.Result["agent_id"] != "agent-a" {
		t.Errorf("result = %v", snap.Result)
	}
	if snap.CompletedAt == nil {
		t.Error("completed job must carry a completion time")
	}
}

func TestRetryThenSucceed(t *testing.T) {
	exec := newFakeExecutor()
	exec.failFirst[TypeHeatUpdate] = 2
	m := testManager(exec)
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Schedule(context.Background(), TypeHeatUpdate, "agent-a")
	if err != nil {
		t.Fatal(err)
	}

	snap := waitForStatus(t, m, id, StatusCompleted)
	if snap.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", snap.Attempts)
	}
}

func TestBoundedRetriesThenFail(t *testing.T) {
	exec := newFakeExecutor()
	exec.failFirst[TypeTransfer] = 100
	m := testManager(exec)
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Schedule(context.Background(), TypeTransfer, "agent-a")
	if err != nil {
		t.Fatal(err)
	}

	snap := waitForStatus(t, m, id, StatusFailed)
	if snap.Error == "" {
		t.Error("failed job must carry the last error")
	}
	if got := exec.callCount(TypeTransfer); got != 3 {
		t.Errorf("executions = %d, want bounded at 3", got)
	}
}

func TestPanicRecovery(t *testing.T) {
	exec := newFakeExecutor()
	exec.panicOn = TypeSharedCapacity
	m := testManager(exec)
	m.Start(context.Background())
	defer m.Stop()

	id, err := m.Schedule(context.Background(), TypeSharedCapacity, "")
	if err != nil {
		t.Fatal(err)
	}

	snap := waitForStatus(t, m, id, StatusFailed)
	if snap.Error == "" {
		t.Error("panic must surface as job failure")
	}

	// The pool must still accept and run work afterwards.
	exec.panicOn = ""
	id2, err := m.Schedule(context.Background(), TypeCapacityCheck, "agent-a")
	if err != nil {
		t.Fatal(err)
	}
	waitForStatus(t, m, id2, StatusCompleted)
}

func TestListMostRecentFirst(t *testing.T) {
	m := testManager(newFakeExecutor())
	m.Start(context.Background())
	defer m.Stop()

	ctx := context.Background()
	first, _ := m.Schedule(ctx, TypeCapacityCheck, "agent-a")
	time.Sleep(10 * time.Millisecond)
	second, _ := m.Schedule(ctx, TypeHeatUpdate, "agent-a")

	jobs := m.List()
	if len(jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs))
	}
	if jobs[0].ID != second || jobs[1].ID != first {
		t.Errorf("expected most recent first: %v", []string{jobs[0].ID, jobs[1].ID})
	}
}

func TestParseType(t *testing.T) {
	for _, valid := range []string{"tier1_transfer", "heat_update", "capacity_check", "knowledge_evaluation", "shared_capacity"} {
		if _, err := ParseType(valid); err != nil {
			t.Errorf("ParseType(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseType("defragment"); err == nil {
		t.Error("unknown type must be rejected")
	}
}
