package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Store persists runs and their move records.
type Store interface {
	// BeginRun supersedes any active run for run.Target and records run as
	// the new active run.
	BeginRun(ctx context.Context, run Run) error
	AppendMove(ctx context.Context, runID string, rec MoveRecord) error
	// SetCreatedDirs replaces the folders recorded as created by runID.
	SetCreatedDirs(ctx context.Context, runID string, dirs []string) error
	FinishRun(ctx context.Context, runID string, finishedAt time.Time, createdDirs []string) error
	// ActiveRun returns the undoable run for target, or nil when there is none.
	ActiveRun(ctx context.Context, target string) (*Run, error)
	ConsumeRun(ctx context.Context, runID string, at time.Time) error
	RecentRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}

// MemoryStore keeps runs in process memory. It backs tests and dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]*memoryRun
}

type memoryRun struct {
	run    Run
	moved  int
	failed int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*memoryRun)}
}

func (m *MemoryStore) BeginRun(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.runs {
		if existing.run.Target == run.Target && existing.run.Status == RunActive {
			existing.retire(RunSuperseded)
		}
	}
	run.Status = RunActive
	run.Records = nil
	m.runs[run.ID] = &memoryRun{run: run}
	return nil
}

func (m *MemoryStore) AppendMove(_ context.Context, runID string, rec MoveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.runs[runID]
	if !ok {
		return errUnknownRun(runID)
	}
	entry.run.Records = append(entry.run.Records, rec)
	return nil
}

func (m *MemoryStore) SetCreatedDirs(_ context.Context, runID string, dirs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.runs[runID]
	if !ok {
		return errUnknownRun(runID)
	}
	entry.run.CreatedDirs = append([]string(nil), dirs...)
	return nil
}

func (m *MemoryStore) FinishRun(_ context.Context, runID string, finishedAt time.Time, createdDirs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.runs[runID]
	if !ok {
		return errUnknownRun(runID)
	}
	entry.run.FinishedAt = finishedAt
	entry.run.CreatedDirs = append([]string(nil), createdDirs...)
	return nil
}

func (m *MemoryStore) ActiveRun(_ context.Context, target string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range m.runs {
		if entry.run.Target == target && entry.run.Status == RunActive {
			clone := entry.run
			clone.Records = append([]MoveRecord(nil), entry.run.Records...)
			clone.CreatedDirs = append([]string(nil), entry.run.CreatedDirs...)
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ConsumeRun(_ context.Context, runID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.runs[runID]
	if !ok {
		return errUnknownRun(runID)
	}
	entry.retire(RunConsumed)
	return nil
}

func (m *MemoryStore) RecentRuns(_ context.Context, limit int) ([]RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RunSummary, 0, len(m.runs))
	for _, entry := range m.runs {
		summary := RunSummary{
			ID:         entry.run.ID,
			Target:     entry.run.Target,
			Status:     entry.run.Status,
			StartedAt:  entry.run.StartedAt,
			FinishedAt: entry.run.FinishedAt,
			Moved:      entry.moved,
			Failed:     entry.failed,
		}
		for _, rec := range entry.run.Records {
			if rec.Succeeded() {
				summary.Moved++
			} else {
				summary.Failed++
			}
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func (e *memoryRun) retire(status RunStatus) {
	for _, rec := range e.run.Records {
		if rec.Succeeded() {
			e.moved++
		} else {
			e.failed++
		}
	}
	e.run.Records = nil
	e.run.Status = status
}
