// Package testutil provides shared test doubles of domain interfaces for
// use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// === Run Repository ===

// MockRunRepo is an in-memory domain.RunRepository. Setting one of the Fn
// fields makes the matching method return that function's error first.
type MockRunRepo struct {
	CreateRunFn      func(ctx context.Context, graphID string) error
	FinishStageRunFn func(ctx context.Context, id, status string) error

	mu        sync.Mutex
	seq       int
	runs      map[string]*domain.Run
	stageRuns map[string]*domain.StageRun
	order     []string // stage run ids in creation order
}

// NewMockRunRepo returns an empty repository.
func NewMockRunRepo() *MockRunRepo {
	return &MockRunRepo{
		runs:      make(map[string]*domain.Run),
		stageRuns: make(map[string]*domain.StageRun),
	}
}

func (m *MockRunRepo) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

// CreateRun implements the interface method for testing.
func (m *MockRunRepo) CreateRun(ctx context.Context, graphID string) (*domain.Run, error) {
	if m.CreateRunFn != nil {
		if err := m.CreateRunFn(ctx, graphID); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &domain.Run{ID: m.nextID("run"), GraphID: graphID, Status: domain.RunStatusRunning, StartedAt: time.Now()}
	m.runs[r.ID] = r
	cp := *r
	return &cp, nil
}

// FinishRun implements the interface method for testing.
func (m *MockRunRepo) FinishRun(_ context.Context, id, status string, errMsg *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return domain.ErrNotFound("run %s not found", id)
	}
	now := time.Now()
	r.Status = status
	r.FinishedAt = &now
	r.ErrorMessage = errMsg
	return nil
}

// CreateStageRun implements the interface method for testing.
func (m *MockRunRepo) CreateStageRun(_ context.Context, runID, stage string) (*domain.StageRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr := &domain.StageRun{ID: m.nextID("stage"), RunID: runID, Stage: stage, Status: domain.StageStatusPending}
	m.stageRuns[sr.ID] = sr
	m.order = append(m.order, sr.ID)
	cp := *sr
	return &cp, nil
}

// StartStageRun implements the interface method for testing.
func (m *MockRunRepo) StartStageRun(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.stageRuns[id]
	if !ok {
		return domain.ErrNotFound("stage run %s not found", id)
	}
	now := time.Now()
	sr.Status = domain.StageStatusRunning
	sr.StartedAt = &now
	return nil
}

// FinishStageRun implements the interface method for testing.
func (m *MockRunRepo) FinishStageRun(ctx context.Context, id, status string, rowsOut int, errMsg *string) error {
	if m.FinishStageRunFn != nil {
		if err := m.FinishStageRunFn(ctx, id, status); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.stageRuns[id]
	if !ok {
		return domain.ErrNotFound("stage run %s not found", id)
	}
	now := time.Now()
	sr.Status = status
	sr.RowsOut = rowsOut
	sr.FinishedAt = &now
	sr.ErrorMessage = errMsg
	return nil
}

// GetRun implements the interface method for testing.
func (m *MockRunRepo) GetRun(_ context.Context, id string) (*domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrNotFound("run %s not found", id)
	}
	cp := *r
	return &cp, nil
}

// ListRuns implements the interface method for testing. Newest first.
func (m *MockRunRepo) ListRuns(_ context.Context, limit int) ([]domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListStageRuns implements the interface method for testing, in creation order.
func (m *MockRunRepo) ListStageRuns(_ context.Context, runID string) ([]domain.StageRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StageRun
	for _, id := range m.order {
		if sr := m.stageRuns[id]; sr.RunID == runID {
			out = append(out, *sr)
		}
	}
	return out, nil
}

// StageStatuses returns stage name → status for runID.
func (m *MockRunRepo) StageStatuses(runID string) map[string]string {
	srs, _ := m.ListStageRuns(context.Background(), runID)
	out := make(map[string]string, len(srs))
	for _, sr := range srs {
		out[sr.Stage] = sr.Status
	}
	return out
}
