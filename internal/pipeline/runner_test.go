package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/testutil"
)

func rows(n int) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return n, nil }
}

func TestRunner_Execute(t *testing.T) {
	repo := testutil.NewMockRunRepo()
	r := NewRunner(repo, 2, slog.New(slog.DiscardHandler))

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string, n int) func(context.Context) (int, error) {
		return func(context.Context) (int, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return n, nil
		}
	}

	run, err := r.Execute(context.Background(), "golden", []domain.Stage{
		{Name: "civic", Run: record("civic", 10)},
		{Name: "cbioportal", Run: record("cbioportal", 5)},
		{Name: "export", DependsOn: []string{"civic", "cbioportal"}, Run: record("export", 15)},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSuccess, run.Status)
	assert.Equal(t, "golden", run.GraphID)
	assert.Nil(t, run.ErrorMessage)
	require.NotNil(t, run.FinishedAt)

	require.Len(t, order, 3)
	assert.Equal(t, "export", order[2])

	srs, err := repo.ListStageRuns(context.Background(), run.ID)
	require.NoError(t, err)
	require.Len(t, srs, 3)
	for _, sr := range srs {
		assert.Equal(t, domain.StageStatusSuccess, sr.Status, sr.Stage)
		assert.NotNil(t, sr.StartedAt)
	}
	assert.Equal(t, "cbioportal", srs[0].Stage)
	assert.Equal(t, 5, srs[0].RowsOut)
}

func TestRunner_FailureSkipsLaterLevels(t *testing.T) {
	repo := testutil.NewMockRunRepo()
	r := NewRunner(repo, 0, slog.New(slog.DiscardHandler))

	var exportRan atomic.Bool
	run, err := r.Execute(context.Background(), "golden", []domain.Stage{
		{Name: "civic", Run: func(context.Context) (int, error) { return 0, errors.New("missing column") }},
		{Name: "cbioportal", Run: rows(3)},
		{Name: "kgx", DependsOn: []string{"civic"}, Run: rows(1)},
		{Name: "export", DependsOn: []string{"kgx"}, Run: func(context.Context) (int, error) {
			exportRan.Store(true)
			return 0, nil
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage civic: missing column")
	assert.False(t, exportRan.Load())

	require.NotNil(t, run)
	assert.Equal(t, domain.RunStatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "missing column")

	assert.Equal(t, map[string]string{
		"civic":      domain.StageStatusFailed,
		"cbioportal": domain.StageStatusSuccess,
		"kgx":        domain.StageStatusSkipped,
		"export":     domain.StageStatusSkipped,
	}, repo.StageStatuses(run.ID))
}

func TestRunner_PanicFailsStage(t *testing.T) {
	repo := testutil.NewMockRunRepo()
	r := NewRunner(repo, 1, slog.New(slog.DiscardHandler))

	run, err := r.Execute(context.Background(), "golden", []domain.Stage{
		{Name: "boom", Run: func(context.Context) (int, error) { panic("nil table") }},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: nil table")
	assert.Equal(t, domain.StageStatusFailed, repo.StageStatuses(run.ID)["boom"])
}

func TestRunner_CancelledContext(t *testing.T) {
	repo := testutil.NewMockRunRepo()
	r := NewRunner(repo, 1, slog.New(slog.DiscardHandler))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	run, err := r.Execute(ctx, "golden", []domain.Stage{
		{Name: "civic", Run: func(context.Context) (int, error) {
			ran.Store(true)
			return 0, nil
		}},
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
	assert.Equal(t, domain.RunStatusFailed, run.Status)
}

func TestRunner_InvalidGraph(t *testing.T) {
	repo := testutil.NewMockRunRepo()
	r := NewRunner(repo, 1, slog.New(slog.DiscardHandler))

	_, err := r.Execute(context.Background(), "golden", []domain.Stage{
		{Name: "A", DependsOn: []string{"B"}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	runs, err := repo.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunner_CreateRunFails(t *testing.T) {
	repo := testutil.NewMockRunRepo()
	repo.CreateRunFn = func(context.Context, string) error { return errors.New("disk full") }
	r := NewRunner(repo, 1, slog.New(slog.DiscardHandler))

	_, err := r.Execute(context.Background(), "golden", []domain.Stage{{Name: "A", Run: rows(1)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create run: disk full")
}
