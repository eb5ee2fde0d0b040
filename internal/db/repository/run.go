package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// Compile-time check.
var _ domain.RunRepository = (*RunRepo)(nil)

// RunRepo implements domain.RunRepository using SQLite.
type RunRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db, now: time.Now}
}

// CreateRun inserts a run in RUNNING state.
func (r *RunRepo) CreateRun(ctx context.Context, graphID string) (*domain.Run, error) {
	run := &domain.Run{
		ID:        domain.NewID(),
		GraphID:   graphID,
		Status:    domain.RunStatusRunning,
		StartedAt: r.now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, graph_id, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.GraphID, run.Status, formatTime(run.StartedAt))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the final status of a run.
func (r *RunRepo) FinishRun(ctx context.Context, id, status string, errMsg *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		status, formatTime(r.now()), nullStringPtr(errMsg), id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return expectOne(res, "run", id)
}

// CreateStageRun inserts a stage run in PENDING state.
func (r *RunRepo) CreateStageRun(ctx context.Context, runID, stage string) (*domain.StageRun, error) {
	sr := &domain.StageRun{
		ID:     domain.NewID(),
		RunID:  runID,
		Stage:  stage,
		Status: domain.StageStatusPending,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_runs (id, run_id, stage, status) VALUES (?, ?, ?, ?)`,
		sr.ID, sr.RunID, sr.Stage, sr.Status)
	if err != nil {
		return nil, fmt.Errorf("insert stage run: %w", err)
	}
	return sr, nil
}

// StartStageRun marks a stage run RUNNING.
func (r *RunRepo) StartStageRun(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stage_runs SET status = ?, started_at = ? WHERE id = ?`,
		domain.StageStatusRunning, formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("update stage run: %w", err)
	}
	return expectOne(res, "stage run", id)
}

// FinishStageRun records the outcome of a stage run.
func (r *RunRepo) FinishStageRun(ctx context.Context, id, status string, rowsOut int, errMsg *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stage_runs SET status = ?, rows_out = ?, finished_at = ?, error = ? WHERE id = ?`,
		status, rowsOut, formatTime(r.now()), nullStringPtr(errMsg), id)
	if err != nil {
		return fmt.Errorf("update stage run: %w", err)
	}
	return expectOne(res, "stage run", id)
}

const runColumns = `id, graph_id, status, started_at, finished_at, error`

// GetRun returns a run by id.
func (r *RunRepo) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (r *RunRepo) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// ListStageRuns returns the stage runs of a run in creation order.
func (r *RunRepo) ListStageRuns(ctx context.Context, runID string) ([]domain.StageRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, run_id, stage, status, rows_out, started_at, finished_at, error
		 FROM stage_runs WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("list stage runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.StageRun
	for rows.Next() {
		var (
			sr                domain.StageRun
			started, finished sql.NullString
			errMsg            sql.NullString
		)
		if err := rows.Scan(&sr.ID, &sr.RunID, &sr.Stage, &sr.Status, &sr.RowsOut, &started, &finished, &errMsg); err != nil {
			return nil, fmt.Errorf("scan stage run: %w", err)
		}
		sr.StartedAt = timePtrFromNullString(started)
		sr.FinishedAt = timePtrFromNullString(finished)
		sr.ErrorMessage = ptrFromNullString(errMsg)
		out = append(out, sr)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*domain.Run, error) {
	var (
		run      domain.Run
		started  string
		finished sql.NullString
		errMsg   sql.NullString
	)
	if err := s.Scan(&run.ID, &run.GraphID, &run.Status, &started, &finished, &errMsg); err != nil {
		return nil, err
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = timePtrFromNullString(finished)
	run.ErrorMessage = ptrFromNullString(errMsg)
	return &run, nil
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound("%s %s not found", kind, id)
	}
	return nil
}
