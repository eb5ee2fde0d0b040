package domain

import (
	"context"
	"time"
)

// Run and stage status constants.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"

	StageStatusPending = "PENDING"
	StageStatusRunning = "RUNNING"
	StageStatusSuccess = "SUCCESS"
	StageStatusFailed  = "FAILED"
	StageStatusSkipped = "SKIPPED"
)

// Stage is one named step of a batch run (DAG node).
type Stage struct {
	Name      string
	DependsOn []string // stage names
	Run       func(ctx context.Context) (rowsOut int, err error)
}

// Run is one execution of the ingestion pipeline.
type Run struct {
	ID           string     `json:"id"`
	GraphID      string     `json:"graph_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error,omitempty"`
}

// StageRun is the execution of a single stage within a run.
type StageRun struct {
	ID           string     `json:"id"`
	RunID        string     `json:"run_id"`
	Stage        string     `json:"stage"`
	Status       string     `json:"status"`
	RowsOut      int        `json:"rows_out"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error,omitempty"`
}

// RunRepository persists run and stage bookkeeping.
type RunRepository interface {
	CreateRun(ctx context.Context, graphID string) (*Run, error)
	FinishRun(ctx context.Context, id, status string, errMsg *string) error
	CreateStageRun(ctx context.Context, runID, stage string) (*StageRun, error)
	StartStageRun(ctx context.Context, id string) error
	FinishStageRun(ctx context.Context, id, status string, rowsOut int, errMsg *string) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListStageRuns(ctx context.Context, runID string) ([]StageRun, error)
}
