package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// DefaultParallelism bounds how many stages of one level run at once.
const DefaultParallelism = 4

// Runner executes stage graphs and records them in the run ledger.
type Runner struct {
	runs        domain.RunRepository
	parallelism int
	logger      *slog.Logger
}

// NewRunner creates a Runner. parallelism <= 0 selects DefaultParallelism.
func NewRunner(runs domain.RunRepository, parallelism int, logger *slog.Logger) *Runner {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &Runner{runs: runs, parallelism: parallelism, logger: logger.With("component", "pipeline")}
}

// Execute runs stages for graphID. Stages of one level run concurrently.
// When a stage fails the remaining stages of its level still finish, every
// later level is marked skipped, and the run is marked failed. The returned
// run reflects the final ledger state; err is non-nil when any stage failed.
func (r *Runner) Execute(ctx context.Context, graphID string, stages []domain.Stage) (*domain.Run, error) {
	levels, err := ResolveExecutionOrder(stages)
	if err != nil {
		return nil, err
	}

	run, err := r.runs.CreateRun(ctx, graphID)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	logger := r.logger.With("run_id", run.ID, "graph_id", graphID)
	logger.Info("run started", "stages", len(stages), "levels", len(levels))

	byName := make(map[string]domain.Stage, len(stages))
	for _, s := range stages {
		byName[s.Name] = s
	}
	stageRunIDs := make(map[string]string, len(stages))
	for _, level := range levels {
		for _, name := range level {
			sr, err := r.runs.CreateStageRun(ctx, run.ID, name)
			if err != nil {
				r.finishRun(ctx, run.ID, fmt.Errorf("create stage run: %w", err), logger)
				return nil, fmt.Errorf("create stage run %s: %w", name, err)
			}
			stageRunIDs[name] = sr.ID
		}
	}

	var runErr error
	for _, level := range levels {
		if runErr != nil {
			for _, name := range level {
				if err := r.runs.FinishStageRun(ctx, stageRunIDs[name], domain.StageStatusSkipped, 0, nil); err != nil {
					logger.Warn("failed to mark stage skipped", "stage", name, "error", err)
				}
			}
			continue
		}
		runErr = r.runLevel(ctx, level, byName, stageRunIDs, logger)
	}

	r.finishRun(ctx, run.ID, runErr, logger)
	final, err := r.runs.GetRun(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return final, runErr
}

// runLevel runs every stage of one level and joins their failures.
func (r *Runner) runLevel(ctx context.Context, level []string, byName map[string]domain.Stage,
	stageRunIDs map[string]string, logger *slog.Logger) error {

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(r.parallelism)
	for _, name := range level {
		stage := byName[name]
		srID := stageRunIDs[name]
		g.Go(func() error {
			if err := r.runStage(ctx, stage, srID, logger); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("stage %s: %w", stage.Name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (r *Runner) runStage(ctx context.Context, stage domain.Stage, stageRunID string, logger *slog.Logger) (err error) {
	logger = logger.With("stage", stage.Name)
	if err := r.runs.StartStageRun(ctx, stageRunID); err != nil {
		logger.Warn("failed to mark stage started", "error", err)
	}

	start := time.Now()
	rows := 0
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		status := domain.StageStatusSuccess
		var errMsg *string
		if err != nil {
			status = domain.StageStatusFailed
			msg := err.Error()
			errMsg = &msg
			logger.Error("stage failed", "error", err, "duration", time.Since(start))
		} else {
			logger.Info("stage completed", "rows_out", rows, "duration", time.Since(start))
		}
		if ferr := r.runs.FinishStageRun(context.WithoutCancel(ctx), stageRunID, status, rows, errMsg); ferr != nil {
			logger.Warn("failed to record stage result", "error", ferr)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	if stage.Run == nil {
		return nil
	}
	rows, err = stage.Run(ctx)
	return err
}

func (r *Runner) finishRun(ctx context.Context, runID string, runErr error, logger *slog.Logger) {
	status := domain.RunStatusSuccess
	var errMsg *string
	if runErr != nil {
		status = domain.RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}
	if err := r.runs.FinishRun(context.WithoutCancel(ctx), runID, status, errMsg); err != nil {
		logger.Error("failed to finish run", "error", err)
		return
	}
	logger.Info("run finished", "status", status)
}
