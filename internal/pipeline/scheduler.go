package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/domain"
)

// Trigger starts one pipeline run.
type Trigger func(ctx context.Context) error

// Scheduler runs a Trigger on a cron schedule. A fire that arrives while the
// previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	ctx     context.Context
	entries map[string]cron.EntryID // graph ID → cron entry
}

// NewScheduler creates a Scheduler. Triggers receive ctx, so cancelling it
// aborts a run in flight.
func NewScheduler(ctx context.Context, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		logger:  logger.With("component", "scheduler"),
		ctx:     ctx,
		entries: make(map[string]cron.EntryID),
	}
}

// Add schedules trigger for graphID, replacing any earlier schedule for it.
func (s *Scheduler) Add(graphID, schedule string, trigger Trigger) error {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return domain.ErrValidation("invalid cron schedule %q: %v", schedule, err)
	}

	var running sync.Mutex
	job := func() {
		if !running.TryLock() {
			s.logger.Warn("previous run still in progress, skipping", "graph_id", graphID)
			return
		}
		defer running.Unlock()
		start := time.Now()
		if err := trigger(s.ctx); err != nil {
			s.logger.Warn("scheduled run failed", "graph_id", graphID, "error", err, "duration", time.Since(start))
			return
		}
		s.logger.Info("scheduled run finished", "graph_id", graphID, "duration", time.Since(start))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.entries[graphID]; ok {
		s.cron.Remove(id)
	}
	id, err := s.cron.AddFunc(schedule, job)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", graphID, err)
	}
	s.entries[graphID] = id
	s.logger.Info("scheduled pipeline", "graph_id", graphID, "schedule", schedule)
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("pipeline scheduler started", "entries", s.Len())
}

// Stop stops the scheduler and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("pipeline scheduler stopped")
}

// Len returns the number of scheduled graphs.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
