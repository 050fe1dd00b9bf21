package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/tracker"
)

// Scheduler runs the periodic reconciliation jobs: the incremental catch-up
// scan and the nightly stat recompute.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *tracker.Orchestrator
}

func NewScheduler(orchestrator *tracker.Orchestrator, cfg *config.SyncConfig) (*Scheduler, error) {
	c := cron.New()
	s := &Scheduler{cron: c, orchestrator: orchestrator}

	if _, err := c.AddFunc(cfg.IncrementalCron, s.runIncremental); err != nil {
		return nil, fmt.Errorf("incremental schedule %q: %w", cfg.IncrementalCron, err)
	}
	if _, err := c.AddFunc(cfg.RecomputeCron, s.runRecompute); err != nil {
		return nil, fmt.Errorf("recompute schedule %q: %w", cfg.RecomputeCron, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runIncremental() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report := s.orchestrator.RunIncremental(ctx)
	if report.Error != "" {
		log.Printf("scheduled incremental sync failed: %s", report.Error)
	}
}

func (s *Scheduler) runRecompute() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.orchestrator.RecomputeDay(ctx, time.Now()); err != nil {
		log.Printf("scheduled recompute failed: %v", err)
	}
}
