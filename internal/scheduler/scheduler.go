package scheduler

import (
	"time"

	"gearshare-backend/internal/jobs"
	"gearshare-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages cron job scheduling.
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// UTC with seconds precision, schedules are 6-field cron expressions.
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	if _, err := s.cron.AddFunc(cfg.RunPayoutBatch, s.jobs.RunPayoutBatch); err != nil {
		logger.Error("Failed to register RunPayoutBatch job", "error", err)
	}

	if _, err := s.cron.AddFunc(cfg.SendPayoutNotices, s.jobs.SendPayoutNotices); err != nil {
		logger.Error("Failed to register SendPayoutNotices job", "error", err)
	}
}

// Start begins executing registered jobs on their schedules.
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler", "jobs", len(s.cron.Entries()))
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if any jobs are registered.
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
