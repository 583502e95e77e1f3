package jobs

import (
	"gearshare-backend/internal/config"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/service"
)

// JobRunner coordinates the scheduled settlement jobs.
type JobRunner struct {
	payoutSvc service.PayoutService
	config    *config.Config
}

func NewJobRunner(payoutSvc service.PayoutService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		payoutSvc: payoutSvc,
		config:    cfg,
	}
}

// Config exposes the loaded configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery so one bad run
// never takes down the scheduler.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs every nightly job in order, for manual execution.
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.RunPayoutBatch()
	jr.SendPayoutNotices()
}
