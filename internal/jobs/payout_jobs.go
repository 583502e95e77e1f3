package jobs

import (
	"context"
	"time"

	"gearshare-backend/internal/logger"
)

// RunPayoutBatch creates a payout for every owner whose unpaid completed
// earnings meet the configured minimum.
func (jr *JobRunner) RunPayoutBatch() {
	jr.runWithRecovery("RunPayoutBatch", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		created, err := jr.payoutSvc.BatchEligibleOwners(ctx)
		if err != nil {
			logger.Error("Payout batch failed", "error", err)
			return
		}
		logger.Info("Payout batch finished", "payouts_created", created)
	})
}

// SendPayoutNotices emails owners about payouts they have not been told
// about yet.
func (jr *JobRunner) SendPayoutNotices() {
	jr.runWithRecovery("SendPayoutNotices", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		sent, err := jr.payoutSvc.SendPendingNotices(ctx)
		if err != nil {
			logger.Error("Payout notices failed", "error", err)
			return
		}
		logger.Info("Payout notices finished", "notices_sent", sent)
	})
}
