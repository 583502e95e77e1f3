package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type payoutFixture struct {
	payoutRepo   *MockPayoutRepo
	identityRepo *MockIdentityRepo
	emailSvc     *MockEmailService
	svc          service.PayoutService
}

func newPayoutFixture() *payoutFixture {
	f := &payoutFixture{
		payoutRepo:   new(MockPayoutRepo),
		identityRepo: new(MockIdentityRepo),
		emailSvc:     new(MockEmailService),
	}
	// Payout notices go through the service directly, not the async notifier,
	// so only the in-app notification row needs a permissive expectation.
	noteRepo := new(MockNotificationRepo)
	noteRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.svc = service.NewPayoutService(f.payoutRepo, noteRepo, f.identityRepo, f.emailSvc, 0.10, 2500)
	return f
}

func eligibleRental(dailyRateCents int64, days int) domain.RentalRequest {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return domain.RentalRequest{
		Status:         domain.RentalStatusCompleted,
		StartTime:      start,
		EndTime:        start.AddDate(0, 0, days),
		DailyRateCents: dailyRateCents,
	}
}

func TestPayoutService_PendingEarnings(t *testing.T) {
	ctx := context.Background()

	f := newPayoutFixture()
	f.payoutRepo.On("ListEligible", ctx, int64(10)).Return([]domain.RentalRequest{
		eligibleRental(2500, 3),
		eligibleRental(1000, 2),
	}, nil)

	total, count, err := f.svc.PendingEarnings(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(9500), total)
	assert.Equal(t, int32(2), count)
}

func TestPayoutService_Get(t *testing.T) {
	ctx := context.Background()
	payout := &domain.Payout{ID: 3, OwnerID: 10, NetCents: 9000, Reference: "PO-2026-0003"}

	t.Run("OwnerSeesOwnPayout", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("GetByID", ctx, int64(3)).Return(payout, nil)

		p, err := f.svc.Get(ctx, 10, 3)
		require.NoError(t, err)
		assert.Equal(t, "PO-2026-0003", p.Reference)
	})

	t.Run("OtherOwnerDenied", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("GetByID", ctx, int64(3)).Return(payout, nil)

		_, err := f.svc.Get(ctx, 11, 3)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	})
}

func TestPayoutService_BatchEligibleOwners(t *testing.T) {
	ctx := context.Background()

	t.Run("SkipsOwnersBelowMinimum", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("ListOwnersWithEligible", ctx).Return([]int64{10, 11}, nil)
		// Owner 10 clears the 2500 cent minimum, owner 11 does not.
		f.payoutRepo.On("ListEligible", ctx, int64(10)).Return([]domain.RentalRequest{eligibleRental(2500, 3)}, nil)
		f.payoutRepo.On("ListEligible", ctx, int64(11)).Return([]domain.RentalRequest{eligibleRental(1000, 1)}, nil)
		f.payoutRepo.On("CreateForOwner", ctx, int64(10), 0.10, mock.AnythingOfType("time.Time")).
			Return(&domain.Payout{ID: 1, OwnerID: 10, NetCents: 6750, Reference: "PO-2026-0001"}, nil)

		created, err := f.svc.BatchEligibleOwners(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
		f.payoutRepo.AssertNotCalled(t, "CreateForOwner", ctx, int64(11), mock.Anything, mock.Anything)
	})

	t.Run("ConcurrentBatchAlreadySettled", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("ListOwnersWithEligible", ctx).Return([]int64{10}, nil)
		f.payoutRepo.On("ListEligible", ctx, int64(10)).Return([]domain.RentalRequest{eligibleRental(2500, 3)}, nil)
		f.payoutRepo.On("CreateForOwner", ctx, int64(10), 0.10, mock.AnythingOfType("time.Time")).
			Return(nil, apperr.New(apperr.KindNoEarnings, "no eligible rentals to pay out"))

		created, err := f.svc.BatchEligibleOwners(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})

	t.Run("OneFailureDoesNotStopTheSweep", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("ListOwnersWithEligible", ctx).Return([]int64{10, 11}, nil)
		f.payoutRepo.On("ListEligible", ctx, int64(10)).Return(nil, errors.New("connection reset"))
		f.payoutRepo.On("ListEligible", ctx, int64(11)).Return([]domain.RentalRequest{eligibleRental(2500, 3)}, nil)
		f.payoutRepo.On("CreateForOwner", ctx, int64(11), 0.10, mock.AnythingOfType("time.Time")).
			Return(&domain.Payout{ID: 2, OwnerID: 11, NetCents: 6750, Reference: "PO-2026-0002"}, nil)

		created, err := f.svc.BatchEligibleOwners(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
	})
}

func TestPayoutService_SendPendingNotices(t *testing.T) {
	ctx := context.Background()
	payouts := []domain.Payout{
		{ID: 1, OwnerID: 10, NetCents: 6750, Reference: "PO-2026-0001"},
		{ID: 2, OwnerID: 11, NetCents: 1800, Reference: "PO-2026-0002"},
	}

	t.Run("MarksEachNoticeSent", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("ListUnnotified", ctx).Return(payouts, nil)
		f.identityRepo.On("GetContact", ctx, int64(10)).Return(&domain.Contact{ID: 10, Name: "Ana", Email: "ana@test.com"}, nil)
		f.identityRepo.On("GetContact", ctx, int64(11)).Return(&domain.Contact{ID: 11, Name: "Ben", Email: "ben@test.com"}, nil)
		f.emailSvc.On("SendPayoutNotification", ctx, "ana@test.com", "Ana", "PO-2026-0001", int64(6750)).Return(nil)
		f.emailSvc.On("SendPayoutNotification", ctx, "ben@test.com", "Ben", "PO-2026-0002", int64(1800)).Return(nil)
		f.payoutRepo.On("MarkNotified", ctx, int64(1), mock.AnythingOfType("time.Time")).Return(nil)
		f.payoutRepo.On("MarkNotified", ctx, int64(2), mock.AnythingOfType("time.Time")).Return(nil)

		sent, err := f.svc.SendPendingNotices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
	})

	t.Run("FailedSendIsNotMarked", func(t *testing.T) {
		f := newPayoutFixture()
		f.payoutRepo.On("ListUnnotified", ctx).Return(payouts, nil)
		f.identityRepo.On("GetContact", ctx, int64(10)).Return(&domain.Contact{ID: 10, Name: "Ana", Email: "ana@test.com"}, nil)
		f.identityRepo.On("GetContact", ctx, int64(11)).Return(&domain.Contact{ID: 11, Name: "Ben", Email: "ben@test.com"}, nil)
		f.emailSvc.On("SendPayoutNotification", ctx, "ana@test.com", "Ana", "PO-2026-0001", int64(6750)).
			Return(errors.New("sendgrid unavailable"))
		f.emailSvc.On("SendPayoutNotification", ctx, "ben@test.com", "Ben", "PO-2026-0002", int64(1800)).Return(nil)
		f.payoutRepo.On("MarkNotified", ctx, int64(2), mock.AnythingOfType("time.Time")).Return(nil)

		sent, err := f.svc.SendPendingNotices(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		f.payoutRepo.AssertNotCalled(t, "MarkNotified", ctx, int64(1), mock.Anything)
	})
}

func TestPayoutService_MarkPaid(t *testing.T) {
	ctx := context.Background()

	f := newPayoutFixture()
	f.payoutRepo.On("TransitionStatus", ctx, int64(3), domain.PayoutStatusProcessing, domain.PayoutStatusPaid, mock.AnythingOfType("*time.Time")).Return(nil)

	require.NoError(t, f.svc.MarkPaid(ctx, 3))
}
