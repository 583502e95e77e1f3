package service_test

import (
	"context"
	"testing"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type depositFixture struct {
	rentalRepo  *MockRentalRepo
	depositRepo *MockDepositRepo
	gearRepo    *MockGearRepo
	svc         service.DepositService
}

func newDepositFixture() *depositFixture {
	f := &depositFixture{
		rentalRepo:  new(MockRentalRepo),
		depositRepo: new(MockDepositRepo),
		gearRepo:    new(MockGearRepo),
	}
	noteRepo := new(MockNotificationRepo)
	identityRepo := new(MockIdentityRepo)
	emailSvc := new(MockEmailService)
	quietNotifications(noteRepo, identityRepo, emailSvc)

	f.gearRepo.On("GetByID", mock.Anything, mock.Anything).
		Return(&domain.GearListing{ID: 2, Title: "Sony A7"}, nil).Maybe()

	f.svc = service.NewDepositService(f.rentalRepo, f.depositRepo, f.gearRepo, noteRepo, identityRepo, emailSvc)
	return f
}

func heldRental() *domain.RentalRequest {
	return &domain.RentalRequest{
		ID: 1, RenterID: 1, OwnerID: 10, GearID: 2,
		Status:        domain.RentalStatusActive,
		DepositCents:  20000,
		DepositStatus: domain.DepositStatusHeld,
	}
}

func TestDepositService_Charge(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newDepositFixture()
		f.rentalRepo.On("GetByID", ctx, int64(1)).Return(heldRental(), nil)
		f.depositRepo.On("Charge", ctx, int64(1), int64(10), int64(3000), "scratched body", "").
			Return(&domain.DepositTransaction{Type: domain.DepositTxPartialCharge, AmountCents: 3000}, nil)

		tx, err := f.svc.Charge(ctx, 10, 1, 3000, "scratched body", "")
		require.NoError(t, err)
		assert.Equal(t, int64(3000), tx.AmountCents)
	})

	t.Run("ReasonRequired", func(t *testing.T) {
		f := newDepositFixture()
		f.rentalRepo.On("GetByID", ctx, int64(1)).Return(heldRental(), nil)

		_, err := f.svc.Charge(ctx, 10, 1, 3000, "", "")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		f.depositRepo.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OnlyOwner", func(t *testing.T) {
		f := newDepositFixture()
		f.rentalRepo.On("GetByID", ctx, int64(1)).Return(heldRental(), nil)

		_, err := f.svc.Charge(ctx, 1, 1, 3000, "scratched body", "")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	})

	t.Run("LedgerRejectionPassesThrough", func(t *testing.T) {
		f := newDepositFixture()
		f.rentalRepo.On("GetByID", ctx, int64(1)).Return(heldRental(), nil)
		f.depositRepo.On("Charge", ctx, int64(1), int64(10), int64(25000), "total loss", "").
			Return(nil, apperr.Validation("charge exceeds the remaining deposit"))

		_, err := f.svc.Charge(ctx, 10, 1, 25000, "total loss", "")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})
}

func TestDepositService_Release(t *testing.T) {
	ctx := context.Background()
	ownerID := int64(10)

	f := newDepositFixture()
	f.rentalRepo.On("GetByID", ctx, int64(1)).Return(heldRental(), nil)
	f.depositRepo.On("Release", ctx, int64(1), &ownerID, "all good").
		Return(&domain.DepositTransaction{Type: domain.DepositTxRelease, AmountCents: 20000}, nil)

	tx, err := f.svc.Release(ctx, ownerID, 1, "all good")
	require.NoError(t, err)
	assert.Equal(t, domain.DepositTxRelease, tx.Type)
}

func TestDepositService_Aggregate(t *testing.T) {
	ctx := context.Background()

	f := newDepositFixture()
	f.rentalRepo.On("GetByID", ctx, int64(1)).Return(heldRental(), nil)
	f.depositRepo.On("ListTransactions", ctx, int64(1)).Return([]domain.DepositTransaction{
		{Type: domain.DepositTxHold, AmountCents: 20000},
		{Type: domain.DepositTxPartialCharge, AmountCents: 3000},
	}, nil)

	agg, err := f.svc.Aggregate(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DepositStatusPartiallyCharged, agg.Status)
	assert.Equal(t, int64(17000), agg.RemainingCents)
}
