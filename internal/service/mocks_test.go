package service_test

import (
	"context"
	"time"

	"gearshare-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) CreateReserved(ctx context.Context, r *domain.RentalRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
func (m *MockRentalRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.RentalStatus, releaseGear bool) error {
	args := m.Called(ctx, id, from, to, releaseGear)
	return args.Error(0)
}
func (m *MockRentalRepo) SetReturnState(ctx context.Context, id int64, expect domain.ReturnStatus, change domain.ReturnStateChange) error {
	args := m.Called(ctx, id, expect, change)
	return args.Error(0)
}
func (m *MockRentalRepo) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int64), args.Error(2)
}
func (m *MockRentalRepo) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int64), args.Error(2)
}

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) IsAvailable(ctx context.Context, gearID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, gearID, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ListReservedRanges(ctx context.Context, gearID int64) ([]domain.ReservedRange, error) {
	args := m.Called(ctx, gearID)
	return args.Get(0).([]domain.ReservedRange), args.Error(1)
}

// MockDepositRepo
type MockDepositRepo struct {
	mock.Mock
}

func (m *MockDepositRepo) Hold(ctx context.Context, rentalID int64, actorID *int64) (*domain.DepositTransaction, error) {
	args := m.Called(ctx, rentalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositTransaction), args.Error(1)
}
func (m *MockDepositRepo) Charge(ctx context.Context, rentalID int64, actorID int64, amountCents int64, reason, notes string) (*domain.DepositTransaction, error) {
	args := m.Called(ctx, rentalID, actorID, amountCents, reason, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositTransaction), args.Error(1)
}
func (m *MockDepositRepo) Release(ctx context.Context, rentalID int64, actorID *int64, notes string) (*domain.DepositTransaction, error) {
	args := m.Called(ctx, rentalID, actorID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepositTransaction), args.Error(1)
}
func (m *MockDepositRepo) ListTransactions(ctx context.Context, rentalID int64) ([]domain.DepositTransaction, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DepositTransaction), args.Error(1)
}

// MockExtensionRepo
type MockExtensionRepo struct {
	mock.Mock
}

func (m *MockExtensionRepo) Create(ctx context.Context, e *domain.ExtensionRequest) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
func (m *MockExtensionRepo) GetByID(ctx context.Context, id int64) (*domain.ExtensionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtensionRequest), args.Error(1)
}
func (m *MockExtensionRepo) Approve(ctx context.Context, id int64, resolvedAt time.Time) (*domain.ExtensionRequest, error) {
	args := m.Called(ctx, id, resolvedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtensionRequest), args.Error(1)
}
func (m *MockExtensionRepo) Reject(ctx context.Context, id int64, notes string, resolvedAt time.Time) (*domain.ExtensionRequest, error) {
	args := m.Called(ctx, id, notes, resolvedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtensionRequest), args.Error(1)
}
func (m *MockExtensionRepo) ListByRental(ctx context.Context, rentalID int64) ([]domain.ExtensionRequest, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtensionRequest), args.Error(1)
}

// MockPayoutRepo
type MockPayoutRepo struct {
	mock.Mock
}

func (m *MockPayoutRepo) ListEligible(ctx context.Context, ownerID int64) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}
func (m *MockPayoutRepo) CreateForOwner(ctx context.Context, ownerID int64, feeRate float64, now time.Time) (*domain.Payout, error) {
	args := m.Called(ctx, ownerID, feeRate, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) GetByID(ctx context.Context, id int64) (*domain.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) TransitionStatus(ctx context.Context, id int64, from, to domain.PayoutStatus, completedAt *time.Time) error {
	args := m.Called(ctx, id, from, to, completedAt)
	return args.Error(0)
}
func (m *MockPayoutRepo) ListByOwner(ctx context.Context, ownerID int64, page, pageSize int32) ([]domain.Payout, int64, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	return args.Get(0).([]domain.Payout), args.Get(1).(int64), args.Error(2)
}
func (m *MockPayoutRepo) ListOwnersWithEligible(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
func (m *MockPayoutRepo) ListUnnotified(ctx context.Context) ([]domain.Payout, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payout), args.Error(1)
}
func (m *MockPayoutRepo) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockGearRepo
type MockGearRepo struct {
	mock.Mock
}

func (m *MockGearRepo) GetByID(ctx context.Context, id int64) (*domain.GearListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GearListing), args.Error(1)
}
func (m *MockGearRepo) SetAvailability(ctx context.Context, id int64, available bool) error {
	args := m.Called(ctx, id, available)
	return args.Error(0)
}

// MockReviewRepo
type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	args := m.Called(ctx, rv)
	return args.Error(0)
}
func (m *MockReviewRepo) ListByRental(ctx context.Context, rentalID int64) ([]domain.Review, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// MockIdentityRepo
type MockIdentityRepo struct {
	mock.Mock
}

func (m *MockIdentityRepo) GetContact(ctx context.Context, userID int64) (*domain.Contact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contact), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, gearTitle string) error {
	args := m.Called(ctx, ownerEmail, ownerName, renterName, gearTitle)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalDecisionNotification(ctx context.Context, renterEmail, renterName, gearTitle, decision string) error {
	args := m.Called(ctx, renterEmail, renterName, gearTitle, decision)
	return args.Error(0)
}
func (m *MockEmailService) SendReturnUpdateNotification(ctx context.Context, email, name, gearTitle, update string) error {
	args := m.Called(ctx, email, name, gearTitle, update)
	return args.Error(0)
}
func (m *MockEmailService) SendDepositNotification(ctx context.Context, renterEmail, renterName, gearTitle, event string, amountCents int64) error {
	args := m.Called(ctx, renterEmail, renterName, gearTitle, event, amountCents)
	return args.Error(0)
}
func (m *MockEmailService) SendExtensionNotification(ctx context.Context, email, name, gearTitle, update string) error {
	args := m.Called(ctx, email, name, gearTitle, update)
	return args.Error(0)
}
func (m *MockEmailService) SendPayoutNotification(ctx context.Context, ownerEmail, ownerName, reference string, netCents int64) error {
	args := m.Called(ctx, ownerEmail, ownerName, reference, netCents)
	return args.Error(0)
}

// quietNotifications registers permissive expectations for the asynchronous
// notification fan-out so tests can focus on the transition under test.
func quietNotifications(noteRepo *MockNotificationRepo, identityRepo *MockIdentityRepo, emailSvc *MockEmailService) {
	noteRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	identityRepo.On("GetContact", mock.Anything, mock.Anything).
		Return(&domain.Contact{ID: 1, Name: "Someone", Email: "someone@test.com"}, nil).Maybe()
	emailSvc.On("SendRentalRequestNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendRentalDecisionNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendReturnUpdateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendDepositNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendExtensionNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	emailSvc.On("SendPayoutNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
}
