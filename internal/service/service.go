package service

import (
	"context"
	"time"

	"gearshare-backend/internal/domain"
)

// CreateRentalInput carries the renter's booking request. Pricing fields are
// not accepted from the caller; they are snapshotted from the listing inside
// the booking transaction.
type CreateRentalInput struct {
	GearID     int64                 `json:"gear_id"`
	StartTime  time.Time             `json:"start_time"`
	EndTime    time.Time             `json:"end_time"`
	Location   string                `json:"location"`
	Protection domain.ProtectionType `json:"protection"`
}

// RentalView is the read model for a single rental: the aggregate itself,
// the deposit projection replayed from the escrow ledger, and the extension
// history.
type RentalView struct {
	Rental     *domain.RentalRequest     `json:"rental"`
	Deposit    domain.DepositAggregate   `json:"deposit"`
	Extensions []domain.ExtensionRequest `json:"extensions"`
}

type RentalService interface {
	Create(ctx context.Context, renterID int64, in CreateRentalInput) (*domain.RentalRequest, error)
	Approve(ctx context.Context, ownerID, rentalID int64) (*domain.RentalRequest, error)
	Decline(ctx context.Context, ownerID, rentalID int64) (*domain.RentalRequest, error)
	Cancel(ctx context.Context, renterID, rentalID int64) (*domain.RentalRequest, error)
	// Complete finishes an active rental and releases its reservation.
	// Idempotent: completing an already completed rental is a no-op success.
	// Driven by the return workflow, not exposed over HTTP.
	Complete(ctx context.Context, rentalID int64) (*domain.RentalRequest, error)
	Get(ctx context.Context, actorID, rentalID int64) (*RentalView, error)
	ListRentals(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error)
	ListLendings(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error)
	ReservedRanges(ctx context.Context, gearID int64) ([]domain.ReservedRange, error)
	// CheckAvailability answers the overlap predicate without reserving.
	// Advisory only; Create re-checks under the gear lock.
	CheckAvailability(ctx context.Context, gearID int64, start, end time.Time) (bool, error)
}

type ReturnService interface {
	Schedule(ctx context.Context, actorID, rentalID int64, proposedAt time.Time) (*domain.RentalRequest, error)
	ConfirmMeeting(ctx context.Context, actorID, rentalID int64) (*domain.RentalRequest, error)
	RequestDifferentTime(ctx context.Context, actorID, rentalID int64) (*domain.RentalRequest, error)
	MarkReadyForPickup(ctx context.Context, renterID, rentalID int64, notes string) (*domain.RentalRequest, error)
	SubmitInspection(ctx context.Context, actorID, rentalID int64, notes string, hasDamage bool, photos []string) (*domain.RentalRequest, error)
	ConfirmReceipt(ctx context.Context, ownerID, rentalID int64, hasDamage bool, description string, photos []string) (*domain.RentalRequest, error)
	OpenDispute(ctx context.Context, actorID, rentalID int64, description string, photos []string) (*domain.RentalRequest, error)
	// ResolveDispute is the administrative settlement: chargeCents > 0
	// charges that much of the held deposit, chargeCents == 0 clears the
	// renter and releases it. Either way the rental completes.
	ResolveDispute(ctx context.Context, adminID, rentalID int64, chargeCents int64, notes string) (*domain.RentalRequest, error)
	Rate(ctx context.Context, raterID, rentalID int64, rating int32, review string) (*domain.Review, error)
}

type DepositService interface {
	Charge(ctx context.Context, ownerID, rentalID int64, amountCents int64, reason, notes string) (*domain.DepositTransaction, error)
	Release(ctx context.Context, ownerID, rentalID int64, notes string) (*domain.DepositTransaction, error)
	Transactions(ctx context.Context, actorID, rentalID int64) ([]domain.DepositTransaction, error)
	Aggregate(ctx context.Context, actorID, rentalID int64) (*domain.DepositAggregate, error)
}

type ExtensionService interface {
	Request(ctx context.Context, renterID, rentalID int64, additionalDays int32, notes string) (*domain.ExtensionRequest, error)
	Approve(ctx context.Context, ownerID, extensionID int64) (*domain.ExtensionRequest, error)
	Reject(ctx context.Context, ownerID, extensionID int64, notes string) (*domain.ExtensionRequest, error)
	ListByRental(ctx context.Context, actorID, rentalID int64) ([]domain.ExtensionRequest, error)
}

type PayoutService interface {
	// PendingEarnings returns the total owed and the number of completed,
	// not-yet-paid rentals contributing to it.
	PendingEarnings(ctx context.Context, ownerID int64) (int64, int32, error)
	CreatePayout(ctx context.Context, ownerID int64) (*domain.Payout, error)
	MarkProcessing(ctx context.Context, payoutID int64) error
	MarkPaid(ctx context.Context, payoutID int64) error
	MarkFailed(ctx context.Context, payoutID int64) error
	Get(ctx context.Context, ownerID, payoutID int64) (*domain.Payout, error)
	List(ctx context.Context, ownerID int64, page, pageSize int32) ([]domain.Payout, int64, error)
	// BatchEligibleOwners creates a payout for every owner whose pending
	// earnings meet the configured minimum. Used by the nightly job.
	BatchEligibleOwners(ctx context.Context) (int, error)
	// SendPendingNotices emails owners about payouts still awaiting the
	// payment collaborator. Used by the notice job.
	SendPendingNotices(ctx context.Context) (int, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

type EmailService interface {
	SendRentalRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, gearTitle string) error
	SendRentalDecisionNotification(ctx context.Context, renterEmail, renterName, gearTitle, decision string) error
	SendReturnUpdateNotification(ctx context.Context, email, name, gearTitle, update string) error
	SendDepositNotification(ctx context.Context, renterEmail, renterName, gearTitle, event string, amountCents int64) error
	SendExtensionNotification(ctx context.Context, email, name, gearTitle, update string) error
	SendPayoutNotification(ctx context.Context, ownerEmail, ownerName, reference string, netCents int64) error
}
