package repository

import (
	"context"
	"time"

	"gearshare-backend/internal/domain"
)

// RentalRepository persists the rental aggregate. Every mutating method is
// an atomic conditional update: the expected current state is part of the
// SQL predicate, so two near-simultaneous actors cannot both win.
type RentalRepository interface {
	// CreateReserved inserts the rental and reserves its date range in one
	// transaction: the gear row is locked, the overlap check runs against
	// non-terminal rentals, snapshots are captured and availability is
	// flipped off together with the insert.
	CreateReserved(ctx context.Context, r *domain.RentalRequest) error
	GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error)
	// TransitionStatus moves status from exactly `from` to `to`, releasing
	// the gear reservation in the same transaction when asked. Zero rows
	// matched reports a STATE error.
	TransitionStatus(ctx context.Context, id int64, from, to domain.RentalStatus, releaseGear bool) error
	// SetReturnState advances the return workflow sub-state, guarded on the
	// currently stored return status.
	SetReturnState(ctx context.Context, id int64, expect domain.ReturnStatus, change domain.ReturnStateChange) error
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error)
}

// BookingRepository answers availability questions about a gear's calendar.
// The authoritative check-and-reserve lives inside CreateReserved; these
// reads serve the UI and pre-validation.
type BookingRepository interface {
	IsAvailable(ctx context.Context, gearID int64, start, end time.Time) (bool, error)
	ListReservedRanges(ctx context.Context, gearID int64) ([]domain.ReservedRange, error)
}

// DepositRepository owns the escrow ledger. Each operation runs in one
// transaction: lock the rental's deposit fields, validate, append the
// ledger row and refresh the cached aggregate together.
type DepositRepository interface {
	Hold(ctx context.Context, rentalID int64, actorID *int64) (*domain.DepositTransaction, error)
	Charge(ctx context.Context, rentalID int64, actorID int64, amountCents int64, reason, notes string) (*domain.DepositTransaction, error)
	Release(ctx context.Context, rentalID int64, actorID *int64, notes string) (*domain.DepositTransaction, error)
	ListTransactions(ctx context.Context, rentalID int64) ([]domain.DepositTransaction, error)
}

type ExtensionRepository interface {
	// Create inserts the request unless another one is still pending for
	// the same rental, in which case it reports a CONFLICT error.
	Create(ctx context.Context, e *domain.ExtensionRequest) error
	GetByID(ctx context.Context, id int64) (*domain.ExtensionRequest, error)
	// Approve resolves the request and shifts the parent rental's end time
	// in the same transaction. Only a pending request resolves; anything
	// else reports a STATE error.
	Approve(ctx context.Context, id int64, resolvedAt time.Time) (*domain.ExtensionRequest, error)
	Reject(ctx context.Context, id int64, notes string, resolvedAt time.Time) (*domain.ExtensionRequest, error)
	ListByRental(ctx context.Context, rentalID int64) ([]domain.ExtensionRequest, error)
}

type PayoutRepository interface {
	// ListEligible returns the owner's completed rentals not yet attached
	// to any payout.
	ListEligible(ctx context.Context, ownerID int64) ([]domain.RentalRequest, error)
	// CreateForOwner atomically selects the eligible rentals, creates the
	// payout and stamps the rentals with its id so a concurrent second call
	// cannot double-count them. Reports NO_EARNINGS when nothing is owed.
	CreateForOwner(ctx context.Context, ownerID int64, feeRate float64, now time.Time) (*domain.Payout, error)
	GetByID(ctx context.Context, id int64) (*domain.Payout, error)
	TransitionStatus(ctx context.Context, id int64, from, to domain.PayoutStatus, completedAt *time.Time) error
	ListByOwner(ctx context.Context, ownerID int64, page, pageSize int32) ([]domain.Payout, int64, error)
	// ListOwnersWithEligible feeds the scheduled batch run.
	ListOwnersWithEligible(ctx context.Context) ([]int64, error)
	// ListUnnotified returns payouts whose owner has not been emailed yet;
	// MarkNotified records the send so the notice job delivers once.
	ListUnnotified(ctx context.Context) ([]domain.Payout, error)
	MarkNotified(ctx context.Context, id int64, at time.Time) error
}

type GearRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.GearListing, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
}

type ReviewRepository interface {
	Create(ctx context.Context, rv *domain.Review) error
	ListByRental(ctx context.Context, rentalID int64) ([]domain.Review, error)
}

// IdentityRepository is a read-only view onto the identity collaborator's
// user records, used only to resolve delivery contacts for notifications.
type IdentityRepository interface {
	GetContact(ctx context.Context, userID int64) (*domain.Contact, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}
