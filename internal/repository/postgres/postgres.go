package postgres

import (
	"database/sql"
	"errors"

	"gearshare-backend/internal/repository"

	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.RentalRepository
	repository.BookingRepository
	repository.DepositRepository
	repository.ExtensionRepository
	repository.PayoutRepository
	repository.GearRepository
	repository.ReviewRepository
	repository.NotificationRepository
	repository.IdentityRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		RentalRepository:       NewRentalRepository(db),
		BookingRepository:      NewBookingRepository(db),
		DepositRepository:      NewDepositRepository(db),
		ExtensionRepository:    NewExtensionRepository(db),
		PayoutRepository:       NewPayoutRepository(db),
		GearRepository:         NewGearRepository(db),
		ReviewRepository:       NewReviewRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		IdentityRepository:     NewIdentityRepository(db),
	}
}

// isUniqueViolation reports whether err is a postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
