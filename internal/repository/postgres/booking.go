package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

// IsAvailable runs the same overlap predicate the booking transaction uses,
// without a lock. It is advisory: the answer can go stale before a create,
// which is why CreateReserved re-checks under the gear lock.
func (r *bookingRepository) IsAvailable(ctx context.Context, gearID int64, start, end time.Time) (bool, error) {
	var conflict bool
	if err := r.db.QueryRowContext(ctx, overlapQuery, gearID, start, end).Scan(&conflict); err != nil {
		return false, apperr.Internal(err, "check gear availability")
	}
	return !conflict, nil
}

func (r *bookingRepository) ListReservedRanges(ctx context.Context, gearID int64) ([]domain.ReservedRange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, start_time, end_time FROM rental_requests
		 WHERE gear_id = $1 AND status IN ('PENDING', 'ACTIVE')
		 ORDER BY start_time`, gearID)
	if err != nil {
		return nil, apperr.Internal(err, "list reserved ranges")
	}
	defer rows.Close()

	var ranges []domain.ReservedRange
	for rows.Next() {
		var rr domain.ReservedRange
		if err := rows.Scan(&rr.RentalID, &rr.Start, &rr.End); err != nil {
			return nil, apperr.Internal(err, "scan reserved range")
		}
		ranges = append(ranges, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate reserved ranges")
	}
	return ranges, nil
}
