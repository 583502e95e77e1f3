package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type gearRepository struct {
	db *sql.DB
}

func NewGearRepository(db *sql.DB) repository.GearRepository {
	return &gearRepository{db: db}
}

func (r *gearRepository) GetByID(ctx context.Context, id int64) (*domain.GearListing, error) {
	g := &domain.GearListing{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, COALESCE(title, ''), daily_rate_cents, deposit_cents, is_available
		 FROM gear_listings WHERE id = $1`, id).
		Scan(&g.ID, &g.OwnerID, &g.Title, &g.DailyRateCents, &g.DepositCents, &g.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("gear listing not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "get gear listing")
	}
	return g, nil
}

func (r *gearRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE gear_listings SET is_available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return apperr.Internal(err, "set gear availability")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "set gear availability")
	}
	if affected == 0 {
		return apperr.NotFound("gear listing not found")
	}
	return nil
}
