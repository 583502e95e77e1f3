package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type identityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) repository.IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) GetContact(ctx context.Context, userID int64) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(name, ''), email FROM users WHERE id = $1`, userID).
		Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "get user contact")
	}
	return c, nil
}
