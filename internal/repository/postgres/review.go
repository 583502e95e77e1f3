package postgres

import (
	"context"
	"database/sql"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	// UNIQUE (rental_id, rater_id) backs the one-review-per-rater rule.
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO rental_reviews (rental_id, rater_id, rating, review, created_on)
		 VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_on`,
		rv.RentalID, rv.RaterID, rv.Rating, rv.Review).
		Scan(&rv.ID, &rv.CreatedOn)
	if isUniqueViolation(err) {
		return apperr.Conflict("this rental has already been reviewed by this user")
	}
	if err != nil {
		return apperr.Internal(err, "insert review")
	}
	return nil
}

func (r *reviewRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rental_id, rater_id, rating, COALESCE(review, ''), created_on
		 FROM rental_reviews WHERE rental_id = $1 ORDER BY created_on`, rentalID)
	if err != nil {
		return nil, apperr.Internal(err, "list reviews")
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.RentalID, &rv.RaterID, &rv.Rating, &rv.Review, &rv.CreatedOn); err != nil {
			return nil, apperr.Internal(err, "scan review")
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate reviews")
	}
	return reviews, nil
}
