package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

const extensionColumns = `id, rental_id, requester_id, additional_days, new_end_time,
	cost_cents, status, COALESCE(notes, ''), requested_at, resolved_at`

type extensionRepository struct {
	db *sql.DB
}

func NewExtensionRepository(db *sql.DB) repository.ExtensionRepository {
	return &extensionRepository{db: db}
}

func scanExtension(row interface{ Scan(...any) error }) (*domain.ExtensionRequest, error) {
	e := &domain.ExtensionRequest{}
	err := row.Scan(&e.ID, &e.RentalID, &e.RequesterID, &e.AdditionalDays, &e.NewEndTime,
		&e.CostCents, &e.Status, &e.Notes, &e.RequestedAt, &e.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts the request guarded by a NOT EXISTS on other pending
// requests for the same rental, so only one can be open at a time even
// under concurrent submissions.
func (r *extensionRepository) Create(ctx context.Context, e *domain.ExtensionRequest) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO extension_requests
		   (rental_id, requester_id, additional_days, new_end_time, cost_cents, status, notes, requested_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7, NOW()
		 WHERE NOT EXISTS (
		   SELECT 1 FROM extension_requests WHERE rental_id = $1 AND status = $8)
		 RETURNING id, requested_at`,
		e.RentalID, e.RequesterID, e.AdditionalDays, e.NewEndTime, e.CostCents,
		domain.ExtensionStatusPending, e.Notes, domain.ExtensionStatusPending).
		Scan(&e.ID, &e.RequestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Conflict("an extension request is already pending for this rental")
	}
	if err != nil {
		return apperr.Internal(err, "insert extension request")
	}
	e.Status = domain.ExtensionStatusPending
	return nil
}

func (r *extensionRepository) GetByID(ctx context.Context, id int64) (*domain.ExtensionRequest, error) {
	e, err := scanExtension(r.db.QueryRowContext(ctx,
		`SELECT `+extensionColumns+` FROM extension_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("extension request not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "get extension request")
	}
	return e, nil
}

// Approve resolves the request and applies the one-time end-time shift to
// the parent rental in the same transaction. A second approval matches
// nothing and reports a STATE error, so the shift can never apply twice.
func (r *extensionRepository) Approve(ctx context.Context, id int64, resolvedAt time.Time) (*domain.ExtensionRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "begin extension approval")
	}
	defer tx.Rollback()

	e, err := scanExtension(tx.QueryRowContext(ctx,
		`UPDATE extension_requests SET status = $1, resolved_at = $2
		 WHERE id = $3 AND status = $4
		 RETURNING `+extensionColumns,
		domain.ExtensionStatusApproved, resolvedAt, id, domain.ExtensionStatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.describeResolveMiss(ctx, id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "approve extension request")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE rental_requests SET end_time = $1, updated_on = NOW()
		 WHERE id = $2 AND status = $3`,
		e.NewEndTime, e.RentalID, domain.RentalStatusActive)
	if err != nil {
		return nil, apperr.Internal(err, "apply extended end time")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, apperr.Internal(err, "apply extended end time")
	}
	if affected == 0 {
		return nil, apperr.State("rental is no longer active; the extension cannot apply")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err, "commit extension approval")
	}
	return e, nil
}

func (r *extensionRepository) Reject(ctx context.Context, id int64, notes string, resolvedAt time.Time) (*domain.ExtensionRequest, error) {
	e, err := scanExtension(r.db.QueryRowContext(ctx,
		`UPDATE extension_requests
		 SET status = $1, resolved_at = $2, notes = COALESCE(NULLIF($3, ''), notes)
		 WHERE id = $4 AND status = $5
		 RETURNING `+extensionColumns,
		domain.ExtensionStatusRejected, resolvedAt, notes, id, domain.ExtensionStatusPending))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.describeResolveMiss(ctx, id)
	}
	if err != nil {
		return nil, apperr.Internal(err, "reject extension request")
	}
	return e, nil
}

func (r *extensionRepository) describeResolveMiss(ctx context.Context, id int64) error {
	var status domain.ExtensionStatus
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM extension_requests WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("extension request not found")
	}
	if err != nil {
		return apperr.Internal(err, "inspect extension status")
	}
	return apperr.Statef("extension request is already %s", status)
}

func (r *extensionRepository) ListByRental(ctx context.Context, rentalID int64) ([]domain.ExtensionRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+extensionColumns+` FROM extension_requests
		 WHERE rental_id = $1 ORDER BY requested_at DESC`, rentalID)
	if err != nil {
		return nil, apperr.Internal(err, "list extension requests")
	}
	defer rows.Close()

	var exts []domain.ExtensionRequest
	for rows.Next() {
		e, err := scanExtension(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan extension request")
		}
		exts = append(exts, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate extension requests")
	}
	return exts, nil
}
