package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
	"gearshare-backend/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const payoutColumns = `id, reference, owner_id, period_start, period_end,
	total_cents, fee_cents, net_cents, status, rental_count, initiated_at, completed_at`

// eligibleRentals selects an owner's completed rentals that no payout has
// counted yet. FOR UPDATE in the batching transaction keeps two concurrent
// batch runs from splitting the same set.
const eligibleRentals = `SELECT id, daily_rate_cents, start_time, end_time
	FROM rental_requests
	WHERE owner_id = $1 AND status = 'COMPLETED' AND payout_id IS NULL
	ORDER BY end_time`

type payoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

func scanPayout(row interface{ Scan(...any) error }) (*domain.Payout, error) {
	p := &domain.Payout{}
	err := row.Scan(&p.ID, &p.Reference, &p.OwnerID, &p.PeriodStart, &p.PeriodEnd,
		&p.TotalCents, &p.FeeCents, &p.NetCents, &p.Status, &p.RentalCount, &p.InitiatedAt, &p.CompletedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *payoutRepository) ListEligible(ctx context.Context, ownerID int64) ([]domain.RentalRequest, error) {
	rows, err := r.db.QueryContext(ctx, eligibleRentals, ownerID)
	if err != nil {
		return nil, apperr.Internal(err, "list eligible rentals")
	}
	defer rows.Close()

	var rentals []domain.RentalRequest
	for rows.Next() {
		var rt domain.RentalRequest
		if err := rows.Scan(&rt.ID, &rt.DailyRateCents, &rt.StartTime, &rt.EndTime); err != nil {
			return nil, apperr.Internal(err, "scan eligible rental")
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate eligible rentals")
	}
	return rentals, nil
}

// CreateForOwner batches the owner's unpaid completed earnings into one
// payout. Selection, payout insert and the payout_id stamp on every counted
// rental commit together, so a rental contributes to at most one payout
// ever, no matter how the call races.
func (r *payoutRepository) CreateForOwner(ctx context.Context, ownerID int64, feeRate float64, now time.Time) (*domain.Payout, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "begin payout batch")
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, eligibleRentals+` FOR UPDATE`, ownerID)
	if err != nil {
		return nil, apperr.Internal(err, "select rentals for payout")
	}

	var (
		ids         []int64
		total       int64
		periodStart time.Time
		periodEnd   time.Time
	)
	for rows.Next() {
		var rt domain.RentalRequest
		if err := rows.Scan(&rt.ID, &rt.DailyRateCents, &rt.StartTime, &rt.EndTime); err != nil {
			rows.Close()
			return nil, apperr.Internal(err, "scan rental for payout")
		}
		ids = append(ids, rt.ID)
		total += utils.EarningsCents(&rt)
		if periodStart.IsZero() || rt.StartTime.Before(periodStart) {
			periodStart = rt.StartTime
		}
		if rt.EndTime.After(periodEnd) {
			periodEnd = rt.EndTime
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apperr.Internal(err, "iterate rentals for payout")
	}
	rows.Close()

	if total <= 0 {
		return nil, apperr.New(apperr.KindNoEarnings, "owner has no unpaid completed earnings")
	}

	fee := utils.FeeCents(total, feeRate)
	p := &domain.Payout{
		Reference:   uuid.NewString(),
		OwnerID:     ownerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		TotalCents:  total,
		FeeCents:    fee,
		NetCents:    total - fee,
		Status:      domain.PayoutStatusPending,
		RentalCount: int32(len(ids)),
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO payouts
		   (reference, owner_id, period_start, period_end, total_cents, fee_cents, net_cents, status, rental_count, initiated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, initiated_at`,
		p.Reference, p.OwnerID, p.PeriodStart, p.PeriodEnd,
		p.TotalCents, p.FeeCents, p.NetCents, p.Status, p.RentalCount, now).
		Scan(&p.ID, &p.InitiatedAt)
	if err != nil {
		return nil, apperr.Internal(err, "insert payout")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rental_requests SET payout_id = $1, updated_on = NOW() WHERE id = ANY($2)`,
		p.ID, pq.Array(ids)); err != nil {
		return nil, apperr.Internal(err, "stamp rentals with payout")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err, "commit payout batch")
	}
	return p, nil
}

func (r *payoutRepository) GetByID(ctx context.Context, id int64) (*domain.Payout, error) {
	p, err := scanPayout(r.db.QueryRowContext(ctx,
		`SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("payout not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "get payout")
	}
	return p, nil
}

func (r *payoutRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.PayoutStatus, completedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payouts SET status = $1, completed_at = COALESCE($2, completed_at)
		 WHERE id = $3 AND status = $4`, to, completedAt, id, from)
	if err != nil {
		return apperr.Internal(err, "transition payout status")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "transition payout status")
	}
	if affected == 0 {
		var current domain.PayoutStatus
		err := r.db.QueryRowContext(ctx, `SELECT status FROM payouts WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("payout not found")
		}
		if err != nil {
			return apperr.Internal(err, "inspect payout status")
		}
		return apperr.Statef("payout is %s, expected %s", current, from)
	}
	return nil
}

func (r *payoutRepository) ListByOwner(ctx context.Context, ownerID int64, page, pageSize int32) ([]domain.Payout, int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM payouts WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return nil, 0, apperr.Internal(err, "count payouts")
	}

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payoutColumns+` FROM payouts
		 WHERE owner_id = $1 ORDER BY initiated_at DESC LIMIT $2 OFFSET $3`,
		ownerID, pageSize, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err, "list payouts")
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, 0, apperr.Internal(err, "scan payout")
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(err, "iterate payouts")
	}
	return payouts, count, nil
}

func (r *payoutRepository) ListUnnotified(ctx context.Context) ([]domain.Payout, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payoutColumns+` FROM payouts
		 WHERE notified_at IS NULL ORDER BY initiated_at`)
	if err != nil {
		return nil, apperr.Internal(err, "list unnotified payouts")
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan unnotified payout")
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate unnotified payouts")
	}
	return payouts, nil
}

func (r *payoutRepository) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE payouts SET notified_at = $1 WHERE id = $2 AND notified_at IS NULL`, at, id); err != nil {
		return apperr.Internal(err, "mark payout notified")
	}
	return nil
}

func (r *payoutRepository) ListOwnersWithEligible(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT owner_id FROM rental_requests
		 WHERE status = 'COMPLETED' AND payout_id IS NULL`)
	if err != nil {
		return nil, apperr.Internal(err, "list owners with eligible earnings")
	}
	defer rows.Close()

	var owners []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(err, "scan owner id")
		}
		owners = append(owners, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate owner ids")
	}
	return owners, nil
}
