package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
	"gearshare-backend/internal/utils"

	"github.com/lib/pq"
)

const rentalColumns = `id, renter_id, gear_id, owner_id, start_time, end_time, location,
	protection, insurance_cents, daily_rate_cents, deposit_cents,
	status, return_status, proposed_return_at, return_proposed_by,
	COALESCE(inspection_notes, ''), COALESCE(dispute_notes, ''), damage_photos,
	deposit_status, deposit_charged_cents, deposit_held_at, deposit_released_at,
	payout_id, created_on, updated_on`

// overlapQuery is the booking-ledger invariant: a range conflicts when it
// intersects any non-terminal rental for the same gear.
const overlapQuery = `SELECT EXISTS (
	SELECT 1 FROM rental_requests
	WHERE gear_id = $1 AND status IN ('PENDING', 'ACTIVE')
	  AND start_time < $3 AND end_time > $2)`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(row interface{ Scan(...any) error }) (*domain.RentalRequest, error) {
	rt := &domain.RentalRequest{}
	err := row.Scan(
		&rt.ID, &rt.RenterID, &rt.GearID, &rt.OwnerID, &rt.StartTime, &rt.EndTime, &rt.Location,
		&rt.Protection, &rt.InsuranceCents, &rt.DailyRateCents, &rt.DepositCents,
		&rt.Status, &rt.ReturnStatus, &rt.ProposedReturnAt, &rt.ReturnProposedBy,
		&rt.InspectionNotes, &rt.DisputeNotes, (*pq.StringArray)(&rt.DamagePhotos),
		&rt.DepositStatus, &rt.DepositChargedCents, &rt.DepositHeldAt, &rt.DepositReleasedAt,
		&rt.PayoutID, &rt.CreatedOn, &rt.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// CreateReserved performs the booking check-and-reserve as one transaction.
// The gear row lock serializes concurrent creates for the same gear, so at
// most one of two overlapping attempts can pass the overlap check.
func (r *rentalRepository) CreateReserved(ctx context.Context, rt *domain.RentalRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err, "begin booking transaction")
	}
	defer tx.Rollback()

	var gear domain.GearListing
	err = tx.QueryRowContext(ctx,
		`SELECT id, owner_id, daily_rate_cents, deposit_cents, is_available
		 FROM gear_listings WHERE id = $1 FOR UPDATE`, rt.GearID).
		Scan(&gear.ID, &gear.OwnerID, &gear.DailyRateCents, &gear.DepositCents, &gear.IsAvailable)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("gear listing not found")
	}
	if err != nil {
		return apperr.Internal(err, "lock gear listing")
	}

	var conflict bool
	if err := tx.QueryRowContext(ctx, overlapQuery, rt.GearID, rt.StartTime, rt.EndTime).Scan(&conflict); err != nil {
		return apperr.Internal(err, "check booking overlap")
	}
	if conflict {
		return apperr.Conflict("these dates are no longer available")
	}

	// Snapshot the listing's pricing so later price changes never affect
	// this rental. Premium protection carries insurance instead of an
	// escrow deposit; its snapshot stays zero so deposit_status and the
	// ledger replay always agree.
	rt.OwnerID = gear.OwnerID
	rt.DailyRateCents = gear.DailyRateCents
	rt.Status = domain.RentalStatusPending
	rt.DepositStatus = domain.DepositStatusNotRequired
	if rt.Protection == domain.ProtectionPremium {
		rt.DepositCents = 0
		rt.InsuranceCents = utils.InsuranceCents(utils.EarningsCents(rt))
	} else {
		rt.DepositCents = gear.DepositCents
		if rt.DepositCents > 0 {
			rt.DepositStatus = domain.DepositStatusPending
		}
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO rental_requests
		   (renter_id, gear_id, owner_id, start_time, end_time, location,
		    protection, insurance_cents, daily_rate_cents, deposit_cents,
		    status, return_status, deposit_status, deposit_charged_cents, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '', $12, 0, NOW(), NOW())
		 RETURNING id, created_on, updated_on`,
		rt.RenterID, rt.GearID, rt.OwnerID, rt.StartTime, rt.EndTime, rt.Location,
		rt.Protection, rt.InsuranceCents, rt.DailyRateCents, rt.DepositCents,
		rt.Status, rt.DepositStatus).
		Scan(&rt.ID, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return apperr.Internal(err, "insert rental request")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE gear_listings SET is_available = FALSE WHERE id = $1`, rt.GearID); err != nil {
		return apperr.Internal(err, "flip gear availability")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal(err, "commit booking transaction")
	}
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx,
		`SELECT `+rentalColumns+` FROM rental_requests WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("rental request not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "get rental request")
	}
	return rt, nil
}

// TransitionStatus is the atomic conditional update for the primary status
// machine; the expected state is part of the predicate so a lost update is
// impossible.
func (r *rentalRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.RentalStatus, releaseGear bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Internal(err, "begin transition transaction")
	}
	defer tx.Rollback()

	var gearID int64
	err = tx.QueryRowContext(ctx,
		`UPDATE rental_requests SET status = $1, updated_on = NOW()
		 WHERE id = $2 AND status = $3 RETURNING gear_id`, to, id, from).Scan(&gearID)
	if errors.Is(err, sql.ErrNoRows) {
		return r.describeStatusMiss(ctx, id, from)
	}
	if err != nil {
		return apperr.Internal(err, "transition rental status")
	}

	if releaseGear {
		if _, err := tx.ExecContext(ctx,
			`UPDATE gear_listings SET is_available = TRUE WHERE id = $1`, gearID); err != nil {
			return apperr.Internal(err, "release gear availability")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal(err, "commit transition transaction")
	}
	return nil
}

// describeStatusMiss distinguishes "no such rental" from "wrong state" after
// a conditional update matched nothing.
func (r *rentalRepository) describeStatusMiss(ctx context.Context, id int64, want domain.RentalStatus) error {
	var current domain.RentalStatus
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM rental_requests WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("rental request not found")
	}
	if err != nil {
		return apperr.Internal(err, "inspect rental status")
	}
	return apperr.Statef("rental is %s, expected %s", current, want)
}

func (r *rentalRepository) SetReturnState(ctx context.Context, id int64, expect domain.ReturnStatus, change domain.ReturnStateChange) error {
	set := []string{"return_status = $1", "updated_on = NOW()"}
	args := []interface{}{change.Next}
	idx := 2

	if change.ClearProposal {
		set = append(set, "proposed_return_at = NULL", "return_proposed_by = NULL")
	}
	if change.ProposedReturnAt != nil {
		set = append(set, fmt.Sprintf("proposed_return_at = $%d", idx))
		args = append(args, *change.ProposedReturnAt)
		idx++
	}
	if change.ProposedBy != nil {
		set = append(set, fmt.Sprintf("return_proposed_by = $%d", idx))
		args = append(args, *change.ProposedBy)
		idx++
	}
	if change.InspectionNotes != nil {
		set = append(set, fmt.Sprintf("inspection_notes = $%d", idx))
		args = append(args, *change.InspectionNotes)
		idx++
	}
	if change.DisputeNotes != nil {
		set = append(set, fmt.Sprintf("dispute_notes = $%d", idx))
		args = append(args, *change.DisputeNotes)
		idx++
	}
	if change.DamagePhotos != nil {
		set = append(set, fmt.Sprintf("damage_photos = $%d", idx))
		args = append(args, pq.Array(*change.DamagePhotos))
		idx++
	}

	query := "UPDATE rental_requests SET "
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += fmt.Sprintf(" WHERE id = $%d AND status = 'ACTIVE' AND return_status = $%d", idx, idx+1)
	args = append(args, id, expect)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Internal(err, "set return state")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "set return state")
	}
	if affected == 0 {
		return r.describeReturnMiss(ctx, id, expect)
	}
	return nil
}

func (r *rentalRepository) describeReturnMiss(ctx context.Context, id int64, expect domain.ReturnStatus) error {
	var status domain.RentalStatus
	var returnStatus domain.ReturnStatus
	err := r.db.QueryRowContext(ctx,
		`SELECT status, return_status FROM rental_requests WHERE id = $1`, id).Scan(&status, &returnStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("rental request not found")
	}
	if err != nil {
		return apperr.Internal(err, "inspect return state")
	}
	if status != domain.RentalStatusActive {
		return apperr.Statef("rental is %s; the return workflow only runs on an active rental", status)
	}
	return apperr.Statef("return status changed to %q before this step applied", string(returnStatus))
}

func (r *rentalRepository) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *rentalRepository) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	return r.list(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *rentalRepository) list(ctx context.Context, column string, userID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE ` + column + ` = $1`

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int64
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, apperr.Internal(err, "count rentals")
	}

	query += " ORDER BY created_on DESC LIMIT $" + strconv.Itoa(argIdx) + " OFFSET $" + strconv.Itoa(argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Internal(err, "list rentals")
	}
	defer rows.Close()

	var rentals []domain.RentalRequest
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, apperr.Internal(err, "scan rental")
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(err, "iterate rentals")
	}
	return rentals, count, nil
}
