package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type depositRepository struct {
	db *sql.DB
}

func NewDepositRepository(db *sql.DB) repository.DepositRepository {
	return &depositRepository{db: db}
}

// lockDeposit reads the rental's deposit fields under FOR UPDATE so the
// validate-append-project sequence of every escrow operation is serialized
// per rental.
func lockDeposit(ctx context.Context, tx *sql.Tx, rentalID int64) (amount, charged int64, status domain.DepositStatus, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT deposit_cents, deposit_charged_cents, deposit_status
		 FROM rental_requests WHERE id = $1 FOR UPDATE`, rentalID).
		Scan(&amount, &charged, &status)
	if errors.Is(err, sql.ErrNoRows) {
		err = apperr.NotFound("rental request not found")
		return
	}
	if err != nil {
		err = apperr.Internal(err, "lock deposit aggregate")
	}
	return
}

func appendDepositTx(ctx context.Context, tx *sql.Tx, dt *domain.DepositTransaction) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO deposit_transactions (rental_id, type, amount_cents, reason, notes, actor_id, created_on)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 RETURNING id, created_on`,
		dt.RentalID, dt.Type, dt.AmountCents, dt.Reason, dt.Notes, dt.ActorID).
		Scan(&dt.ID, &dt.CreatedOn)
	if err != nil {
		return apperr.Internal(err, "append deposit transaction")
	}
	return nil
}

func (r *depositRepository) Hold(ctx context.Context, rentalID int64, actorID *int64) (*domain.DepositTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "begin deposit hold")
	}
	defer tx.Rollback()

	amount, _, status, err := lockDeposit(ctx, tx, rentalID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, apperr.State("rental has no deposit to hold")
	}
	if status != domain.DepositStatusPending && status != domain.DepositStatusNotRequired {
		return nil, apperr.Statef("deposit is %s; only a pending deposit can be held", status)
	}

	dt := &domain.DepositTransaction{
		RentalID:    rentalID,
		Type:        domain.DepositTxHold,
		AmountCents: amount,
		Reason:      "deposit held on rental approval",
		ActorID:     actorID,
	}
	if err := appendDepositTx(ctx, tx, dt); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rental_requests
		 SET deposit_status = $1, deposit_held_at = NOW(), updated_on = NOW()
		 WHERE id = $2`, domain.DepositStatusHeld, rentalID); err != nil {
		return nil, apperr.Internal(err, "project deposit hold")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err, "commit deposit hold")
	}
	return dt, nil
}

func (r *depositRepository) Charge(ctx context.Context, rentalID int64, actorID int64, amountCents int64, reason, notes string) (*domain.DepositTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "begin deposit charge")
	}
	defer tx.Rollback()

	amount, charged, status, err := lockDeposit(ctx, tx, rentalID)
	if err != nil {
		return nil, err
	}
	if status != domain.DepositStatusHeld && status != domain.DepositStatusPartiallyCharged {
		return nil, apperr.Statef("deposit is %s; only a held deposit can be charged", status)
	}
	remaining := amount - charged
	if amountCents <= 0 {
		return nil, apperr.Validation("charge amount must be positive")
	}
	if amountCents > remaining {
		return nil, apperr.Newf(apperr.KindValidation,
			"charge of %d cents exceeds the remaining deposit of %d cents", amountCents, remaining)
	}

	txType := domain.DepositTxPartialCharge
	newStatus := domain.DepositStatusPartiallyCharged
	if amountCents == remaining {
		txType = domain.DepositTxFullCharge
		newStatus = domain.DepositStatusFullyCharged
	}

	dt := &domain.DepositTransaction{
		RentalID:    rentalID,
		Type:        txType,
		AmountCents: amountCents,
		Reason:      reason,
		Notes:       notes,
		ActorID:     &actorID,
	}
	if err := appendDepositTx(ctx, tx, dt); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rental_requests
		 SET deposit_status = $1, deposit_charged_cents = deposit_charged_cents + $2, updated_on = NOW()
		 WHERE id = $3`, newStatus, amountCents, rentalID); err != nil {
		return nil, apperr.Internal(err, "project deposit charge")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err, "commit deposit charge")
	}
	return dt, nil
}

func (r *depositRepository) Release(ctx context.Context, rentalID int64, actorID *int64, notes string) (*domain.DepositTransaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err, "begin deposit release")
	}
	defer tx.Rollback()

	amount, charged, status, err := lockDeposit(ctx, tx, rentalID)
	if err != nil {
		return nil, err
	}
	remaining := amount - charged
	switch status {
	case domain.DepositStatusHeld:
		// full release
	case domain.DepositStatusPartiallyCharged:
		// releasing the remainder after a partial charge
		if remaining <= 0 {
			return nil, apperr.State("no remaining deposit to release")
		}
	default:
		return nil, apperr.Statef("deposit is %s; only a held deposit can be released", status)
	}

	dt := &domain.DepositTransaction{
		RentalID:    rentalID,
		Type:        domain.DepositTxRelease,
		AmountCents: remaining,
		Reason:      "deposit released",
		Notes:       notes,
		ActorID:     actorID,
	}
	if err := appendDepositTx(ctx, tx, dt); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rental_requests
		 SET deposit_status = $1, deposit_released_at = NOW(), updated_on = NOW()
		 WHERE id = $2`, domain.DepositStatusReleased, rentalID); err != nil {
		return nil, apperr.Internal(err, "project deposit release")
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err, "commit deposit release")
	}
	return dt, nil
}

func (r *depositRepository) ListTransactions(ctx context.Context, rentalID int64) ([]domain.DepositTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, rental_id, type, amount_cents, COALESCE(reason, ''), COALESCE(notes, ''), actor_id, created_on
		 FROM deposit_transactions WHERE rental_id = $1 ORDER BY id`, rentalID)
	if err != nil {
		return nil, apperr.Internal(err, "list deposit transactions")
	}
	defer rows.Close()

	var txs []domain.DepositTransaction
	for rows.Next() {
		var dt domain.DepositTransaction
		if err := rows.Scan(&dt.ID, &dt.RentalID, &dt.Type, &dt.AmountCents, &dt.Reason, &dt.Notes, &dt.ActorID, &dt.CreatedOn); err != nil {
			return nil, apperr.Internal(err, "scan deposit transaction")
		}
		txs = append(txs, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate deposit transactions")
	}
	return txs, nil
}
