package postgres

import (
	"context"
	"testing"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDepositRepository_Hold(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 0, "PENDING"))
		mock.ExpectQuery("INSERT INTO deposit_transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(1, time.Now()))
		mock.ExpectExec("UPDATE rental_requests").
			WithArgs(domain.DepositStatusHeld, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		dt, err := repo.Hold(ctx, 1, nil)
		assert.NoError(t, err)
		assert.Equal(t, domain.DepositTxHold, dt.Type)
		assert.Equal(t, int64(20000), dt.AmountCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyHeld", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 0, "HELD"))
		mock.ExpectRollback()

		_, err := repo.Hold(ctx, 1, nil)
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDepositRepository_Charge(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("PartialCharge", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 0, "HELD"))
		mock.ExpectQuery("INSERT INTO deposit_transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(2, time.Now()))
		mock.ExpectExec("UPDATE rental_requests").
			WithArgs(domain.DepositStatusPartiallyCharged, int64(3000), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		dt, err := repo.Charge(ctx, 1, 10, 3000, "scratched body", "")
		assert.NoError(t, err)
		assert.Equal(t, domain.DepositTxPartialCharge, dt.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ChargingTheRemainderChargesFully", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 17000, "PARTIALLY_CHARGED"))
		mock.ExpectQuery("INSERT INTO deposit_transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(3, time.Now()))
		mock.ExpectExec("UPDATE rental_requests").
			WithArgs(domain.DepositStatusFullyCharged, int64(3000), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		dt, err := repo.Charge(ctx, 1, 10, 3000, "total loss", "")
		assert.NoError(t, err)
		assert.Equal(t, domain.DepositTxFullCharge, dt.Type)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OverRemainingIsRejected", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 18000, "PARTIALLY_CHARGED"))
		mock.ExpectRollback()

		_, err := repo.Charge(ctx, 1, 10, 3000, "total loss", "")
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotHeldIsRejected", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 0, "RELEASED"))
		mock.ExpectRollback()

		_, err := repo.Charge(ctx, 1, 10, 3000, "late return", "")
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDepositRepository_Release(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("ReleasesRemainderAfterPartialCharge", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 3000, "PARTIALLY_CHARGED"))
		mock.ExpectQuery("INSERT INTO deposit_transactions").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_on"}).AddRow(4, time.Now()))
		mock.ExpectExec("UPDATE rental_requests").
			WithArgs(domain.DepositStatusReleased, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		dt, err := repo.Release(ctx, 1, nil, "dispute resolved")
		assert.NoError(t, err)
		assert.Equal(t, domain.DepositTxRelease, dt.Type)
		assert.Equal(t, int64(17000), dt.AmountCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FullyChargedHasNothingToRelease", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT deposit_cents, deposit_charged_cents, deposit_status").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"deposit_cents", "deposit_charged_cents", "deposit_status"}).
				AddRow(20000, 20000, "FULLY_CHARGED"))
		mock.ExpectRollback()

		_, err := repo.Release(ctx, 1, nil, "")
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
