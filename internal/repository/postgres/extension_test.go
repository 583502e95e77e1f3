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

func TestExtensionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewExtensionRepository(db)
	ctx := context.Background()
	newEnd := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	ext := func() *domain.ExtensionRequest {
		return &domain.ExtensionRequest{
			RentalID:       1,
			RequesterID:    1,
			AdditionalDays: 3,
			NewEndTime:     newEnd,
			CostCents:      7500,
		}
	}

	t.Run("Success", func(t *testing.T) {
		e := ext()
		mock.ExpectQuery("INSERT INTO extension_requests").
			WithArgs(e.RentalID, e.RequesterID, e.AdditionalDays, e.NewEndTime, e.CostCents,
				domain.ExtensionStatusPending, "", domain.ExtensionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id", "requested_at"}).AddRow(7, time.Now()))

		err := repo.Create(ctx, e)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), e.ID)
		assert.Equal(t, domain.ExtensionStatusPending, e.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondPendingIsConflict", func(t *testing.T) {
		// The guarded insert matches nothing while another request is
		// still pending.
		e := ext()
		mock.ExpectQuery("INSERT INTO extension_requests").
			WithArgs(e.RentalID, e.RequesterID, e.AdditionalDays, e.NewEndTime, e.CostCents,
				domain.ExtensionStatusPending, "", domain.ExtensionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id", "requested_at"}))

		err := repo.Create(ctx, e)
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExtensionRepository_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewExtensionRepository(db)
	ctx := context.Background()
	resolvedAt := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	newEnd := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

	extRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "rental_id", "requester_id", "additional_days",
			"new_end_time", "cost_cents", "status", "notes", "requested_at", "resolved_at"}).
			AddRow(7, 1, 1, 3, newEnd, 7500, "APPROVED", "", time.Now(), resolvedAt)
	}

	t.Run("AppliesEndTimeShiftWithResolution", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE extension_requests SET status").
			WithArgs(domain.ExtensionStatusApproved, resolvedAt, int64(7), domain.ExtensionStatusPending).
			WillReturnRows(extRows())
		mock.ExpectExec("UPDATE rental_requests SET end_time").
			WithArgs(newEnd, int64(1), domain.RentalStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		e, err := repo.Approve(ctx, 7, resolvedAt)
		assert.NoError(t, err)
		assert.Equal(t, domain.ExtensionStatusApproved, e.Status)
		assert.Equal(t, newEnd, e.NewEndTime)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondApprovalIsStateError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE extension_requests SET status").
			WithArgs(domain.ExtensionStatusApproved, resolvedAt, int64(7), domain.ExtensionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery("SELECT status FROM extension_requests").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("APPROVED"))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, 7, resolvedAt)
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InactiveRentalBlocksTheShift", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE extension_requests SET status").
			WithArgs(domain.ExtensionStatusApproved, resolvedAt, int64(7), domain.ExtensionStatusPending).
			WillReturnRows(extRows())
		mock.ExpectExec("UPDATE rental_requests SET end_time").
			WithArgs(newEnd, int64(1), domain.RentalStatusActive).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Approve(ctx, 7, resolvedAt)
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindState))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
