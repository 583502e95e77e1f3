package postgres

import (
	"context"
	"testing"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPayoutRepository_CreateForOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPayoutRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	start1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	end1 := start1.AddDate(0, 0, 3)
	start2 := start1.AddDate(0, 0, 5)
	end2 := start2.AddDate(0, 0, 2)

	t.Run("BatchesAndStampsEligibleRentals", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, daily_rate_cents, start_time, end_time").
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "daily_rate_cents", "start_time", "end_time"}).
				AddRow(1, 2500, start1, end1).
				AddRow(2, 1000, start2, end2))
		// 2500x3 + 1000x2 = 9500 gross, 10% fee of 950.
		mock.ExpectQuery("INSERT INTO payouts").
			WithArgs(sqlmock.AnyArg(), int64(10), start1, end2,
				int64(9500), int64(950), int64(8550),
				domain.PayoutStatusPending, int32(2), now).
			WillReturnRows(sqlmock.NewRows([]string{"id", "initiated_at"}).AddRow(7, now))
		mock.ExpectExec("UPDATE rental_requests SET payout_id").
			WithArgs(int64(7), pq.Array([]int64{1, 2})).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		p, err := repo.CreateForOwner(ctx, 10, 0.10, now)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), p.ID)
		assert.Equal(t, int64(9500), p.TotalCents)
		assert.Equal(t, int64(8550), p.NetCents)
		assert.Equal(t, int32(2), p.RentalCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoEligibleRentalsIsNoEarnings", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id, daily_rate_cents, start_time, end_time").
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "daily_rate_cents", "start_time", "end_time"}))
		mock.ExpectRollback()

		_, err := repo.CreateForOwner(ctx, 10, 0.10, now)
		assert.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNoEarnings))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
