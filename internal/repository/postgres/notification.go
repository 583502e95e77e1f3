package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	attrs, err := json.Marshal(note.Attributes)
	if err != nil {
		return apperr.Internal(err, "marshal notification attributes")
	}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO notifications (user_id, title, message, attributes, read, created_on)
		 VALUES ($1, $2, $3, $4, FALSE, NOW()) RETURNING id, created_on`,
		note.UserID, note.Title, note.Message, attrs).
		Scan(&note.ID, &note.CreatedOn)
	if err != nil {
		return apperr.Internal(err, "insert notification")
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, userID int64, limit, offset int32) ([]domain.Notification, int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, apperr.Internal(err, "count notifications")
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, attributes, read, created_on
		 FROM notifications WHERE user_id = $1
		 ORDER BY created_on DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal(err, "list notifications")
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var note domain.Notification
		var attrs []byte
		if err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Message, &attrs, &note.Read, &note.CreatedOn); err != nil {
			return nil, 0, apperr.Internal(err, "scan notification")
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &note.Attributes); err != nil {
				return nil, 0, apperr.Internal(err, "unmarshal notification attributes")
			}
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal(err, "iterate notifications")
	}
	return notes, count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return apperr.Internal(err, "mark notification read")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "mark notification read")
	}
	if affected == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}
