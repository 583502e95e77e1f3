package service

import (
	"context"
	"strconv"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"
)

// notifier fans out the side effects of a committed transition: an in-app
// notification row and an email. It runs after the transaction that caused
// it, in a goroutine, and never reports failure to the caller; delivery is
// at-least-once on the notification row and best-effort on the email.
type notifier struct {
	noteRepo     repository.NotificationRepository
	identityRepo repository.IdentityRepository
	emailSvc     EmailService
}

func newNotifier(noteRepo repository.NotificationRepository, identityRepo repository.IdentityRepository, emailSvc EmailService) *notifier {
	return &notifier{
		noteRepo:     noteRepo,
		identityRepo: identityRepo,
		emailSvc:     emailSvc,
	}
}

// notify writes the notification row and invokes sendEmail with the
// recipient's contact, asynchronously. sendEmail may be nil when only the
// in-app row is wanted.
func (n *notifier) notify(userID int64, title, message string, attrs map[string]string, sendEmail func(ctx context.Context, c *domain.Contact) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		note := &domain.Notification{
			UserID:     userID,
			Title:      title,
			Message:    message,
			Attributes: attrs,
		}
		if err := n.noteRepo.Create(ctx, note); err != nil {
			logger.Warn("failed to write notification", "user_id", userID, "title", title, "error", err)
		}

		if sendEmail == nil {
			return
		}
		contact, err := n.identityRepo.GetContact(ctx, userID)
		if err != nil {
			logger.Warn("failed to resolve notification contact", "user_id", userID, "error", err)
			return
		}
		if err := sendEmail(ctx, contact); err != nil {
			logger.Warn("failed to send notification email", "user_id", userID, "title", title, "error", err)
		}
	}()
}

func rentalAttrs(eventType string, rentalID int64) map[string]string {
	return map[string]string{
		"type":      eventType,
		"rental_id": strconv.FormatInt(rentalID, 10),
	}
}
