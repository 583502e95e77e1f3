package domain

import "time"

// Notification is an in-app notification row written after a committed
// transition. Delivery is at-least-once and never part of the transaction
// that produced it.
type Notification struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Read       bool              `json:"read"`
	CreatedOn  time.Time         `json:"created_on"`
}

// Contact is the slice of the identity collaborator the notifier needs:
// where to deliver out-of-band notices for an opaque actor id.
type Contact struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TransitionEvent describes one committed settlement-engine transition for
// the notification collaborator.
type TransitionEvent struct {
	Type       string    `json:"type"`
	RentalID   int64     `json:"rental_id"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
