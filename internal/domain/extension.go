package domain

import "time"

type ExtensionStatus string

const (
	ExtensionStatusPending  ExtensionStatus = "PENDING"
	ExtensionStatusApproved ExtensionStatus = "APPROVED"
	ExtensionStatusRejected ExtensionStatus = "REJECTED"
)

// ExtensionRequest is a renter's proposal to push out the rental end time.
// The cost is fixed from the rental's snapshot daily rate at request time
// and never recomputed.
type ExtensionRequest struct {
	ID             int64           `json:"id"`
	RentalID       int64           `json:"rental_id"`
	RequesterID    int64           `json:"requester_id"`
	AdditionalDays int32           `json:"additional_days"`
	NewEndTime     time.Time       `json:"new_end_time"`
	CostCents      int64           `json:"cost_cents"`
	Status         ExtensionStatus `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	RequestedAt    time.Time       `json:"requested_at"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
}
