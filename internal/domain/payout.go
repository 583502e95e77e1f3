package domain

import "time"

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "PENDING"
	PayoutStatusProcessing PayoutStatus = "PROCESSING"
	PayoutStatusPaid       PayoutStatus = "PAID"
	PayoutStatusFailed     PayoutStatus = "FAILED"
)

// Payout is a batched, fee-adjusted aggregation of an owner's completed but
// not-yet-paid rental earnings. A completed rental is stamped with the
// payout that counted it, so it can never contribute to a second one.
type Payout struct {
	ID          int64        `json:"id"`
	Reference   string       `json:"reference"`
	OwnerID     int64        `json:"owner_id"`
	PeriodStart time.Time    `json:"period_start"`
	PeriodEnd   time.Time    `json:"period_end"`
	TotalCents  int64        `json:"total_cents"`
	FeeCents    int64        `json:"fee_cents"`
	NetCents    int64        `json:"net_cents"`
	Status      PayoutStatus `json:"status"`
	RentalCount int32        `json:"rental_count"`
	InitiatedAt time.Time    `json:"initiated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
