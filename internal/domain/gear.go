package domain

// GearListing is the slice of the listing collaborator the settlement
// engine needs at booking time. The engine reads a snapshot of the pricing
// fields into the rental and flips availability; everything else about a
// listing lives outside this core.
type GearListing struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"owner_id"`
	Title          string `json:"title"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	DepositCents   int64  `json:"deposit_cents"`
	IsAvailable    bool   `json:"is_available"`
}
