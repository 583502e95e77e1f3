package domain

import "time"

// ReservedRange is one date range currently held by a non-terminal rental.
// The booking ledger exposes these so clients can offer open dates instead
// of discovering conflicts on submit.
type ReservedRange struct {
	RentalID int64     `json:"rental_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// Overlaps reports whether the range intersects [start, end).
func (r ReservedRange) Overlaps(start, end time.Time) bool {
	return r.Start.Before(end) && r.End.After(start)
}
