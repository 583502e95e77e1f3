package domain

import "time"

// Review is the post-completion rating either party leaves on a rental.
// Permitted only once the rental has reached COMPLETED; one per rater.
type Review struct {
	ID        int64     `json:"id"`
	RentalID  int64     `json:"rental_id"`
	RaterID   int64     `json:"rater_id"`
	Rating    int32     `json:"rating"`
	Review    string    `json:"review,omitempty"`
	CreatedOn time.Time `json:"created_on"`
}
