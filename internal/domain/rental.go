package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusActive    RentalStatus = "ACTIVE"
	RentalStatusDeclined  RentalStatus = "DECLINED"
	RentalStatusCancelled RentalStatus = "CANCELLED"
	RentalStatusCompleted RentalStatus = "COMPLETED"
)

// IsTerminal reports whether the status is one of the retained-for-history
// end states. Terminal rentals no longer reserve their date range.
func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusDeclined, RentalStatusCancelled, RentalStatusCompleted:
		return true
	}
	return false
}

type ProtectionType string

const (
	ProtectionStandard ProtectionType = "standard"
	ProtectionPremium  ProtectionType = "premium"
)

func (p ProtectionType) Valid() bool {
	return p == ProtectionStandard || p == ProtectionPremium
}

// RentalRequest is the aggregate root of the settlement engine. Rate and
// deposit fields are snapshots captured from the gear listing at creation
// time; later listing changes never retroactively affect an open rental.
type RentalRequest struct {
	ID       int64 `json:"id"`
	RenterID int64 `json:"renter_id"`
	GearID   int64 `json:"gear_id"`
	OwnerID  int64 `json:"owner_id"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  string    `json:"location"`

	Protection     ProtectionType `json:"protection"`
	InsuranceCents int64          `json:"insurance_cents"`
	DailyRateCents int64          `json:"daily_rate_cents"`
	DepositCents   int64          `json:"deposit_cents"`

	Status           RentalStatus `json:"status"`
	ReturnStatus     ReturnStatus `json:"return_status,omitempty"`
	ProposedReturnAt *time.Time   `json:"proposed_return_at,omitempty"`
	ReturnProposedBy *int64       `json:"return_proposed_by,omitempty"`
	InspectionNotes  string       `json:"inspection_notes,omitempty"`
	DisputeNotes     string       `json:"dispute_notes,omitempty"`
	DamagePhotos     []string     `json:"damage_photos,omitempty"`

	DepositStatus       DepositStatus `json:"deposit_status"`
	DepositChargedCents int64         `json:"deposit_charged_cents"`
	DepositHeldAt       *time.Time    `json:"deposit_held_at,omitempty"`
	DepositReleasedAt   *time.Time    `json:"deposit_released_at,omitempty"`

	PayoutID *int64 `json:"payout_id,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// DepositRemaining is the portion of the held deposit not yet charged.
func (r *RentalRequest) DepositRemaining() int64 {
	return r.DepositCents - r.DepositChargedCents
}

// RoleOf identifies which side of the rental an actor is on.
func (r *RentalRequest) RoleOf(actorID int64) ActorRole {
	switch actorID {
	case r.RenterID:
		return RoleRenter
	case r.OwnerID:
		return RoleOwner
	}
	return RoleNone
}
