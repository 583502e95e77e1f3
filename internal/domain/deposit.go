package domain

import "time"

type DepositStatus string

const (
	DepositStatusNotRequired      DepositStatus = "NOT_REQUIRED"
	DepositStatusPending          DepositStatus = "PENDING"
	DepositStatusHeld             DepositStatus = "HELD"
	DepositStatusReleased         DepositStatus = "RELEASED"
	DepositStatusPartiallyCharged DepositStatus = "PARTIALLY_CHARGED"
	DepositStatusFullyCharged     DepositStatus = "FULLY_CHARGED"
)

type DepositTransactionType string

const (
	DepositTxHold          DepositTransactionType = "hold"
	DepositTxRelease       DepositTransactionType = "release"
	DepositTxPartialCharge DepositTransactionType = "partial_charge"
	DepositTxFullCharge    DepositTransactionType = "full_charge"
)

// DepositTransaction is an immutable escrow ledger entry. Rows are only ever
// appended; the aggregate fields on the rental are a cached projection of
// this log.
type DepositTransaction struct {
	ID          int64                  `json:"id"`
	RentalID    int64                  `json:"rental_id"`
	Type        DepositTransactionType `json:"type"`
	AmountCents int64                  `json:"amount_cents"`
	Reason      string                 `json:"reason,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
	ActorID     *int64                 `json:"actor_id,omitempty"`
	CreatedOn   time.Time              `json:"created_on"`
}

// DepositAggregate is the projection of a rental's escrow ledger.
type DepositAggregate struct {
	Status         DepositStatus `json:"status"`
	AmountCents    int64         `json:"amount_cents"`
	ChargedCents   int64         `json:"charged_cents"`
	RemainingCents int64         `json:"remaining_cents"`
}

// ReplayDeposit recomputes the aggregate from the transaction log. The
// write path must keep the cached projection on the rental identical to
// this replay at all times; tests diff the two after every operation.
func ReplayDeposit(depositCents int64, txs []DepositTransaction) DepositAggregate {
	agg := DepositAggregate{
		Status:      DepositStatusNotRequired,
		AmountCents: depositCents,
	}
	if depositCents > 0 {
		agg.Status = DepositStatusPending
	}
	for _, tx := range txs {
		switch tx.Type {
		case DepositTxHold:
			agg.Status = DepositStatusHeld
		case DepositTxPartialCharge:
			agg.ChargedCents += tx.AmountCents
			agg.Status = DepositStatusPartiallyCharged
		case DepositTxFullCharge:
			agg.ChargedCents += tx.AmountCents
			agg.Status = DepositStatusFullyCharged
		case DepositTxRelease:
			agg.Status = DepositStatusReleased
		}
	}
	agg.RemainingCents = agg.AmountCents - agg.ChargedCents
	return agg
}
