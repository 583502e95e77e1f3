package utils

import (
	"math"
	"time"

	"gearshare-backend/internal/domain"
)

// RentalDays converts a rental term to billable days. Partial days round up
// and every rental bills for at least one day.
func RentalDays(start, end time.Time) int32 {
	if !end.After(start) {
		return 1
	}
	days := int32(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// EarningsCents computes the owner's earnings for a rental from its snapshot
// daily rate: rate times duration in days, minimum one day.
func EarningsCents(r *domain.RentalRequest) int64 {
	return r.DailyRateCents * int64(RentalDays(r.StartTime, r.EndTime))
}

// ExtensionCostCents prices a term extension at the rental's snapshot daily
// rate. Fixed at request time; never recomputed on approval.
func ExtensionCostCents(r *domain.RentalRequest, additionalDays int32) int64 {
	return r.DailyRateCents * int64(additionalDays)
}

// InsuranceCents prices premium protection at 10% of the base rental cost,
// rounding up so coverage never prices to zero on a nonzero rental.
func InsuranceCents(baseCents int64) int64 {
	if baseCents <= 0 {
		return 0
	}
	return (baseCents + 9) / 10
}

// FeeCents computes the platform fee for a payout total, rounding to the
// nearest cent.
func FeeCents(totalCents int64, feeRate float64) int64 {
	return int64(math.Round(float64(totalCents) * feeRate))
}
