// Package policy computes the time-based cancellation/refund policy. It is
// pure: the result depends only on the departure timestamp and the supplied
// current time.
package policy

import (
	"time"

	"github.com/Walid274gh/SkyBooking-sub001/internal/models"
)

// LateCancellationFee is charged when fewer than 24 hours remain before
// departure. Amounts are in minor currency units.
const LateCancellationFee int64 = 5000

// Refund tiers keyed by whole hours remaining to departure:
//
//	>= 48h  -> 100%, no fee
//	24..48h ->  50%, no fee
//	 < 24h  ->   0%, flat fee
func Evaluate(departure, now time.Time) models.CancellationPolicy {
	hours := int64(departure.Sub(now).Hours())

	p := models.CancellationPolicy{HoursRemaining: hours}
	switch {
	case hours >= 48:
		p.RefundPercentage = 100
	case hours >= 24:
		p.RefundPercentage = 50
	default:
		p.RefundPercentage = 0
		p.FlatFee = LateCancellationFee
	}
	return p
}

// RefundAmount applies a policy to a reservation total. The result is floored
// at zero: the flat fee never turns a refund into a debt.
func RefundAmount(totalPrice int64, p models.CancellationPolicy) int64 {
	amount := totalPrice*int64(p.RefundPercentage)/100 - p.FlatFee
	if amount < 0 {
		return 0
	}
	return amount
}
