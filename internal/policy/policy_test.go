package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateTiers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		hoursAhead  time.Duration
		wantPercent int
		wantFee     int64
		wantHours   int64
	}{
		{"far ahead", 60 * time.Hour, 100, 0, 60},
		{"exactly 48h", 48 * time.Hour, 100, 0, 48},
		{"just under 48h", 48*time.Hour - time.Minute, 50, 0, 47},
		{"30h", 30 * time.Hour, 50, 0, 30},
		{"exactly 24h", 24 * time.Hour, 50, 0, 24},
		{"just under 24h", 24*time.Hour - time.Minute, 0, LateCancellationFee, 23},
		{"10h", 10 * time.Hour, 0, LateCancellationFee, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Evaluate(now.Add(tt.hoursAhead), now)
			assert.Equal(t, tt.wantPercent, p.RefundPercentage)
			assert.Equal(t, tt.wantFee, p.FlatFee)
			assert.Equal(t, tt.wantHours, p.HoursRemaining)
		})
	}
}

func TestRefundAmount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// 30 hours out: half of 20000
	p := Evaluate(now.Add(30*time.Hour), now)
	assert.Equal(t, int64(10000), RefundAmount(20000, p))

	// 60 hours out: full refund
	p = Evaluate(now.Add(60*time.Hour), now)
	assert.Equal(t, int64(20000), RefundAmount(20000, p))

	// 5 hours out: zero refundable base, fee must not drive it negative
	p = Evaluate(now.Add(5*time.Hour), now)
	assert.Equal(t, int64(0), RefundAmount(20000, p))
}

func TestRefundAmountMonotonic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	departure := now.Add(72 * time.Hour)

	// Refund never increases as departure approaches.
	prev := int64(1 << 62)
	for elapsed := time.Duration(0); elapsed < 72*time.Hour; elapsed += time.Hour {
		p := Evaluate(departure, now.Add(elapsed))
		amount := RefundAmount(20000, p)
		assert.LessOrEqual(t, amount, prev, "refund increased at elapsed=%s", elapsed)
		prev = amount
	}
}
