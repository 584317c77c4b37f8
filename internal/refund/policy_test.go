package refund

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testPolicy = Policy{
	Tiers: []Tier{
		{MinLeadMinutes: 48 * 60, Percent: 100},
		{MinLeadMinutes: 24 * 60, Percent: 50},
	},
}

var start = time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)

func TestPolicy_CalculateRefund_Tiers(t *testing.T) {
	tests := []struct {
		name            string
		now             time.Time
		expectedAmount  float64
		expectedPercent float64
	}{
		{
			name:            "72 hours before start - full refund",
			now:             start.Add(-72 * time.Hour),
			expectedAmount:  60.00,
			expectedPercent: 100,
		},
		{
			name:            "exactly 48 hours - full refund tier still matches",
			now:             start.Add(-48 * time.Hour),
			expectedAmount:  60.00,
			expectedPercent: 100,
		},
		{
			name:            "36 hours before start - half refund",
			now:             start.Add(-36 * time.Hour),
			expectedAmount:  30.00,
			expectedPercent: 50,
		},
		{
			name:            "12 hours before start - no tier matches",
			now:             start.Add(-12 * time.Hour),
			expectedAmount:  0,
			expectedPercent: 0,
		},
		{
			name:            "cancellation after start",
			now:             start.Add(2 * time.Hour),
			expectedAmount:  0,
			expectedPercent: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := testPolicy.CalculateRefund(60.00, start, tt.now)

			assert.Equal(t, tt.expectedAmount, res.Amount)
			assert.Equal(t, tt.expectedPercent, res.Percent)
			assert.NotEmpty(t, res.Reason)
		})
	}
}

func TestPolicy_CalculateRefund_GatewayFee(t *testing.T) {
	p := Policy{
		Tiers:             []Tier{{MinLeadMinutes: 0, Percent: 100}},
		DeductGatewayFee:  true,
		GatewayFeePercent: 2.9,
	}

	res := p.CalculateRefund(100.00, start, start.Add(-time.Hour))

	assert.Equal(t, 97.10, res.Amount)
	assert.Equal(t, float64(100), res.Percent)
}

func TestPolicy_CalculateRefund_FeeNeverGoesNegative(t *testing.T) {
	p := Policy{
		Tiers:             []Tier{{MinLeadMinutes: 0, Percent: 1}},
		DeductGatewayFee:  true,
		GatewayFeePercent: 5,
	}

	// 1% от 10 = 0.10, комиссия 5% от 10 = 0.50 - зажимаем в ноль
	res := p.CalculateRefund(10.00, start, start.Add(-time.Hour))

	assert.Equal(t, 0.0, res.Amount)
}

func TestPolicy_CalculateRefund_RoundsToCents(t *testing.T) {
	p := Policy{Tiers: []Tier{{MinLeadMinutes: 0, Percent: 33.33}}}

	res := p.CalculateRefund(99.99, start, start.Add(-time.Hour))

	// 99.99 * 0.3333 = 33.326667 -> 33.33
	assert.Equal(t, 33.33, res.Amount)
}

func TestPolicy_CalculateRefund_NothingPaid(t *testing.T) {
	res := testPolicy.CalculateRefund(0, start, start.Add(-72*time.Hour))

	assert.Equal(t, 0.0, res.Amount)
	assert.Equal(t, 0.0, res.Percent)
}

func TestPolicy_CalculateRefund_EmptyPolicy(t *testing.T) {
	res := Policy{}.CalculateRefund(60.00, start, start.Add(-720*time.Hour))

	assert.Equal(t, 0.0, res.Amount)
	assert.Equal(t, "cancellation window has passed", res.Reason)
}

func TestPolicy_CalculateRefund_TierOrderIndependent(t *testing.T) {
	shuffled := Policy{
		Tiers: []Tier{
			{MinLeadMinutes: 24 * 60, Percent: 50},
			{MinLeadMinutes: 48 * 60, Percent: 100},
		},
	}

	// подходят обе ступени, выбирается с наибольшим запасом времени
	res := shuffled.CalculateRefund(80.00, start, start.Add(-100*time.Hour))

	assert.Equal(t, 80.00, res.Amount)
	assert.Equal(t, float64(100), res.Percent)
}

func TestPolicy_IsRefundable(t *testing.T) {
	ok, _ := testPolicy.IsRefundable(start, start.Add(-72*time.Hour))
	assert.True(t, ok)

	ok, reason := testPolicy.IsRefundable(start, start.Add(-time.Hour))
	assert.False(t, ok)
	assert.Equal(t, "cancellation window has passed", reason)
}
