package refund

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Tier ступень политики возврата: при lead time не меньше MinLeadMinutes
// возвращается Percent процентов от цены
type Tier struct {
	MinLeadMinutes int
	Percent        float64
}

// Policy конфигурируемая политика возврата средств при отмене.
// Чистая логика: никаких обращений к часам или хранилищу, момент "сейчас"
// передаётся явно.
type Policy struct {
	Tiers []Tier

	// Вычитать ли невозвращаемую комиссию платёжного шлюза
	DeductGatewayFee  bool
	GatewayFeePercent float64
}

// Result результат расчёта возврата
type Result struct {
	Amount  float64
	Percent float64
	Reason  string
}

// IsRefundable проверяет, положен ли возврат при отмене в момент now
func (p Policy) IsRefundable(start, now time.Time) (bool, string) {
	res := p.CalculateRefund(1, start, now)
	if res.Percent <= 0 {
		return false, res.Reason
	}
	return true, res.Reason
}

// CalculateRefund вычисляет сумму возврата для бронирования с началом start,
// отменяемого в момент now. Результат всегда в диапазоне [0, price].
func (p Policy) CalculateRefund(price float64, start, now time.Time) Result {
	if price <= 0 {
		return Result{Amount: 0, Percent: 0, Reason: "nothing paid"}
	}

	leadMinutes := start.Sub(now).Minutes()
	tier, ok := p.matchTier(leadMinutes)
	if !ok {
		return Result{
			Amount:  0,
			Percent: 0,
			Reason:  "cancellation window has passed",
		}
	}

	amount := price * tier.Percent / 100

	if p.DeductGatewayFee && amount > 0 {
		amount -= price * p.GatewayFeePercent / 100
	}

	// Округляем до центов и зажимаем в [0, price]
	amount = math.Round(amount*100) / 100
	if amount < 0 {
		amount = 0
	}
	if amount > price {
		amount = price
	}

	return Result{
		Amount:  amount,
		Percent: tier.Percent,
		Reason:  fmt.Sprintf("%.0f%% refund for cancellation %s before start", tier.Percent, formatLead(leadMinutes)),
	}
}

// matchTier выбирает ступень с наибольшим MinLeadMinutes, не превышающим lead
func (p Policy) matchTier(leadMinutes float64) (Tier, bool) {
	tiers := make([]Tier, len(p.Tiers))
	copy(tiers, p.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinLeadMinutes > tiers[j].MinLeadMinutes
	})

	for _, t := range tiers {
		if leadMinutes >= float64(t.MinLeadMinutes) {
			return t, true
		}
	}
	return Tier{}, false
}

func formatLead(minutes float64) string {
	if minutes >= 24*60 {
		return fmt.Sprintf("%.0f+ days", math.Floor(minutes/(24*60)))
	}
	if minutes >= 60 {
		return fmt.Sprintf("%.0f+ hours", math.Floor(minutes/60))
	}
	return fmt.Sprintf("%.0f minutes", math.Max(minutes, 0))
}
