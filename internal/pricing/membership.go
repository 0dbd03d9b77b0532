package pricing

import (
	"order-service/internal/model"

	"github.com/shopspring/decimal"
)

// Cumulative spend needed to reach each paid tier
var (
	GoldThreshold     = decimal.NewFromInt(10_000_000)
	PlatinumThreshold = decimal.NewFromInt(50_000_000)
)

// TierFor maps cumulative spend to the tier it earns
func TierFor(totalSpent decimal.Decimal) model.Tier {
	switch {
	case totalSpent.GreaterThanOrEqual(PlatinumThreshold):
		return model.TierPlatinum
	case totalSpent.GreaterThanOrEqual(GoldThreshold):
		return model.TierGold
	default:
		return model.TierRegular
	}
}

// ApplyPayment accrues amount to the customer's spend and upgrades the tier when
// the new spend earns a higher one. Tiers never go down. It reports whether the
// tier changed.
func ApplyPayment(customer *model.Customer, amount decimal.Decimal) bool {
	customer.TotalSpent = customer.TotalSpent.Add(amount)

	earned := TierFor(customer.TotalSpent)
	if customer.Tier.Less(earned) {
		customer.Tier = earned
		return true
	}
	return false
}
