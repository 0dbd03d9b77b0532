package pricing

import (
	"order-service/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ExtraDiscountThreshold is the order total above which ExtraDiscountRate applies
	ExtraDiscountThreshold = decimal.NewFromInt(5_000_000)
	ExtraDiscountRate      = decimal.RequireFromString("0.05")
	MaxDiscountRate        = decimal.RequireFromString("0.30")
)

// currencyPlaces is the scale of every currency amount
const currencyPlaces = 2

// Quote holds the priced amounts of an order
type Quote struct {
	Rate     decimal.Decimal
	Total    decimal.Decimal
	Discount decimal.Decimal
	Final    decimal.Decimal
}

// DiscountRate returns the tier rate, plus the extra rate for totals above the
// threshold, capped at MaxDiscountRate
func DiscountRate(tier model.Tier, total decimal.Decimal) decimal.Decimal {
	rate := tier.DiscountRate()
	if total.GreaterThan(ExtraDiscountThreshold) {
		rate = rate.Add(ExtraDiscountRate)
	}
	return decimal.Min(rate, MaxDiscountRate)
}

// Price computes the discount and final amount for an order total.
// Currency results are rounded half-up to two places.
func Price(tier model.Tier, total decimal.Decimal) Quote {
	rate := DiscountRate(tier, total)
	discount := total.Mul(rate).Round(currencyPlaces)
	return Quote{
		Rate:     rate,
		Total:    total,
		Discount: discount,
		Final:    total.Sub(discount).Round(currencyPlaces),
	}
}
