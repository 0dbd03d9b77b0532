package model

import "github.com/shopspring/decimal"

// Tier is a customer membership level
type Tier string

const (
	TierRegular  Tier = "REGULAR"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

var tierRates = map[Tier]decimal.Decimal{
	TierRegular:  decimal.Zero,
	TierGold:     decimal.RequireFromString("0.10"),
	TierPlatinum: decimal.RequireFromString("0.20"),
}

// Rank orders tiers by increasing discount; unknown tiers rank below REGULAR
func (t Tier) Rank() int {
	switch t {
	case TierRegular:
		return 1
	case TierGold:
		return 2
	case TierPlatinum:
		return 3
	default:
		return 0
	}
}

// Less reports whether t ranks strictly below o
func (t Tier) Less(o Tier) bool {
	return t.Rank() < o.Rank()
}

// DiscountRate returns the fixed base discount of the tier as a fraction
func (t Tier) DiscountRate() decimal.Decimal {
	if rate, ok := tierRates[t]; ok {
		return rate
	}
	return decimal.Zero
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// CanTransitionTo reports whether an order in status s may move to target.
// Only CREATED orders move, and only to PAID or CANCELLED.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	return s == OrderStatusCreated &&
		(target == OrderStatusPaid || target == OrderStatusCancelled)
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

// Category classifies products
type Category string

const (
	CategoryElectronics Category = "ELECTRONICS"
	CategoryFood        Category = "FOOD"
	CategoryFashion     Category = "FASHION"
)

// Categories lists the known categories
var Categories = []Category{CategoryElectronics, CategoryFood, CategoryFashion}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
