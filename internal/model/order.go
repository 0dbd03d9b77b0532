package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer purchase. Amounts are fixed when the order is created.
type Order struct {
	ID             uint            `json:"id" gorm:"primarykey"`
	CustomerID     uint            `json:"customer_id" gorm:"index;not null"`
	Items          []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:numeric(19,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(19,2);not null"`
	FinalAmount    decimal.Decimal `json:"final_amount" gorm:"type:numeric(19,2);not null"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(16);index;not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductIDs returns the distinct product ids referenced by the order's items
func (o *Order) ProductIDs() []uint {
	seen := make(map[uint]struct{}, len(o.Items))
	ids := make([]uint, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// OrderItem is one product line of an order with the unit price captured at purchase
type OrderItem struct {
	ID              uint            `json:"-" gorm:"primarykey"`
	OrderID         uint            `json:"-" gorm:"index;not null"`
	ProductID       uint            `json:"product_id" gorm:"index;not null"`
	ProductName     string          `json:"product_name" gorm:"type:varchar(255);not null"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" gorm:"type:numeric(19,2);not null"`
}

// Subtotal is the price at purchase times the quantity
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
