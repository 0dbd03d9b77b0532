package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog entry and its available stock.
// Products are deactivated rather than deleted.
type Product struct {
	ID        uint            `json:"id" gorm:"primarykey"`
	Name      string          `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Category  Category        `json:"category" gorm:"type:varchar(32);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(19,2);not null"`
	Stock     int             `json:"stock" gorm:"not null;check:chk_products_stock,stock >= 0"`
	Active    bool            `json:"active" gorm:"not null;index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
