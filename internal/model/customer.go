package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer represents a buyer and their membership standing
type Customer struct {
	ID         uint            `json:"id" gorm:"primarykey"`
	Name       string          `json:"name" gorm:"type:varchar(255);not null"`
	Email      string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Tier       Tier            `json:"membership_tier" gorm:"type:varchar(16);not null"`
	TotalSpent decimal.Decimal `json:"total_spent" gorm:"type:numeric(19,2);not null"`
	Active     bool            `json:"active" gorm:"not null"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
