package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance holds the prepaid translation credit for a single user.
// The balance is only ever mutated by the ledger service and must never
// drop below zero.
type UserBalance struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0.00" json:"balance"`
	LastUpdated time.Time       `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"-"`
}
