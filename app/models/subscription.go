package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SubscriptionStatusPending = "pending"
	SubscriptionStatusActive  = "active"
)

// Subscription is a recurring top-up plan purchase. Activation happens on the
// verified provider callback, which also credits the ledger with
// amount * (1 + bonus%/100).
type Subscription struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	UserID            uint            `gorm:"index;not null" json:"user_id"`
	ProviderPaymentID string          `gorm:"uniqueIndex;type:varchar(255)" json:"provider_payment_id"`
	Status            string          `gorm:"type:varchar(50);not null" json:"status"`
	Amount            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency          string          `gorm:"type:varchar(3);not null" json:"currency"`
	BonusPercentage   int             `json:"bonus_percentage"`
	StartDate         *time.Time      `json:"start_date"`
	EndDate           *time.Time      `json:"end_date"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"-"`
}

// BonusCredit returns the ledger credit granted when the subscription
// activates: amount * (1 + bonus%/100), rounded to cents.
func (s *Subscription) BonusCredit() decimal.Decimal {
	factor := decimal.NewFromInt(100 + int64(s.BonusPercentage)).Div(decimal.NewFromInt(100))
	return s.Amount.Mul(factor).Round(2)
}
