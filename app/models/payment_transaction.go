package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"

	PaymentMethodPayPal = "paypal"
)

// PaymentTransaction records a single provider payment. Amount and currency
// are immutable once created; only the status moves.
type PaymentTransaction struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	SubscriptionID *uint           `gorm:"index" json:"subscription_id"`
	TransactionID  string          `gorm:"uniqueIndex;type:varchar(255);not null" json:"transaction_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency       string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status         string          `gorm:"type:varchar(50);not null" json:"status"`
	PaymentMethod  string          `gorm:"type:varchar(50);not null" json:"payment_method"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"-"`
}
