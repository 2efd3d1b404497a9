package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Pricing models selecting the cost formula for a translation job.
const (
	PricingModelPerPage      = 1 // 30 cents per page
	PricingModelPerCharBlock = 2 // 80 cents per 1860 characters
)

// TranslationJob is a unit of translation work. Lifecycle:
// pending -> processing -> completed|failed. Terminal states are final.
type TranslationJob struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	UserID         uint             `gorm:"index;not null" json:"user_id"`
	BookID         uint             `gorm:"index;not null" json:"book_id"`
	TargetLanguage string           `gorm:"type:varchar(5);not null" json:"target_language"`
	ModelType      int              `gorm:"type:smallint;not null" json:"model_type"`
	Status         string           `gorm:"type:varchar(50);not null" json:"status"`
	EstimatedCost  decimal.Decimal  `gorm:"type:decimal(10,2)" json:"estimated_cost"`
	ActualCost     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"actual_cost"`
	ResultPath     string           `gorm:"type:varchar(255)" json:"result_path"`
	FailureReason  string           `gorm:"type:varchar(255)" json:"failure_reason,omitempty"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt    *time.Time       `gorm:"type:timestamp;default:null" json:"completed_at"`
}

// IsTerminal reports whether the job reached a final state.
func (j *TranslationJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// ResultAvailable reports whether the translated document can be downloaded.
func (j *TranslationJob) ResultAvailable() bool {
	return j.Status == JobStatusCompleted && j.ResultPath != ""
}
