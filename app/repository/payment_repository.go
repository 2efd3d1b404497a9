package repository

import (
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// CreateTransaction creates a new payment transaction record
func (r *paymentRepository) CreateTransaction(tx *models.PaymentTransaction) error {
	return r.db.Create(tx).Error
}

// GetTransactionByProviderID retrieves a transaction by the provider's payment id
func (r *paymentRepository) GetTransactionByProviderID(providerID string) (*models.PaymentTransaction, error) {
	var tx models.PaymentTransaction
	err := r.db.Where("transaction_id = ?", providerID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction saves a modified transaction record
func (r *paymentRepository) UpdateTransaction(tx *models.PaymentTransaction) error {
	return r.db.Save(tx).Error
}

// ListTransactionsByUser retrieves a user's transactions, newest first
func (r *paymentRepository) ListTransactionsByUser(userID uint) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

// CreateSubscription creates a new subscription record
func (r *paymentRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetSubscriptionByProviderPaymentID retrieves a subscription by the provider's payment id
func (r *paymentRepository) GetSubscriptionByProviderPaymentID(providerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("provider_payment_id = ?", providerID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubscription saves a modified subscription record
func (r *paymentRepository) UpdateSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}
