package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/litera-app/litera/app/models"
)

// ErrInsufficientFunds is returned when a debit would push a balance below zero.
var ErrInsufficientFunds = errors.New("insufficient balance")

// balanceRepository implements the BalanceRepository interface
type balanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository creates a new balance repository instance
func NewBalanceRepository(db *gorm.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

// Create creates a new balance row for a user
func (r *balanceRepository) Create(balance *models.UserBalance) error {
	return r.db.Create(balance).Error
}

// GetByUserID retrieves the balance row for a user
func (r *balanceRepository) GetByUserID(userID uint) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := r.db.Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// Credit adds amount to the user's balance inside a row-locked transaction.
func (r *balanceRepository) Credit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	return r.mutate(userID, func(balance *models.UserBalance) error {
		balance.Balance = balance.Balance.Add(amount)
		return nil
	})
}

// Debit subtracts amount from the user's balance. The row is locked for the
// duration of the transaction so the balance check and the subtraction act as
// one unit; a shortfall returns ErrInsufficientFunds and leaves the row
// untouched.
func (r *balanceRepository) Debit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	return r.mutate(userID, func(balance *models.UserBalance) error {
		if balance.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		balance.Balance = balance.Balance.Sub(amount)
		return nil
	})
}

// mutate applies fn to the user's balance row under SELECT ... FOR UPDATE.
func (r *balanceRepository) mutate(userID uint, fn func(*models.UserBalance) error) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&balance).Error; err != nil {
			return err
		}
		if err := fn(&balance); err != nil {
			return err
		}
		return tx.Save(&balance).Error
	})
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
