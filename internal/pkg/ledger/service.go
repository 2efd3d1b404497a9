package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/app/repository"
)

// ErrInvalidAmount is returned for zero or negative credit/debit amounts.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInsufficientFunds is returned when a debit exceeds the current balance.
var ErrInsufficientFunds = repository.ErrInsufficientFunds

// Service owns all balance mutations. Payment reconciliation credits,
// the job lifecycle debits; nothing else touches UserBalance rows.
type Service struct {
	repo repository.BalanceRepository
}

// NewService creates a ledger service from an injected balance repository.
func NewService(repo repository.BalanceRepository) *Service {
	return &Service{repo: repo}
}

// Open creates the zero balance row for a newly registered user.
func (s *Service) Open(userID uint) error {
	return s.repo.Create(&models.UserBalance{UserID: userID, Balance: decimal.Zero})
}

// Balance returns the user's current balance row.
func (s *Service) Balance(userID uint) (*models.UserBalance, error) {
	return s.repo.GetByUserID(userID)
}

// Credit adds a positive amount to the user's balance.
func (s *Service) Credit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.repo.Credit(userID, amount)
}

// Debit subtracts a positive amount from the user's balance. The check and
// the subtraction are a single transaction in the repository, so concurrent
// debits against the same user serialize and the balance never goes negative.
func (s *Service) Debit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return s.repo.Debit(userID, amount)
}
