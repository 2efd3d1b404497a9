package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	EmailExists(email string) (bool, error)
	Update(user *models.User) error
}

// BalanceRepository defines the interface for ledger storage operations.
// Debit must serialize the balance check and the subtraction so that two
// concurrent debits cannot both pass the check against the same funds.
type BalanceRepository interface {
	Create(balance *models.UserBalance) error
	GetByUserID(userID uint) (*models.UserBalance, error)
	Credit(userID uint, amount decimal.Decimal) (*models.UserBalance, error)
	Debit(userID uint, amount decimal.Decimal) (*models.UserBalance, error)
}

// BookRepository defines the interface for uploaded document records
type BookRepository interface {
	Create(book *models.Book) error
	GetByID(id uint) (*models.Book, error)
	GetByUserID(userID uint) ([]models.Book, error)
}

// JobRepository defines the interface for translation job records.
// MarkProcessing is a compare-and-swap on the status column so that exactly
// one worker can own a job even when the queue redelivers it.
type JobRepository interface {
	Create(job *models.TranslationJob) error
	GetByID(id uint) (*models.TranslationJob, error)
	GetByUserID(userID uint) ([]models.TranslationJob, error)
	MarkProcessing(id uint) (bool, error)
	Update(job *models.TranslationJob) error
}

// PaymentRepository defines the interface for payment transactions and
// subscriptions
type PaymentRepository interface {
	CreateTransaction(tx *models.PaymentTransaction) error
	GetTransactionByProviderID(providerID string) (*models.PaymentTransaction, error)
	UpdateTransaction(tx *models.PaymentTransaction) error
	ListTransactionsByUser(userID uint) ([]models.PaymentTransaction, error)
	CreateSubscription(sub *models.Subscription) error
	GetSubscriptionByProviderPaymentID(providerID string) (*models.Subscription, error)
	UpdateSubscription(sub *models.Subscription) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Balance BalanceRepository
	Book    BookRepository
	Job     JobRepository
	Payment PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Balance: NewBalanceRepository(db),
		Book:    NewBookRepository(db),
		Job:     NewJobRepository(db),
		Payment: NewPaymentRepository(db),
	}
}
