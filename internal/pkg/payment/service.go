package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/app/repository"
	"github.com/litera-app/litera/internal/pkg/ledger"
	"github.com/litera-app/litera/internal/pkg/paypal"
	"github.com/litera-app/litera/internal/pkg/pricing"
)

const (
	defaultCurrency = "USD"
	// subscriptionPeriod is the validity window granted on activation.
	subscriptionPeriod = 30 * 24 * time.Hour
)

var (
	// ErrInvalidAmount is returned for non-positive top-up amounts.
	ErrInvalidAmount = errors.New("payment amount must be positive")
	// ErrPaymentNotFound is returned when the provider payment id is unknown.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentDeclined is returned when the provider rejects the execute.
	ErrPaymentDeclined = errors.New("payment declined by provider")
)

// Provider is the slice of the PayPal client the service uses.
type Provider interface {
	CreatePayment(ctx context.Context, amount decimal.Decimal, currency, description string) (*paypal.CreatedPayment, error)
	ExecutePayment(ctx context.Context, paymentID, payerID string) (*paypal.ExecutedPayment, error)
}

// CheckoutResult is returned when a payment or subscription is created:
// the buyer must be redirected to ApprovalURL to approve it.
type CheckoutResult struct {
	PaymentID   string `json:"payment_id"`
	ApprovalURL string `json:"approval_url"`
}

// Service owns payment reconciliation: it records provider transactions and
// credits the ledger exactly once per verified callback.
type Service struct {
	payments repository.PaymentRepository
	ledger   *ledger.Service
	provider Provider
}

// NewService wires the payment service from its dependencies.
func NewService(payments repository.PaymentRepository, ldg *ledger.Service, provider Provider) *Service {
	return &Service{payments: payments, ledger: ldg, provider: provider}
}

// CreatePayment starts a one-time top-up: a provider payment is created and
// a pending transaction recorded. Nothing is credited yet.
func (s *Service) CreatePayment(ctx context.Context, userID uint, amount decimal.Decimal) (*CheckoutResult, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	amount = amount.Round(2)

	created, err := s.provider.CreatePayment(ctx, amount, defaultCurrency, "Account balance top-up")
	if err != nil {
		return nil, fmt.Errorf("provider create payment: %w", err)
	}

	tx := &models.PaymentTransaction{
		UserID:        userID,
		TransactionID: created.PaymentID,
		Amount:        amount,
		Currency:      defaultCurrency,
		Status:        models.TransactionStatusPending,
		PaymentMethod: models.PaymentMethodPayPal,
	}
	if err := s.payments.CreateTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	log.Infof("[Payment] User %d created payment %s (%s %s)",
		userID, created.PaymentID, amount.StringFixed(2), defaultCurrency)
	return &CheckoutResult{PaymentID: created.PaymentID, ApprovalURL: created.ApprovalURL}, nil
}

// ConfirmPayment executes a buyer-approved payment and credits the ledger.
// Replayed callbacks for an already-completed transaction are no-ops, so the
// credit happens at most once. A declined execute marks the transaction
// failed; nothing is credited.
func (s *Service) ConfirmPayment(ctx context.Context, paymentID, payerID string) (*models.PaymentTransaction, error) {
	tx, err := s.payments.GetTransactionByProviderID(paymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}

	if tx.Status == models.TransactionStatusCompleted {
		log.Warnf("[Payment] Replayed callback for completed payment %s, ignoring", paymentID)
		return tx, nil
	}
	if tx.Status == models.TransactionStatusFailed {
		return nil, ErrPaymentDeclined
	}

	executed, err := s.provider.ExecutePayment(ctx, paymentID, payerID)
	if err != nil || !executed.Approved() {
		tx.Status = models.TransactionStatusFailed
		if uerr := s.payments.UpdateTransaction(tx); uerr != nil {
			log.Errorf("[Payment] Failed to mark payment %s failed: %v", paymentID, uerr)
		}
		if err != nil {
			return nil, fmt.Errorf("provider execute payment: %w", err)
		}
		return nil, ErrPaymentDeclined
	}

	tx.Status = models.TransactionStatusCompleted
	if err := s.payments.UpdateTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if _, err := s.ledger.Credit(tx.UserID, tx.Amount); err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	log.Infof("[Payment] Payment %s completed, credited %s to user %d",
		paymentID, tx.Amount.StringFixed(2), tx.UserID)
	return tx, nil
}

// Subscribe starts a subscription purchase for one of the fixed plans. The
// subscription stays pending until the provider callback confirms it.
func (s *Service) Subscribe(ctx context.Context, userID uint, planID string) (*CheckoutResult, error) {
	plan, err := pricing.PlanByID(planID)
	if err != nil {
		return nil, err
	}

	created, err := s.provider.CreatePayment(ctx, plan.Amount, defaultCurrency,
		fmt.Sprintf("%s subscription", plan.Name))
	if err != nil {
		return nil, fmt.Errorf("provider create payment: %w", err)
	}

	sub := &models.Subscription{
		UserID:            userID,
		ProviderPaymentID: created.PaymentID,
		Status:            models.SubscriptionStatusPending,
		Amount:            plan.Amount,
		Currency:          defaultCurrency,
		BonusPercentage:   plan.BonusPercentage,
	}
	if err := s.payments.CreateSubscription(sub); err != nil {
		return nil, fmt.Errorf("failed to record subscription: %w", err)
	}

	// The subscription payment shows up in the transaction history from the
	// start, pending until the callback confirms it.
	tx := &models.PaymentTransaction{
		UserID:         userID,
		SubscriptionID: &sub.ID,
		TransactionID:  created.PaymentID,
		Amount:         plan.Amount,
		Currency:       defaultCurrency,
		Status:         models.TransactionStatusPending,
		PaymentMethod:  models.PaymentMethodPayPal,
	}
	if err := s.payments.CreateTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to record subscription transaction: %w", err)
	}

	log.Infof("[Payment] User %d started %s subscription (payment %s)",
		userID, plan.ID, created.PaymentID)
	return &CheckoutResult{PaymentID: created.PaymentID, ApprovalURL: created.ApprovalURL}, nil
}

// ConfirmSubscription executes the approved subscription payment, activates
// the 30-day window and credits amount plus bonus. Replays are no-ops.
func (s *Service) ConfirmSubscription(ctx context.Context, paymentID, payerID string) (*models.Subscription, error) {
	sub, err := s.payments.GetSubscriptionByProviderPaymentID(paymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}

	if sub.Status == models.SubscriptionStatusActive {
		log.Warnf("[Payment] Replayed callback for active subscription %s, ignoring", paymentID)
		return sub, nil
	}

	executed, err := s.provider.ExecutePayment(ctx, paymentID, payerID)
	if err != nil || !executed.Approved() {
		s.failTransaction(paymentID)
		if err != nil {
			return nil, fmt.Errorf("provider execute payment: %w", err)
		}
		return nil, ErrPaymentDeclined
	}

	now := time.Now()
	end := now.Add(subscriptionPeriod)
	sub.Status = models.SubscriptionStatusActive
	sub.StartDate = &now
	sub.EndDate = &end
	if err := s.payments.UpdateSubscription(sub); err != nil {
		return nil, fmt.Errorf("failed to activate subscription: %w", err)
	}

	if tx, terr := s.payments.GetTransactionByProviderID(paymentID); terr == nil {
		tx.Status = models.TransactionStatusCompleted
		if uerr := s.payments.UpdateTransaction(tx); uerr != nil {
			log.Errorf("[Payment] Failed to complete subscription transaction %s: %v", paymentID, uerr)
		}
	}

	credit := sub.BonusCredit()
	if _, err := s.ledger.Credit(sub.UserID, credit); err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	log.Infof("[Payment] Subscription %s activated, credited %s to user %d",
		paymentID, credit.StringFixed(2), sub.UserID)
	return sub, nil
}

// failTransaction moves the transaction behind a provider payment id to the
// terminal failed state. Declined executes must not leave pending rows.
func (s *Service) failTransaction(paymentID string) {
	tx, err := s.payments.GetTransactionByProviderID(paymentID)
	if err != nil {
		return
	}
	tx.Status = models.TransactionStatusFailed
	if uerr := s.payments.UpdateTransaction(tx); uerr != nil {
		log.Errorf("[Payment] Failed to mark transaction %s failed: %v", paymentID, uerr)
	}
}

// Plans returns the available subscription plans.
func (s *Service) Plans() []pricing.Plan {
	return pricing.Plans()
}

// Transactions returns the user's payment history.
func (s *Service) Transactions(userID uint) ([]models.PaymentTransaction, error) {
	return s.payments.ListTransactionsByUser(userID)
}
