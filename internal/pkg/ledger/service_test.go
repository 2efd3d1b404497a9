package ledger

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/litera-app/litera/app/models"
	"github.com/litera-app/litera/app/repository"
)

// memBalanceRepo mirrors the transactional semantics of the GORM repository
// with a mutex standing in for the row lock.
type memBalanceRepo struct {
	mu       sync.Mutex
	balances map[uint]*models.UserBalance
}

func newMemBalanceRepo() *memBalanceRepo {
	return &memBalanceRepo{balances: make(map[uint]*models.UserBalance)}
}

func (r *memBalanceRepo) Create(b *models.UserBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[b.UserID] = b
	return nil
}

func (r *memBalanceRepo) GetByUserID(userID uint) (*models.UserBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBalanceRepo) Credit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	b.Balance = b.Balance.Add(amount)
	cp := *b
	return &cp, nil
}

func (r *memBalanceRepo) Debit(userID uint, amount decimal.Decimal) (*models.UserBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if b.Balance.LessThan(amount) {
		return nil, repository.ErrInsufficientFunds
	}
	b.Balance = b.Balance.Sub(amount)
	cp := *b
	return &cp, nil
}

func newTestService(t *testing.T, userID uint, opening string) (*Service, *memBalanceRepo) {
	t.Helper()
	repo := newMemBalanceRepo()
	svc := NewService(repo)
	require.NoError(t, svc.Open(userID))
	if opening != "0" {
		_, err := svc.Credit(userID, decimal.RequireFromString(opening))
		require.NoError(t, err)
	}
	return svc, repo
}

func TestCreditAndDebit(t *testing.T) {
	svc, _ := newTestService(t, 1, "10.00")

	b, err := svc.Debit(1, decimal.RequireFromString("3.50"))
	require.NoError(t, err)
	assert.Equal(t, "6.50", b.Balance.StringFixed(2))

	b, err = svc.Credit(1, decimal.RequireFromString("1.25"))
	require.NoError(t, err)
	assert.Equal(t, "7.75", b.Balance.StringFixed(2))
}

func TestDebitInsufficientFundsLeavesBalanceUnchanged(t *testing.T) {
	svc, _ := newTestService(t, 1, "5.00")

	_, err := svc.Debit(1, decimal.RequireFromString("7.00"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	b, err := svc.Balance(1)
	require.NoError(t, err)
	assert.Equal(t, "5.00", b.Balance.StringFixed(2))
}

func TestAmountsMustBePositive(t *testing.T) {
	svc, _ := newTestService(t, 1, "5.00")

	_, err := svc.Credit(1, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Debit(1, decimal.RequireFromString("-1.00"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	b, err := svc.Balance(1)
	require.NoError(t, err)
	assert.Equal(t, "5.00", b.Balance.StringFixed(2))
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	svc, _ := newTestService(t, 1, "10.00")

	var wg sync.WaitGroup
	amount := decimal.RequireFromString("3.00")
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Debit(1, amount)
		}()
	}
	wg.Wait()

	b, err := svc.Balance(1)
	require.NoError(t, err)
	// 10.00 allows exactly three 3.00 debits.
	assert.Equal(t, "1.00", b.Balance.StringFixed(2))
	assert.False(t, b.Balance.IsNegative())
}
