package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/storage/memstore"
)

const testOwner = "owner-1"

// testEnv wires the services against in-memory stores.
type testEnv struct {
	store        *memstore.Store
	balance      *BalanceService
	validator    *ValidationService
	transactions *TransactionService
	budget       *BudgetService
	recurring    *RecurringService
	publisher    *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	balance := NewBalanceService(store.Accounts)
	validator := NewValidationService(store.Accounts)
	publisher := &fakePublisher{}
	transactions := NewTransactionService(store.Transactions, validator, balance, publisher)
	budget := NewBudgetService(store.Accounts, store.Transactions, store.Monthly, store.Savings, store.Planned)
	recurring := NewRecurringService(store.Monthly, store.Transactions, transactions)
	return &testEnv{
		store:        store,
		balance:      balance,
		validator:    validator,
		transactions: transactions,
		budget:       budget,
		recurring:    recurring,
		publisher:    publisher,
	}
}

type fakePublisher struct {
	syncs   []string
	deletes []string
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id, _ string) error {
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDelete(_ context.Context, id, _ string) error {
	f.deletes = append(f.deletes, id)
	return nil
}

func (e *testEnv) addAccount(t *testing.T, id, name string, balance int64) core.Account {
	t.Helper()
	a, err := e.store.Accounts.Create(context.Background(), core.Account{
		ID:                  id,
		OwnerID:             testOwner,
		Name:                name,
		CurrentBalance:      decimal.NewFromInt(balance),
		AccountType:         "checking",
		SumsToMonthlyBudget: true,
	})
	if err != nil {
		t.Fatalf("create account %s: %v", id, err)
	}
	return a
}

func (e *testEnv) accountBalance(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	a, err := e.store.Accounts.GetByID(context.Background(), id, testOwner)
	if err != nil {
		t.Fatalf("get account %s: %v", id, err)
	}
	return a.CurrentBalance
}

func dateIn(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}

func assertDecimal(t *testing.T, got decimal.Decimal, want int64, label string) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s = %s, want %d", label, got, want)
	}
}
