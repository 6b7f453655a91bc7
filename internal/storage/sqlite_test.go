package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

const testOwner = "owner-1"

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bilancio.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAccountStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	credit := decimal.RequireFromString("1500.50")
	created, err := store.Accounts.Create(ctx, core.Account{
		ID:                  "acc-1",
		OwnerID:             testOwner,
		Name:                "Checking",
		CurrentBalance:      decimal.RequireFromString("1234.56"),
		AccountType:         "checking",
		SumsToMonthlyBudget: true,
		AvailableCredit:     &credit,
		Color:               "#00ff00",
		Icon:                "wallet",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Accounts.GetByID(ctx, "acc-1", testOwner)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.CurrentBalance.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("CurrentBalance = %s, want 1234.56", got.CurrentBalance)
	}
	if got.AvailableCredit == nil || !got.AvailableCredit.Equal(credit) {
		t.Errorf("AvailableCredit = %v, want %s", got.AvailableCredit, credit)
	}
	if !got.SumsToMonthlyBudget {
		t.Error("SumsToMonthlyBudget lost on round trip")
	}
	if !got.CreatedAt.Equal(created.CreatedAt) || !got.UpdatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps = %v/%v, want %v/%v",
			got.CreatedAt, got.UpdatedAt, created.CreatedAt, created.UpdatedAt)
	}
}

func TestAccountStore_NullCredit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accounts.Create(ctx, core.Account{
		ID:             "acc-1",
		OwnerID:        testOwner,
		Name:           "Cash",
		CurrentBalance: decimal.NewFromInt(100),
		AccountType:    "cash",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Accounts.GetByID(ctx, "acc-1", testOwner)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.AvailableCredit != nil {
		t.Errorf("AvailableCredit = %v, want nil", got.AvailableCredit)
	}
}

func TestAccountStore_NotFoundAndScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Accounts.GetByID(ctx, "acc-404", testOwner)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}

	_, err = store.Accounts.Create(ctx, core.Account{
		ID: "acc-1", OwnerID: testOwner, Name: "Checking",
		CurrentBalance: decimal.NewFromInt(100), AccountType: "checking",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := store.Accounts.GetByID(ctx, "acc-1", "someone-else"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner GetByID() error = %v, want ErrNotFound", err)
	}
	if _, err := store.Accounts.Update(ctx, core.Account{
		ID: "acc-1", OwnerID: "someone-else", Name: "Hijacked",
		CurrentBalance: decimal.Zero,
	}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner Update() error = %v, want ErrNotFound", err)
	}
	if err := store.Accounts.Delete(ctx, "acc-1", "someone-else"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-owner Delete() error = %v, want ErrNotFound", err)
	}
}

func TestAccountStore_ArchivedListing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, a := range []core.Account{
		{ID: "acc-1", OwnerID: testOwner, Name: "Active", CurrentBalance: decimal.NewFromInt(10), AccountType: "checking"},
		{ID: "acc-2", OwnerID: testOwner, Name: "Old", CurrentBalance: decimal.NewFromInt(20), AccountType: "checking", IsArchived: true},
	} {
		if _, err := store.Accounts.Create(ctx, a); err != nil {
			t.Fatalf("Create(%s) error = %v", a.ID, err)
		}
	}

	active, err := store.Accounts.ListActive(ctx, testOwner)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 1 || active[0].ID != "acc-1" {
		t.Errorf("ListActive() = %+v, want only acc-1", active)
	}

	archived, err := store.Accounts.ListArchived(ctx, testOwner)
	if err != nil {
		t.Fatalf("ListArchived() error = %v", err)
	}
	if len(archived) != 1 || archived[0].ID != "acc-2" {
		t.Errorf("ListArchived() = %+v, want only acc-2", archived)
	}
}

func TestTransactionStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	applied := decimal.RequireFromString("99.99")
	tx := core.Transaction{
		ID:            "tx-1",
		OwnerID:       testOwner,
		Type:          core.Expense,
		Amount:        decimal.RequireFromString("0.01"),
		Date:          time.Date(2025, 3, 10, 12, 30, 0, 0, time.UTC),
		AccountID:     "acc-1",
		AccountName:   "Checking",
		CategoryID:    "cat-1",
		Subcategory:   "groceries",
		Notes:         "weekly shop",
		IsApplied:     true,
		AppliedAmount: &applied,
	}
	tx.IndexDate()

	created, err := store.Transactions.Create(ctx, tx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Transactions.GetByID(ctx, "tx-1", testOwner)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Type != core.Expense {
		t.Errorf("Type = %q, want expense", got.Type)
	}
	if !got.Amount.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("Amount = %s, want 0.01", got.Amount)
	}
	if got.AppliedAmount == nil || !got.AppliedAmount.Equal(applied) {
		t.Errorf("AppliedAmount = %v, want %s", got.AppliedAmount, applied)
	}
	if !got.Date.Equal(tx.Date) {
		t.Errorf("Date = %v, want %v", got.Date, tx.Date)
	}
	if got.YearMonth != "2025-03" {
		t.Errorf("YearMonth = %q, want 2025-03", got.YearMonth)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestTransactionStore_MonthQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	days := []int{20, 5, 12}
	for i, day := range days {
		tx := core.Transaction{
			ID:      "tx-" + string(rune('a'+i)),
			OwnerID: testOwner,
			Type:    core.Expense,
			Amount:  decimal.NewFromInt(10),
			Date:    time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		}
		tx.IndexDate()
		if _, err := store.Transactions.Create(ctx, tx); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	outside := core.Transaction{
		ID: "tx-april", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(10),
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	outside.IndexDate()
	if _, err := store.Transactions.Create(ctx, outside); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	march, err := store.Transactions.ListByMonth(ctx, testOwner, "2025-03")
	if err != nil {
		t.Fatalf("ListByMonth() error = %v", err)
	}
	if len(march) != 3 {
		t.Fatalf("ListByMonth() = %d transactions, want 3", len(march))
	}
	for i := 1; i < len(march); i++ {
		if march[i].Date.Before(march[i-1].Date) {
			t.Errorf("ListByMonth() not date-ascending: %v before %v", march[i].Date, march[i-1].Date)
		}
	}

	recent, err := store.Transactions.ListRecent(ctx, testOwner, "2025-03", 2)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].Day != 20 || recent[1].Day != 12 {
		t.Errorf("ListRecent() = %+v, want days 20 then 12", recent)
	}
}

func TestTransactionStore_UpdateDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tx := core.Transaction{
		ID: "tx-1", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(50),
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	tx.IndexDate()
	if _, err := store.Transactions.Create(ctx, tx); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tx.Amount = decimal.NewFromInt(75)
	tx.IsApplied = true
	if _, err := store.Transactions.Update(ctx, tx); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := store.Transactions.GetByID(ctx, "tx-1", testOwner)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(75)) || !got.IsApplied {
		t.Errorf("after update: amount = %s applied = %v, want 75 true", got.Amount, got.IsApplied)
	}

	if err := store.Transactions.Delete(ctx, "tx-1", testOwner); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Transactions.Delete(ctx, "tx-1", testOwner); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}

	missing := core.Transaction{ID: "tx-404", OwnerID: testOwner, Type: core.Expense, Amount: decimal.NewFromInt(1)}
	missing.IndexDate()
	if _, err := store.Transactions.Update(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}
