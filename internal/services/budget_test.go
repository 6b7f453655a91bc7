package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// fixedNow pins the projection clock to mid-March 2025.
func fixedNow() time.Time {
	return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
}

func newBudgetEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.budget.now = fixedNow
	return env
}

func TestBudgetService_ProjectedBalanceUnpaidRecurring(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 500)
	ctx := context.Background()

	env.store.Monthly.Create(ctx, core.MonthlyTransaction{
		ID: "m-1", OwnerID: testOwner, Type: core.Income,
		Amount: decimal.NewFromInt(1000), DayOfMonth: 1, AccountID: "acc-1",
	})

	p, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}

	if p.IsPast {
		t.Error("IsPast = true for current month")
	}
	assertDecimal(t, p.AccountsTotal, 500, "AccountsTotal")
	assertDecimal(t, p.UnpaidRecurringNet, 1000, "UnpaidRecurringNet")
	assertDecimal(t, p.ProjectedBalance, 1500, "ProjectedBalance")
}

func TestBudgetService_ProjectedBalancePaidRecurringExcluded(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 500)
	ctx := context.Background()

	env.store.Monthly.Create(ctx, core.MonthlyTransaction{
		ID: "m-1", OwnerID: testOwner, Type: core.Income,
		Amount: decimal.NewFromInt(1000), DayOfMonth: 1, AccountID: "acc-1",
	})
	// Paid this month: a posting carries the template's key.
	posting := core.Transaction{
		ID: "tx-1", OwnerID: testOwner, Type: core.MonthlyIncome,
		Amount: decimal.NewFromInt(1000), Date: dateIn(2025, 3, 1),
		AccountID: "acc-1", IsApplied: true, MonthlyKey: "m-1",
	}
	posting.IndexDate()
	env.store.Transactions.Create(ctx, posting)

	p, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}

	assertDecimal(t, p.UnpaidRecurringNet, 0, "UnpaidRecurringNet")
	assertDecimal(t, p.ProjectedBalance, 500, "ProjectedBalance")
}

func TestBudgetService_ProjectedBalancePlannedClampedAtZero(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 500)
	ctx := context.Background()

	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-1", OwnerID: testOwner, Name: "Groceries",
		IsRecurring: true, TotalAmount: decimal.NewFromInt(300), CategoryID: "cat-groceries",
	})
	spent := core.Transaction{
		ID: "tx-1", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(350), Date: dateIn(2025, 3, 5),
		AccountID: "acc-1", IsApplied: true, CategoryID: "cat-groceries",
	}
	spent.IndexDate()
	env.store.Transactions.Create(ctx, spent)

	p, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}

	// Overspent plan contributes zero, never a negative remainder.
	assertDecimal(t, p.UnpaidPlannedTotal, 0, "UnpaidPlannedTotal")
	assertDecimal(t, p.ProjectedBalance, 500, "ProjectedBalance")
}

func TestBudgetService_ProjectedBalancePastMonth(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 99999)
	ctx := context.Background()

	income := core.Transaction{
		ID: "tx-1", OwnerID: testOwner, Type: core.Income,
		Amount: decimal.NewFromInt(2000), Date: dateIn(2025, 1, 5),
		AccountID: "acc-1", IsApplied: true,
	}
	income.IndexDate()
	env.store.Transactions.Create(ctx, income)

	expense := core.Transaction{
		ID: "tx-2", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(1200), Date: dateIn(2025, 1, 20),
		AccountID: "acc-1", IsApplied: true,
	}
	expense.IndexDate()
	env.store.Transactions.Create(ctx, expense)

	p, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 1)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}

	if !p.IsPast {
		t.Error("IsPast = false for January when now is March")
	}
	assertDecimal(t, p.PostedIncome, 2000, "PostedIncome")
	assertDecimal(t, p.PostedExpense, 1200, "PostedExpense")
	// Realized cash flow, not the account's current balance.
	assertDecimal(t, p.ProjectedBalance, 800, "ProjectedBalance")
}

func TestBudgetService_ProjectedBalanceUnpaidSources(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 1000)
	ctx := context.Background()

	env.store.Savings.Create(ctx, core.Saving{
		ID: "sv-1", OwnerID: testOwner, Name: "Vacation",
		GoalAmount:     decimal.NewFromInt(5000),
		AmountPerMonth: decimal.NewFromInt(200),
	})

	pending := core.Transaction{
		ID: "tx-1", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(120), Date: dateIn(2025, 3, 28),
		AccountID: "acc-1", IsApplied: false,
	}
	pending.IndexDate()
	env.store.Transactions.Create(ctx, pending)

	p, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}

	assertDecimal(t, p.UnpaidSavingsTotal, 200, "UnpaidSavingsTotal")
	assertDecimal(t, p.UnpaidTransactionNet, -120, "UnpaidTransactionNet")
	// 1000 - 200 - 120
	assertDecimal(t, p.ProjectedBalance, 680, "ProjectedBalance")
}

func TestBudgetService_ProjectedBalanceSkipsNonBudgetAccounts(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 500)
	ctx := context.Background()

	env.store.Accounts.Create(ctx, core.Account{
		ID: "acc-2", OwnerID: testOwner, Name: "Brokerage",
		CurrentBalance: decimal.NewFromInt(10000), SumsToMonthlyBudget: false,
	})

	p, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}
	assertDecimal(t, p.AccountsTotal, 500, "AccountsTotal")
}

func TestBudgetService_ProjectionIdempotence(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 500)
	ctx := context.Background()

	env.store.Monthly.Create(ctx, core.MonthlyTransaction{
		ID: "m-1", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(300), DayOfMonth: 5, AccountID: "acc-1",
	})
	env.store.Savings.Create(ctx, core.Saving{
		ID: "sv-1", OwnerID: testOwner, Name: "Vacation",
		AmountPerMonth: decimal.NewFromInt(100),
	})

	first, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() error = %v", err)
	}
	second, err := env.budget.ProjectedBalance(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("ProjectedBalance() second run error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("projection not idempotent:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestBudgetService_IncomeAfterFixedExpenses(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 0)
	ctx := context.Background()

	env.store.Monthly.Create(ctx, core.MonthlyTransaction{
		ID: "m-salary", OwnerID: testOwner, Type: core.Income,
		Amount: decimal.NewFromInt(2000), DayOfMonth: 1, AccountID: "acc-1", Notes: "Salary",
	})
	env.store.Monthly.Create(ctx, core.MonthlyTransaction{
		ID: "m-rent", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(800), DayOfMonth: 3, AccountID: "acc-1", Notes: "Rent",
	})
	env.store.Savings.Create(ctx, core.Saving{
		ID: "sv-1", OwnerID: testOwner, Name: "Vacation",
		AmountPerMonth: decimal.NewFromInt(150),
	})

	// Rent already posted this month for a different amount than the template.
	rent := core.Transaction{
		ID: "tx-rent", OwnerID: testOwner, Type: core.MonthlyExpense,
		Amount: decimal.NewFromInt(820), Date: dateIn(2025, 3, 3),
		AccountID: "acc-1", IsApplied: true, MonthlyKey: "m-rent",
	}
	rent.IndexDate()
	env.store.Transactions.Create(ctx, rent)

	// Ad-hoc income with no template link.
	gift := core.Transaction{
		ID: "tx-gift", OwnerID: testOwner, Type: core.Income,
		Amount: decimal.NewFromInt(100), Date: dateIn(2025, 3, 8),
		AccountID: "acc-1", IsApplied: true,
	}
	gift.IndexDate()
	env.store.Transactions.Create(ctx, gift)

	view, err := env.budget.IncomeAfterFixedExpenses(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("IncomeAfterFixedExpenses() error = %v", err)
	}

	assertDecimal(t, view.MonthlyIncomes.Total, 2000, "MonthlyIncomes.Total")
	assertDecimal(t, view.MonthlyExpenses.Total, 820, "MonthlyExpenses.Total")
	assertDecimal(t, view.Savings.Total, 150, "Savings.Total")
	assertDecimal(t, view.Incomes.Total, 100, "Incomes.Total")
	// 2000 + 100 - 820 - 150
	assertDecimal(t, view.Total, 1130, "Total")

	if len(view.MonthlyExpenses.Items) != 1 {
		t.Fatalf("MonthlyExpenses has %d items, want 1", len(view.MonthlyExpenses.Items))
	}
	rentItem := view.MonthlyExpenses.Items[0]
	if !rentItem.IsApplied {
		t.Error("posted template item should be marked applied")
	}
	if rentItem.TransactionID != "tx-rent" {
		t.Errorf("TransactionID = %q, want %q", rentItem.TransactionID, "tx-rent")
	}

	if len(view.MonthlyIncomes.Items) != 1 || view.MonthlyIncomes.Items[0].IsApplied {
		t.Error("unposted salary template should be present and unapplied")
	}
}

func TestBudgetService_PlannedExpenses(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 0)
	ctx := context.Background()

	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-1", OwnerID: testOwner, Name: "Groceries",
		IsRecurring: true, TotalAmount: decimal.NewFromInt(300), CategoryID: "cat-groceries",
	})
	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-2", OwnerID: testOwner, Name: "Car repair",
		Date: dateIn(2025, 3, 20), TotalAmount: decimal.NewFromInt(500), CategoryID: "cat-car",
	})
	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-other-month", OwnerID: testOwner, Name: "Gifts",
		Date: dateIn(2025, 12, 1), TotalAmount: decimal.NewFromInt(400), CategoryID: "cat-gifts",
	})

	groceries := core.Transaction{
		ID: "tx-1", OwnerID: testOwner, Type: core.Expense,
		Amount: decimal.NewFromInt(350), Date: dateIn(2025, 3, 5),
		AccountID: "acc-1", IsApplied: true, CategoryID: "cat-groceries",
	}
	groceries.IndexDate()
	env.store.Transactions.Create(ctx, groceries)

	view, err := env.budget.PlannedExpenses(ctx, testOwner, 2025, 3, "")
	if err != nil {
		t.Fatalf("PlannedExpenses() error = %v", err)
	}

	if len(view.PlannedExpenses) != 2 {
		t.Fatalf("active planned expenses = %d, want 2", len(view.PlannedExpenses))
	}

	var groceriesView core.PlannedExpenseView
	for _, pv := range view.PlannedExpenses {
		if pv.ID == "pe-1" {
			groceriesView = pv
		}
	}
	assertDecimal(t, groceriesView.AmountSpent, 350, "AmountSpent")
	assertDecimal(t, groceriesView.AmountLeft, -50, "AmountLeft")

	// max(300, 350) + max(500, 0)
	assertDecimal(t, view.Total, 850, "Total")

	if len(view.Items) != 1 || view.Items[0].ID != "tx-1" {
		t.Errorf("Items = %+v, want the single groceries transaction", view.Items)
	}
}

func TestBudgetService_PlannedExpensesItemFilter(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 0)
	ctx := context.Background()

	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-1", OwnerID: testOwner, Name: "Groceries",
		IsRecurring: true, TotalAmount: decimal.NewFromInt(300), CategoryID: "cat-groceries",
	})
	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-2", OwnerID: testOwner, Name: "Car",
		IsRecurring: true, TotalAmount: decimal.NewFromInt(500), CategoryID: "cat-car",
	})

	for i, cat := range []string{"cat-groceries", "cat-car"} {
		tx := core.Transaction{
			ID: "tx-" + cat, OwnerID: testOwner, Type: core.Expense,
			Amount: decimal.NewFromInt(10), Date: dateIn(2025, 3, 2+i),
			AccountID: "acc-1", IsApplied: true, CategoryID: cat,
		}
		tx.IndexDate()
		env.store.Transactions.Create(ctx, tx)
	}

	view, err := env.budget.PlannedExpenses(ctx, testOwner, 2025, 3, "pe-2")
	if err != nil {
		t.Fatalf("PlannedExpenses() error = %v", err)
	}

	if len(view.Items) != 1 || view.Items[0].CategoryID != "cat-car" {
		t.Errorf("filtered Items = %+v, want only the car transaction", view.Items)
	}
	// Totals still cover every active plan.
	assertDecimal(t, view.Total, 800, "Total")
}

func TestBudgetService_OtherExpenses(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 0)
	ctx := context.Background()

	env.store.Planned.Create(ctx, core.PlannedExpense{
		ID: "pe-1", OwnerID: testOwner, Name: "Groceries",
		IsRecurring: true, TotalAmount: decimal.NewFromInt(300), CategoryID: "cat-groceries",
	})

	add := func(id string, amount int64, mutate func(tx *core.Transaction)) {
		tx := core.Transaction{
			ID: id, OwnerID: testOwner, Type: core.Expense,
			Amount: decimal.NewFromInt(amount), Date: dateIn(2025, 3, 10),
			AccountID: "acc-1", IsApplied: true,
		}
		if mutate != nil {
			mutate(&tx)
		}
		tx.IndexDate()
		env.store.Transactions.Create(ctx, tx)
	}

	add("tx-keep", 40, nil)
	add("tx-monthly", 50, func(tx *core.Transaction) { tx.MonthlyKey = "m-1" })
	add("tx-saving", 60, func(tx *core.Transaction) { tx.SavingKey = "sv-1" })
	add("tx-flagged", 70, func(tx *core.Transaction) { tx.RemoveFromSpendingPlan = true })
	add("tx-planned", 80, func(tx *core.Transaction) { tx.CategoryID = "cat-groceries" })

	view, err := env.budget.OtherExpenses(ctx, testOwner, 2025, 3)
	if err != nil {
		t.Fatalf("OtherExpenses() error = %v", err)
	}

	if len(view.Items) != 1 || view.Items[0].ID != "tx-keep" {
		t.Fatalf("Items = %+v, want only tx-keep", view.Items)
	}
	assertDecimal(t, view.Total, 40, "Total")
}

func TestBudgetService_Dashboard(t *testing.T) {
	env := newBudgetEnv(t)
	env.addAccount(t, "acc-1", "Checking", 500)
	env.addAccount(t, "acc-2", "Savings", 300)
	ctx := context.Background()

	env.store.Savings.Create(ctx, core.Saving{
		ID: "sv-1", OwnerID: testOwner, Name: "Vacation",
		AmountPerMonth: decimal.NewFromInt(100),
	})

	postings := []struct {
		id  string
		day int
		typ core.TransactionType
	}{
		{"tx-1", 3, core.Expense},
		{"tx-2", 5, core.Income},
		{"tx-3", 8, core.Expense},
		{"tx-4", 12, core.MonthlyExpense},
		{"tx-5", 15, core.MonthlyIncome},
	}
	for _, p := range postings {
		tx := core.Transaction{
			ID: p.id, OwnerID: testOwner, Type: p.typ,
			Amount: decimal.NewFromInt(10), Date: dateIn(2025, 3, p.day),
			AccountID: "acc-1", IsApplied: true,
		}
		tx.IndexDate()
		env.store.Transactions.Create(ctx, tx)
	}

	d, err := env.budget.Dashboard(ctx, testOwner)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}

	assertDecimal(t, d.Balance.Total, 800, "Balance.Total")
	if d.Balance.AccountCount != 2 {
		t.Errorf("AccountCount = %d, want 2", d.Balance.AccountCount)
	}
	// The monthly-typed postings stay out of the calendar counts.
	if d.Calendar.Expenses != 2 || d.Calendar.Incomes != 1 || d.Calendar.Transfers != 0 {
		t.Errorf("Calendar = %+v, want 2 expenses, 1 income, 0 transfers", d.Calendar)
	}
	if len(d.RecentTransactions) != 5 {
		t.Errorf("RecentTransactions = %d, want 5", len(d.RecentTransactions))
	}
	if len(d.Savings) != 1 || d.Savings[0].IsApplied {
		t.Error("Savings section should list the unpaid goal")
	}
}

func TestBudgetService_AccountGroups(t *testing.T) {
	env := newBudgetEnv(t)
	ctx := context.Background()

	create := func(id, name, accountType string, balance int64) {
		env.store.Accounts.Create(ctx, core.Account{
			ID: id, OwnerID: testOwner, Name: name, AccountType: accountType,
			CurrentBalance: decimal.NewFromInt(balance),
		})
	}
	create("acc-1", "Everyday", "checking", 500)
	create("acc-2", "Bills", "checking", 200)
	create("acc-3", "Emergency", "savings", 3000)

	groups, err := env.budget.AccountGroups(ctx, testOwner)
	if err != nil {
		t.Fatalf("AccountGroups() error = %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].GroupName != "checking" || groups[1].GroupName != "savings" {
		t.Errorf("group order = %q, %q; want checking, savings", groups[0].GroupName, groups[1].GroupName)
	}
	assertDecimal(t, groups[0].Total, 700, "checking group total")
	assertDecimal(t, groups[1].Total, 3000, "savings group total")
	if len(groups[0].Accounts) != 2 {
		t.Errorf("checking group accounts = %d, want 2", len(groups[0].Accounts))
	}
}
