package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income         TransactionType = "income"
	Expense        TransactionType = "expense"
	Transfer       TransactionType = "transfer"
	MonthlyIncome  TransactionType = "monthlyIncome"
	MonthlyExpense TransactionType = "monthlyExpense"
)

type (
	// TransactionType is the tagged variant of a transaction. Transfer-only
	// fields (FromAccountID/ToAccountID) are valid iff the type is Transfer.
	TransactionType string

	Account struct {
		ID             string          `json:"id"`
		OwnerID        string          `json:"ownerId"`
		Name           string          `json:"name"`
		CurrentBalance decimal.Decimal `json:"currentBalance"`
		AccountType    string          `json:"accountType"`
		IsArchived     bool            `json:"isArchived"`
		// SumsToMonthlyBudget marks accounts whose balance counts toward
		// the monthly budget projection.
		SumsToMonthlyBudget bool             `json:"sumsToMonthlyBudget"`
		AvailableCredit     *decimal.Decimal `json:"availableCredit,omitempty"`
		Color               string           `json:"color,omitempty"`
		Icon                string           `json:"icon,omitempty"`
		CreatedAt           time.Time        `json:"createdAt"`
		UpdatedAt           time.Time        `json:"updatedAt"`
	}

	Transaction struct {
		ID      string          `json:"id"`
		OwnerID string          `json:"ownerId"`
		Type    TransactionType `json:"transactionType"`
		Amount  decimal.Decimal `json:"amount"`
		Date    time.Time       `json:"date"`

		// Account references. AccountID/AccountName are set for every type;
		// the From/To pair only for transfers.
		AccountID       string `json:"accountId"`
		AccountName     string `json:"accountName"`
		FromAccountID   string `json:"fromAccountId,omitempty"`
		FromAccountName string `json:"fromAccountName,omitempty"`
		ToAccountID     string `json:"toAccountId,omitempty"`
		ToAccountName   string `json:"toAccountName,omitempty"`

		CategoryID   string `json:"categoryId,omitempty"`
		CategoryName string `json:"categoryName,omitempty"`
		Subcategory  string `json:"subcategory,omitempty"`

		Notes         string           `json:"notes,omitempty"`
		IsApplied     bool             `json:"isApplied"`
		AppliedAmount *decimal.Decimal `json:"appliedAmount,omitempty"`

		// Weak back-references to the templates this posting originates from.
		MonthlyKey string `json:"monthlyKey,omitempty"`
		SavingKey  string `json:"savingKey,omitempty"`
		// TransferID pairs the two legs of a transfer.
		TransferID             string `json:"transferId,omitempty"`
		RemoveFromSpendingPlan bool   `json:"removeFromSpendingPlan"`

		// Index fields derived from Date.
		YearMonth string `json:"yearMonth"`
		Year      int    `json:"year"`
		Month     int    `json:"month"`
		Day       int    `json:"day"`

		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	// MonthlyTransaction is a recurring template. It never affects a balance
	// itself; each month a real Transaction may be posted referencing it via
	// MonthlyKey.
	MonthlyTransaction struct {
		ID           string          `json:"id"`
		OwnerID      string          `json:"ownerId"`
		Amount       decimal.Decimal `json:"amount"`
		Type         TransactionType `json:"monthlyTransactionType"` // Income or Expense
		Notes        string          `json:"notes,omitempty"`
		DayOfMonth   int             `json:"dayOfMonth"`
		AccountID    string          `json:"accountId"`
		AccountName  string          `json:"accountName"`
		CategoryID   string          `json:"categoryId,omitempty"`
		CategoryName string          `json:"categoryName,omitempty"`
		Subcategory  string          `json:"subcategory,omitempty"`
		CreatedAt    time.Time       `json:"createdAt"`
		UpdatedAt    time.Time       `json:"updatedAt"`
	}

	// Saving is a savings goal template. A month's contribution is "paid"
	// once a Transaction carries a matching SavingKey.
	Saving struct {
		ID             string          `json:"id"`
		OwnerID        string          `json:"ownerId"`
		Name           string          `json:"name"`
		Icon           string          `json:"icon,omitempty"`
		Color          string          `json:"color,omitempty"`
		GoalAmount     decimal.Decimal `json:"goalAmount"`
		SavedAmount    decimal.Decimal `json:"savedAmount"`
		AmountPerMonth decimal.Decimal `json:"amountPerMonth"`
		CreatedAt      time.Time       `json:"createdAt"`
		UpdatedAt      time.Time       `json:"updatedAt"`
	}

	// PlannedExpense is a budget ceiling for a category (and optionally a
	// subcategory) in a given month, or in every month when recurring.
	PlannedExpense struct {
		ID           string          `json:"id"`
		OwnerID      string          `json:"ownerId"`
		Name         string          `json:"name"`
		Date         time.Time       `json:"date"`
		IsRecurring  bool            `json:"isRecurring"`
		TotalAmount  decimal.Decimal `json:"totalAmount"`
		CategoryID   string          `json:"categoryId,omitempty"`
		CategoryName string          `json:"categoryName,omitempty"`
		Subcategory  string          `json:"subcategory,omitempty"`
		CreatedAt    time.Time       `json:"createdAt"`
		UpdatedAt    time.Time       `json:"updatedAt"`
	}

	Category struct {
		ID            string    `json:"id"`
		OwnerID       string    `json:"ownerId"`
		Name          string    `json:"name"`
		CategoryType  string    `json:"categoryType"`
		Icon          string    `json:"icon,omitempty"`
		Color         string    `json:"color,omitempty"`
		Subcategories []string  `json:"subcategories,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrUnknownType   = errors.New("unknown transaction type")
	ErrInvalidDay    = errors.New("invalid day of month")
	ErrEmptyOwner    = errors.New("empty owner id")
)

// Valid reports whether t is one of the five known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer, MonthlyIncome, MonthlyExpense:
		return true
	}
	return false
}

// IsIncome reports whether the type credits its account.
func (t TransactionType) IsIncome() bool {
	return t == Income || t == MonthlyIncome
}

// IsExpense reports whether the type debits its account.
func (t TransactionType) IsExpense() bool {
	return t == Expense || t == MonthlyExpense
}

// IsMonthly reports whether the type is a monthly (template-linked) posting.
func (t TransactionType) IsMonthly() bool {
	return t == MonthlyIncome || t == MonthlyExpense
}

// AppliesToBalance reports whether the transaction currently affects account
// balances. Transfers always apply; other types only when IsApplied is set.
func (t Transaction) AppliesToBalance() bool {
	return t.Type == Transfer || t.IsApplied
}

// IndexDate recomputes the Year/Month/Day/YearMonth index fields from Date.
func (t *Transaction) IndexDate() {
	t.Year = t.Date.Year()
	t.Month = int(t.Date.Month())
	t.Day = t.Date.Day()
	t.YearMonth = YearMonth(t.Year, t.Month)
}

// YearMonth formats the "YYYY-MM" index key used to bucket transactions.
func YearMonth(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// ActiveIn reports whether the planned expense applies to the given month:
// either it recurs every month or its date falls inside it.
func (p PlannedExpense) ActiveIn(year, month int) bool {
	if p.IsRecurring {
		return true
	}
	if p.Date.IsZero() {
		return false
	}
	return p.Date.Year() == year && int(p.Date.Month()) == month
}

// MatchesExpense reports whether an expense transaction counts against this
// planned expense: same category, and same subcategory when one is set.
func (p PlannedExpense) MatchesExpense(t Transaction) bool {
	if t.Type != Expense {
		return false
	}
	if t.CategoryID != p.CategoryID {
		return false
	}
	return p.Subcategory == "" || t.Subcategory == p.Subcategory
}

// RemainingCredit returns AvailableCredit + CurrentBalance for credit
// accounts, nil otherwise.
func (a Account) RemainingCredit() *decimal.Decimal {
	if a.AvailableCredit == nil {
		return nil
	}
	rem := a.AvailableCredit.Add(a.CurrentBalance)
	return &rem
}

// ClampDayOfMonth fits a template's day-of-month into the target month,
// falling back to the month's last day (e.g. day 31 in February).
func ClampDayOfMonth(year, month, day int) int {
	last := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	if day < 1 {
		return 1
	}
	return day
}
