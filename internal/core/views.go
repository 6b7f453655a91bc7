package core

import "github.com/shopspring/decimal"

// BalanceProjection is the point-in-time "money available" figure for a
// month, with the per-source breakdown it was derived from.
//
// For the current and future months the projection combines live account
// balances with everything not yet paid; for past months it degrades to the
// realized cash flow of that month (PostedIncome - PostedExpense).
type BalanceProjection struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	YearMonth string `json:"yearMonth"`
	IsPast    bool   `json:"isPast"`

	AccountsTotal        decimal.Decimal `json:"accountsTotal"`
	UnpaidRecurringNet   decimal.Decimal `json:"unpaidRecurringNet"`
	UnpaidTransactionNet decimal.Decimal `json:"unpaidTransactionNet"`
	UnpaidSavingsTotal   decimal.Decimal `json:"unpaidSavingsTotal"`
	UnpaidPlannedTotal   decimal.Decimal `json:"unpaidPlannedTotal"`

	PostedIncome  decimal.Decimal `json:"postedIncome"`
	PostedExpense decimal.Decimal `json:"postedExpense"`

	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
}

// BudgetSectionItem is one row of a budget view: a template (monthly
// transaction or saving) resolved against this month's postings, or a plain
// transaction. When a linked posting exists the item reports the posted
// amount, otherwise the template default.
type BudgetSectionItem struct {
	ID            string          `json:"id"`
	OwnerID       string          `json:"ownerId"`
	Name          string          `json:"name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	IsApplied     bool            `json:"isApplied"`
	TransactionID string          `json:"transactionId,omitempty"`
	DayOfMonth    int             `json:"dayOfMonth,omitempty"`
	Notes         string          `json:"notes,omitempty"`

	AccountID    string `json:"accountId,omitempty"`
	AccountName  string `json:"accountName,omitempty"`
	CategoryID   string `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`

	GoalAmount     *decimal.Decimal `json:"goalAmount,omitempty"`
	SavedAmount    *decimal.Decimal `json:"savedAmount,omitempty"`
	AmountPerMonth *decimal.Decimal `json:"amountPerMonth,omitempty"`

	// Kind tags the item's origin: "monthlyTransaction", "saving" or
	// "transaction".
	Kind string `json:"type"`
}

// BudgetSection groups items with their running total.
type BudgetSection struct {
	Items []BudgetSectionItem `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

// IncomeAfterFixedExpenses buckets the month into monthly incomes, monthly
// expenses, savings and ad-hoc incomes. Total = monthly incomes + ad-hoc
// incomes - monthly expenses - savings.
type IncomeAfterFixedExpenses struct {
	MonthlyIncomes  BudgetSection   `json:"monthlyIncomes"`
	MonthlyExpenses BudgetSection   `json:"monthlyExpenses"`
	Savings         BudgetSection   `json:"savings"`
	Incomes         BudgetSection   `json:"incomes"`
	Total           decimal.Decimal `json:"total"`
}

// PlannedExpenseView is a planned expense resolved against the month's
// spending. AmountLeft may go negative in the view; the budget projection
// clamps the remainder at zero instead.
type PlannedExpenseView struct {
	PlannedExpense
	AmountSpent     decimal.Decimal `json:"amountSpent"`
	AmountLeft      decimal.Decimal `json:"amountLeft"`
	PercentageSpent decimal.Decimal `json:"percentageSpent"`
}

// PlannedExpensesView lists the month's active planned expenses and the
// transactions matched to them. Total = sum of max(totalAmount, amountSpent).
type PlannedExpensesView struct {
	PlannedExpenses []PlannedExpenseView `json:"plannedExpenses"`
	Items           []BudgetSectionItem  `json:"items"`
	Total           decimal.Decimal      `json:"total"`
}

// OtherExpensesView lists the month's discretionary spending: expense
// transactions not already budgeted by a template, a saving or an active
// planned expense.
type OtherExpensesView struct {
	Items []BudgetSectionItem `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

// DashboardBalance is the headline figure: the sum of all active account
// balances.
type DashboardBalance struct {
	Total        decimal.Decimal `json:"total"`
	AccountCount int             `json:"accountCount"`
}

// CalendarView carries the month's activity counters.
type CalendarView struct {
	YearMonth string `json:"yearMonth"`
	Transfers int    `json:"transfers"`
	Expenses  int    `json:"expenses"`
	Incomes   int    `json:"incomes"`
}

// Dashboard is the landing view: balance, latest activity, month counters
// and the savings section.
type Dashboard struct {
	Balance            DashboardBalance    `json:"balance"`
	RecentTransactions []Transaction       `json:"recentTransactions"`
	Calendar           CalendarView        `json:"calendar"`
	Savings            []BudgetSectionItem `json:"savings"`
}

// AccountGroup groups dashboard accounts by their account type.
type AccountGroup struct {
	GroupName string          `json:"groupName"`
	Total     decimal.Decimal `json:"total"`
	Accounts  []Account       `json:"accounts"`
}
