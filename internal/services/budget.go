package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
)

const recentTransactionsLimit = 5

// BudgetService derives the budget views for a month by merging four read
// sources: posted transactions, monthly templates, savings goals and planned
// expenses. It never mutates anything.
type BudgetService struct {
	accounts     AccountStore
	transactions TransactionStore
	monthly      MonthlyTransactionStore
	savings      SavingStore
	planned      PlannedExpenseStore
	now          func() time.Time
}

func NewBudgetService(
	accounts AccountStore,
	transactions TransactionStore,
	monthly MonthlyTransactionStore,
	savings SavingStore,
	planned PlannedExpenseStore,
) *BudgetService {
	return &BudgetService{
		accounts:     accounts,
		transactions: transactions,
		monthly:      monthly,
		savings:      savings,
		planned:      planned,
		now:          time.Now,
	}
}

// monthSources holds everything a projection for one month reads.
type monthSources struct {
	accounts     []core.Account
	transactions []core.Transaction
	monthly      []core.MonthlyTransaction
	savings      []core.Saving
	planned      []core.PlannedExpense
}

// fetchMonth loads the five read sources concurrently.
func (s *BudgetService) fetchMonth(ctx context.Context, ownerID string, year, month int) (monthSources, error) {
	var src monthSources
	yearMonth := core.YearMonth(year, month)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		src.accounts, err = s.accounts.ListActive(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		src.transactions, err = s.transactions.ListByMonth(gctx, ownerID, yearMonth)
		if err != nil {
			return fmt.Errorf("list transactions for %s: %w", yearMonth, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		src.monthly, err = s.monthly.ListAll(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list monthly transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		src.savings, err = s.savings.ListAll(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list savings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		src.planned, err = s.planned.ListAll(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list planned expenses: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return monthSources{}, err
	}
	return src, nil
}

// ProjectedBalance computes "money available" for the target month.
//
// Current and future months combine live account balances with everything
// not yet paid. Past months report the realized cash flow instead: posted
// income minus posted expense, independent of today's balances.
func (s *BudgetService) ProjectedBalance(ctx context.Context, ownerID string, year, month int) (core.BalanceProjection, error) {
	src, err := s.fetchMonth(ctx, ownerID, year, month)
	if err != nil {
		return core.BalanceProjection{}, err
	}

	p := core.BalanceProjection{
		Year:      year,
		Month:     month,
		YearMonth: core.YearMonth(year, month),
		IsPast:    s.isPastMonth(year, month),
	}

	for _, a := range src.accounts {
		if a.SumsToMonthlyBudget {
			p.AccountsTotal = p.AccountsTotal.Add(a.CurrentBalance)
		}
	}

	p.UnpaidRecurringNet = unpaidRecurringNet(src.monthly, src.transactions)
	p.UnpaidTransactionNet = unpaidTransactionNet(src.transactions)
	p.UnpaidSavingsTotal = unpaidSavingsTotal(src.savings, src.transactions)
	p.UnpaidPlannedTotal = unpaidPlannedTotal(src.planned, src.transactions, year, month)

	for _, t := range src.transactions {
		if !t.AppliesToBalance() {
			continue
		}
		switch {
		case t.Type.IsIncome():
			p.PostedIncome = p.PostedIncome.Add(t.Amount)
		case t.Type.IsExpense():
			p.PostedExpense = p.PostedExpense.Add(t.Amount)
		}
	}

	if p.IsPast {
		p.ProjectedBalance = p.PostedIncome.Sub(p.PostedExpense)
	} else {
		p.ProjectedBalance = p.AccountsTotal.
			Add(p.UnpaidRecurringNet).
			Add(p.UnpaidTransactionNet).
			Sub(p.UnpaidSavingsTotal).
			Sub(p.UnpaidPlannedTotal)
	}

	return p, nil
}

func (s *BudgetService) isPastMonth(year, month int) bool {
	now := s.now().UTC()
	return year < now.Year() || (year == now.Year() && month < int(now.Month()))
}

// unpaidRecurringNet sums the templates with no posting this month, signed:
// income templates add, expense templates subtract.
func unpaidRecurringNet(monthly []core.MonthlyTransaction, txs []core.Transaction) decimal.Decimal {
	var net decimal.Decimal
	for _, m := range monthly {
		if findByMonthlyKey(txs, m.ID) != nil {
			continue
		}
		if m.Type.IsIncome() {
			net = net.Add(m.Amount)
		} else {
			net = net.Sub(m.Amount)
		}
	}
	return net
}

// unpaidTransactionNet sums this month's pending transactions, signed by
// type. Transfers contribute nothing either way.
func unpaidTransactionNet(txs []core.Transaction) decimal.Decimal {
	var net decimal.Decimal
	for _, t := range txs {
		if t.IsApplied || t.Type == core.Transfer {
			continue
		}
		net = net.Add(t.SignedAmount())
	}
	return net
}

func unpaidSavingsTotal(savings []core.Saving, txs []core.Transaction) decimal.Decimal {
	var total decimal.Decimal
	for _, sv := range savings {
		if findBySavingKey(txs, sv.ID) != nil {
			continue
		}
		total = total.Add(sv.AmountPerMonth)
	}
	return total
}

// unpaidPlannedTotal sums the remaining headroom of the month's active
// planned expenses. Overspent plans contribute zero, never a negative.
func unpaidPlannedTotal(planned []core.PlannedExpense, txs []core.Transaction, year, month int) decimal.Decimal {
	var total decimal.Decimal
	for _, p := range planned {
		if !p.ActiveIn(year, month) {
			continue
		}
		remaining := p.TotalAmount.Sub(plannedSpent(p, txs))
		if remaining.IsPositive() {
			total = total.Add(remaining)
		}
	}
	return total
}

func plannedSpent(p core.PlannedExpense, txs []core.Transaction) decimal.Decimal {
	var spent decimal.Decimal
	for _, t := range txs {
		if p.MatchesExpense(t) {
			spent = spent.Add(t.Amount)
		}
	}
	return spent
}

// IncomeAfterFixedExpenses buckets the month into monthly incomes, monthly
// expenses, savings and ad-hoc incomes. Template items resolve against this
// month's postings: a linked posting marks the item applied and overrides
// the template amount.
func (s *BudgetService) IncomeAfterFixedExpenses(ctx context.Context, ownerID string, year, month int) (core.IncomeAfterFixedExpenses, error) {
	src, err := s.fetchMonth(ctx, ownerID, year, month)
	if err != nil {
		return core.IncomeAfterFixedExpenses{}, err
	}

	var view core.IncomeAfterFixedExpenses
	for _, m := range src.monthly {
		item := monthlyItem(m, findByMonthlyKey(src.transactions, m.ID))
		if m.Type.IsIncome() {
			view.MonthlyIncomes.Items = append(view.MonthlyIncomes.Items, item)
			view.MonthlyIncomes.Total = view.MonthlyIncomes.Total.Add(item.Amount)
		} else {
			view.MonthlyExpenses.Items = append(view.MonthlyExpenses.Items, item)
			view.MonthlyExpenses.Total = view.MonthlyExpenses.Total.Add(item.Amount)
		}
	}

	for _, sv := range src.savings {
		item := savingItem(sv, findBySavingKey(src.transactions, sv.ID))
		view.Savings.Items = append(view.Savings.Items, item)
		view.Savings.Total = view.Savings.Total.Add(item.Amount)
	}

	// Ad-hoc incomes: income postings not originated by any template.
	for _, t := range src.transactions {
		if t.Type != core.Income || t.MonthlyKey != "" || t.SavingKey != "" {
			continue
		}
		item := transactionItem(t)
		view.Incomes.Items = append(view.Incomes.Items, item)
		view.Incomes.Total = view.Incomes.Total.Add(item.Amount)
	}

	view.Total = view.MonthlyIncomes.Total.
		Add(view.Incomes.Total).
		Sub(view.MonthlyExpenses.Total).
		Sub(view.Savings.Total)

	return view, nil
}

// PlannedExpenses resolves the month's active planned expenses against the
// month's spending. plannedExpenseID optionally restricts the matched
// transaction items to a single plan.
func (s *BudgetService) PlannedExpenses(ctx context.Context, ownerID string, year, month int, plannedExpenseID string) (core.PlannedExpensesView, error) {
	src, err := s.fetchMonth(ctx, ownerID, year, month)
	if err != nil {
		return core.PlannedExpensesView{}, err
	}

	var view core.PlannedExpensesView
	for _, p := range src.planned {
		if !p.ActiveIn(year, month) {
			continue
		}
		spent := plannedSpent(p, src.transactions)
		view.PlannedExpenses = append(view.PlannedExpenses, core.PlannedExpenseView{
			PlannedExpense:  p,
			AmountSpent:     spent,
			AmountLeft:      p.TotalAmount.Sub(spent),
			PercentageSpent: percentageSpent(spent, p.TotalAmount),
		})

		// A plan over its ceiling costs what was actually spent.
		if spent.GreaterThan(p.TotalAmount) {
			view.Total = view.Total.Add(spent)
		} else {
			view.Total = view.Total.Add(p.TotalAmount)
		}

		if plannedExpenseID != "" && p.ID != plannedExpenseID {
			continue
		}
		for _, t := range src.transactions {
			if p.MatchesExpense(t) {
				view.Items = append(view.Items, transactionItem(t))
			}
		}
	}

	sort.Slice(view.Items, func(i, j int) bool {
		return view.Items[i].DayOfMonth > view.Items[j].DayOfMonth
	})

	return view, nil
}

func percentageSpent(spent, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return spent.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}

// OtherExpenses lists the month's discretionary spending: expense postings
// not already budgeted through a template, a saving, a planned expense or
// the removeFromSpendingPlan flag.
func (s *BudgetService) OtherExpenses(ctx context.Context, ownerID string, year, month int) (core.OtherExpensesView, error) {
	src, err := s.fetchMonth(ctx, ownerID, year, month)
	if err != nil {
		return core.OtherExpensesView{}, err
	}

	active := make([]core.PlannedExpense, 0, len(src.planned))
	for _, p := range src.planned {
		if p.ActiveIn(year, month) {
			active = append(active, p)
		}
	}

	var view core.OtherExpensesView
	for _, t := range src.transactions {
		if t.Type != core.Expense {
			continue
		}
		if t.MonthlyKey != "" || t.SavingKey != "" || t.RemoveFromSpendingPlan {
			continue
		}
		if matchesAnyPlanned(active, t) {
			continue
		}
		item := transactionItem(t)
		view.Items = append(view.Items, item)
		view.Total = view.Total.Add(item.Amount)
	}

	return view, nil
}

func matchesAnyPlanned(planned []core.PlannedExpense, t core.Transaction) bool {
	for _, p := range planned {
		if p.MatchesExpense(t) {
			return true
		}
	}
	return false
}

// Dashboard assembles the landing view for the current month.
func (s *BudgetService) Dashboard(ctx context.Context, ownerID string) (core.Dashboard, error) {
	now := s.now().UTC()
	year, month := now.Year(), int(now.Month())
	yearMonth := core.YearMonth(year, month)

	var (
		accounts []core.Account
		txs      []core.Transaction
		recent   []core.Transaction
		savings  []core.Saving
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.accounts.ListActive(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txs, err = s.transactions.ListByMonth(gctx, ownerID, yearMonth)
		if err != nil {
			return fmt.Errorf("list transactions for %s: %w", yearMonth, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.transactions.ListRecent(gctx, ownerID, yearMonth, recentTransactionsLimit)
		if err != nil {
			return fmt.Errorf("list recent transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		savings, err = s.savings.ListAll(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("list savings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, err
	}

	var d core.Dashboard
	d.Balance.AccountCount = len(accounts)
	for _, a := range accounts {
		d.Balance.Total = d.Balance.Total.Add(a.CurrentBalance)
	}

	d.RecentTransactions = recent
	if d.RecentTransactions == nil {
		d.RecentTransactions = []core.Transaction{}
	}

	// Monthly-typed postings are budgeted, not ad hoc, so the calendar
	// counts only plain expenses and incomes.
	d.Calendar.YearMonth = yearMonth
	for _, t := range txs {
		switch t.Type {
		case core.Transfer:
			d.Calendar.Transfers++
		case core.Expense:
			d.Calendar.Expenses++
		case core.Income:
			d.Calendar.Incomes++
		}
	}

	for _, sv := range savings {
		d.Savings = append(d.Savings, savingItem(sv, findBySavingKey(txs, sv.ID)))
	}

	return d, nil
}

// AccountGroups groups the owner's active accounts by account type with a
// per-group balance total. Groups and accounts come out name-sorted.
func (s *BudgetService) AccountGroups(ctx context.Context, ownerID string) ([]core.AccountGroup, error) {
	accounts, err := s.accounts.ListActive(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	byType := make(map[string][]core.Account)
	for _, a := range accounts {
		byType[a.AccountType] = append(byType[a.AccountType], a)
	}

	groups := make([]core.AccountGroup, 0, len(byType))
	for name, list := range byType {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		g := core.AccountGroup{GroupName: name, Accounts: list}
		for _, a := range list {
			g.Total = g.Total.Add(a.CurrentBalance)
		}
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].GroupName < groups[j].GroupName })

	return groups, nil
}

func findByMonthlyKey(txs []core.Transaction, key string) *core.Transaction {
	for i := range txs {
		if txs[i].MonthlyKey == key {
			return &txs[i]
		}
	}
	return nil
}

func findBySavingKey(txs []core.Transaction, key string) *core.Transaction {
	for i := range txs {
		if txs[i].SavingKey == key {
			return &txs[i]
		}
	}
	return nil
}

func monthlyItem(m core.MonthlyTransaction, linked *core.Transaction) core.BudgetSectionItem {
	item := core.BudgetSectionItem{
		ID:           m.ID,
		OwnerID:      m.OwnerID,
		Name:         m.Notes,
		Amount:       m.Amount,
		DayOfMonth:   m.DayOfMonth,
		Notes:        m.Notes,
		AccountID:    m.AccountID,
		AccountName:  m.AccountName,
		CategoryID:   m.CategoryID,
		CategoryName: m.CategoryName,
		Subcategory:  m.Subcategory,
		Kind:         "monthlyTransaction",
	}
	if linked != nil {
		item.IsApplied = true
		item.Amount = linked.Amount
		item.TransactionID = linked.ID
	}
	return item
}

func savingItem(sv core.Saving, linked *core.Transaction) core.BudgetSectionItem {
	goal := sv.GoalAmount
	saved := sv.SavedAmount
	perMonth := sv.AmountPerMonth
	item := core.BudgetSectionItem{
		ID:             sv.ID,
		OwnerID:        sv.OwnerID,
		Name:           sv.Name,
		Amount:         sv.AmountPerMonth,
		Icon:           sv.Icon,
		Color:          sv.Color,
		GoalAmount:     &goal,
		SavedAmount:    &saved,
		AmountPerMonth: &perMonth,
		Kind:           "saving",
	}
	if linked != nil {
		item.IsApplied = true
		item.Amount = linked.Amount
		item.TransactionID = linked.ID
	}
	return item
}

func transactionItem(t core.Transaction) core.BudgetSectionItem {
	return core.BudgetSectionItem{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		Name:          t.Notes,
		Amount:        t.Amount,
		IsApplied:     t.IsApplied,
		TransactionID: t.ID,
		DayOfMonth:    t.Day,
		Notes:         t.Notes,
		AccountID:     t.AccountID,
		AccountName:   t.AccountName,
		CategoryID:    t.CategoryID,
		CategoryName:  t.CategoryName,
		Subcategory:   t.Subcategory,
		Kind:          "transaction",
	}
}
