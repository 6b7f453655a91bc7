package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// RecurringService materializes monthly templates into pending transactions
// once their day-of-month is reached. Each template is posted at most once
// per month; the posting carries the template's id as its monthlyKey, which
// is also the dedup key.
type RecurringService struct {
	monthly      MonthlyTransactionStore
	transactions TransactionStore
	lifecycle    *TransactionService
}

func NewRecurringService(
	monthly MonthlyTransactionStore,
	transactions TransactionStore,
	lifecycle *TransactionService,
) *RecurringService {
	return &RecurringService{
		monthly:      monthly,
		transactions: transactions,
		lifecycle:    lifecycle,
	}
}

// PostDue posts the owner's due templates for now's month and returns how
// many postings were created. Per-template failures are logged and skipped
// so one broken template cannot block the rest.
func (s *RecurringService) PostDue(ctx context.Context, ownerID string, now time.Time) (int, error) {
	templates, err := s.monthly.ListAll(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list monthly transactions: %w", err)
	}

	yearMonth := core.YearMonth(now.Year(), int(now.Month()))
	posted, err := s.transactions.ListByMonth(ctx, ownerID, yearMonth)
	if err != nil {
		return 0, fmt.Errorf("list transactions for %s: %w", yearMonth, err)
	}

	slog.InfoContext(ctx, "Processing monthly templates",
		log.FieldOwnerID, ownerID,
		"total_templates", len(templates),
		"processing_date", now.Format("2006-01-02"))

	count := 0
	for _, m := range templates {
		if !isDue(m, posted, now) {
			continue
		}

		tx := transactionFromTemplate(m, now)
		if _, err := s.lifecycle.Create(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to post transaction from monthly template",
				"monthly_id", m.ID,
				log.FieldOwnerID, ownerID,
				log.FieldError, err)
			continue
		}

		count++
		slog.InfoContext(ctx, "Posted transaction from monthly template",
			"monthly_id", m.ID,
			log.FieldOwnerID, ownerID,
			log.FieldAmount, m.Amount.String(),
			"day_of_month", m.DayOfMonth)
	}

	slog.InfoContext(ctx, "Monthly template processing complete",
		log.FieldOwnerID, ownerID,
		"posted", count,
		"total_checked", len(templates))

	return count, nil
}

// PostDueAll runs PostDue for every owner that has templates. An owner's
// failure is logged and does not stop the sweep.
func (s *RecurringService) PostDueAll(ctx context.Context, now time.Time) (int, error) {
	owners, err := s.monthly.ListOwners(ctx)
	if err != nil {
		return 0, fmt.Errorf("list template owners: %w", err)
	}

	total := 0
	for _, ownerID := range owners {
		n, err := s.PostDue(ctx, ownerID, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to post due templates for owner",
				log.FieldOwnerID, ownerID, log.FieldError, err)
			continue
		}
		total += n
	}
	return total, nil
}

// isDue reports whether the template should be posted: its clamped
// day-of-month has been reached and no posting for it exists this month.
func isDue(m core.MonthlyTransaction, posted []core.Transaction, now time.Time) bool {
	day := core.ClampDayOfMonth(now.Year(), int(now.Month()), m.DayOfMonth)
	if now.Day() < day {
		return false
	}
	return findByMonthlyKey(posted, m.ID) == nil
}

// transactionFromTemplate builds the pending posting for a template. The
// posting starts unapplied; the owner confirms it by flipping isApplied
// through an update.
func transactionFromTemplate(m core.MonthlyTransaction, now time.Time) core.Transaction {
	day := core.ClampDayOfMonth(now.Year(), int(now.Month()), m.DayOfMonth)
	date := time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC)

	txType := core.MonthlyExpense
	if m.Type.IsIncome() {
		txType = core.MonthlyIncome
	}

	return core.Transaction{
		OwnerID:      m.OwnerID,
		Type:         txType,
		Amount:       m.Amount,
		Date:         date,
		AccountID:    m.AccountID,
		AccountName:  m.AccountName,
		CategoryID:   m.CategoryID,
		CategoryName: m.CategoryName,
		Subcategory:  m.Subcategory,
		Notes:        m.Notes,
		IsApplied:    false,
		MonthlyKey:   m.ID,
	}
}
