package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type TransactionStore struct {
	db *sql.DB
}

var _ services.TransactionStore = (*TransactionStore)(nil)

const transactionColumns = `id, owner_id, transaction_type, amount, date,
	account_id, account_name, from_account_id, from_account_name, to_account_id, to_account_name,
	category_id, category_name, subcategory, notes, is_applied, applied_amount,
	monthly_key, saving_key, transfer_id, remove_from_spending_plan,
	year_month, year, month, day, created_at, updated_at`

func (s *TransactionStore) GetByID(ctx context.Context, id, ownerID string) (core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return t, err
}

func (s *TransactionStore) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, string(t.Type), decimalColumn(t.Amount), timeColumn(t.Date),
		t.AccountID, t.AccountName, t.FromAccountID, t.FromAccountName, t.ToAccountID, t.ToAccountName,
		t.CategoryID, t.CategoryName, t.Subcategory, t.Notes, t.IsApplied, nullDecimalColumn(t.AppliedAmount),
		t.MonthlyKey, t.SavingKey, t.TransferID, t.RemoveFromSpendingPlan,
		t.YearMonth, t.Year, t.Month, t.Day, timeColumn(t.CreatedAt), timeColumn(t.UpdatedAt))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionStore) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET transaction_type = ?, amount = ?, date = ?,
		 account_id = ?, account_name = ?, from_account_id = ?, from_account_name = ?,
		 to_account_id = ?, to_account_name = ?, category_id = ?, category_name = ?,
		 subcategory = ?, notes = ?, is_applied = ?, applied_amount = ?,
		 monthly_key = ?, saving_key = ?, transfer_id = ?, remove_from_spending_plan = ?,
		 year_month = ?, year = ?, month = ?, day = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		string(t.Type), decimalColumn(t.Amount), timeColumn(t.Date),
		t.AccountID, t.AccountName, t.FromAccountID, t.FromAccountName,
		t.ToAccountID, t.ToAccountName, t.CategoryID, t.CategoryName,
		t.Subcategory, t.Notes, t.IsApplied, nullDecimalColumn(t.AppliedAmount),
		t.MonthlyKey, t.SavingKey, t.TransferID, t.RemoveFromSpendingPlan,
		t.YearMonth, t.Year, t.Month, t.Day, timeColumn(t.UpdatedAt),
		t.ID, t.OwnerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	return t, nil
}

func (s *TransactionStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *TransactionStore) ListByMonth(ctx context.Context, ownerID, yearMonth string) ([]core.Transaction, error) {
	return s.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE owner_id = ? AND year_month = ? ORDER BY date`, ownerID, yearMonth)
}

func (s *TransactionStore) ListRecent(ctx context.Context, ownerID, yearMonth string, limit int) ([]core.Transaction, error) {
	return s.query(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE owner_id = ? AND year_month = ? ORDER BY date DESC LIMIT ?`, ownerID, yearMonth, limit)
}

func (s *TransactionStore) query(ctx context.Context, q string, args ...any) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                    core.Transaction
		txType               string
		amount, date         string
		appliedAmount        sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &txType, &amount, &date,
		&t.AccountID, &t.AccountName, &t.FromAccountID, &t.FromAccountName, &t.ToAccountID, &t.ToAccountName,
		&t.CategoryID, &t.CategoryName, &t.Subcategory, &t.Notes, &t.IsApplied, &appliedAmount,
		&t.MonthlyKey, &t.SavingKey, &t.TransferID, &t.RemoveFromSpendingPlan,
		&t.YearMonth, &t.Year, &t.Month, &t.Day, &createdAt, &updatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(txType)
	if t.Amount, err = parseDecimal(amount); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = parseTime(date); err != nil {
		return core.Transaction{}, err
	}
	if t.AppliedAmount, err = parseNullDecimal(appliedAmount); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Transaction{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
