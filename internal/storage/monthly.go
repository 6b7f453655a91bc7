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

type MonthlyTransactionStore struct {
	db *sql.DB
}

var _ services.MonthlyTransactionStore = (*MonthlyTransactionStore)(nil)

const monthlyColumns = `id, owner_id, amount, transaction_type, notes, day_of_month,
	account_id, account_name, category_id, category_name, subcategory, created_at, updated_at`

func (s *MonthlyTransactionStore) GetByID(ctx context.Context, id, ownerID string) (core.MonthlyTransaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+monthlyColumns+` FROM monthly_transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	m, err := scanMonthly(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyTransaction{}, fmt.Errorf("monthly transaction %s: %w", id, core.ErrNotFound)
	}
	return m, err
}

func (s *MonthlyTransactionStore) Create(ctx context.Context, m core.MonthlyTransaction) (core.MonthlyTransaction, error) {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO monthly_transactions (`+monthlyColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.OwnerID, decimalColumn(m.Amount), string(m.Type), m.Notes, m.DayOfMonth,
		m.AccountID, m.AccountName, m.CategoryID, m.CategoryName, m.Subcategory,
		timeColumn(m.CreatedAt), timeColumn(m.UpdatedAt))
	if err != nil {
		return core.MonthlyTransaction{}, fmt.Errorf("insert monthly transaction: %w", err)
	}
	return m, nil
}

func (s *MonthlyTransactionStore) Update(ctx context.Context, m core.MonthlyTransaction) (core.MonthlyTransaction, error) {
	m.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE monthly_transactions SET amount = ?, transaction_type = ?, notes = ?,
		 day_of_month = ?, account_id = ?, account_name = ?, category_id = ?,
		 category_name = ?, subcategory = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		decimalColumn(m.Amount), string(m.Type), m.Notes,
		m.DayOfMonth, m.AccountID, m.AccountName, m.CategoryID,
		m.CategoryName, m.Subcategory, timeColumn(m.UpdatedAt),
		m.ID, m.OwnerID)
	if err != nil {
		return core.MonthlyTransaction{}, fmt.Errorf("update monthly transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.MonthlyTransaction{}, fmt.Errorf("monthly transaction %s: %w", m.ID, core.ErrNotFound)
	}
	return m, nil
}

func (s *MonthlyTransactionStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM monthly_transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete monthly transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("monthly transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *MonthlyTransactionStore) ListAll(ctx context.Context, ownerID string) ([]core.MonthlyTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+monthlyColumns+` FROM monthly_transactions
		 WHERE owner_id = ? ORDER BY day_of_month`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list monthly transactions: %w", err)
	}
	defer rows.Close()

	var out []core.MonthlyTransaction
	for rows.Next() {
		m, err := scanMonthly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *MonthlyTransactionStore) ListOwners(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT owner_id FROM monthly_transactions ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list template owners: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		out = append(out, owner)
	}
	return out, rows.Err()
}

func scanMonthly(row rowScanner) (core.MonthlyTransaction, error) {
	var (
		m                    core.MonthlyTransaction
		amount, txType       string
		createdAt, updatedAt string
	)
	err := row.Scan(&m.ID, &m.OwnerID, &amount, &txType, &m.Notes, &m.DayOfMonth,
		&m.AccountID, &m.AccountName, &m.CategoryID, &m.CategoryName, &m.Subcategory,
		&createdAt, &updatedAt)
	if err != nil {
		return core.MonthlyTransaction{}, err
	}
	m.Type = core.TransactionType(txType)
	if m.Amount, err = parseDecimal(amount); err != nil {
		return core.MonthlyTransaction{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.MonthlyTransaction{}, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.MonthlyTransaction{}, err
	}
	return m, nil
}
