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

type AccountStore struct {
	db *sql.DB
}

var _ services.AccountStore = (*AccountStore)(nil)

const accountColumns = `id, owner_id, name, current_balance, account_type, is_archived,
	sums_to_monthly_budget, available_credit, color, icon, created_at, updated_at`

func (s *AccountStore) GetByID(ctx context.Context, id, ownerID string) (core.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return a, err
}

func (s *AccountStore) Create(ctx context.Context, a core.Account) (core.Account, error) {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.OwnerID, a.Name, decimalColumn(a.CurrentBalance), a.AccountType,
		a.IsArchived, a.SumsToMonthlyBudget, nullDecimalColumn(a.AvailableCredit),
		a.Color, a.Icon, timeColumn(a.CreatedAt), timeColumn(a.UpdatedAt))
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (s *AccountStore) Update(ctx context.Context, a core.Account) (core.Account, error) {
	a.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, current_balance = ?, account_type = ?,
		 is_archived = ?, sums_to_monthly_budget = ?, available_credit = ?,
		 color = ?, icon = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		a.Name, decimalColumn(a.CurrentBalance), a.AccountType,
		a.IsArchived, a.SumsToMonthlyBudget, nullDecimalColumn(a.AvailableCredit),
		a.Color, a.Icon, timeColumn(a.UpdatedAt),
		a.ID, a.OwnerID)
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Account{}, fmt.Errorf("account %s: %w", a.ID, core.ErrNotFound)
	}
	return a, nil
}

func (s *AccountStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *AccountStore) ListActive(ctx context.Context, ownerID string) ([]core.Account, error) {
	return s.list(ctx, ownerID, false)
}

func (s *AccountStore) ListArchived(ctx context.Context, ownerID string) ([]core.Account, error) {
	return s.list(ctx, ownerID, true)
}

func (s *AccountStore) list(ctx context.Context, ownerID string, archived bool) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts
		 WHERE owner_id = ? AND is_archived = ? ORDER BY name`, ownerID, archived)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a                    core.Account
		balance              string
		availableCredit      sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &balance, &a.AccountType,
		&a.IsArchived, &a.SumsToMonthlyBudget, &availableCredit,
		&a.Color, &a.Icon, &createdAt, &updatedAt)
	if err != nil {
		return core.Account{}, err
	}
	if a.CurrentBalance, err = parseDecimal(balance); err != nil {
		return core.Account{}, err
	}
	if a.AvailableCredit, err = parseNullDecimal(availableCredit); err != nil {
		return core.Account{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Account{}, err
	}
	return a, nil
}
