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

type PlannedExpenseStore struct {
	db *sql.DB
}

var _ services.PlannedExpenseStore = (*PlannedExpenseStore)(nil)

const plannedColumns = `id, owner_id, name, date, is_recurring, total_amount,
	category_id, category_name, subcategory, created_at, updated_at`

func (s *PlannedExpenseStore) GetByID(ctx context.Context, id, ownerID string) (core.PlannedExpense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+plannedColumns+` FROM planned_expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	p, err := scanPlanned(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PlannedExpense{}, fmt.Errorf("planned expense %s: %w", id, core.ErrNotFound)
	}
	return p, err
}

func (s *PlannedExpenseStore) Create(ctx context.Context, p core.PlannedExpense) (core.PlannedExpense, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO planned_expenses (`+plannedColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OwnerID, p.Name, nullTimeColumn(p.Date), p.IsRecurring,
		decimalColumn(p.TotalAmount), p.CategoryID, p.CategoryName, p.Subcategory,
		timeColumn(p.CreatedAt), timeColumn(p.UpdatedAt))
	if err != nil {
		return core.PlannedExpense{}, fmt.Errorf("insert planned expense: %w", err)
	}
	return p, nil
}

func (s *PlannedExpenseStore) Update(ctx context.Context, p core.PlannedExpense) (core.PlannedExpense, error) {
	p.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE planned_expenses SET name = ?, date = ?, is_recurring = ?,
		 total_amount = ?, category_id = ?, category_name = ?, subcategory = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		p.Name, nullTimeColumn(p.Date), p.IsRecurring,
		decimalColumn(p.TotalAmount), p.CategoryID, p.CategoryName, p.Subcategory,
		timeColumn(p.UpdatedAt), p.ID, p.OwnerID)
	if err != nil {
		return core.PlannedExpense{}, fmt.Errorf("update planned expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.PlannedExpense{}, fmt.Errorf("planned expense %s: %w", p.ID, core.ErrNotFound)
	}
	return p, nil
}

func (s *PlannedExpenseStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM planned_expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete planned expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("planned expense %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *PlannedExpenseStore) ListAll(ctx context.Context, ownerID string) ([]core.PlannedExpense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plannedColumns+` FROM planned_expenses WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list planned expenses: %w", err)
	}
	defer rows.Close()

	var out []core.PlannedExpense
	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlanned(row rowScanner) (core.PlannedExpense, error) {
	var (
		p                    core.PlannedExpense
		date                 sql.NullString
		total                string
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &date, &p.IsRecurring,
		&total, &p.CategoryID, &p.CategoryName, &p.Subcategory, &createdAt, &updatedAt)
	if err != nil {
		return core.PlannedExpense{}, err
	}
	if p.Date, err = parseNullTime(date); err != nil {
		return core.PlannedExpense{}, err
	}
	if p.TotalAmount, err = parseDecimal(total); err != nil {
		return core.PlannedExpense{}, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.PlannedExpense{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.PlannedExpense{}, err
	}
	return p, nil
}
