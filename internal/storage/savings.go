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

type SavingStore struct {
	db *sql.DB
}

var _ services.SavingStore = (*SavingStore)(nil)

const savingColumns = `id, owner_id, name, icon, color, goal_amount, saved_amount,
	amount_per_month, created_at, updated_at`

func (s *SavingStore) GetByID(ctx context.Context, id, ownerID string) (core.Saving, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+savingColumns+` FROM savings WHERE id = ? AND owner_id = ?`, id, ownerID)
	sv, err := scanSaving(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Saving{}, fmt.Errorf("saving %s: %w", id, core.ErrNotFound)
	}
	return sv, err
}

func (s *SavingStore) Create(ctx context.Context, sv core.Saving) (core.Saving, error) {
	now := time.Now().UTC()
	sv.CreatedAt = now
	sv.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO savings (`+savingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.OwnerID, sv.Name, sv.Icon, sv.Color,
		decimalColumn(sv.GoalAmount), decimalColumn(sv.SavedAmount),
		decimalColumn(sv.AmountPerMonth), timeColumn(sv.CreatedAt), timeColumn(sv.UpdatedAt))
	if err != nil {
		return core.Saving{}, fmt.Errorf("insert saving: %w", err)
	}
	return sv, nil
}

func (s *SavingStore) Update(ctx context.Context, sv core.Saving) (core.Saving, error) {
	sv.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE savings SET name = ?, icon = ?, color = ?, goal_amount = ?,
		 saved_amount = ?, amount_per_month = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		sv.Name, sv.Icon, sv.Color, decimalColumn(sv.GoalAmount),
		decimalColumn(sv.SavedAmount), decimalColumn(sv.AmountPerMonth), timeColumn(sv.UpdatedAt),
		sv.ID, sv.OwnerID)
	if err != nil {
		return core.Saving{}, fmt.Errorf("update saving: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Saving{}, fmt.Errorf("saving %s: %w", sv.ID, core.ErrNotFound)
	}
	return sv, nil
}

func (s *SavingStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM savings WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete saving: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("saving %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *SavingStore) ListAll(ctx context.Context, ownerID string) ([]core.Saving, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+savingColumns+` FROM savings WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.Saving
	for rows.Next() {
		sv, err := scanSaving(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func scanSaving(row rowScanner) (core.Saving, error) {
	var (
		sv                   core.Saving
		goal, saved, monthly string
		createdAt, updatedAt string
	)
	err := row.Scan(&sv.ID, &sv.OwnerID, &sv.Name, &sv.Icon, &sv.Color,
		&goal, &saved, &monthly, &createdAt, &updatedAt)
	if err != nil {
		return core.Saving{}, err
	}
	if sv.GoalAmount, err = parseDecimal(goal); err != nil {
		return core.Saving{}, err
	}
	if sv.SavedAmount, err = parseDecimal(saved); err != nil {
		return core.Saving{}, err
	}
	if sv.AmountPerMonth, err = parseDecimal(monthly); err != nil {
		return core.Saving{}, err
	}
	if sv.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Saving{}, err
	}
	if sv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Saving{}, err
	}
	return sv, nil
}
