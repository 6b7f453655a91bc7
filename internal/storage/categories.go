package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/services"
)

type CategoryStore struct {
	db *sql.DB
}

var _ services.CategoryStore = (*CategoryStore)(nil)

const categoryColumns = `id, owner_id, name, category_type, icon, color,
	subcategories, created_at, updated_at`

func (s *CategoryStore) GetByID(ctx context.Context, id, ownerID string) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return c, err
}

func (s *CategoryStore) Create(ctx context.Context, c core.Category) (core.Category, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	subs, err := subcategoriesColumn(c.Subcategories)
	if err != nil {
		return core.Category{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.CategoryType, c.Icon, c.Color,
		subs, timeColumn(c.CreatedAt), timeColumn(c.UpdatedAt))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) Update(ctx context.Context, c core.Category) (core.Category, error) {
	c.UpdatedAt = time.Now().UTC()

	subs, err := subcategoriesColumn(c.Subcategories)
	if err != nil {
		return core.Category{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, category_type = ?, icon = ?, color = ?,
		 subcategories = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		c.Name, c.CategoryType, c.Icon, c.Color,
		subs, timeColumn(c.UpdatedAt), c.ID, c.OwnerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", c.ID, core.ErrNotFound)
	}
	return c, nil
}

func (s *CategoryStore) Delete(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *CategoryStore) ListAll(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// subcategoriesColumn stores the subcategory list as a JSON array.
func subcategoriesColumn(subs []string) (string, error) {
	if subs == nil {
		subs = []string{}
	}
	b, err := json.Marshal(subs)
	if err != nil {
		return "", fmt.Errorf("marshal subcategories: %w", err)
	}
	return string(b), nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c                    core.Category
		subs                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.CategoryType, &c.Icon, &c.Color,
		&subs, &createdAt, &updatedAt)
	if err != nil {
		return core.Category{}, err
	}
	if err := json.Unmarshal([]byte(subs), &c.Subcategories); err != nil {
		return core.Category{}, fmt.Errorf("unmarshal subcategories: %w", err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Category{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Category{}, err
	}
	return c, nil
}
