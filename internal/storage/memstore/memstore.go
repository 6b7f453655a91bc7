// Package memstore is an in-memory implementation of the entity stores.
// It backs the service tests and the "memory" storage backend.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bilancio/internal/core"
)

// Store bundles one in-memory store per entity type. All stores are safe
// for concurrent use.
type Store struct {
	Accounts     *AccountStore
	Transactions *TransactionStore
	Monthly      *MonthlyTransactionStore
	Savings      *SavingStore
	Planned      *PlannedExpenseStore
	Categories   *CategoryStore
}

func New() *Store {
	return &Store{
		Accounts:     &AccountStore{items: map[string]core.Account{}},
		Transactions: &TransactionStore{items: map[string]core.Transaction{}},
		Monthly:      &MonthlyTransactionStore{items: map[string]core.MonthlyTransaction{}},
		Savings:      &SavingStore{items: map[string]core.Saving{}},
		Planned:      &PlannedExpenseStore{items: map[string]core.PlannedExpense{}},
		Categories:   &CategoryStore{items: map[string]core.Category{}},
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, core.ErrNotFound)
}

type AccountStore struct {
	mu    sync.RWMutex
	items map[string]core.Account
}

func (s *AccountStore) GetByID(_ context.Context, id, ownerID string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[id]
	if !ok || a.OwnerID != ownerID {
		return core.Account{}, notFound("account", id)
	}
	return a, nil
}

func (s *AccountStore) Create(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	s.items[a.ID] = a
	return a, nil
}

func (s *AccountStore) Update(_ context.Context, a core.Account) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[a.ID]
	if !ok || old.OwnerID != a.OwnerID {
		return core.Account{}, notFound("account", a.ID)
	}
	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = time.Now().UTC()
	s.items[a.ID] = a
	return a, nil
}

func (s *AccountStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok || a.OwnerID != ownerID {
		return notFound("account", id)
	}
	delete(s.items, id)
	return nil
}

func (s *AccountStore) ListActive(_ context.Context, ownerID string) ([]core.Account, error) {
	return s.list(ownerID, false), nil
}

func (s *AccountStore) ListArchived(_ context.Context, ownerID string) ([]core.Account, error) {
	return s.list(ownerID, true), nil
}

func (s *AccountStore) list(ownerID string, archived bool) []core.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Account
	for _, a := range s.items {
		if a.OwnerID == ownerID && a.IsArchived == archived {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type TransactionStore struct {
	mu    sync.RWMutex
	items map[string]core.Transaction
}

func (s *TransactionStore) GetByID(_ context.Context, id, ownerID string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, notFound("transaction", id)
	}
	return t, nil
}

func (s *TransactionStore) Create(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.items[t.ID] = t
	return t, nil
}

func (s *TransactionStore) Update(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[t.ID]
	if !ok || old.OwnerID != t.OwnerID {
		return core.Transaction{}, notFound("transaction", t.ID)
	}
	t.UpdatedAt = time.Now().UTC()
	s.items[t.ID] = t
	return t, nil
}

func (s *TransactionStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok || t.OwnerID != ownerID {
		return notFound("transaction", id)
	}
	delete(s.items, id)
	return nil
}

func (s *TransactionStore) ListByMonth(_ context.Context, ownerID, yearMonth string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.OwnerID == ownerID && t.YearMonth == yearMonth {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *TransactionStore) ListRecent(ctx context.Context, ownerID, yearMonth string, limit int) ([]core.Transaction, error) {
	all, err := s.ListByMonth(ctx, ownerID, yearMonth)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

type MonthlyTransactionStore struct {
	mu    sync.RWMutex
	items map[string]core.MonthlyTransaction
}

func (s *MonthlyTransactionStore) GetByID(_ context.Context, id, ownerID string) (core.MonthlyTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.items[id]
	if !ok || m.OwnerID != ownerID {
		return core.MonthlyTransaction{}, notFound("monthly transaction", id)
	}
	return m, nil
}

func (s *MonthlyTransactionStore) Create(_ context.Context, m core.MonthlyTransaction) (core.MonthlyTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	s.items[m.ID] = m
	return m, nil
}

func (s *MonthlyTransactionStore) Update(_ context.Context, m core.MonthlyTransaction) (core.MonthlyTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[m.ID]
	if !ok || old.OwnerID != m.OwnerID {
		return core.MonthlyTransaction{}, notFound("monthly transaction", m.ID)
	}
	m.CreatedAt = old.CreatedAt
	m.UpdatedAt = time.Now().UTC()
	s.items[m.ID] = m
	return m, nil
}

func (s *MonthlyTransactionStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.items[id]
	if !ok || m.OwnerID != ownerID {
		return notFound("monthly transaction", id)
	}
	delete(s.items, id)
	return nil
}

func (s *MonthlyTransactionStore) ListAll(_ context.Context, ownerID string) ([]core.MonthlyTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.MonthlyTransaction
	for _, m := range s.items {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayOfMonth < out[j].DayOfMonth })
	return out, nil
}

func (s *MonthlyTransactionStore) ListOwners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, m := range s.items {
		if !seen[m.OwnerID] {
			seen[m.OwnerID] = true
			out = append(out, m.OwnerID)
		}
	}
	sort.Strings(out)
	return out, nil
}

type SavingStore struct {
	mu    sync.RWMutex
	items map[string]core.Saving
}

func (s *SavingStore) GetByID(_ context.Context, id, ownerID string) (core.Saving, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sv, ok := s.items[id]
	if !ok || sv.OwnerID != ownerID {
		return core.Saving{}, notFound("saving", id)
	}
	return sv, nil
}

func (s *SavingStore) Create(_ context.Context, sv core.Saving) (core.Saving, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	sv.CreatedAt = now
	sv.UpdatedAt = now
	s.items[sv.ID] = sv
	return sv, nil
}

func (s *SavingStore) Update(_ context.Context, sv core.Saving) (core.Saving, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[sv.ID]
	if !ok || old.OwnerID != sv.OwnerID {
		return core.Saving{}, notFound("saving", sv.ID)
	}
	sv.CreatedAt = old.CreatedAt
	sv.UpdatedAt = time.Now().UTC()
	s.items[sv.ID] = sv
	return sv, nil
}

func (s *SavingStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.items[id]
	if !ok || sv.OwnerID != ownerID {
		return notFound("saving", id)
	}
	delete(s.items, id)
	return nil
}

func (s *SavingStore) ListAll(_ context.Context, ownerID string) ([]core.Saving, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Saving
	for _, sv := range s.items {
		if sv.OwnerID == ownerID {
			out = append(out, sv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type PlannedExpenseStore struct {
	mu    sync.RWMutex
	items map[string]core.PlannedExpense
}

func (s *PlannedExpenseStore) GetByID(_ context.Context, id, ownerID string) (core.PlannedExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok || p.OwnerID != ownerID {
		return core.PlannedExpense{}, notFound("planned expense", id)
	}
	return p, nil
}

func (s *PlannedExpenseStore) Create(_ context.Context, p core.PlannedExpense) (core.PlannedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.items[p.ID] = p
	return p, nil
}

func (s *PlannedExpenseStore) Update(_ context.Context, p core.PlannedExpense) (core.PlannedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[p.ID]
	if !ok || old.OwnerID != p.OwnerID {
		return core.PlannedExpense{}, notFound("planned expense", p.ID)
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.items[p.ID] = p
	return p, nil
}

func (s *PlannedExpenseStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok || p.OwnerID != ownerID {
		return notFound("planned expense", id)
	}
	delete(s.items, id)
	return nil
}

func (s *PlannedExpenseStore) ListAll(_ context.Context, ownerID string) ([]core.PlannedExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.PlannedExpense
	for _, p := range s.items {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type CategoryStore struct {
	mu    sync.RWMutex
	items map[string]core.Category
}

func (s *CategoryStore) GetByID(_ context.Context, id, ownerID string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, notFound("category", id)
	}
	return c, nil
}

func (s *CategoryStore) Create(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.items[c.ID] = c
	return c, nil
}

func (s *CategoryStore) Update(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[c.ID]
	if !ok || old.OwnerID != c.OwnerID {
		return core.Category{}, notFound("category", c.ID)
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	s.items[c.ID] = c
	return c, nil
}

func (s *CategoryStore) Delete(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok || c.OwnerID != ownerID {
		return notFound("category", id)
	}
	delete(s.items, id)
	return nil
}

func (s *CategoryStore) ListAll(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Category
	for _, c := range s.items {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
