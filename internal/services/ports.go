package services

import (
	"context"

	"bilancio/internal/core"
)

// Per-entity store contracts consumed by the services. Every read and write
// is scoped by (id, ownerID); stores return core.ErrNotFound (wrapped) when
// an entity does not exist for that owner. Implemented by internal/storage
// (SQLite) and internal/storage/memstore (in-memory, tests).

type AccountStore interface {
	GetByID(ctx context.Context, id, ownerID string) (core.Account, error)
	Create(ctx context.Context, a core.Account) (core.Account, error)
	Update(ctx context.Context, a core.Account) (core.Account, error)
	Delete(ctx context.Context, id, ownerID string) error
	// ListActive returns the owner's non-archived accounts.
	ListActive(ctx context.Context, ownerID string) ([]core.Account, error)
	ListArchived(ctx context.Context, ownerID string) ([]core.Account, error)
}

type TransactionStore interface {
	GetByID(ctx context.Context, id, ownerID string) (core.Transaction, error)
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Update(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, id, ownerID string) error
	// ListByMonth returns the owner's transactions for a "YYYY-MM" bucket.
	ListByMonth(ctx context.Context, ownerID, yearMonth string) ([]core.Transaction, error)
	// ListRecent returns the owner's latest transactions in a month,
	// newest first, capped at limit.
	ListRecent(ctx context.Context, ownerID, yearMonth string, limit int) ([]core.Transaction, error)
}

type MonthlyTransactionStore interface {
	GetByID(ctx context.Context, id, ownerID string) (core.MonthlyTransaction, error)
	Create(ctx context.Context, m core.MonthlyTransaction) (core.MonthlyTransaction, error)
	Update(ctx context.Context, m core.MonthlyTransaction) (core.MonthlyTransaction, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListAll(ctx context.Context, ownerID string) ([]core.MonthlyTransaction, error)
	// ListOwners returns every owner that has at least one template, for
	// the recurring posting worker.
	ListOwners(ctx context.Context) ([]string, error)
}

type SavingStore interface {
	GetByID(ctx context.Context, id, ownerID string) (core.Saving, error)
	Create(ctx context.Context, s core.Saving) (core.Saving, error)
	Update(ctx context.Context, s core.Saving) (core.Saving, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListAll(ctx context.Context, ownerID string) ([]core.Saving, error)
}

type PlannedExpenseStore interface {
	GetByID(ctx context.Context, id, ownerID string) (core.PlannedExpense, error)
	Create(ctx context.Context, p core.PlannedExpense) (core.PlannedExpense, error)
	Update(ctx context.Context, p core.PlannedExpense) (core.PlannedExpense, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListAll(ctx context.Context, ownerID string) ([]core.PlannedExpense, error)
}

type CategoryStore interface {
	GetByID(ctx context.Context, id, ownerID string) (core.Category, error)
	Create(ctx context.Context, c core.Category) (core.Category, error)
	Update(ctx context.Context, c core.Category) (core.Category, error)
	Delete(ctx context.Context, id, ownerID string) error
	ListAll(ctx context.Context, ownerID string) ([]core.Category, error)
}

// EventPublisher feeds the async export pipeline. Publishing is best-effort:
// the lifecycle manager logs failures and never fails the request over them.
type EventPublisher interface {
	PublishTransactionSync(ctx context.Context, id, ownerID string) error
	PublishTransactionDelete(ctx context.Context, id, ownerID string) error
}
