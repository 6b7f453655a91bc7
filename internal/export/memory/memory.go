// Package memory is an in-memory ledger used in tests and local setups
// without Sheets credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/core"
	ports "bilancio/internal/export"
)

type Ledger struct {
	mu    sync.Mutex
	items []core.Transaction
}

var (
	_ ports.LedgerWriter  = (*Ledger)(nil)
	_ ports.LedgerDeleter = (*Ledger)(nil)
)

func New() *Ledger {
	return &Ledger{}
}

// Append stores the transaction and returns a synthetic row reference.
func (l *Ledger) Append(_ context.Context, t core.Transaction) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, t)
	return fmt.Sprintf("mem:%d", len(l.items)), nil
}

// Delete removes every stored row with the given transaction id.
func (l *Ledger) Delete(_ context.Context, transactionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	for _, t := range l.items {
		if t.ID != transactionID {
			kept = append(kept, t)
		}
	}
	l.items = kept
	return nil
}

// Items returns a copy of the stored rows.
func (l *Ledger) Items() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Transaction(nil), l.items...)
}
