package export

import (
	"context"

	"bilancio/internal/core"
)

// Ports for outbound ledger adapters.
type (
	// LedgerWriter mirrors transactions to an external ledger. Append returns
	// an adapter-specific row reference.
	LedgerWriter interface {
		Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// LedgerDeleter removes a previously mirrored transaction by its id.
	LedgerDeleter interface {
		Delete(ctx context.Context, transactionID string) error
	}
)
