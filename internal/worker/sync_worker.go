// Package worker consumes transaction events and mirrors them to the
// external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/export"
	"bilancio/internal/log"
	"bilancio/internal/services"
)

// SyncWorker handles the export feed: sync events fetch the transaction
// from storage and append it to the ledger, delete events remove the
// mirrored row.
type SyncWorker struct {
	transactions services.TransactionStore
	ledger       export.LedgerWriter
	deleter      export.LedgerDeleter
}

func NewSyncWorker(transactions services.TransactionStore, ledger export.LedgerWriter, deleter export.LedgerDeleter) *SyncWorker {
	return &SyncWorker{
		transactions: transactions,
		ledger:       ledger,
		deleter:      deleter,
	}
}

// HandleEvent processes one transaction event. Unknown operations are
// dropped with a warning so a bad message cannot wedge the queue.
func (w *SyncWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEvent) error {
	switch msg.Op {
	case amqp.OpSync:
		return w.handleSync(ctx, msg)
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg)
	default:
		slog.WarnContext(ctx, "Dropping event with unknown operation",
			"op", msg.Op, log.FieldTransactionID, msg.ID)
		return nil
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, msg *amqp.TransactionEvent) error {
	tx, err := w.transactions.GetByID(ctx, msg.ID, msg.OwnerID)
	if err != nil {
		// Deleted between publish and consume; the delete event follows.
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before sync, skipping",
				log.FieldTransactionID, msg.ID, log.FieldOwnerID, msg.OwnerID)
			return nil
		}
		return fmt.Errorf("get transaction %s: %w", msg.ID, err)
	}

	ref, err := w.ledger.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction %s to ledger: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored transaction to ledger",
		log.FieldTransactionID, tx.ID,
		log.FieldOwnerID, tx.OwnerID,
		"type", tx.Type,
		log.FieldLedgerRef, ref)

	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.TransactionEvent) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No ledger deleter configured, skipping delete",
			log.FieldTransactionID, msg.ID)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.ID); err != nil {
		return fmt.Errorf("delete transaction %s from ledger: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Removed transaction from ledger",
		log.FieldTransactionID, msg.ID, log.FieldOwnerID, msg.OwnerID)

	return nil
}
