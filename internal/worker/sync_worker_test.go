package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/export/memory"
	"bilancio/internal/storage/memstore"
)

func TestSyncWorker_HandleSyncEvent(t *testing.T) {
	store := memstore.New()
	ledger := memory.New()
	w := NewSyncWorker(store.Transactions, ledger, ledger)
	ctx := context.Background()

	store.Transactions.Create(ctx, core.Transaction{
		ID: "tx-1", OwnerID: "owner-1", Type: core.Expense,
		Amount: decimal.NewFromInt(25),
	})

	msg := amqp.NewTransactionEvent(amqp.OpSync, "tx-1", "owner-1")
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	items := ledger.Items()
	if len(items) != 1 || items[0].ID != "tx-1" {
		t.Errorf("ledger = %+v, want one row for tx-1", items)
	}
}

func TestSyncWorker_HandleSyncMissingTransaction(t *testing.T) {
	store := memstore.New()
	ledger := memory.New()
	w := NewSyncWorker(store.Transactions, ledger, ledger)

	msg := amqp.NewTransactionEvent(amqp.OpSync, "tx-404", "owner-1")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Errorf("HandleEvent() for missing transaction = %v, want nil", err)
	}
	if len(ledger.Items()) != 0 {
		t.Error("ledger should stay empty for a missing transaction")
	}
}

func TestSyncWorker_HandleDeleteEvent(t *testing.T) {
	store := memstore.New()
	ledger := memory.New()
	w := NewSyncWorker(store.Transactions, ledger, ledger)
	ctx := context.Background()

	ledger.Append(ctx, core.Transaction{ID: "tx-1"})

	msg := amqp.NewTransactionEvent(amqp.OpDelete, "tx-1", "owner-1")
	if err := w.HandleEvent(ctx, msg); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(ledger.Items()) != 0 {
		t.Errorf("ledger = %+v, want empty after delete", ledger.Items())
	}
}

func TestSyncWorker_UnknownOpDropped(t *testing.T) {
	store := memstore.New()
	ledger := memory.New()
	w := NewSyncWorker(store.Transactions, ledger, ledger)

	msg := amqp.NewTransactionEvent("reindex", "tx-1", "owner-1")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Errorf("HandleEvent() for unknown op = %v, want nil", err)
	}
}

func TestSyncWorker_DeleteWithoutDeleter(t *testing.T) {
	store := memstore.New()
	ledger := memory.New()
	w := NewSyncWorker(store.Transactions, ledger, nil)

	msg := amqp.NewTransactionEvent(amqp.OpDelete, "tx-1", "owner-1")
	if err := w.HandleEvent(context.Background(), msg); err != nil {
		t.Errorf("HandleEvent() without deleter = %v, want nil", err)
	}
}
