package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// TransactionService orchestrates the transaction lifecycle: validation,
// persistence and balance synchronization, in that order.
//
// The store and the balance writes are separate operations with no shared
// transaction: create persists the record before applying the balance, and
// update reverses the old effect before applying the new one. A crash
// between those steps leaves balances partially updated; there is no
// compensating rollback.
type TransactionService struct {
	transactions TransactionStore
	validator    *ValidationService
	balance      *BalanceService
	publisher    EventPublisher // optional
}

func NewTransactionService(
	transactions TransactionStore,
	validator *ValidationService,
	balance *BalanceService,
	publisher EventPublisher,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		validator:    validator,
		balance:      balance,
		publisher:    publisher,
	}
}

// Create validates, persists and (when applicable) applies a new
// transaction. Transfers always apply; other types only when IsApplied.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := s.checkBasics(tx); err != nil {
		return core.Transaction{}, err
	}

	if tx.Type == core.Transfer {
		if err := s.validator.ValidateTransferRules(tx.FromAccountID, tx.ToAccountID); err != nil {
			return core.Transaction{}, err
		}
		if err := s.validator.ValidateTransferAccounts(ctx, tx.FromAccountID, tx.ToAccountID, tx.OwnerID); err != nil {
			return core.Transaction{}, err
		}
	} else {
		if err := s.validator.ValidateAccountExists(ctx, tx.AccountID, tx.OwnerID); err != nil {
			return core.Transaction{}, err
		}
	}

	if err := s.validator.ValidateMonthlyRules(tx.Type, tx.IsApplied); err != nil {
		return core.Transaction{}, err
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	normalizeTransferFields(&tx)
	tx.IndexDate()

	created, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		log.FieldTransactionID, created.ID, "type", created.Type,
		log.FieldAmount, created.Amount.String(), log.FieldOwnerID, created.OwnerID)

	if created.AppliesToBalance() {
		if err := s.balance.Apply(ctx, created, created.OwnerID); err != nil {
			return core.Transaction{}, fmt.Errorf("apply balance for transaction %s: %w", created.ID, err)
		}
	}

	s.publishSync(ctx, created.ID, created.OwnerID)

	return created, nil
}

// Update replaces a transaction and reconciles balances: the old effect is
// reversed (if it applied), then the new one applied (if it applies).
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	old, err := s.transactions.GetByID(ctx, tx.ID, tx.OwnerID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", tx.ID, err)
	}

	if err := validateUpdateRules(old, tx); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkBasics(tx); err != nil {
		return core.Transaction{}, err
	}

	// Old accounts only need to exist if there is a balance to reverse;
	// archived ones are tolerated there.
	if old.AppliesToBalance() {
		if old.Type == core.Transfer {
			if err := s.validator.ValidateAccountForReversal(ctx, old.FromAccountID, tx.OwnerID); err != nil {
				return core.Transaction{}, err
			}
			if err := s.validator.ValidateAccountForReversal(ctx, old.ToAccountID, tx.OwnerID); err != nil {
				return core.Transaction{}, err
			}
		} else {
			if err := s.validator.ValidateAccountForReversal(ctx, old.AccountID, tx.OwnerID); err != nil {
				return core.Transaction{}, err
			}
		}
	}

	if tx.Type == core.Transfer {
		if err := s.validator.ValidateTransferRules(tx.FromAccountID, tx.ToAccountID); err != nil {
			return core.Transaction{}, err
		}
		if err := s.validator.ValidateTransferAccounts(ctx, tx.FromAccountID, tx.ToAccountID, tx.OwnerID); err != nil {
			return core.Transaction{}, err
		}
	} else {
		if err := s.validator.ValidateAccountExists(ctx, tx.AccountID, tx.OwnerID); err != nil {
			return core.Transaction{}, err
		}
	}

	tx.CreatedAt = old.CreatedAt
	normalizeTransferFields(&tx)
	tx.IndexDate()

	updated, err := s.transactions.Update(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Transaction updated",
		log.FieldTransactionID, updated.ID, "type", updated.Type, log.FieldOwnerID, updated.OwnerID)

	// Reverse-then-apply, two separate writes. A failure between them
	// leaves the old effect removed and the new one missing.
	if old.AppliesToBalance() {
		if err := s.balance.Reverse(ctx, old, tx.OwnerID); err != nil {
			return core.Transaction{}, fmt.Errorf("reverse old balance for transaction %s: %w", tx.ID, err)
		}
	}
	if updated.AppliesToBalance() {
		if err := s.balance.Apply(ctx, updated, tx.OwnerID); err != nil {
			return core.Transaction{}, fmt.Errorf("apply new balance for transaction %s: %w", tx.ID, err)
		}
	}

	s.publishSync(ctx, updated.ID, updated.OwnerID)

	return updated, nil
}

// Delete reverses the transaction's effect (if it applied) and removes the
// record. Deleting a transaction that does not exist is a no-op.
func (s *TransactionService) Delete(ctx context.Context, id, ownerID string) error {
	tx, err := s.transactions.GetByID(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction already gone, nothing to delete",
				log.FieldTransactionID, id, log.FieldOwnerID, ownerID)
			return nil
		}
		return fmt.Errorf("transaction %s: %w", id, err)
	}

	if tx.AppliesToBalance() {
		if err := s.balance.Reverse(ctx, tx, ownerID); err != nil {
			return fmt.Errorf("reverse balance for transaction %s: %w", id, err)
		}
	}

	if err := s.transactions.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id, "type", tx.Type, log.FieldOwnerID, ownerID)

	s.publishDelete(ctx, id, ownerID)

	return nil
}

func (s *TransactionService) checkBasics(tx core.Transaction) error {
	if tx.OwnerID == "" {
		return core.ErrEmptyOwner
	}
	if !tx.Type.Valid() {
		return fmt.Errorf("%w: %s", core.ErrUnknownType, tx.Type)
	}
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("transaction amount %s: %w", tx.Amount, core.ErrInvalidAmount)
	}
	return nil
}

// validateUpdateRules enforces the applied-state monotonicity: once a
// transaction is applied it cannot be un-applied, change type, or change
// transfer-ness. Delete and recreate instead.
func validateUpdateRules(old, next core.Transaction) error {
	if !old.IsApplied {
		return nil
	}
	if !next.IsApplied {
		return fmt.Errorf("transaction %s: %w", old.ID, ErrUnapplyForbidden)
	}
	if old.Type != next.Type {
		if (old.Type == core.Transfer) != (next.Type == core.Transfer) {
			return fmt.Errorf("transaction %s: %w", old.ID, ErrTransferChangeApplied)
		}
		return fmt.Errorf("transaction %s: %w", old.ID, ErrTypeChangeApplied)
	}
	return nil
}

// normalizeTransferFields blanks the transfer endpoint pair on non-transfer
// transactions so the optional fields stay present-iff-transfer.
func normalizeTransferFields(tx *core.Transaction) {
	if tx.Type != core.Transfer {
		tx.FromAccountID = ""
		tx.FromAccountName = ""
		tx.ToAccountID = ""
		tx.ToAccountName = ""
		tx.TransferID = ""
	}
}

func (s *TransactionService) publishSync(ctx context.Context, id, ownerID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionSync(ctx, id, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction sync message",
			log.FieldTransactionID, id, log.FieldError, err)
	}
}

func (s *TransactionService) publishDelete(ctx context.Context, id, ownerID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionDelete(ctx, id, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction delete message",
			log.FieldTransactionID, id, log.FieldError, err)
	}
}
