package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// ValidationService enforces the account and transaction-type rules checked
// before a transaction touches the store or a balance. All checks are
// read-only.
type ValidationService struct {
	accounts AccountStore
}

func NewValidationService(accounts AccountStore) *ValidationService {
	return &ValidationService{accounts: accounts}
}

// ValidateAccountExists is the strict check used for accounts receiving new
// activity: the account must exist and must not be archived.
func (v *ValidationService) ValidateAccountExists(ctx context.Context, accountID, ownerID string) error {
	account, err := v.accounts.GetByID(ctx, accountID, ownerID)
	if err != nil {
		return fmt.Errorf("account %s: %w", accountID, err)
	}
	if account.IsArchived {
		return fmt.Errorf("account %s (%s): %w", account.Name, accountID, ErrAccountArchived)
	}
	return nil
}

// ValidateAccountForReversal is the lenient check used when reversing a
// historical transaction: archived accounts are allowed (the account may
// have been archived after the transaction was posted), but a missing
// account is a referential-integrity failure the user must resolve.
func (v *ValidationService) ValidateAccountForReversal(ctx context.Context, accountID, ownerID string) error {
	_, err := v.accounts.GetByID(ctx, accountID, ownerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.ErrorContext(ctx, "Account referenced by applied transaction is gone",
				log.FieldAccountID, accountID, log.FieldOwnerID, ownerID)
			return fmt.Errorf("account %s: %w", accountID, ErrAccountGone)
		}
		return fmt.Errorf("account %s: %w", accountID, err)
	}
	return nil
}

// ValidateTransferRules checks a transfer's endpoint pair: both required,
// and they must differ.
func (v *ValidationService) ValidateTransferRules(fromAccountID, toAccountID string) error {
	if fromAccountID == "" || toAccountID == "" {
		return ErrTransferAccountMissing
	}
	if fromAccountID == toAccountID {
		return ErrTransferSameAccount
	}
	return nil
}

// ValidateTransferAccounts runs the strict existence check on both transfer
// endpoints.
func (v *ValidationService) ValidateTransferAccounts(ctx context.Context, fromAccountID, toAccountID, ownerID string) error {
	if err := v.ValidateAccountExists(ctx, fromAccountID, ownerID); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := v.ValidateAccountExists(ctx, toAccountID, ownerID); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	return nil
}

// ValidateMonthlyRules forbids creating monthly transactions already
// applied: a monthly posting starts pending and becomes applied later via
// update.
func (v *ValidationService) ValidateMonthlyRules(transactionType core.TransactionType, isApplied bool) error {
	if transactionType.IsMonthly() && isApplied {
		return fmt.Errorf("%s: %w", transactionType, ErrMonthlyCreatedApplied)
	}
	return nil
}
