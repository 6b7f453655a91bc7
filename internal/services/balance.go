package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

// BalanceService applies and reverses a transaction's monetary effect on the
// accounts it touches. Apply and Reverse are exact inverses of each other.
//
// A transfer mutates two accounts in sequence; there is no cross-account
// transaction primitive underneath, so a failure between the two writes
// leaves the pair inconsistent. Callers own that risk (see DESIGN.md).
type BalanceService struct {
	accounts AccountStore
}

func NewBalanceService(accounts AccountStore) *BalanceService {
	return &BalanceService{accounts: accounts}
}

// Apply applies the transaction's effect: expenses debit, incomes credit,
// transfers debit the source and credit the destination.
func (s *BalanceService) Apply(ctx context.Context, tx core.Transaction, ownerID string) error {
	slog.InfoContext(ctx, "Applying transaction to balance",
		log.FieldTransactionID, tx.ID, "type", tx.Type, log.FieldOwnerID, ownerID)

	switch {
	case tx.Type.IsExpense():
		return s.debit(ctx, tx.AccountID, tx.Amount, ownerID)
	case tx.Type.IsIncome():
		return s.credit(ctx, tx.AccountID, tx.Amount, ownerID)
	case tx.Type == core.Transfer:
		from, to, err := transferEndpoints(tx)
		if err != nil {
			return err
		}
		if err := s.debit(ctx, from, tx.Amount, ownerID); err != nil {
			return fmt.Errorf("transfer %s source: %w", tx.ID, err)
		}
		if err := s.credit(ctx, to, tx.Amount, ownerID); err != nil {
			return fmt.Errorf("transfer %s destination: %w", tx.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("transaction %s: %w: %s", tx.ID, core.ErrUnknownType, tx.Type)
	}
}

// Reverse undoes Apply: expenses credit back, incomes debit back, transfers
// credit the source and debit the destination.
func (s *BalanceService) Reverse(ctx context.Context, tx core.Transaction, ownerID string) error {
	slog.InfoContext(ctx, "Reversing transaction from balance",
		log.FieldTransactionID, tx.ID, "type", tx.Type, log.FieldOwnerID, ownerID)

	switch {
	case tx.Type.IsExpense():
		return s.credit(ctx, tx.AccountID, tx.Amount, ownerID)
	case tx.Type.IsIncome():
		return s.debit(ctx, tx.AccountID, tx.Amount, ownerID)
	case tx.Type == core.Transfer:
		from, to, err := transferEndpoints(tx)
		if err != nil {
			return err
		}
		if err := s.credit(ctx, from, tx.Amount, ownerID); err != nil {
			return fmt.Errorf("transfer %s source: %w", tx.ID, err)
		}
		if err := s.debit(ctx, to, tx.Amount, ownerID); err != nil {
			return fmt.Errorf("transfer %s destination: %w", tx.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("transaction %s: %w: %s", tx.ID, core.ErrUnknownType, tx.Type)
	}
}

// transferEndpoints extracts and sanity-checks the account pair of a
// transfer. Missing or equal endpoints are configuration errors: they should
// have been rejected at validation time.
func transferEndpoints(tx core.Transaction) (from, to string, err error) {
	if tx.FromAccountID == "" || tx.ToAccountID == "" {
		return "", "", fmt.Errorf("transfer %s: %w", tx.ID, ErrTransferAccountMissing)
	}
	if tx.FromAccountID == tx.ToAccountID {
		return "", "", fmt.Errorf("transfer %s: %w", tx.ID, ErrTransferSameAccount)
	}
	return tx.FromAccountID, tx.ToAccountID, nil
}

func (s *BalanceService) credit(ctx context.Context, accountID string, amount decimal.Decimal, ownerID string) error {
	return s.adjust(ctx, accountID, amount, ownerID)
}

func (s *BalanceService) debit(ctx context.Context, accountID string, amount decimal.Decimal, ownerID string) error {
	return s.adjust(ctx, accountID, amount.Neg(), ownerID)
}

func (s *BalanceService) adjust(ctx context.Context, accountID string, delta decimal.Decimal, ownerID string) error {
	account, err := s.accounts.GetByID(ctx, accountID, ownerID)
	if err != nil {
		// The account was validated when the transaction was posted, so a
		// missing row here is a referential-integrity failure, not a bad id.
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("account %s: %w", accountID, ErrAccountGone)
		}
		return fmt.Errorf("account %s: %w", accountID, err)
	}

	oldBalance := account.CurrentBalance
	account.CurrentBalance = account.CurrentBalance.Add(delta)
	account.UpdatedAt = time.Now().UTC()

	if _, err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("update account %s balance: %w", accountID, err)
	}

	slog.InfoContext(ctx, "Adjusted account balance",
		log.FieldAccountID, accountID,
		"delta", delta.String(),
		"old_balance", oldBalance.String(),
		"new_balance", account.CurrentBalance.String())

	return nil
}
