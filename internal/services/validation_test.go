package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

func TestValidationService_ValidateAccountExists(t *testing.T) {
	env := newTestEnv(t)
	env.addAccount(t, "acc-1", "Checking", 100)

	env.store.Accounts.Create(context.Background(), core.Account{
		ID: "acc-2", OwnerID: testOwner, Name: "Old", IsArchived: true,
		CurrentBalance: decimal.Zero,
	})

	tests := []struct {
		name      string
		accountID string
		wantErr   error
	}{
		{name: "exists and active", accountID: "acc-1", wantErr: nil},
		{name: "archived rejected", accountID: "acc-2", wantErr: ErrAccountArchived},
		{name: "missing", accountID: "acc-404", wantErr: core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.validator.ValidateAccountExists(context.Background(), tt.accountID, testOwner)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateAccountExists() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAccountExists() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationService_ValidateAccountForReversal(t *testing.T) {
	env := newTestEnv(t)
	env.store.Accounts.Create(context.Background(), core.Account{
		ID: "acc-1", OwnerID: testOwner, Name: "Old", IsArchived: true,
		CurrentBalance: decimal.Zero,
	})

	t.Run("archived account tolerated", func(t *testing.T) {
		if err := env.validator.ValidateAccountForReversal(context.Background(), "acc-1", testOwner); err != nil {
			t.Errorf("ValidateAccountForReversal() error = %v, want nil", err)
		}
	})

	t.Run("missing account is integrity failure", func(t *testing.T) {
		err := env.validator.ValidateAccountForReversal(context.Background(), "acc-404", testOwner)
		if !errors.Is(err, ErrAccountGone) {
			t.Errorf("ValidateAccountForReversal() error = %v, want %v", err, ErrAccountGone)
		}
	})
}

func TestValidationService_ValidateTransferRules(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		from    string
		to      string
		wantErr error
	}{
		{name: "valid pair", from: "a", to: "b", wantErr: nil},
		{name: "missing from", from: "", to: "b", wantErr: ErrTransferAccountMissing},
		{name: "missing to", from: "a", to: "", wantErr: ErrTransferAccountMissing},
		{name: "equal endpoints", from: "a", to: "a", wantErr: ErrTransferSameAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.validator.ValidateTransferRules(tt.from, tt.to)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateTransferRules() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateTransferRules() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationService_ValidateMonthlyRules(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		txType    core.TransactionType
		isApplied bool
		wantErr   error
	}{
		{name: "monthly expense pending", txType: core.MonthlyExpense, isApplied: false, wantErr: nil},
		{name: "monthly expense applied", txType: core.MonthlyExpense, isApplied: true, wantErr: ErrMonthlyCreatedApplied},
		{name: "monthly income applied", txType: core.MonthlyIncome, isApplied: true, wantErr: ErrMonthlyCreatedApplied},
		{name: "plain expense applied", txType: core.Expense, isApplied: true, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.validator.ValidateMonthlyRules(tt.txType, tt.isApplied)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMonthlyRules() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMonthlyRules() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrTransferSameAccount) {
		t.Error("IsValidation(ErrTransferSameAccount) = false, want true")
	}
	if IsValidation(core.ErrNotFound) {
		t.Error("IsValidation(core.ErrNotFound) = true, want false")
	}
	if IsValidation(ErrAccountGone) {
		t.Error("IsValidation(ErrAccountGone) = true, want false")
	}
}
