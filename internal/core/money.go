// Package core defines the budget domain: accounts, transactions, the
// recurring/saving/planned templates, and the amount handling shared by the
// services and the storage layer.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a monetary amount from user input. It accepts both dot
// (12.34) and comma (12,34) decimal separators and requires a strictly
// positive value: transaction amounts are unsigned, the sign comes from the
// transaction type.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SignedAmount returns the transaction amount signed by its type: positive
// for income classes, negative for expense classes, zero for transfers
// (a transfer moves money between owned accounts and nets to zero).
func (t Transaction) SignedAmount() decimal.Decimal {
	switch {
	case t.Type.IsIncome():
		return t.Amount
	case t.Type.IsExpense():
		return t.Amount.Neg()
	default:
		return decimal.Zero
	}
}
