package services

import (
	"errors"

	"bilancio/internal/core"
)

// Validation failures surfaced to the API layer as client errors. The
// referential-integrity case (ErrAccountGone) is kept separate: it means a
// historical transaction references an account that no longer exists, which
// the user must resolve before the transaction can be touched.
var (
	ErrAccountArchived        = errors.New("account is archived")
	ErrTransferAccountMissing = errors.New("transfer requires both a source and a destination account")
	ErrTransferSameAccount    = errors.New("cannot transfer to the same account")
	ErrMonthlyCreatedApplied  = errors.New("monthly transactions must be created with isApplied=false")
	ErrUnapplyForbidden       = errors.New("cannot change isApplied from true to false")
	ErrTypeChangeApplied      = errors.New("cannot change transaction type while applied")
	ErrTransferChangeApplied  = errors.New("cannot change to or from transfer while applied")

	ErrAccountGone = errors.New("original account no longer exists")
)

var validationErrs = []error{
	ErrAccountArchived,
	ErrTransferAccountMissing,
	ErrTransferSameAccount,
	ErrMonthlyCreatedApplied,
	ErrUnapplyForbidden,
	ErrTypeChangeApplied,
	ErrTransferChangeApplied,
	core.ErrInvalidAmount,
	core.ErrUnknownType,
	core.ErrInvalidDay,
	core.ErrEmptyOwner,
}

// IsValidation reports whether err is one of the validation sentinels.
func IsValidation(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}
