/**
 * @description
 * This file defines the closed set of domain errors for the account-service.
 * Every recoverable failure the core can produce is one of these sentinels,
 * so callers branch with `errors.Is` instead of matching on strings or codes.
 * The HTTP layer maps each sentinel to a status; anything outside this set is
 * treated as an internal failure.
 */

package domain

import "errors"

var (
	// Referenced entity absent.
	ErrOwnerNotFound       = errors.New("account owner not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Cross-entity consistency violated.
	ErrOwnershipMismatch          = errors.New("account is not owned by the requesting user")
	ErrTransactionAccountMismatch = errors.New("transaction does not belong to the given account")

	// Registry preconditions.
	ErrQuotaExceeded   = errors.New("maximum number of accounts per user reached")
	ErrAlreadyClosed   = errors.New("account is already closed")
	ErrBalanceNotEmpty = errors.New("account balance must be zero before closure")

	// Ledger preconditions.
	ErrAccountClosed           = errors.New("account is closed")
	ErrInsufficientBalance     = errors.New("amount exceeds account balance")
	ErrPartialCancelNotAllowed = errors.New("cancel amount must equal the original transaction amount")
	ErrCancelWindowExpired     = errors.New("transaction is too old to cancel")
	ErrNotCancelable           = errors.New("only successful use transactions can be canceled")
	ErrInvalidAmount           = errors.New("amount is invalid")

	// Lock contention and malformed input.
	ErrAccountBusy     = errors.New("account is processing another transaction")
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsValidationError reports whether err is one of the balance-operation
// validation failures that must still leave an audit record. Lock contention
// and lookup-by-number failures are excluded: a busy account was never
// admitted, and without a resolvable account there is nothing to record
// against.
func IsValidationError(err error) bool {
	for _, candidate := range []error{
		ErrOwnerNotFound,
		ErrOwnershipMismatch,
		ErrTransactionAccountMismatch,
		ErrAccountClosed,
		ErrInsufficientBalance,
		ErrPartialCancelNotAllowed,
		ErrCancelWindowExpired,
		ErrNotCancelable,
		ErrInvalidAmount,
		ErrTransactionNotFound,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
