/**
 * @description
 * This file contains the operation guard: the cross-cutting decorator that
 * serializes balance-mutating calls per account number. It acquires the
 * distributed lock before invoking the ledger and releases it on every exit
 * path, so at most one use/cancel operation per account number is in flight
 * system-wide at any instant.
 *
 * When the wrapped operation is rejected by validation, the guard invokes the
 * ledger's failure-recording path while still holding the lock, so the audit
 * record observes the same balance the validation saw.
 *
 * @dependencies
 * - context, log: Standard Go libraries.
 * - internal/domain: Error classification.
 * - pkg/redislock: Lock key derivation.
 */

package app

import (
	"context"
	"log"

	"github.com/zerobank/account-service/internal/domain"
	"github.com/zerobank/account-service/pkg/redislock"
)

// GuardedTransactionService wraps the transaction ledger with per-account
// mutual exclusion. Callers that need the serialization guarantee must go
// through this type, never the ledger directly.
type GuardedTransactionService struct {
	ledger *TransactionService
	locker Locker
}

// NewGuardedTransactionService decorates the ledger with the given locker.
func NewGuardedTransactionService(ledger *TransactionService, locker Locker) *GuardedTransactionService {
	return &GuardedTransactionService{ledger: ledger, locker: locker}
}

// UseBalance runs the use-balance operation under the account's lock. A
// rejected attempt is recorded as a failure transaction before the lock is
// released. Lock contention surfaces as domain.ErrAccountBusy and the
// operation is never invoked.
func (g *GuardedTransactionService) UseBalance(ctx context.Context, ownerID int64, accountNumber string, amount int64) (*domain.Transaction, error) {
	release, err := g.locker.Acquire(ctx, redislock.LockKey(accountNumber))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := g.ledger.UseBalance(ctx, ownerID, accountNumber, amount)
	if err != nil {
		g.recordFailure(ctx, accountNumber, amount, err, g.ledger.RecordFailedUse)
		return nil, err
	}
	return tx, nil
}

// CancelBalance runs the cancel-balance operation under the account's lock,
// with the same failure-recording and contention behavior as UseBalance.
func (g *GuardedTransactionService) CancelBalance(ctx context.Context, transactionToken, accountNumber string, amount int64) (*domain.Transaction, error) {
	release, err := g.locker.Acquire(ctx, redislock.LockKey(accountNumber))
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := g.ledger.CancelBalance(ctx, transactionToken, accountNumber, amount)
	if err != nil {
		g.recordFailure(ctx, accountNumber, amount, err, g.ledger.RecordFailedCancel)
		return nil, err
	}
	return tx, nil
}

// QueryTransaction is a pure read and needs no lock; it passes through.
func (g *GuardedTransactionService) QueryTransaction(ctx context.Context, transactionToken string) (*domain.Transaction, error) {
	return g.ledger.QueryTransaction(ctx, transactionToken)
}

// recordFailure writes the failure audit record for validation rejections.
// Unexpected errors (store outages and the like) are not recorded: there is
// no meaningful snapshot to attach and the attempt did not pass validation.
func (g *GuardedTransactionService) recordFailure(ctx context.Context, accountNumber string, amount int64, cause error, record func(context.Context, string, int64) error) {
	if !domain.IsValidationError(cause) {
		return
	}
	if err := record(ctx, accountNumber, amount); err != nil {
		log.Printf("level=error component=operation_guard msg=\"failure record not persisted\" account_number=%s amount=%d cause=%v err=%v", accountNumber, amount, cause, err)
	}
}
