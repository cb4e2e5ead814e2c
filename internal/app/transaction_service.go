/**
 * @description
 * This file contains the transaction ledger: validation and application of
 * balance-use and balance-cancel operations, persistence of the resulting
 * audit records, and point-in-time transaction queries.
 *
 * Every operation attempt — successful or rejected — ends as exactly one
 * Transaction row carrying the account's balance snapshot at that moment.
 * The failure-recording methods exist for the guard (and ultimately the
 * transport layer) to invoke when validation rejects an attempt, so the
 * audit trail never silently drops a rejection.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/rabbitmq: Best-effort event publication after each persisted record.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zerobank/account-service/internal/domain"
	"github.com/zerobank/account-service/internal/store"
	"github.com/zerobank/account-service/pkg/rabbitmq"
)

// cancelWindow is how long after the original transaction a cancel is still
// accepted.
const cancelWindow = 365 * 24 * time.Hour

// TransactionService provides the balance transaction ledger. Its mutating
// methods assume the caller already holds the per-account lock; see
// GuardedTransactionService.
type TransactionService struct {
	repo   store.Repository
	events rabbitmq.Publisher
	now    func() time.Time
}

// NewTransactionService creates a new transaction ledger. events may be nil
// when no broker is configured.
func NewTransactionService(repo store.Repository, events rabbitmq.Publisher) *TransactionService {
	return &TransactionService{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// UseBalance validates and applies a debit against the account, then persists
// a success record with the post-debit balance snapshot.
func (s *TransactionService) UseBalance(ctx context.Context, ownerID int64, accountNumber string, amount int64) (*domain.Transaction, error) {
	owner, err := s.repo.FindAccountUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if account.UserID != owner.ID {
		return nil, domain.ErrOwnershipMismatch
	}
	if account.Status != domain.StatusActive {
		return nil, domain.ErrAccountClosed
	}
	if err := account.Debit(amount); err != nil {
		return nil, err
	}

	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("save debited account %s: %w", accountNumber, err)
	}
	return s.persistTransaction(ctx, account, domain.TypeUse, domain.ResultSuccess, amount)
}

// RecordFailedUse writes the audit record for a rejected use attempt. The
// account balance is not mutated; the snapshot is the balance at failure time.
func (s *TransactionService) RecordFailedUse(ctx context.Context, accountNumber string, amount int64) error {
	return s.recordFailure(ctx, accountNumber, domain.TypeUse, amount)
}

// CancelBalance validates and applies an exact-amount reversal of a prior use
// transaction, then persists a success record with the post-credit snapshot.
func (s *TransactionService) CancelBalance(ctx context.Context, transactionToken, accountNumber string, amount int64) (*domain.Transaction, error) {
	original, err := s.repo.FindTransactionByToken(ctx, transactionToken)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if original.AccountID != account.ID {
		return nil, domain.ErrTransactionAccountMismatch
	}
	if original.Type != domain.TypeUse || original.Result != domain.ResultSuccess {
		return nil, domain.ErrNotCancelable
	}
	if original.Amount != amount {
		return nil, domain.ErrPartialCancelNotAllowed
	}
	if original.TransactedAt.Before(s.now().Add(-cancelWindow)) {
		return nil, domain.ErrCancelWindowExpired
	}

	if err := account.Credit(amount); err != nil {
		return nil, err
	}
	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("save credited account %s: %w", accountNumber, err)
	}
	return s.persistTransaction(ctx, account, domain.TypeCancel, domain.ResultSuccess, amount)
}

// RecordFailedCancel writes the audit record for a rejected cancel attempt.
func (s *TransactionService) RecordFailedCancel(ctx context.Context, accountNumber string, amount int64) error {
	return s.recordFailure(ctx, accountNumber, domain.TypeCancel, amount)
}

// QueryTransaction fetches a transaction by its opaque token. Pure read.
func (s *TransactionService) QueryTransaction(ctx context.Context, transactionToken string) (*domain.Transaction, error) {
	return s.repo.FindTransactionByToken(ctx, transactionToken)
}

func (s *TransactionService) recordFailure(ctx context.Context, accountNumber string, txType domain.TransactionType, amount int64) error {
	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	_, err = s.persistTransaction(ctx, account, txType, domain.ResultFailure, amount)
	return err
}

func (s *TransactionService) persistTransaction(ctx context.Context, account *domain.Account, txType domain.TransactionType, result domain.TransactionResult, amount int64) (*domain.Transaction, error) {
	record := &domain.Transaction{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		Type:            txType,
		Result:          result,
		Amount:          amount,
		BalanceSnapshot: account.Balance,
		TransactionID:   domain.NewTransactionToken(),
		TransactedAt:    s.now(),
	}
	if err := s.repo.CreateTransaction(ctx, record); err != nil {
		return nil, fmt.Errorf("persist %s/%s transaction for account %s: %w", txType, result, account.AccountNumber, err)
	}

	// Event publication is best-effort; the ledger row is the source of truth.
	if s.events != nil {
		event := rabbitmq.TransactionRecordedEvent{
			AccountNumber:   record.AccountNumber,
			TransactionID:   record.TransactionID,
			Type:            string(record.Type),
			Result:          string(record.Result),
			Amount:          record.Amount,
			BalanceSnapshot: record.BalanceSnapshot,
			TransactedAt:    record.TransactedAt,
		}
		if err := s.events.PublishTransactionRecorded(ctx, event); err != nil {
			log.Printf("level=warn component=transaction_ledger msg=\"event publish failed\" account_number=%s transaction_id=%s err=%v", record.AccountNumber, record.TransactionID, err)
		}
	}

	return record, nil
}
