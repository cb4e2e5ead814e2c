/**
 * @description
 * This file contains the account registry: creation, lookup and closure of
 * accounts. It enforces the per-owner account quota and the
 * zero-balance-before-closure rule, and owns account-number allocation.
 *
 * Key decisions:
 * - Account numbers are allocated as "highest existing number + 1" under a
 *   dedicated distributed lock, so two concurrent creations can never mint
 *   the same number even across process instances.
 * - Closure is guarded by the same per-account lock used for balance
 *   mutation, because it reads the balance to enforce the zero-balance rule
 *   and would otherwise race with concurrent debits.
 *
 * @dependencies
 * - context, fmt, strconv, time: Standard Go libraries.
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/redislock: Lock key derivation shared with the transaction guard.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/zerobank/account-service/internal/domain"
	"github.com/zerobank/account-service/internal/store"
	"github.com/zerobank/account-service/pkg/redislock"
)

const (
	// accountNumberSeqKey is the lock key serializing account-number
	// allocation system-wide.
	accountNumberSeqKey = "account:number-seq"

	// initialAccountNumber seeds the sequence when no accounts exist yet.
	initialAccountNumber int64 = 1_000_000_000

	// accountNumberWidth is the fixed width of the decimal account number.
	accountNumberWidth = 10
)

// AccountService provides account registry operations.
type AccountService struct {
	repo               store.Repository
	locker             Locker
	maxAccountsPerUser int
	now                func() time.Time
}

// NewAccountService creates a new account registry. maxAccountsPerUser values
// below 1 fall back to the reference quota of 10.
func NewAccountService(repo store.Repository, locker Locker, maxAccountsPerUser int) *AccountService {
	if maxAccountsPerUser < 1 {
		maxAccountsPerUser = 10
	}
	return &AccountService{
		repo:               repo,
		locker:             locker,
		maxAccountsPerUser: maxAccountsPerUser,
		now:                time.Now,
	}
}

// CreateAccount registers a new active account for the given owner with the
// given starting balance and returns it. The quota check and the number
// allocation run under the sequence lock so concurrent creations serialize.
func (s *AccountService) CreateAccount(ctx context.Context, ownerID int64, initialBalance int64) (*domain.Account, error) {
	if initialBalance < 0 {
		return nil, fmt.Errorf("%w: initial balance must not be negative", domain.ErrInvalidArgument)
	}

	owner, err := s.repo.FindAccountUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, accountNumberSeqKey)
	if err != nil {
		return nil, err
	}
	defer release()

	count, err := s.repo.CountAccountsByUserID(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("count accounts for user %d: %w", owner.ID, err)
	}
	if count >= s.maxAccountsPerUser {
		return nil, domain.ErrQuotaExceeded
	}

	number, err := s.nextAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		UserID:        owner.ID,
		AccountNumber: number,
		Status:        domain.StatusActive,
		Balance:       initialBalance,
		RegisteredAt:  s.now(),
	}
	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("save new account %s: %w", number, err)
	}

	log.Printf("level=info component=account_registry msg=\"account created\" user_id=%d account_number=%s balance=%d", owner.ID, number, initialBalance)
	return account, nil
}

// nextAccountNumber computes "highest existing number + 1" formatted to the
// fixed width, seeding from the initial number when the system is empty.
// Callers must hold the sequence lock.
func (s *AccountService) nextAccountNumber(ctx context.Context) (string, error) {
	latest, err := s.repo.FindLatestAccountNumber(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return fmt.Sprintf("%0*d", accountNumberWidth, initialAccountNumber), nil
		}
		return "", fmt.Errorf("find latest account number: %w", err)
	}

	n, err := strconv.ParseInt(latest, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed account number %q in store: %w", latest, err)
	}
	return fmt.Sprintf("%0*d", accountNumberWidth, n+1), nil
}

// CloseAccount transitions an account to closed. It runs under the
// per-account lock so the balance it validates cannot be debited concurrently.
func (s *AccountService) CloseAccount(ctx context.Context, ownerID int64, accountNumber string) (*domain.Account, error) {
	owner, err := s.repo.FindAccountUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, redislock.LockKey(accountNumber))
	if err != nil {
		return nil, err
	}
	defer release()

	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account.UserID != owner.ID {
		return nil, domain.ErrOwnershipMismatch
	}
	if account.Status == domain.StatusClosed {
		return nil, domain.ErrAlreadyClosed
	}
	if account.Balance != 0 {
		return nil, domain.ErrBalanceNotEmpty
	}

	account.Close(s.now())
	if err := s.repo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("save closed account %s: %w", accountNumber, err)
	}

	log.Printf("level=info component=account_registry msg=\"account closed\" user_id=%d account_number=%s", owner.ID, accountNumber)
	return account, nil
}

// ListAccounts returns (account number, balance) pairs for all accounts owned
// by the given user.
func (s *AccountService) ListAccounts(ctx context.Context, ownerID int64) ([]domain.AccountSummary, error) {
	owner, err := s.repo.FindAccountUserByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	accounts, err := s.repo.FindAccountsByUserID(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list accounts for user %d: %w", owner.ID, err)
	}

	summaries := make([]domain.AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, domain.AccountSummary{
			AccountNumber: account.AccountNumber,
			Balance:       account.Balance,
		})
	}
	return summaries, nil
}

// GetAccount fetches an account by internal id.
func (s *AccountService) GetAccount(ctx context.Context, accountID int64) (*domain.Account, error) {
	if accountID < 0 {
		return nil, fmt.Errorf("%w: account id must not be negative", domain.ErrInvalidArgument)
	}
	return s.repo.FindAccountByID(ctx, accountID)
}
