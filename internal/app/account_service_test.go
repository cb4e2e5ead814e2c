package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/zerobank/account-service/internal/domain"
)

func TestCreateAccount_SeedsFirstAccountNumber(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")

	svc := NewAccountService(repo, noopLocker{}, 10)

	account, err := svc.CreateAccount(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if account.AccountNumber != "1000000000" {
		t.Fatalf("expected seeded account number 1000000000, got %q", account.AccountNumber)
	}
	if account.Status != domain.StatusActive {
		t.Fatalf("expected new account to be active, got %q", account.Status)
	}
	if account.Balance != 0 {
		t.Fatalf("expected balance 0, got %d", account.Balance)
	}
	if account.RegisteredAt.IsZero() {
		t.Fatal("expected registered_at to be set")
	}
}

func TestCreateAccount_AllocatesNextSequentialNumber(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	repo.addAccount(domain.Account{UserID: 1, AccountNumber: "1000000000", Status: domain.StatusActive})
	repo.addAccount(domain.Account{UserID: 1, AccountNumber: "1000000007", Status: domain.StatusActive})

	svc := NewAccountService(repo, noopLocker{}, 10)

	account, err := svc.CreateAccount(context.Background(), 1, 500)
	if err != nil {
		t.Fatalf("CreateAccount returned error: %v", err)
	}
	if account.AccountNumber != "1000000008" {
		t.Fatalf("expected next account number 1000000008, got %q", account.AccountNumber)
	}
	if account.Balance != 500 {
		t.Fatalf("expected balance 500, got %d", account.Balance)
	}
}

func TestCreateAccount_QuotaExceeded(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	for i := 0; i < 10; i++ {
		repo.addAccount(domain.Account{
			UserID:        1,
			AccountNumber: fmt.Sprintf("%010d", 1_000_000_000+i),
			Status:        domain.StatusActive,
		})
	}

	svc := NewAccountService(repo, noopLocker{}, 10)

	_, err := svc.CreateAccount(context.Background(), 1, 0)
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestCreateAccount_OwnerNotFound(t *testing.T) {
	svc := NewAccountService(newFakeRepo(), noopLocker{}, 10)

	_, err := svc.CreateAccount(context.Background(), 42, 0)
	if !errors.Is(err, domain.ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestCreateAccount_NegativeInitialBalance(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	svc := NewAccountService(repo, noopLocker{}, 10)

	_, err := svc.CreateAccount(context.Background(), 1, -1)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreateAccount_SequenceLockBusy(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	svc := NewAccountService(repo, busyLocker{}, 10)

	_, err := svc.CreateAccount(context.Background(), 1, 0)
	if !errors.Is(err, domain.ErrAccountBusy) {
		t.Fatalf("expected ErrAccountBusy, got %v", err)
	}
}

func TestCloseAccount_Succeeds(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	repo.addAccount(domain.Account{UserID: 1, AccountNumber: "1000000000", Status: domain.StatusActive, Balance: 0})

	locker := &recordingLocker{}
	svc := NewAccountService(repo, locker, 10)
	closedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return closedAt }

	account, err := svc.CloseAccount(context.Background(), 1, "1000000000")
	if err != nil {
		t.Fatalf("CloseAccount returned error: %v", err)
	}
	if account.Status != domain.StatusClosed {
		t.Fatalf("expected closed status, got %q", account.Status)
	}
	if account.UnregisteredAt == nil || !account.UnregisteredAt.Equal(closedAt) {
		t.Fatalf("expected unregistered_at %v, got %v", closedAt, account.UnregisteredAt)
	}
	if len(locker.acquired) != 1 || len(locker.released) != 1 {
		t.Fatalf("expected closure to run under the account lock, acquired=%d released=%d", len(locker.acquired), len(locker.released))
	}
}

func TestCloseAccount_Preconditions(t *testing.T) {
	closedAt := time.Now()
	tests := []struct {
		name    string
		account domain.Account
		ownerID int64
		wantErr error
	}{
		{
			name:    "ownership mismatch",
			account: domain.Account{UserID: 2, AccountNumber: "1000000000", Status: domain.StatusActive},
			ownerID: 1,
			wantErr: domain.ErrOwnershipMismatch,
		},
		{
			name:    "already closed",
			account: domain.Account{UserID: 1, AccountNumber: "1000000000", Status: domain.StatusClosed, UnregisteredAt: &closedAt},
			ownerID: 1,
			wantErr: domain.ErrAlreadyClosed,
		},
		{
			name:    "balance not empty",
			account: domain.Account{UserID: 1, AccountNumber: "1000000000", Status: domain.StatusActive, Balance: 100},
			ownerID: 1,
			wantErr: domain.ErrBalanceNotEmpty,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeRepo()
			repo.addUser(1, "kim")
			repo.addUser(2, "lee")
			repo.addAccount(tc.account)

			svc := NewAccountService(repo, noopLocker{}, 10)

			_, err := svc.CloseAccount(context.Background(), tc.ownerID, "1000000000")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCloseAccount_AccountNotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	svc := NewAccountService(repo, noopLocker{}, 10)

	_, err := svc.CloseAccount(context.Background(), 1, "9999999999")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestListAccounts_ReturnsNumberBalancePairs(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(1, "kim")
	repo.addAccount(domain.Account{UserID: 1, AccountNumber: "1000000000", Status: domain.StatusActive, Balance: 1000})
	repo.addAccount(domain.Account{UserID: 1, AccountNumber: "1000000001", Status: domain.StatusActive, Balance: 250})
	repo.addAccount(domain.Account{UserID: 2, AccountNumber: "1000000002", Status: domain.StatusActive, Balance: 9})
	repo.addUser(2, "lee")

	svc := NewAccountService(repo, noopLocker{}, 10)

	summaries, err := svc.ListAccounts(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListAccounts returned error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(summaries))
	}
	byNumber := map[string]int64{}
	for _, s := range summaries {
		byNumber[s.AccountNumber] = s.Balance
	}
	if byNumber["1000000000"] != 1000 || byNumber["1000000001"] != 250 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}

func TestGetAccount_NegativeID(t *testing.T) {
	svc := NewAccountService(newFakeRepo(), noopLocker{}, 10)

	_, err := svc.GetAccount(context.Background(), -5)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	svc := NewAccountService(newFakeRepo(), noopLocker{}, 10)

	_, err := svc.GetAccount(context.Background(), 7)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
