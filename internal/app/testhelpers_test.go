package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/zerobank/account-service/internal/domain"
	"github.com/zerobank/account-service/pkg/rabbitmq"
)

// fakeRepo is an in-memory store.Repository. It is mutex-guarded so the
// concurrency tests can share one instance across goroutines.
type fakeRepo struct {
	mu           sync.Mutex
	users        map[int64]*domain.AccountUser
	accounts     map[int64]*domain.Account
	transactions []*domain.Transaction
	nextID       int64

	failSaveAccount error
	findUserCalls   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[int64]*domain.AccountUser),
		accounts: make(map[int64]*domain.Account),
		nextID:   1,
	}
}

func (f *fakeRepo) addUser(id int64, name string) *domain.AccountUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &domain.AccountUser{ID: id, Name: name}
	f.users[id] = user
	return user
}

func (f *fakeRepo) addAccount(account domain.Account) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if account.ID == 0 {
		account.ID = f.nextID
		f.nextID++
	}
	stored := account
	f.accounts[stored.ID] = &stored
	return &stored
}

func (f *fakeRepo) accountByNumber(number string) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.AccountNumber == number {
			copied := *account
			return &copied
		}
	}
	return nil
}

func (f *fakeRepo) transactionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transactions)
}

func (f *fakeRepo) FindAccountUserByID(ctx context.Context, userID int64) (*domain.AccountUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findUserCalls++
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrOwnerNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepo) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (f *fakeRepo) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.AccountNumber == accountNumber {
			copied := *account
			return &copied, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeRepo) FindLatestAccountNumber(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := ""
	for _, account := range f.accounts {
		if account.AccountNumber > latest {
			latest = account.AccountNumber
		}
	}
	if latest == "" {
		return "", domain.ErrAccountNotFound
	}
	return latest, nil
}

func (f *fakeRepo) CountAccountsByUserID(ctx context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, account := range f.accounts {
		if account.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) FindAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var accounts []domain.Account
	for _, account := range f.accounts {
		if account.UserID == userID {
			accounts = append(accounts, *account)
		}
	}
	return accounts, nil
}

func (f *fakeRepo) SaveAccount(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSaveAccount != nil {
		return f.failSaveAccount
	}
	if account.ID == 0 {
		account.ID = f.nextID
		f.nextID++
	}
	stored := *account
	f.accounts[stored.ID] = &stored
	return nil
}

func (f *fakeRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx.ID = f.nextID
	f.nextID++
	stored := *tx
	f.transactions = append(f.transactions, &stored)
	return nil
}

func (f *fakeRepo) FindTransactionByToken(ctx context.Context, token string) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.transactions {
		if tx.TransactionID == token {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

// noopLocker always grants the lock immediately.
type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return func() {}, nil
}

// busyLocker always reports contention.
type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, key string) (func(), error) {
	return nil, fmt.Errorf("%w: %s", domain.ErrAccountBusy, key)
}

// recordingLocker counts acquisitions and releases per key.
type recordingLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
}

func (l *recordingLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.acquired = append(l.acquired, key)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.released = append(l.released, key)
		l.mu.Unlock()
	}, nil
}

// mutexLocker serializes callers per key with real in-process mutexes, which
// is enough to exercise the guard's exclusion guarantee in one process.
type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// recordingPublisher captures published ledger events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []rabbitmq.TransactionRecordedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	return nil
}

func (p *recordingPublisher) PublishTransactionRecorded(ctx context.Context, event rabbitmq.TransactionRecordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) eventCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
