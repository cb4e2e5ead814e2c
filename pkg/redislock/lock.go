/**
 * @description
 * This package provides the distributed per-account lock used to serialize
 * balance-mutating operations across all service instances. It is backed by
 * Redis through redsync, so every process naming the same account number
 * contends on the same lock regardless of where it runs.
 *
 * Lock semantics:
 * - Acquisition retries for up to the configured wait window and fails with
 *   domain.ErrAccountBusy when the lock is still held by someone else.
 * - A held lock auto-expires after the hold timeout, so a crashed holder
 *   cannot wedge an account permanently.
 * - Release is safe to call on every exit path; a lock that was already
 *   expired or taken over is logged, never surfaced as a new failure mode.
 *
 * @dependencies
 * - github.com/go-redsync/redsync/v4: RedLock implementation.
 * - github.com/redis/go-redis/v9: Redis client backing the redsync pool.
 */

package redislock

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/zerobank/account-service/internal/domain"
)

const lockKeyPrefix = "account:lock:"

// Options configures the acquisition window and the auto-expiry of a held lock.
type Options struct {
	// WaitTimeout bounds how long Acquire blocks trying to obtain the lock.
	WaitTimeout time.Duration
	// HoldTimeout is how long a held lock survives before auto-expiring.
	HoldTimeout time.Duration
}

// DefaultOptions returns the reference lock windows: wait up to 1 second for
// the lock, hold it for at most 15 seconds.
func DefaultOptions() Options {
	return Options{
		WaitTimeout: 1 * time.Second,
		HoldTimeout: 15 * time.Second,
	}
}

// Manager acquires and releases named locks against a shared Redis instance.
type Manager struct {
	rs   *redsync.Redsync
	opts Options
}

// NewManager creates a lock manager over the given Redis client.
func NewManager(client redis.UniversalClient, opts Options) *Manager {
	return newManager(goredis.NewPool(client), opts)
}

func newManager(pool redsyncredis.Pool, opts Options) *Manager {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = DefaultOptions().WaitTimeout
	}
	if opts.HoldTimeout <= 0 {
		opts.HoldTimeout = DefaultOptions().HoldTimeout
	}
	return &Manager{
		rs:   redsync.New(pool),
		opts: opts,
	}
}

// LockKey derives the shared lock name for an account number. All processes
// must agree on this derivation for mutual exclusion to hold system-wide.
func LockKey(accountNumber string) string {
	return lockKeyPrefix + accountNumber
}

// Acquire obtains the lock for the given key, blocking up to the wait
// timeout. On success it returns a release function that must be called on
// every exit path; calling it after the lock has expired is a logged no-op.
// Contention inside the wait window surfaces as domain.ErrAccountBusy.
func (m *Manager) Acquire(ctx context.Context, key string) (release func(), err error) {
	// Spread the wait window over a fixed number of tries so the total
	// blocking time stays close to WaitTimeout.
	const tries = 4
	retryDelay := m.opts.WaitTimeout / (tries - 1)

	mutex := m.rs.NewMutex(
		key,
		redsync.WithExpiry(m.opts.HoldTimeout),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(retryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if lockTaken(err) {
			log.Printf("level=warn component=redislock msg=\"lock wait window exhausted\" key=%s wait=%s", key, m.opts.WaitTimeout)
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountBusy, key)
		}
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	// Release with a fresh context: the deferred release often runs after the
	// request context was canceled, and an unreleased lock would otherwise
	// linger until the hold timeout.
	return func() {
		if ok, unlockErr := mutex.Unlock(); !ok || unlockErr != nil {
			log.Printf("level=warn component=redislock msg=\"lock release skipped\" key=%s ok=%t err=%v", key, ok, unlockErr)
		}
	}, nil
}

// lockTaken reports whether err means the lock is held by someone else rather
// than a Redis failure. redsync reports contention as ErrFailed when the wait
// is cut short by the context, and as ErrTaken/ErrNodeTaken when the final
// try found the key still set.
func lockTaken(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	var nodeTaken *redsync.ErrNodeTaken
	return errors.As(err, &taken) || errors.As(err, &nodeTaken)
}
