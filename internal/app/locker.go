package app

import "context"

// Locker is the mutual-exclusion contract the application core depends on.
// The production implementation is pkg/redislock's Redis-backed manager;
// tests substitute in-process fakes.
//
// Acquire blocks up to the implementation's wait window and returns a release
// function that must be called on every exit path. Contention is reported as
// domain.ErrAccountBusy.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
