/**
 * @description
 * This file defines the account-side domain models for the account-service:
 * the account owner (AccountUser) and the Account itself. The Account is the
 * only shared mutable entity in the system; every balance mutation goes
 * through the Debit/Credit methods so the non-negative balance invariant is
 * enforced in one place.
 *
 * @notes
 * - Balances are stored as `int64` in the smallest currency unit to avoid
 *   floating-point inaccuracies with financial data.
 * - The externally visible account number is a fixed-width decimal string,
 *   distinct from the internal database id.
 */

package domain

import "time"

// AccountStatus enumerates the lifecycle states of an account. The only legal
// transition is StatusActive -> StatusClosed; it is never reversed.
type AccountStatus string

const (
	StatusActive AccountStatus = "active"
	StatusClosed AccountStatus = "closed"
)

// AccountUser represents an account owner. Owners are provisioned outside of
// this service; the core only ever reads them.
type AccountUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account is a named balance holder owned by exactly one AccountUser.
// This struct maps directly to the `accounts` table.
type Account struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	AccountNumber  string        `json:"account_number"`
	Status         AccountStatus `json:"status"`
	Balance        int64         `json:"balance"` // smallest currency unit
	RegisteredAt   time.Time     `json:"registered_at"`
	UnregisteredAt *time.Time    `json:"unregistered_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Debit removes amount from the balance. It refuses to take the balance
// negative, which keeps the balance >= 0 invariant local to the entity.
func (a *Account) Debit(amount int64) error {
	if amount > a.Balance {
		return ErrInsufficientBalance
	}
	a.Balance -= amount
	return nil
}

// Credit adds amount back to the balance. Negative amounts cannot reach this
// method through the validation pipeline, but the primitive guards itself.
func (a *Account) Credit(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	a.Balance += amount
	return nil
}

// Close transitions the account to StatusClosed and stamps the closure time.
// Closure preconditions (ownership, zero balance, not already closed) are
// checked by the registry before this is called.
func (a *Account) Close(now time.Time) {
	a.Status = StatusClosed
	a.UnregisteredAt = &now
}

// AccountSummary is the (account number, balance) projection returned by the
// list-accounts operation.
type AccountSummary struct {
	AccountNumber string `json:"account_number"`
	Balance       int64  `json:"balance"`
}
