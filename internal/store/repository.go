/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the account-service. By defining
 * an interface, we decouple the application's business logic from the
 * specific database implementation (e.g., PostgreSQL), making the code more
 * modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/zerobank/account-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Account owner methods. Owners are created outside of this service,
	// so the repository only reads them.
	FindAccountUserByID(ctx context.Context, userID int64) (*domain.AccountUser, error)

	// Account methods
	FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	// FindLatestAccountNumber returns the numerically highest account number
	// in the system, or ErrAccountNotFound when no accounts exist yet.
	FindLatestAccountNumber(ctx context.Context) (string, error)
	CountAccountsByUserID(ctx context.Context, userID int64) (int, error)
	FindAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error)
	// SaveAccount upserts the account row and fills in generated fields
	// (id, created_at, updated_at) on the passed struct.
	SaveAccount(ctx context.Context, account *domain.Account) error

	// Transaction methods. Transactions are insert-only; there is
	// deliberately no update or delete.
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	FindTransactionByToken(ctx context.Context, token string) (*domain.Transaction, error)
}
