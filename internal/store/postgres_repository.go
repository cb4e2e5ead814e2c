/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the necessary SQL queries to interact with the
 * `account_users`, `accounts` and `transactions` tables.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zerobank/account-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindAccountUserByID retrieves an account owner by their internal id.
func (r *PostgresRepository) FindAccountUserByID(ctx context.Context, userID int64) (*domain.AccountUser, error) {
	var user domain.AccountUser
	query := `SELECT id, name, created_at, updated_at FROM account_users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOwnerNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindAccountByID retrieves an account by its internal id.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	return r.findAccount(ctx, `WHERE id = $1`, accountID)
}

// FindAccountByNumber retrieves an account by its externally visible number.
func (r *PostgresRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.findAccount(ctx, `WHERE account_number = $1`, accountNumber)
}

func (r *PostgresRepository) findAccount(ctx context.Context, where string, arg any) (*domain.Account, error) {
	var account domain.Account
	query := `
		SELECT id, user_id, account_number, status, balance,
		       registered_at, unregistered_at, created_at, updated_at
		FROM accounts ` + where
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.UserID,
		&account.AccountNumber,
		&account.Status,
		&account.Balance,
		&account.RegisteredAt,
		&account.UnregisteredAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindLatestAccountNumber returns the numerically highest account number in
// the system. Account numbers are fixed-width decimal strings, so the numeric
// maximum and the lexicographic maximum coincide; the cast keeps the ordering
// explicit regardless.
func (r *PostgresRepository) FindLatestAccountNumber(ctx context.Context) (string, error) {
	var number string
	query := `SELECT account_number FROM accounts ORDER BY account_number::bigint DESC LIMIT 1`
	err := r.db.QueryRow(ctx, query).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrAccountNotFound
		}
		return "", err
	}
	return number, nil
}

// CountAccountsByUserID returns how many accounts the user currently owns,
// closed accounts included; closure does not free quota because the row is
// never physically deleted.
func (r *PostgresRepository) CountAccountsByUserID(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM accounts WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FindAccountsByUserID returns all accounts owned by the user.
func (r *PostgresRepository) FindAccountsByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	query := `
		SELECT id, user_id, account_number, status, balance,
		       registered_at, unregistered_at, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY registered_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.AccountNumber,
			&account.Status,
			&account.Balance,
			&account.RegisteredAt,
			&account.UnregisteredAt,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// SaveAccount upserts an account row. New accounts (ID == 0) are inserted and
// the generated id is written back; existing accounts have their mutable
// columns updated.
func (r *PostgresRepository) SaveAccount(ctx context.Context, account *domain.Account) error {
	if account.ID == 0 {
		query := `
			INSERT INTO accounts (user_id, account_number, status, balance, registered_at, unregistered_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at`
		return r.db.QueryRow(ctx, query,
			account.UserID,
			account.AccountNumber,
			account.Status,
			account.Balance,
			account.RegisteredAt,
			account.UnregisteredAt,
		).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	}

	query := `
		UPDATE accounts
		SET status = $1, balance = $2, unregistered_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		account.Status,
		account.Balance,
		account.UnregisteredAt,
		account.ID,
	).Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		return err
	}
	return nil
}

// CreateTransaction inserts a new audit record. Transactions are insert-only.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions
			(account_id, account_number, transaction_type, transaction_result,
			 amount, balance_snapshot, transaction_id, transacted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		tx.AccountID,
		tx.AccountNumber,
		tx.Type,
		tx.Result,
		tx.Amount,
		tx.BalanceSnapshot,
		tx.TransactionID,
		tx.TransactedAt,
	).Scan(&tx.ID, &tx.CreatedAt)
}

// FindTransactionByToken retrieves a transaction by its opaque external token.
func (r *PostgresRepository) FindTransactionByToken(ctx context.Context, token string) (*domain.Transaction, error) {
	var tx domain.Transaction
	query := `
		SELECT id, account_id, account_number, transaction_type, transaction_result,
		       amount, balance_snapshot, transaction_id, transacted_at, created_at
		FROM transactions
		WHERE transaction_id = $1`
	err := r.db.QueryRow(ctx, query, token).Scan(
		&tx.ID,
		&tx.AccountID,
		&tx.AccountNumber,
		&tx.Type,
		&tx.Result,
		&tx.Amount,
		&tx.BalanceSnapshot,
		&tx.TransactionID,
		&tx.TransactedAt,
		&tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}
