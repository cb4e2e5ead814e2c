/**
 * @description
 * This file defines the Transaction domain model: the immutable audit record
 * written for every attempted balance operation, successful or failed. A
 * Transaction is created exactly once per attempt and never updated or
 * deleted afterwards; it is the system of record for disputes and
 * cancellations.
 *
 * @notes
 * - Amounts are `int64` in the smallest currency unit.
 * - BalanceSnapshot is the account balance immediately after the attempt:
 *   debited/credited for successes, unchanged for failures.
 */

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the kind of balance operation a Transaction records.
type TransactionType string

const (
	TypeUse    TransactionType = "use"
	TypeCancel TransactionType = "cancel"
)

// TransactionResult is the outcome of an attempted balance operation.
type TransactionResult string

const (
	ResultSuccess TransactionResult = "success"
	ResultFailure TransactionResult = "failure"
)

// Transaction is an immutable audit record of one attempted balance
// operation. This struct maps directly to the `transactions` table.
type Transaction struct {
	ID              int64             `json:"id"`
	AccountID       int64             `json:"account_id"`
	AccountNumber   string            `json:"account_number"`
	Type            TransactionType   `json:"transaction_type"`
	Result          TransactionResult `json:"transaction_result"`
	Amount          int64             `json:"amount"`
	BalanceSnapshot int64             `json:"balance_snapshot"`
	TransactionID   string            `json:"transaction_id"` // opaque external token
	TransactedAt    time.Time         `json:"transacted_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewTransactionToken generates the opaque, globally unique token under which
// a transaction is externally addressable.
func NewTransactionToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
