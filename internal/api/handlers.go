/**
 * @description
 * This file contains the HTTP handlers for the account-service's API
 * endpoints. Handlers are responsible for parsing incoming requests, calling
 * the appropriate methods on the application services, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zerobank/account-service/internal/app"
	"github.com/zerobank/account-service/internal/domain"
)

const (
	minUseAmount    = 1
	minCancelAmount = 10
	maxAmount       = 1_000_000_000
)

// Handlers holds the application services that handlers will use.
type Handlers struct {
	accounts     *app.AccountService
	transactions *app.GuardedTransactionService
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(accounts *app.AccountService, transactions *app.GuardedTransactionService) *Handlers {
	return &Handlers{accounts: accounts, transactions: transactions}
}

type createAccountRequest struct {
	UserID         int64 `json:"user_id"`
	InitialBalance int64 `json:"initial_balance"`
}

type closeAccountRequest struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
}

// accountResponse is the projection returned for account creation and closure.
type accountResponse struct {
	UserID         int64      `json:"user_id"`
	AccountNumber  string     `json:"account_number"`
	RegisteredAt   time.Time  `json:"registered_at"`
	UnregisteredAt *time.Time `json:"unregistered_at,omitempty"`
}

type useBalanceRequest struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

type cancelBalanceRequest struct {
	TransactionID string `json:"transaction_id"`
	AccountNumber string `json:"account_number"`
	Amount        int64  `json:"amount"`
}

// transactionResponse mirrors the projection the original API exposed for
// use/cancel/query operations.
type transactionResponse struct {
	AccountNumber     string    `json:"account_number"`
	TransactionType   string    `json:"transaction_type,omitempty"`
	TransactionResult string    `json:"transaction_result"`
	TransactionID     string    `json:"transaction_id"`
	Amount            int64     `json:"amount"`
	TransactedAt      time.Time `json:"transacted_at"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		AccountNumber:     tx.AccountNumber,
		TransactionType:   string(tx.Type),
		TransactionResult: string(tx.Result),
		TransactionID:     tx.TransactionID,
		Amount:            tx.Amount,
		TransactedAt:      tx.TransactedAt,
	}
}

// CreateAccountHandler handles POST /accounts.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID <= 0 {
		h.writeError(w, http.StatusBadRequest, "user_id must be positive")
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), req.UserID, req.InitialBalance)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, accountResponse{
		UserID:        account.UserID,
		AccountNumber: account.AccountNumber,
		RegisteredAt:  account.RegisteredAt,
	})
}

// CloseAccountHandler handles DELETE /accounts.
func (h *Handlers) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req closeAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID <= 0 || strings.TrimSpace(req.AccountNumber) == "" {
		h.writeError(w, http.StatusBadRequest, "user_id and account_number are required")
		return
	}

	account, err := h.accounts.CloseAccount(r.Context(), req.UserID, req.AccountNumber)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, accountResponse{
		UserID:         account.UserID,
		AccountNumber:  account.AccountNumber,
		RegisteredAt:   account.RegisteredAt,
		UnregisteredAt: account.UnregisteredAt,
	})
}

// ListAccountsHandler handles GET /accounts?user_id=.
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		h.writeError(w, http.StatusBadRequest, "user_id query parameter must be a positive integer")
		return
	}

	summaries, err := h.accounts.ListAccounts(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

// GetAccountHandler handles GET /accounts/{accountId}.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountId"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "account id must be an integer")
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// UseBalanceHandler handles POST /transaction/use.
func (h *Handlers) UseBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req useBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID <= 0 || strings.TrimSpace(req.AccountNumber) == "" {
		h.writeError(w, http.StatusBadRequest, "user_id and account_number are required")
		return
	}
	if req.Amount < minUseAmount || req.Amount > maxAmount {
		h.writeError(w, http.StatusBadRequest, "amount is out of range")
		return
	}

	tx, err := h.transactions.UseBalance(r.Context(), req.UserID, req.AccountNumber, req.Amount)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// CancelBalanceHandler handles POST /transaction/cancel.
func (h *Handlers) CancelBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req cancelBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.TransactionID) == "" || strings.TrimSpace(req.AccountNumber) == "" {
		h.writeError(w, http.StatusBadRequest, "transaction_id and account_number are required")
		return
	}
	if req.Amount < minCancelAmount || req.Amount > maxAmount {
		h.writeError(w, http.StatusBadRequest, "amount is out of range")
		return
	}

	tx, err := h.transactions.CancelBalance(r.Context(), req.TransactionID, req.AccountNumber, req.Amount)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// QueryTransactionHandler handles GET /transaction/{transactionId}.
func (h *Handlers) QueryTransactionHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "transactionId")
	if strings.TrimSpace(token) == "" {
		h.writeError(w, http.StatusBadRequest, "transaction id is required")
		return
	}

	tx, err := h.transactions.QueryTransaction(r.Context(), token)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

// writeDomainError maps the closed domain error set onto HTTP statuses.
// Anything outside the set is logged and reported as an internal failure.
func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrOwnerNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrOwnershipMismatch),
		errors.Is(err, domain.ErrTransactionAccountMismatch):
		h.writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrQuotaExceeded),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrBalanceNotEmpty),
		errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrPartialCancelNotAllowed),
		errors.Is(err, domain.ErrCancelWindowExpired),
		errors.Is(err, domain.ErrNotCancelable):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAccountBusy):
		h.writeError(w, http.StatusLocked, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidAmount):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled error\" path=%s err=%v", r.URL.Path, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("level=error component=api msg=\"response encode failed\" err=%v", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
