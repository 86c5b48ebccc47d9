package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sajhapunji/broker-backoffice/internal/core/domain"
)

// CreateAccountRequest defines the data needed to open a new account.
type CreateAccountRequest struct {
	CustomerID    string `json:"customerID" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	IsPrimary     bool   `json:"isPrimary"`
}

// UpdateAccountRequest defines the governed field set for account updates.
// Use pointers so omitted fields stay unchanged.
type UpdateAccountRequest struct {
	AccountNumber *string               `json:"accountNumber"`
	Status        *domain.AccountStatus `json:"status" binding:"omitempty,oneof=ACTIVE FROZEN CLOSED"`
	IsPrimary     *bool                 `json:"isPrimary"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID        string          `json:"accountID"`
	CustomerID       string          `json:"customerID,omitempty"`
	AccountNumber    string          `json:"accountNumber"`
	Kind             string          `json:"kind"`
	Balance          decimal.Decimal `json:"balance"`
	BlockedAmount    decimal.Decimal `json:"blockedAmount"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Status           string          `json:"status"`
	IsPrimary        bool            `json:"isPrimary"`
	CreatedAt        time.Time       `json:"createdAt"`
	LastUpdatedAt    time.Time       `json:"lastUpdatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:        a.AccountID,
		CustomerID:       a.CustomerID,
		AccountNumber:    a.AccountNumber,
		Kind:             string(a.Kind),
		Balance:          a.Balance,
		BlockedAmount:    a.BlockedAmount,
		AvailableBalance: a.AvailableBalance(),
		Status:           string(a.Status),
		IsPrimary:        a.IsPrimary,
		CreatedAt:        a.CreatedAt,
		LastUpdatedAt:    a.LastUpdatedAt,
	}
}

// ToAccountResponses converts a slice of accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// MoveFundsRequest is the body for deposit and withdrawal endpoints.
type MoveFundsRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
	Notes  string          `json:"notes"`
}

// TransactionResponse defines the data returned for a ledger transaction.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	ReferenceType string          `json:"referenceType,omitempty"`
	ReferenceID   string          `json:"referenceID,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// ToTransactionResponse converts a domain.Transaction.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		AccountID:     t.AccountID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		BalanceAfter:  t.BalanceAfter,
		ReferenceType: string(t.ReferenceType),
		ReferenceID:   t.ReferenceID,
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
	}
}

// ToTransactionResponses converts a slice of transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// ListTransactionsParams defines query parameters for statement listing.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a page of transactions plus the next cursor.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}
