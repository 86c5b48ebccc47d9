package domain

import "github.com/shopspring/decimal"

// TransactionType classifies a ledger event.
type TransactionType string

const (
	TxnDeposit            TransactionType = "DEPOSIT"
	TxnWithdrawal         TransactionType = "WITHDRAWAL"
	TxnFundsBlock         TransactionType = "FUNDS_BLOCK"
	TxnIPORelease         TransactionType = "IPO_RELEASE"
	TxnIPOAllotment       TransactionType = "IPO_ALLOTMENT"
	TxnProfitDistribution TransactionType = "PROFIT_DISTRIBUTION"
	TxnPrincipalReturn    TransactionType = "PRINCIPAL_RETURN"
	TxnFeeDeduction       TransactionType = "FEE_DEDUCTION"
	TxnShareSale          TransactionType = "SHARE_SALE"
)

// ReferenceType names the originating entity of a transaction, when any.
type ReferenceType string

const (
	RefIPOApplication ReferenceType = "IPO_APPLICATION"
	RefHolding        ReferenceType = "HOLDING"
	RefDistribution   ReferenceType = "PROFIT_DISTRIBUTION"
	RefInvestment     ReferenceType = "INVESTMENT"
	RefFee            ReferenceType = "FEE"
)

// Transaction is an immutable append-only record of one balance-affecting
// event. Amount is signed: credits positive, debits negative. Block and
// release events carry a zero amount (they move the blocked overlay, not
// the balance) so that summing amounts in creation order always reproduces
// the account balance, and BalanceAfter equals the running sum at insert.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	ReferenceType ReferenceType   `json:"referenceType,omitempty"`
	ReferenceID   string          `json:"referenceID,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	AuditFields
}
