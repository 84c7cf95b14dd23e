package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionKind is a closed enum over the three ledger entry kinds.
type TransactionKind string

const (
	TransactionDebit    TransactionKind = "debit"
	TransactionCredit   TransactionKind = "credit"
	TransactionRollback TransactionKind = "rollback"
)

// Transaction is an append-only ledger entry. ExternalTransactionID is the
// sole primary key of idempotency: a unique index on it is the correctness
// anchor, not the duplicate pre-check.
type Transaction struct {
	ID                           uuid.UUID       `json:"id"`
	ExternalTransactionID        string          `json:"externalTransactionId"`
	Kind                         TransactionKind `json:"kind"`
	Amount                       int64           `json:"amount"`
	WalletID                     uuid.UUID       `json:"walletId"`
	SessionID                    uuid.UUID       `json:"sessionId"`
	RoundID                      *string         `json:"roundId,omitempty"`
	RelatedExternalTransactionID *string         `json:"relatedExternalTransactionId,omitempty"`
	BalanceAfter                 int64           `json:"balanceAfter"`
	ResponseCache                json.RawMessage `json:"responseCache"`
	IsRollback                   bool            `json:"isRollback"`
	CreatedAt                    time.Time       `json:"createdAt"`
}
