package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is keyed by (user, currency) with uniqueness, created lazily at
// first launch for a user/currency pair. PlayableBalance is the only
// column the ledger ever mutates; RedeemableBalance is carried but never
// touched by debit, credit, or rollback.
type Wallet struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"userId"`
	Currency          string    `json:"currency"`
	PlayableBalance   int64     `json:"playableBalance"`
	RedeemableBalance int64     `json:"redeemableBalance"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DebitParams carries the validated inputs for a debit ledger append.
type DebitParams struct {
	SessionToken          string
	ExternalTransactionID string
	RoundID               string
	Amount                int64
}

// CreditParams carries the validated inputs for a credit ledger append.
type CreditParams struct {
	SessionToken                 string
	ExternalTransactionID        string
	RoundID                      string
	Amount                       int64
	RelatedExternalTransactionID string
}

// RollbackParams carries the inputs for the rollback decision tree.
type RollbackParams struct {
	SessionToken                  string
	ExternalTransactionID         string
	OriginalExternalTransactionID string
	Reason                        string
}

// CommandResult is what every ledger command returns: the entry it wrote
// (or replayed), the wallet state after the write, and the outbox events
// describing the write. The event_outbox row for a posted entry is already
// inserted by PostLedgerEntry inside the same transaction.
type CommandResult struct {
	Transaction Transaction
	Wallet      Wallet
	Events      []OutboxDraft
	Idempotent  bool
}
