package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one per launch. Every money-moving request carries its token,
// which must resolve to an active session; writes affect that session's
// wallet only.
type Session struct {
	ID                uuid.UUID  `json:"id"`
	Token             string     `json:"token"`
	UserID            uuid.UUID  `json:"userId"`
	WalletID          uuid.UUID  `json:"walletId"`
	GameID            uuid.UUID  `json:"gameId"`
	ProviderID        uuid.UUID  `json:"providerId"`
	ProviderSessionID *string    `json:"providerSessionId,omitempty"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"createdAt"`
	EndedAt           *time.Time `json:"endedAt,omitempty"`
}

// LaunchResult is returned by the session registry's launch operation.
type LaunchResult struct {
	SessionID uuid.UUID
	Token     string
	Balance   int64
	Currency  string
}
