package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthUser is a back-office operator account used to authenticate the
// admin-only surface (session lookup, session termination, transaction
// history). It has no relationship to the casino's own users.
type AuthUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
