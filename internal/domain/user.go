package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity record opaque to the ledger. The ledger trusts the
// session registry to resolve a token to a valid user and never inspects
// user fields beyond existence.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
