package domain

import "github.com/google/uuid"

// Provider is a read-only game provider record.
type Provider struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Game is a read-only game catalog record.
type Game struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"providerId"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
}
