package repository

import (
	"context"
	"fmt"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type gameRepo struct{}

// NewGameRepository returns a pgx-backed GameRepository.
func NewGameRepository() GameRepository {
	return &gameRepo{}
}

func (r *gameRepo) FindGameByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error) {
	row := db.QueryRow(ctx, `
		SELECT id, provider_id, name, slug
		FROM casino_games WHERE id = $1`, id)

	var g domain.Game
	err := row.Scan(&g.ID, &g.ProviderID, &g.Name, &g.Slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return &g, nil
}

func (r *gameRepo) FindProviderByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Provider, error) {
	row := db.QueryRow(ctx, `
		SELECT id, name, slug
		FROM casino_game_providers WHERE id = $1`, id)

	var p domain.Provider
	err := row.Scan(&p.ID, &p.Name, &p.Slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan provider: %w", err)
	}
	return &p, nil
}
