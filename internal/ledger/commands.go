package ledger

import (
	"context"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionResolver is the subset of the session registry the ledger needs:
// resolving an opaque token to its active session. Kept as an interface so
// command tests can substitute a fake without depending on the session
// package's repositories.
type SessionResolver interface {
	Resolve(ctx context.Context, db repository.DBTX, token string) (*domain.Session, error)
}

// Commands implements the debit/credit/rollback/balance operations of the
// idempotent transaction ledger and the rollback decision tree. Each
// method manages its own transaction boundary: the duplicate lookup runs
// outside any transaction as a fast-path optimization, then a single
// transaction locks the wallet, applies the effect, and appends the ledger
// entry.
type Commands struct {
	engine   *Engine
	sessions SessionResolver
	pool     *pgxpool.Pool
}

// NewCommands creates the ledger command set.
func NewCommands(engine *Engine, sessions SessionResolver, pool *pgxpool.Pool) *Commands {
	return &Commands{engine: engine, sessions: sessions, pool: pool}
}

// GetBalance resolves the session and returns its wallet's current state.
// No lock, no mutation, not an idempotency target.
func (c *Commands) GetBalance(ctx context.Context, sessionToken string) (*domain.Session, *domain.Wallet, error) {
	session, err := c.sessions.Resolve(ctx, c.pool, sessionToken)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, domain.ErrInvalidSession("session token not found or inactive")
	}
	wallet, err := c.engine.wallets.FindByID(ctx, c.pool, session.WalletID)
	if err != nil {
		return nil, nil, err
	}
	if wallet == nil {
		return nil, nil, domain.ErrNotFound("wallet", session.WalletID.String())
	}
	return session, wallet, nil
}
