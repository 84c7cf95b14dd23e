package repository

import (
	"context"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// UserRepository provides access to casino_users.
type UserRepository interface {
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.User, error)
}

// GameRepository provides read-only access to the game/provider catalog.
type GameRepository interface {
	FindGameByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Game, error)
	FindProviderByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Provider, error)
}

// WalletRepository provides access to casino_wallets.
type WalletRepository interface {
	// FindByID returns a wallet by id with no lock.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Wallet, error)

	// FindByUserAndCurrency returns the wallet for a (user, currency) pair, or nil.
	FindByUserAndCurrency(ctx context.Context, db DBTX, userID uuid.UUID, currency string) (*domain.Wallet, error)

	// GetOrCreate returns the wallet for (user, currency), creating it with a
	// zero balance if it does not exist yet.
	GetOrCreate(ctx context.Context, db DBTX, userID uuid.UUID, currency string) (*domain.Wallet, error)

	// LockForUpdate acquires a row-level lock (SELECT ... FOR UPDATE) and
	// returns the wallet. Must be called inside an open transaction.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)

	// ApplyDelta adjusts playable_balance by delta and returns the new row.
	// Must be called inside the same transaction as LockForUpdate.
	ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) (*domain.Wallet, error)
}

// SessionRepository provides access to casino_game_sessions.
type SessionRepository interface {
	Insert(ctx context.Context, db DBTX, s *domain.Session) error
	FindByToken(ctx context.Context, db DBTX, token string) (*domain.Session, error)
	AttachProviderSession(ctx context.Context, db DBTX, sessionID uuid.UUID, providerSessionID string) error
	End(ctx context.Context, db DBTX, token string) (*domain.Session, error)
}

// TransactionRepository provides access to casino_transactions.
type TransactionRepository interface {
	// FindExisting checks the idempotency index for a prior entry with this
	// external transaction id, regardless of kind.
	FindExisting(ctx context.Context, db DBTX, externalTransactionID string) (*domain.Transaction, error)

	// FindByExternalID is an alias of FindExisting used by the rollback
	// engine when locating the original transaction.
	FindByExternalID(ctx context.Context, db DBTX, externalTransactionID string) (*domain.Transaction, error)

	// FindReversalOf returns the rollback entry referencing the given
	// external transaction id as its related original, or nil. Used by the
	// already-reversed rollback branch to name which rollback handled it.
	FindReversalOf(ctx context.Context, db DBTX, originalExternalTransactionID string) (*domain.Transaction, error)

	// FindByWalletID returns a wallet's full ledger history, newest first,
	// for the admin read surface.
	FindByWalletID(ctx context.Context, db DBTX, walletID uuid.UUID) ([]domain.Transaction, error)

	// Insert writes a new ledger entry. Must be called inside the same
	// transaction as the wallet balance update it accompanies.
	Insert(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error

	// MarkRolledBack sets is_rollback=true on the given transaction id.
	MarkRolledBack(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// OutboxRow pairs a stored outbox event with its sequence id, needed to
// acknowledge delivery.
type OutboxRow struct {
	ID    int64
	Draft domain.OutboxDraft
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the ledger entry).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]OutboxRow, error)

	// MarkPublished deletes rows once their events have been published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// AuthUserRepository provides access to auth_users (the admin realm only).
type AuthUserRepository interface {
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error)
	Create(ctx context.Context, db DBTX, user *domain.AuthUser) error
}
