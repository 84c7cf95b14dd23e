package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Engine provides the foundational ledger operations shared by every
// command: locking the wallet row, checking the idempotency index, and
// appending a ledger entry atomically with the balance update.
type Engine struct {
	wallets      repository.WalletRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	wallets repository.WalletRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		wallets:      wallets,
		transactions: transactions,
		outbox:       outbox,
	}
}

// LockWalletForUpdate acquires a row-level lock and returns the wallet.
// Must be called within an open transaction.
func (e *Engine) LockWalletForUpdate(ctx context.Context, tx pgx.Tx, walletID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := e.wallets.LockForUpdate(ctx, tx, walletID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, domain.ErrNotFound("wallet", walletID.String())
	}
	return wallet, nil
}

// FindExistingTransaction checks the idempotency index for a prior entry
// with this external transaction id, regardless of kind. Returns nil if
// no duplicate found. Called outside any transaction as a fast-path
// optimization — the unique index, not this check, is what guarantees
// correctness under concurrent duplicate submissions.
func (e *Engine) FindExistingTransaction(ctx context.Context, db repository.DBTX, externalTransactionID string) (*domain.Transaction, error) {
	existing, err := e.transactions.FindExisting(ctx, db, externalTransactionID)
	if err != nil {
		return nil, fmt.Errorf("find existing transaction: %w", err)
	}
	return existing, nil
}

// buildResponse renders the callback response body for a posted transaction
// once its final balance is known. It runs before the row is inserted, so
// its result becomes t.ResponseCache from the very first write — nothing
// that duplicate replay depends on is left to a follow-up update.
type buildResponse func(t *domain.Transaction, wallet *domain.Wallet) (json.RawMessage, error)

// PostLedgerEntry applies delta to the wallet's playable_balance, renders
// build into t.ResponseCache, appends t as a ledger entry with the
// resulting balance snapshot, and writes the posted-transaction outbox
// event — all in the caller's open transaction. t.ID, t.BalanceAfter, and
// t.CreatedAt are populated on return. build may be nil; t.ResponseCache is
// then stored as the caller set it (`{}` when empty).
func (e *Engine) PostLedgerEntry(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64, t *domain.Transaction, build buildResponse) (*domain.Transaction, *domain.Wallet, error) {
	updatedWallet, err := e.wallets.ApplyDelta(ctx, tx, walletID, delta)
	if err != nil {
		return nil, nil, fmt.Errorf("apply wallet delta: %w", err)
	}

	t.ID = uuid.New()
	t.WalletID = walletID
	t.BalanceAfter = updatedWallet.PlayableBalance

	if build != nil {
		cache, err := build(t, updatedWallet)
		if err != nil {
			return nil, nil, fmt.Errorf("build response cache: %w", err)
		}
		t.ResponseCache = cache
	}

	if err := e.transactions.Insert(ctx, tx, t); err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	event := domain.NewTransactionPostedEvent(*t)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	return t, updatedWallet, nil
}
