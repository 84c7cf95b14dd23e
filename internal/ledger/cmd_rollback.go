package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Rollback implements the full rollback decision tree:
//  1. self-idempotency on the rollback's own id
//  2. locate the original by its external transaction id
//  3. original unknown -> tombstone
//  4. original is itself a rollback -> rejected, nothing recorded
//  5. original already reversed -> idempotency-marker entry
//  6. original is a credit -> CANNOT_ROLLBACK_PAYOUT
//  7. original is a debit -> nominal reversal, one transaction
func (c *Commands) Rollback(ctx context.Context, sessionToken string, p domain.RollbackParams) (*domain.CommandResult, error) {
	// Step 1: self-idempotency.
	if existing, err := c.engine.FindExistingTransaction(ctx, c.pool, p.ExternalTransactionID); err != nil {
		return nil, err
	} else if existing != nil {
		return replayExisting(existing)
	}

	session, err := c.sessions.Resolve(ctx, c.pool, sessionToken)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession("session token not found or inactive")
	}

	// Step 2: locate original.
	original, err := c.engine.transactions.FindByExternalID(ctx, c.pool, p.OriginalExternalTransactionID)
	if err != nil {
		return nil, err
	}

	switch {
	case original == nil:
		// Step 3: tombstone.
		return c.rollbackTombstone(ctx, session, p)

	case original.Kind == domain.TransactionRollback:
		// Step 4: cannot rollback a rollback — reject, nothing recorded.
		resp := domain.RollbackResponse{
			Success:       true,
			TransactionID: p.ExternalTransactionID,
			RolledBack:    false,
			Message:       "cannot rollback a rollback",
		}
		cache, _ := json.Marshal(resp)
		return &domain.CommandResult{
			Transaction: domain.Transaction{
				ExternalTransactionID: p.ExternalTransactionID,
				Kind:                  domain.TransactionRollback,
				ResponseCache:         cache,
			},
		}, nil

	case original.IsRollback:
		// Step 5: already reversed — idempotency-marker entry.
		return c.rollbackAlreadyReversed(ctx, session, p, original)

	case original.Kind == domain.TransactionCredit:
		// Step 6: cannot roll back a payout.
		return nil, domain.ErrCannotRollbackPayout()

	default:
		// Step 7: nominal reversal of a debit.
		return c.rollbackNominal(ctx, session, p, original)
	}
}

func (c *Commands) rollbackTombstone(ctx context.Context, session *domain.Session, p domain.RollbackParams) (*domain.CommandResult, error) {
	var result *domain.CommandResult
	err := pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		entry := &domain.Transaction{
			ExternalTransactionID:        p.ExternalTransactionID,
			Kind:                         domain.TransactionRollback,
			Amount:                       0,
			SessionID:                    session.ID,
			RelatedExternalTransactionID: strPtr(p.OriginalExternalTransactionID),
			IsRollback:                   true,
		}
		posted, updatedWallet, err := c.engine.PostLedgerEntry(ctx, tx, session.WalletID, 0, entry,
			func(t *domain.Transaction, wallet *domain.Wallet) (json.RawMessage, error) {
				resp := domain.RollbackResponse{
					Success:       true,
					TransactionID: p.ExternalTransactionID,
					RolledBack:    true,
					Balance:       wallet.PlayableBalance,
					Currency:      wallet.Currency,
					Message:       "tombstone",
				}
				return json.Marshal(struct {
					domain.RollbackResponse
					Tombstone bool `json:"tombstone"`
				}{resp, true})
			})
		if err != nil {
			if isUniqueViolation(err) {
				return errDuplicateRace
			}
			return err
		}

		result = &domain.CommandResult{
			Transaction: *posted,
			Wallet:      *updatedWallet,
			Events:      []domain.OutboxDraft{domain.NewTransactionPostedEvent(*posted)},
		}
		return nil
	})
	if err == errDuplicateRace {
		existing, ferr := c.engine.FindExistingTransaction(ctx, c.pool, p.ExternalTransactionID)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, fmt.Errorf("unique violation on %s but no row found on re-read", p.ExternalTransactionID)
		}
		return replayExisting(existing)
	}
	return result, err
}

func (c *Commands) rollbackAlreadyReversed(ctx context.Context, session *domain.Session, p domain.RollbackParams, original *domain.Transaction) (*domain.CommandResult, error) {
	reversal, err := c.engine.transactions.FindReversalOf(ctx, c.pool, original.ExternalTransactionID)
	if err != nil {
		return nil, err
	}
	reversalID := ""
	if reversal != nil {
		reversalID = reversal.ExternalTransactionID
	}

	var result *domain.CommandResult
	err = pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		entry := &domain.Transaction{
			ExternalTransactionID:        p.ExternalTransactionID,
			Kind:                         domain.TransactionRollback,
			Amount:                       0,
			SessionID:                    session.ID,
			RelatedExternalTransactionID: strPtr(p.OriginalExternalTransactionID),
			IsRollback:                   true,
		}
		posted, updatedWallet, err := c.engine.PostLedgerEntry(ctx, tx, session.WalletID, 0, entry,
			func(t *domain.Transaction, wallet *domain.Wallet) (json.RawMessage, error) {
				message := "already rolled back"
				if reversalID != "" {
					message = "already rolled back by " + reversalID
				}
				resp := domain.RollbackResponse{
					Success:       true,
					TransactionID: p.ExternalTransactionID,
					RolledBack:    true,
					Balance:       wallet.PlayableBalance,
					Currency:      wallet.Currency,
					Message:       message,
				}
				return json.Marshal(struct {
					domain.RollbackResponse
					AlreadyRolledBack bool `json:"alreadyRolledBack"`
				}{resp, true})
			})
		if err != nil {
			if isUniqueViolation(err) {
				return errDuplicateRace
			}
			return err
		}

		result = &domain.CommandResult{
			Transaction: *posted,
			Wallet:      *updatedWallet,
			Events:      []domain.OutboxDraft{domain.NewTransactionPostedEvent(*posted)},
		}
		return nil
	})
	if err == errDuplicateRace {
		existing, ferr := c.engine.FindExistingTransaction(ctx, c.pool, p.ExternalTransactionID)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, fmt.Errorf("unique violation on %s but no row found on re-read", p.ExternalTransactionID)
		}
		return replayExisting(existing)
	}
	return result, err
}

func (c *Commands) rollbackNominal(ctx context.Context, session *domain.Session, p domain.RollbackParams, original *domain.Transaction) (*domain.CommandResult, error) {
	var result *domain.CommandResult
	err := pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := c.engine.LockWalletForUpdate(ctx, tx, session.WalletID); err != nil {
			return err
		}

		if err := c.engine.transactions.MarkRolledBack(ctx, tx, original.ID); err != nil {
			return err
		}

		entry := &domain.Transaction{
			ExternalTransactionID:        p.ExternalTransactionID,
			Kind:                         domain.TransactionRollback,
			Amount:                       original.Amount,
			SessionID:                    session.ID,
			RelatedExternalTransactionID: strPtr(p.OriginalExternalTransactionID),
			IsRollback:                   true,
		}
		posted, updatedWallet, err := c.engine.PostLedgerEntry(ctx, tx, session.WalletID, original.Amount, entry,
			func(t *domain.Transaction, wallet *domain.Wallet) (json.RawMessage, error) {
				return json.Marshal(domain.RollbackResponse{
					Success:       true,
					TransactionID: p.ExternalTransactionID,
					RolledBack:    true,
					Balance:       wallet.PlayableBalance,
					Currency:      wallet.Currency,
					Message:       "rolled back",
				})
			})
		if err != nil {
			if isUniqueViolation(err) {
				return errDuplicateRace
			}
			return err
		}

		result = &domain.CommandResult{
			Transaction: *posted,
			Wallet:      *updatedWallet,
			Events:      []domain.OutboxDraft{domain.NewTransactionPostedEvent(*posted)},
		}
		return nil
	})
	if err == errDuplicateRace {
		existing, ferr := c.engine.FindExistingTransaction(ctx, c.pool, p.ExternalTransactionID)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, fmt.Errorf("unique violation on %s but no row found on re-read", p.ExternalTransactionID)
		}
		return replayExisting(existing)
	}
	return result, err
}
