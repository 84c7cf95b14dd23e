package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Debit implements the debit path: duplicate-first lookup, session
// resolution, amount validation, then a single transaction that locks the
// wallet, checks funds, decrements the balance, and appends the entry.
func (c *Commands) Debit(ctx context.Context, sessionToken string, p domain.DebitParams) (*domain.CommandResult, error) {
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

	if err := domain.ValidatePositiveAmount(p.Amount); err != nil {
		return nil, domain.ErrInvalidAmount(err.Error())
	}

	var result *domain.CommandResult
	err = pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		wallet, err := c.engine.LockWalletForUpdate(ctx, tx, session.WalletID)
		if err != nil {
			return err
		}
		if wallet.PlayableBalance < p.Amount {
			return domain.ErrInsufficientFunds()
		}

		entry := &domain.Transaction{
			ExternalTransactionID: p.ExternalTransactionID,
			Kind:                  domain.TransactionDebit,
			Amount:                p.Amount,
			SessionID:             session.ID,
			RoundID:               strPtr(p.RoundID),
		}

		posted, updatedWallet, err := c.engine.PostLedgerEntry(ctx, tx, session.WalletID, -p.Amount, entry,
			func(t *domain.Transaction, wallet *domain.Wallet) (json.RawMessage, error) {
				return json.Marshal(domain.DebitResponse{
					Success:       true,
					TransactionID: p.ExternalTransactionID,
					Balance:       wallet.PlayableBalance,
					Currency:      wallet.Currency,
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
	if err != nil {
		return nil, err
	}
	return result, nil
}
