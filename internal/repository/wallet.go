package repository

import (
	"context"
	"fmt"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type walletRepo struct{}

// NewWalletRepository returns a pgx-backed WalletRepository.
func NewWalletRepository() WalletRepository {
	return &walletRepo{}
}

func (r *walletRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Wallet, error) {
	row := db.QueryRow(ctx, `
		SELECT id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at
		FROM casino_wallets WHERE id = $1`, id)
	return scanWallet(row)
}

func (r *walletRepo) FindByUserAndCurrency(ctx context.Context, db DBTX, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	row := db.QueryRow(ctx, `
		SELECT id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at
		FROM casino_wallets WHERE user_id = $1 AND currency = $2`, userID, currency)
	return scanWallet(row)
}

func (r *walletRepo) GetOrCreate(ctx context.Context, db DBTX, userID uuid.UUID, currency string) (*domain.Wallet, error) {
	w, err := r.FindByUserAndCurrency(ctx, db, userID, currency)
	if err != nil {
		return nil, err
	}
	if w != nil {
		return w, nil
	}
	row := db.QueryRow(ctx, `
		INSERT INTO casino_wallets (id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, now(), now())
		ON CONFLICT (user_id, currency) DO UPDATE SET updated_at = casino_wallets.updated_at
		RETURNING id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at`,
		uuid.New(), userID, currency)
	return scanWallet(row)
}

func (r *walletRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at
		FROM casino_wallets WHERE id = $1 FOR UPDATE`, id)
	return scanWallet(row)
}

// ApplyDelta adjusts playable_balance by delta using server-side arithmetic.
// redeemable_balance is never part of this statement; the ledger is the only writer
// of playable_balance and it never touches the redeemable column.
func (r *walletRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, delta int64) (*domain.Wallet, error) {
	row := tx.QueryRow(ctx, `
		UPDATE casino_wallets
		SET playable_balance = playable_balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at`,
		infra.Int64ToNumeric(delta), walletID)
	return scanWallet(row)
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	var w domain.Wallet
	var playableNum, redeemableNum pgtype.Numeric
	err := row.Scan(&w.ID, &w.UserID, &w.Currency, &playableNum, &redeemableNum, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}

	var convErr error
	w.PlayableBalance, convErr = infra.NumericToInt64(playableNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert playable_balance: %w", convErr)
	}
	w.RedeemableBalance, convErr = infra.NumericToInt64(redeemableNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert redeemable_balance: %w", convErr)
	}

	return &w, nil
}
