package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/infra"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type transactionRepo struct{}

// NewTransactionRepository returns a pgx-backed TransactionRepository.
func NewTransactionRepository() TransactionRepository {
	return &transactionRepo{}
}

func (r *transactionRepo) FindExisting(ctx context.Context, db DBTX, externalTransactionID string) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT id, external_transaction_id, kind, amount, wallet_id, session_id, round_id,
		       related_external_transaction_id, balance_after, response_cache, is_rollback, created_at
		FROM casino_transactions
		WHERE external_transaction_id = $1`, externalTransactionID)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByExternalID(ctx context.Context, db DBTX, externalTransactionID string) (*domain.Transaction, error) {
	return r.FindExisting(ctx, db, externalTransactionID)
}

func (r *transactionRepo) FindReversalOf(ctx context.Context, db DBTX, originalExternalTransactionID string) (*domain.Transaction, error) {
	row := db.QueryRow(ctx, `
		SELECT id, external_transaction_id, kind, amount, wallet_id, session_id, round_id,
		       related_external_transaction_id, balance_after, response_cache, is_rollback, created_at
		FROM casino_transactions
		WHERE related_external_transaction_id = $1 AND kind = 'rollback' AND amount > 0
		LIMIT 1`, originalExternalTransactionID)
	return scanTransaction(row)
}

func (r *transactionRepo) FindByWalletID(ctx context.Context, db DBTX, walletID uuid.UUID) ([]domain.Transaction, error) {
	rows, err := db.Query(ctx, `
		SELECT id, external_transaction_id, kind, amount, wallet_id, session_id, round_id,
		       related_external_transaction_id, balance_after, response_cache, is_rollback, created_at
		FROM casino_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC`, walletID)
	if err != nil {
		return nil, fmt.Errorf("query wallet transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *transactionRepo) Insert(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	cache := t.ResponseCache
	if cache == nil {
		cache = json.RawMessage(`{}`)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	row := tx.QueryRow(ctx, `
		INSERT INTO casino_transactions
			(id, external_transaction_id, kind, amount, wallet_id, session_id, round_id,
			 related_external_transaction_id, balance_after, response_cache, is_rollback, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		t.ID, t.ExternalTransactionID, string(t.Kind), infra.Int64ToNumeric(t.Amount),
		t.WalletID, t.SessionID, t.RoundID, t.RelatedExternalTransactionID,
		infra.Int64ToNumeric(t.BalanceAfter), cache, t.IsRollback, t.CreatedAt,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) MarkRolledBack(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE casino_transactions SET is_rollback = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark rolled back: %w", err)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amountNum, balanceNum pgtype.Numeric
	var kind string
	err := row.Scan(
		&t.ID, &t.ExternalTransactionID, &kind, &amountNum, &t.WalletID, &t.SessionID, &t.RoundID,
		&t.RelatedExternalTransactionID, &balanceNum, &t.ResponseCache, &t.IsRollback, &t.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = domain.TransactionKind(kind)

	var convErr error
	t.Amount, convErr = infra.NumericToInt64(amountNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert amount: %w", convErr)
	}
	t.BalanceAfter, convErr = infra.NumericToInt64(balanceNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert balance_after: %w", convErr)
	}
	return &t, nil
}
