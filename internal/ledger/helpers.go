package ledger

import (
	"encoding/json"
	"errors"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

// errDuplicateRace signals that an insert lost a race against a concurrent
// insert of the same external_transaction_id. The unique index is the
// correctness anchor; losing this race means re-reading the winner's row.
var errDuplicateRace = errors.New("ledger: duplicate transaction id race")

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// replayExisting turns a prior ledger entry into the response the caller
// receives on a duplicate submission: the exact cached response, unchanged.
func replayExisting(existing *domain.Transaction) (*domain.CommandResult, error) {
	return &domain.CommandResult{Transaction: *existing, Idempotent: true}, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func ensureJSON(data json.RawMessage) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage(`{}`)
	}
	return data
}
