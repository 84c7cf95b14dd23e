//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates all casino-ledger tables in a safe order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"casino_transactions",
		"casino_game_sessions",
		"casino_wallets",
		"casino_games",
		"casino_game_providers",
		"casino_users",
		"login_attempts",
		"auth_users",
	}
	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
