//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/ledger"
	"github.com/attaboy/casino-ledger/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayHarness_DebitCreditRollbackSequenceSatisfiesInvariants(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	harness := ledger.NewReplayHarness(env.Commands)
	extID := func(suffix string) string { return "replay-" + uuid.New().String()[:8] + "-" + suffix }

	debitID := extID("debit")
	creditID := extID("credit")
	rollbackID := extID("rollback")

	commands := []ledger.ReplayCommand{
		{Type: "debit", Params: domain.DebitParams{
			SessionToken:          fx.token,
			ExternalTransactionID: debitID,
			RoundID:               "round-1",
			Amount:                2500,
		}},
		{Type: "credit", Params: domain.CreditParams{
			SessionToken:          fx.token,
			ExternalTransactionID: creditID,
			RoundID:               "round-1",
			Amount:                4000,
		}},
		{Type: "rollback", Params: domain.RollbackParams{
			SessionToken:                  fx.token,
			ExternalTransactionID:         rollbackID,
			OriginalExternalTransactionID: debitID,
		}},
	}

	result, err := harness.Execute(context.Background(), fx.token, commands)
	require.NoError(t, err)

	assert.Equal(t, fx.walletID, result.WalletID)
	assert.Equal(t, 3, result.TransactionCount)
	assert.Equal(t, int64(10000-2500+4000+2500), result.FinalBalance)
	assert.True(t, result.AllPassed, "invariants: %+v", result.Invariants)

	testutil.AssertWalletBalance(t, env, fx.walletID, result.FinalBalance)
	assert.Equal(t, 3, testutil.CountTransactions(t, env, fx.walletID))
}

func TestReplayHarness_UnknownCommandTypeFails(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 1000)

	harness := ledger.NewReplayHarness(env.Commands)
	_, err := harness.Execute(context.Background(), fx.token, []ledger.ReplayCommand{
		{Type: "teleport", Params: nil},
	})
	assert.Error(t, err)
}
