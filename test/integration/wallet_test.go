//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/attaboy/casino-ledger/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type walletFixture struct {
	userID     uuid.UUID
	walletID   uuid.UUID
	providerID uuid.UUID
	gameID     uuid.UUID
	token      string
}

func seedWallet(t *testing.T, env *testutil.TestEnv, currency string, balance int64) walletFixture {
	t.Helper()
	userID := env.SeedUser("player_"+uuid.New().String()[:8], uuid.New().String()[:8]+"@example.com")
	providerID, gameID := env.SeedProviderAndGame("Pragmatic Play", "Book of Gold")
	walletID := env.SeedWallet(userID, currency, balance)
	token := env.SeedSession(userID, walletID, gameID, providerID)
	return walletFixture{userID: userID, walletID: walletID, providerID: providerID, gameID: gameID, token: token}
}

func TestGetBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	resp := env.SignedPost("/casino/getBalance", map[string]string{"sessionToken": fx.token})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	var body struct {
		Success  bool   `json:"success"`
		Balance  int64  `json:"balance"`
		Currency string `json:"currency"`
	}
	testutil.DecodeJSON(t, resp, &body)
	assert.True(t, body.Success)
	assert.Equal(t, int64(10000), body.Balance)
	assert.Equal(t, "USD", body.Currency)
}

func TestGetBalance_UnknownSessionIsRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.SignedPost("/casino/getBalance", map[string]string{"sessionToken": "does-not-exist"})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, resp, "INVALID_SESSION")
}

func TestDebit_DeductsBalanceAndAppendsLedgerEntry(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	resp := env.SignedPost("/casino/debit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "bet-1",
		"roundId":       "round-1",
		"amount":        1500,
	})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	testutil.AssertWalletBalance(t, env, fx.walletID, 8500)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, fx.walletID))
}

func TestDebit_DuplicateTransactionIDReplaysOriginalResponse(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	req := map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "bet-dup-1",
		"roundId":       "round-1",
		"amount":        1500,
	}

	first := env.SignedPost("/casino/debit", req)
	defer first.Body.Close()
	testutil.AssertStatus(t, first, http.StatusOK)
	var firstBody map[string]interface{}
	testutil.DecodeJSON(t, first, &firstBody)

	second := env.SignedPost("/casino/debit", req)
	defer second.Body.Close()
	testutil.AssertStatus(t, second, http.StatusOK)
	var secondBody map[string]interface{}
	testutil.DecodeJSON(t, second, &secondBody)

	assert.Equal(t, firstBody, secondBody)
	testutil.AssertWalletBalance(t, env, fx.walletID, 8500)
	assert.Equal(t, 1, testutil.CountTransactions(t, env, fx.walletID), "duplicate must not append a second ledger entry")
}

func TestDebit_InsufficientFundsRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 500)

	resp := env.SignedPost("/casino/debit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "bet-2",
		"roundId":       "round-2",
		"amount":        1500,
	})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "INSUFFICIENT_FUNDS")
	testutil.AssertWalletBalance(t, env, fx.walletID, 500)
}

func TestCredit_IncreasesBalance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 8500)

	resp := env.SignedPost("/casino/credit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "win-1",
		"roundId":       "round-1",
		"amount":        3000,
	})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)
	testutil.AssertWalletBalance(t, env, fx.walletID, 11500)
}

func TestRollback_OfDebitRefundsAmount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	debit := env.SignedPost("/casino/debit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "bet-3",
		"roundId":       "round-3",
		"amount":        2000,
	})
	debit.Body.Close()
	testutil.AssertWalletBalance(t, env, fx.walletID, 8000)

	rollback := env.SignedPost("/casino/rollback", map[string]interface{}{
		"sessionToken":          fx.token,
		"transactionId":         "rollback-3",
		"originalTransactionId": "bet-3",
		"reason":                "round voided",
	})
	defer rollback.Body.Close()
	testutil.AssertStatus(t, rollback, http.StatusOK)
	testutil.AssertWalletBalance(t, env, fx.walletID, 10000)
}

func TestRollback_OfCreditIsRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	credit := env.SignedPost("/casino/credit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "win-4",
		"roundId":       "round-4",
		"amount":        2000,
	})
	credit.Body.Close()

	rollback := env.SignedPost("/casino/rollback", map[string]interface{}{
		"sessionToken":          fx.token,
		"transactionId":         "rollback-4",
		"originalTransactionId": "win-4",
	})
	defer rollback.Body.Close()
	testutil.AssertStatus(t, rollback, http.StatusBadRequest)
	testutil.AssertErrorCode(t, rollback, "CANNOT_ROLLBACK_PAYOUT")
	testutil.AssertWalletBalance(t, env, fx.walletID, 12000)
}

func TestRollback_OfUnknownOriginalIsTombstoned(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	resp := env.SignedPost("/casino/rollback", map[string]interface{}{
		"sessionToken":          fx.token,
		"transactionId":         "rollback-5",
		"originalTransactionId": "never-existed",
	})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	var body struct {
		RolledBack bool `json:"rolledBack"`
		Tombstone  bool `json:"tombstone"`
	}
	testutil.DecodeJSON(t, resp, &body)
	assert.True(t, body.RolledBack)
	assert.True(t, body.Tombstone)
	testutil.AssertWalletBalance(t, env, fx.walletID, 10000)
}

func TestRollback_OfARollbackIsRejectedWithoutRecording(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	debit := env.SignedPost("/casino/debit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "bet-6",
		"roundId":       "round-6",
		"amount":        1000,
	})
	debit.Body.Close()

	first := env.SignedPost("/casino/rollback", map[string]interface{}{
		"sessionToken":          fx.token,
		"transactionId":         "rollback-6",
		"originalTransactionId": "bet-6",
	})
	first.Body.Close()
	testutil.AssertWalletBalance(t, env, fx.walletID, 10000)

	second := env.SignedPost("/casino/rollback", map[string]interface{}{
		"sessionToken":          fx.token,
		"transactionId":         "rollback-of-rollback-6",
		"originalTransactionId": "rollback-6",
	})
	defer second.Body.Close()
	testutil.AssertStatus(t, second, http.StatusOK)

	var body struct {
		RolledBack bool `json:"rolledBack"`
	}
	testutil.DecodeJSON(t, second, &body)
	assert.False(t, body.RolledBack)
	assert.Equal(t, 2, testutil.CountTransactions(t, env, fx.walletID), "rejected rollback-of-rollback must not append a new entry")
}

func TestSignatureGate_MissingSignatureRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	resp := env.UnsignedPost("/casino/getBalance", map[string]string{"sessionToken": fx.token}, "")
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	testutil.AssertErrorCode(t, resp, "SIGNATURE_INVALID")
}

func TestSignatureGate_WrongSignatureRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	resp := env.UnsignedPost("/casino/getBalance", map[string]string{"sessionToken": fx.token}, "deadbeef")
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
}

func TestLaunchGame_CreatesSessionAndWallet(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userID := env.SeedUser("launcher", "launcher@example.com")
	_, gameID := env.SeedProviderAndGame("Evolution", "Lightning Roulette")

	resp := env.WalletPost("/casino/launchGame", map[string]string{
		"userId":   userID.String(),
		"gameId":   gameID.String(),
		"currency": "EUR",
	})
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusOK)

	var body struct {
		Success      bool   `json:"success"`
		SessionToken string `json:"sessionToken"`
		Currency     string `json:"currency"`
	}
	testutil.DecodeJSON(t, resp, &body)
	require.True(t, body.Success)
	assert.NotEmpty(t, body.SessionToken)
	assert.Equal(t, "EUR", body.Currency)
}

func TestAdminLogin_WrongPasswordLocksAfterRepeatedAttempts(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.SeedAdminUser("operator@example.com", "correct-horse", "admin")

	var last *http.Response
	for i := 0; i < 6; i++ {
		resp := env.AdminPOST("/admin/login", map[string]string{
			"email":    "operator@example.com",
			"password": fmt.Sprintf("wrong-%d", i),
		}, "")
		if last != nil {
			last.Body.Close()
		}
		last = resp
	}
	defer last.Body.Close()
	testutil.AssertStatus(t, last, http.StatusTooManyRequests)
}

func TestAdminSessionLookupRequiresAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)

	resp := env.AdminGET("/admin/sessions/"+fx.token, "")
	defer resp.Body.Close()
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
}

func TestAdminSessionLookupAndWalletHistory(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fx := seedWallet(t, env, "USD", 10000)
	env.SeedAdminUser("viewer@example.com", "viewer-pass", "admin")
	token := env.AdminToken("viewer@example.com", "viewer-pass")

	debit := env.SignedPost("/casino/debit", map[string]interface{}{
		"sessionToken":  fx.token,
		"transactionId": "bet-admin-1",
		"roundId":       "round-admin-1",
		"amount":        1000,
	})
	debit.Body.Close()

	sessionResp := env.AdminGET("/admin/sessions/"+fx.token, token)
	defer sessionResp.Body.Close()
	testutil.AssertStatus(t, sessionResp, http.StatusOK)

	txResp := env.AdminGET("/admin/wallets/"+fx.walletID.String()+"/transactions", token)
	defer txResp.Body.Close()
	testutil.AssertStatus(t, txResp, http.StatusOK)

	var txs []map[string]interface{}
	testutil.DecodeJSON(t, txResp, &txs)
	assert.Len(t, txs, 1)
}
