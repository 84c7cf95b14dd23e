//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/attaboy/casino-ledger/internal/provider"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SeedUser inserts a casino user and returns its id.
func (env *TestEnv) SeedUser(username, email string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO casino_users (id, username, email, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())`, id, username, email)
	if err != nil {
		env.t.Fatalf("SeedUser: %v", err)
	}
	return id
}

// SeedProviderAndGame inserts a game provider and one of its games, returning both ids.
func (env *TestEnv) SeedProviderAndGame(providerName, gameName string) (providerID, gameID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	providerID = uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO casino_game_providers (id, name, slug) VALUES ($1, $2, $3)`,
		providerID, providerName, providerName+"-"+providerID.String()[:8])
	if err != nil {
		env.t.Fatalf("SeedProviderAndGame: insert provider: %v", err)
	}

	gameID = uuid.New()
	_, err = env.Pool.Exec(ctx, `
		INSERT INTO casino_games (id, provider_id, name, slug) VALUES ($1, $2, $3, $4)`,
		gameID, providerID, gameName, gameName+"-"+gameID.String()[:8])
	if err != nil {
		env.t.Fatalf("SeedProviderAndGame: insert game: %v", err)
	}
	return providerID, gameID
}

// SeedWallet creates a wallet for a user/currency pair with the given
// playable balance and returns its id.
func (env *TestEnv) SeedWallet(userID uuid.UUID, currency string, playableBalance int64) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO casino_wallets (id, user_id, currency, playable_balance, redeemable_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, now(), now())`, id, userID, currency, playableBalance)
	if err != nil {
		env.t.Fatalf("SeedWallet: %v", err)
	}
	return id
}

// SeedSession inserts an active game session and returns its token.
func (env *TestEnv) SeedSession(userID, walletID, gameID, providerID uuid.UUID) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	token := uuid.New().String() + uuid.New().String()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO casino_game_sessions (id, token, user_id, wallet_id, game_id, provider_id, provider_session_id, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, true, now())`,
		uuid.New(), token, userID, walletID, gameID, providerID)
	if err != nil {
		env.t.Fatalf("SeedSession: %v", err)
	}
	return token
}

// SeedAdminUser inserts a back-office operator account and returns its id.
func (env *TestEnv) SeedAdminUser(email, password, role string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		env.t.Fatalf("SeedAdminUser: hash: %v", err)
	}

	id := uuid.New()
	_, err = env.Pool.Exec(ctx, `
		INSERT INTO auth_users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())`, id, email, string(hash), role)
	if err != nil {
		env.t.Fatalf("SeedAdminUser: %v", err)
	}
	return id
}

// AdminToken logs an admin in through the real HTTP endpoint and returns the issued JWT.
func (env *TestEnv) AdminToken(email, password string) string {
	env.t.Helper()
	resp := env.AdminPOST("/admin/login", map[string]string{"email": email, "password": password}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("AdminToken: login failed with status %d", resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		env.t.Fatalf("AdminToken: decode: %v", err)
	}
	return body.Token
}

// SignedPost marshals body, signs it under the provider secret, and POSTs
// it to the wallet server with the x-provider-signature header set.
func (env *TestEnv) SignedPost(path string, body interface{}) *http.Response {
	env.t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		env.t.Fatalf("SignedPost: marshal: %v", err)
	}
	sig := provider.Sign(raw, TestProviderSecret)

	req, err := http.NewRequest(http.MethodPost, env.WalletServer.URL+path, bytes.NewReader(raw))
	if err != nil {
		env.t.Fatalf("SignedPost: new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(provider.ProviderSignatureHeader, sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("SignedPost %s: %v", path, err)
	}
	return resp
}

// UnsignedPost POSTs raw JSON to the wallet server with a caller-supplied
// (possibly wrong or absent) signature header.
func (env *TestEnv) UnsignedPost(path string, body interface{}, signature string) *http.Response {
	env.t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		env.t.Fatalf("UnsignedPost: marshal: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, env.WalletServer.URL+path, bytes.NewReader(raw))
	if err != nil {
		env.t.Fatalf("UnsignedPost: new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(provider.ProviderSignatureHeader, signature)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("UnsignedPost %s: %v", path, err)
	}
	return resp
}

// WalletPost POSTs unsigned JSON to the wallet server (for launchGame, which
// carries no signature requirement).
func (env *TestEnv) WalletPost(path string, body interface{}) *http.Response {
	env.t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		env.t.Fatalf("WalletPost: marshal: %v", err)
	}
	resp, err := http.Post(env.WalletServer.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		env.t.Fatalf("WalletPost %s: %v", path, err)
	}
	return resp
}

// AdminGET performs an authenticated GET against the admin server.
func (env *TestEnv) AdminGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest(http.MethodGet, env.AdminServer.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AdminGET %s: new request: %v", path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AdminGET %s: %v", path, err)
	}
	return resp
}

// AdminPOST performs a POST against the admin server, optionally authenticated.
func (env *TestEnv) AdminPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("AdminPOST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, env.AdminServer.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("AdminPOST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AdminPOST %s: %v", path, err)
	}
	return resp
}
