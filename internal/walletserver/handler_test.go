package walletserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestVerifyProviderSignature(t *testing.T) {
	secret := "provider-secret"
	deps := Deps{ProviderSecret: secret, Logger: discardLogger()}

	var receivedBody []byte
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid signature passes through with body intact", func(t *testing.T) {
		body := []byte(`{"sessionToken":"abc"}`)
		req := httptest.NewRequest(http.MethodPost, "/casino/getBalance", bytes.NewReader(body))
		req.Header.Set(provider.ProviderSignatureHeader, provider.Sign(body, secret))
		w := httptest.NewRecorder()

		deps.verifyProviderSignature(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, body, receivedBody)
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		body := []byte(`{"sessionToken":"abc"}`)
		req := httptest.NewRequest(http.MethodPost, "/casino/getBalance", bytes.NewReader(body))
		w := httptest.NewRecorder()

		deps.verifyProviderSignature(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp domain.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "SIGNATURE_INVALID", resp.Code)
	})

	t.Run("tampered body is rejected", func(t *testing.T) {
		body := []byte(`{"sessionToken":"abc"}`)
		sig := provider.Sign(body, secret)
		tampered := []byte(`{"sessionToken":"xyz"}`)
		req := httptest.NewRequest(http.MethodPost, "/casino/getBalance", bytes.NewReader(tampered))
		req.Header.Set(provider.ProviderSignatureHeader, sig)
		w := httptest.NewRecorder()

		deps.verifyProviderSignature(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing configured secret is a 500, not a silent pass", func(t *testing.T) {
		unconfigured := Deps{Logger: discardLogger()}
		body := []byte(`{}`)
		req := httptest.NewRequest(http.MethodPost, "/casino/getBalance", bytes.NewReader(body))
		w := httptest.NewRecorder()

		unconfigured.verifyProviderSignature(next).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestWriteError(t *testing.T) {
	t.Run("AppError maps status and code", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeError(w, domain.ErrInvalidSession("token not found"))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp domain.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "INVALID_SESSION", resp.Code)
		assert.False(t, resp.Success)
	})

	t.Run("non-AppError falls back to 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeError(w, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestWriteCachedResult(t *testing.T) {
	t.Run("writes the stored response bytes verbatim", func(t *testing.T) {
		cache, err := json.Marshal(domain.DebitResponse{Success: true, TransactionID: "tx-1", Balance: 900, Currency: "USD"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		writeCachedResult(w, &domain.CommandResult{
			Transaction: domain.Transaction{ResponseCache: cache},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, string(cache), w.Body.String())
	})
}

func TestParseUUID(t *testing.T) {
	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := parseUUID("not-a-uuid")
		assert.Error(t, err)
	})
}
