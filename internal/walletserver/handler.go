package walletserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/guard"
	"github.com/attaboy/casino-ledger/internal/ledger"
	"github.com/attaboy/casino-ledger/internal/provider"
	"github.com/attaboy/casino-ledger/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps bundles everything the callback surface needs to serve the
// Provider↔Casino wallet contract.
type Deps struct {
	Commands       *ledger.Commands
	Sessions       *session.Registry
	Launch         *provider.LaunchClient
	ProviderSecret string
	Logger         *slog.Logger
}

// NewRouter builds the casino server's chi.Router: the Provider-signed
// callback group under /casino/{getBalance,debit,credit,rollback}, and the
// Casino-initiated, non-signature-gated /casino/launchGame.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			deps.Logger.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"request_id", middleware.GetReqID(req.Context()))
			next.ServeHTTP(w, req)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	callbackLimiter := guard.NewRateLimiter(600, time.Minute)

	r.Route("/casino", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimitByIP(callbackLimiter))
			r.Use(deps.verifyProviderSignature)
			r.Post("/getBalance", deps.handleGetBalance)
			r.Post("/debit", deps.handleDebit)
			r.Post("/credit", deps.handleCredit)
			r.Post("/rollback", deps.handleRollback)
		})
		r.Post("/launchGame", deps.handleLaunchGame)
	})

	return r
}

// rateLimitByIP rejects requests over rl's per-IP limit before the body is
// even read, ahead of signature verification.
func rateLimitByIP(rl *guard.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := rl.Check(r.Context(), clientIP(r))
			if !result.Allowed {
				writeError(w, domain.ErrRateLimited(result.Reason))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// verifyProviderSignature reads the raw request body, verifies it against
// x-provider-signature under PROVIDER_SECRET with no re-serialization, and
// restores the body so handlers decode the exact bytes that were verified.
func (d Deps) verifyProviderSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.ProviderSecret == "" {
			writeError(w, domain.ErrInternal("provider secret not configured", nil))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, domain.ErrValidation("could not read request body"))
			return
		}
		r.Body.Close()

		sig := r.Header.Get(provider.ProviderSignatureHeader)
		if !provider.Verify(body, d.ProviderSecret, sig) {
			d.Logger.Warn("provider signature mismatch", "path", r.URL.Path)
			writeError(w, domain.ErrSignatureInvalid("signature verification failed"))
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

type getBalanceRequest struct {
	SessionToken string `json:"sessionToken"`
}

func (d Deps) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	var req getBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("malformed request body"))
		return
	}

	_, wallet, err := d.Commands.GetBalance(r.Context(), req.SessionToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.BalanceResponse{
		Success:  true,
		Balance:  wallet.PlayableBalance,
		Currency: wallet.Currency,
	})
}

type debitRequest struct {
	SessionToken  string `json:"sessionToken"`
	TransactionID string `json:"transactionId"`
	RoundID       string `json:"roundId"`
	Amount        int64  `json:"amount"`
}

func (d Deps) handleDebit(w http.ResponseWriter, r *http.Request) {
	var req debitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("malformed request body"))
		return
	}

	result, err := d.Commands.Debit(r.Context(), req.SessionToken, domain.DebitParams{
		SessionToken:          req.SessionToken,
		ExternalTransactionID: req.TransactionID,
		RoundID:               req.RoundID,
		Amount:                req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCachedResult(w, result)
}

type creditRequest struct {
	SessionToken         string `json:"sessionToken"`
	TransactionID        string `json:"transactionId"`
	RoundID              string `json:"roundId"`
	Amount               int64  `json:"amount"`
	RelatedTransactionID string `json:"relatedTransactionId,omitempty"`
}

func (d Deps) handleCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("malformed request body"))
		return
	}

	result, err := d.Commands.Credit(r.Context(), req.SessionToken, domain.CreditParams{
		SessionToken:                 req.SessionToken,
		ExternalTransactionID:        req.TransactionID,
		RoundID:                      req.RoundID,
		Amount:                       req.Amount,
		RelatedExternalTransactionID: req.RelatedTransactionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCachedResult(w, result)
}

type rollbackRequest struct {
	SessionToken          string `json:"sessionToken"`
	TransactionID         string `json:"transactionId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	Reason                string `json:"reason,omitempty"`
}

func (d Deps) handleRollback(w http.ResponseWriter, r *http.Request) {
	var req rollbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("malformed request body"))
		return
	}

	result, err := d.Commands.Rollback(r.Context(), req.SessionToken, domain.RollbackParams{
		SessionToken:                  req.SessionToken,
		ExternalTransactionID:         req.TransactionID,
		OriginalExternalTransactionID: req.OriginalTransactionID,
		Reason:                        req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeCachedResult(w, result)
}

type launchGameRequest struct {
	UserID   string `json:"userId"`
	GameID   string `json:"gameId"`
	Currency string `json:"currency,omitempty"`
}

func (d Deps) handleLaunchGame(w http.ResponseWriter, r *http.Request) {
	var req launchGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrValidation("malformed request body"))
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		writeError(w, domain.ErrValidation(err.Error()))
		return
	}

	userID, err := parseUUID(req.UserID)
	if err != nil {
		writeError(w, domain.ErrValidation("invalid userId"))
		return
	}
	gameID, err := parseUUID(req.GameID)
	if err != nil {
		writeError(w, domain.ErrValidation("invalid gameId"))
		return
	}

	result, err := d.Sessions.Launch(r.Context(), userID, gameID, currency)
	if err != nil {
		writeError(w, err)
		return
	}

	notifyResp, notifyErr := d.Launch.NotifyLaunch(r.Context(), provider.ProviderLaunchRequest{
		SessionID:    result.SessionID.String(),
		SessionToken: result.Token,
		UserID:       userID.String(),
		GameID:       gameID.String(),
		Currency:     currency,
	})
	if notifyErr != nil {
		d.Logger.Warn("provider launch notification failed", "session_id", result.SessionID, "error", notifyErr)
	} else if notifyResp != nil && notifyResp.ProviderSessionID != "" {
		d.Sessions.AttachProviderSession(r.Context(), result.SessionID, notifyResp.ProviderSessionID)
	}

	writeJSON(w, http.StatusOK, domain.LaunchResponse{
		Success:      true,
		SessionID:    result.SessionID.String(),
		SessionToken: result.Token,
		Balance:      result.Balance,
		Currency:     result.Currency,
	})
}
