package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/attaboy/casino-ledger/internal/auth"
	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/guard"
	"github.com/attaboy/casino-ledger/internal/repository"
	"github.com/attaboy/casino-ledger/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AdminDeps bundles what the back-office read surface needs: the session
// registry for lookup/end, direct transaction history reads, and the admin
// JWT realm for authentication. This is a genuinely separate concern from
// the Provider<->Casino HMAC signature gate.
type AdminDeps struct {
	Pool         *pgxpool.Pool
	Sessions     *session.Registry
	Transactions repository.TransactionRepository
	AuthUsers    repository.AuthUserRepository
	JWTManager   *auth.JWTManager
	Logger       *slog.Logger
}

// RegisterAdminRoutes mounts the admin login and read surface onto r. Login
// carries its own per-IP rate limit ahead of the email-keyed lockout in
// handleLogin, since the lockout alone doesn't slow an attacker rotating
// through many email addresses from one source.
func RegisterAdminRoutes(r chi.Router, deps AdminDeps) {
	loginLimiter := guard.NewRateLimiter(20, time.Minute)
	r.With(RateLimitMiddleware(loginLimiter, ClientIP)).Post("/admin/login", deps.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(deps.JWTManager))
		r.Get("/admin/sessions/{token}", deps.handleGetSession)
		r.Post("/admin/sessions/{token}/end", deps.handleEndSession)
		r.Get("/admin/wallets/{id}/transactions", deps.handleWalletTransactions)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (d AdminDeps) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("malformed request body"))
		return
	}

	ip := ClientIP(r)
	if err := guard.CheckLocked(r.Context(), d.Pool, req.Email, "admin"); err != nil {
		RespondError(w, err)
		return
	}

	user, err := d.AuthUsers.FindByEmail(r.Context(), d.Pool, req.Email)
	if err != nil {
		RespondError(w, domain.ErrInternal("login failed", err))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		guard.RecordAttempt(r.Context(), d.Pool, req.Email, "admin", ip, false)
		RespondError(w, domain.ErrUnauthorized("invalid credentials"))
		return
	}

	guard.RecordAttempt(r.Context(), d.Pool, req.Email, "admin", ip, true)

	token, err := d.JWTManager.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		RespondError(w, domain.ErrInternal("token generation failed", err))
		return
	}

	RespondJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (d AdminDeps) handleGetSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	s, err := d.Sessions.Resolve(r.Context(), d.Pool, token)
	if err != nil {
		RespondError(w, err)
		return
	}
	if s == nil {
		RespondError(w, domain.ErrNotFound("session", token))
		return
	}
	RespondJSON(w, http.StatusOK, s)
}

func (d AdminDeps) handleEndSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	s, err := d.Sessions.End(r.Context(), token)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, s)
}

func (d AdminDeps) handleWalletTransactions(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	walletID, err := uuid.Parse(idParam)
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid wallet id"))
		return
	}

	txs, err := d.Transactions.FindByWalletID(r.Context(), d.Pool, walletID)
	if err != nil {
		RespondError(w, domain.ErrInternal("failed to load transactions", err))
		return
	}
	RespondJSON(w, http.StatusOK, txs)
}
