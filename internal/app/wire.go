package app

import (
	"log/slog"

	"github.com/attaboy/casino-ledger/internal/auth"
	"github.com/attaboy/casino-ledger/internal/handler"
	"github.com/attaboy/casino-ledger/internal/repository"
	"github.com/attaboy/casino-ledger/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds the dependencies for the back-office admin API: session
// lookup/end and wallet transaction history, gated behind the admin JWT
// realm. This is a separate surface from the signature-gated provider
// callback router assembled by walletserver.NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	CORSAllowedOrigins string
}

// NewRouter assembles the admin chi.Router.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	logger := deps.Logger

	sessionRepo := repository.NewSessionRepository()
	userRepo := repository.NewUserRepository()
	gameRepo := repository.NewGameRepository()
	walletRepo := repository.NewWalletRepository()
	txRepo := repository.NewTransactionRepository()
	authUserRepo := repository.NewPgAuthUserRepository()

	sessions := session.NewRegistry(userRepo, gameRepo, walletRepo, sessionRepo, pool, logger)

	r := chi.NewRouter()
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(pool))

	handler.RegisterAdminRoutes(r, handler.AdminDeps{
		Pool:         pool,
		Sessions:     sessions,
		Transactions: txRepo,
		AuthUsers:    authUserRepo,
		JWTManager:   deps.JWTMgr,
		Logger:       logger,
	})

	return r
}
