package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/attaboy/casino-ledger/internal/domain"
	"github.com/attaboy/casino-ledger/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry implements the session registry: launch, resolve,
// attach_provider_session, and end.
type Registry struct {
	users    repository.UserRepository
	games    repository.GameRepository
	wallets  repository.WalletRepository
	sessions repository.SessionRepository
	pool     *pgxpool.Pool
	logger   *slog.Logger
}

// NewRegistry creates a session registry.
func NewRegistry(
	users repository.UserRepository,
	games repository.GameRepository,
	wallets repository.WalletRepository,
	sessions repository.SessionRepository,
	pool *pgxpool.Pool,
	logger *slog.Logger,
) *Registry {
	return &Registry{users: users, games: games, wallets: wallets, sessions: sessions, pool: pool, logger: logger}
}

// Launch resolves the user, game, and provider, gets or creates the
// user's wallet for the given currency, and inserts a new active session
// with a fresh 256-bit token.
func (r *Registry) Launch(ctx context.Context, userID, gameID uuid.UUID, currency string) (*domain.LaunchResult, error) {
	user, err := r.users.FindByID(ctx, r.pool, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound(userID.String())
	}

	game, err := r.games.FindGameByID(ctx, r.pool, gameID)
	if err != nil {
		return nil, fmt.Errorf("find game: %w", err)
	}
	if game == nil {
		return nil, domain.ErrGameNotFound(gameID.String())
	}

	provider, err := r.games.FindProviderByID(ctx, r.pool, game.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		return nil, domain.ErrProviderNotFound(game.ProviderID.String())
	}

	wallet, err := r.wallets.GetOrCreate(ctx, r.pool, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("get or create wallet: %w", err)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	s := &domain.Session{
		ID:       uuid.New(),
		Token:    token,
		UserID:   userID,
		WalletID: wallet.ID,
		GameID:   gameID,
		Active:   true,
	}
	s.ProviderID = provider.ID

	if err := r.sessions.Insert(ctx, r.pool, s); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	return &domain.LaunchResult{
		SessionID: s.ID,
		Token:     s.Token,
		Balance:   wallet.PlayableBalance,
		Currency:  wallet.Currency,
	}, nil
}

// Resolve returns the active session for a token, or nil if no such
// active session exists.
func (r *Registry) Resolve(ctx context.Context, db repository.DBTX, token string) (*domain.Session, error) {
	s, err := r.sessions.FindByToken(ctx, db, token)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	return s, nil
}

// AttachProviderSession records the provider's own session id. Failure is
// non-fatal: the launched session remains valid without it.
func (r *Registry) AttachProviderSession(ctx context.Context, sessionID uuid.UUID, providerSessionID string) {
	if err := r.sessions.AttachProviderSession(ctx, r.pool, sessionID, providerSessionID); err != nil {
		r.logger.Warn("attach provider session failed", "session_id", sessionID, "error", err)
	}
}

// End marks the session inactive.
func (r *Registry) End(ctx context.Context, token string) (*domain.Session, error) {
	s, err := r.sessions.End(ctx, r.pool, token)
	if err != nil {
		return nil, fmt.Errorf("end session: %w", err)
	}
	if s == nil {
		return nil, domain.ErrInvalidSession("session token not found")
	}
	return s, nil
}
