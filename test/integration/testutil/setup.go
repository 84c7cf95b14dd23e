//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/attaboy/casino-ledger/internal/app"
	"github.com/attaboy/casino-ledger/internal/auth"
	"github.com/attaboy/casino-ledger/internal/guard"
	"github.com/attaboy/casino-ledger/internal/ledger"
	"github.com/attaboy/casino-ledger/internal/provider"
	"github.com/attaboy/casino-ledger/internal/repository"
	"github.com/attaboy/casino-ledger/internal/session"
	"github.com/attaboy/casino-ledger/internal/walletserver"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TestCasinoSecret   = "integration-test-casino-secret"
	TestProviderSecret = "integration-test-provider-secret"
	TestJWTSecret      = "integration-test-jwt-secret-must-be-long-enough"
	TestDBHost         = "localhost"
	TestDBPort         = 5435
	TestDBUser         = "attaboy"
	TestDBPass         = "attaboy"
	TestDBName         = "attaboy_test"
)

// TestEnv holds all resources for a casino-ledger integration test: a
// wallet server (the signature-gated callback surface) and an admin
// server (the JWT-gated read surface), both backed by the same pool.
type TestEnv struct {
	WalletServer *httptest.Server
	AdminServer  *httptest.Server
	Pool         *pgxpool.Pool
	JWTMgr       *auth.JWTManager
	Commands     *ledger.Commands
	t            *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

func testDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, TestDBName)
}

func bootstrapDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		TestDBUser, TestDBPass, TestDBHost, TestDBPort, "attaboy")
}

func ensureTestDB() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bPool, err := pgxpool.New(ctx, bootstrapDSN())
	if err != nil {
		return fmt.Errorf("connect bootstrap db: %w", err)
	}
	defer bPool.Close()

	var exists bool
	err = bPool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", TestDBName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check db exists: %w", err)
	}

	if !exists {
		_, err = bPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", TestDBName))
		if err != nil {
			return fmt.Errorf("create test db: %w", err)
		}
	}

	return nil
}

func runMigrations(pool *pgxpool.Pool) error {
	dsn := testDSN()
	projectRoot := findProjectRoot()
	migratePath := fmt.Sprintf("file://%s/db/migrations", projectRoot)

	m, err := newMigrate(migratePath, dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err.Error() != "no change" {
		return fmt.Errorf("migrate up: %w", err)
	}

	return nil
}

func findProjectRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(dir + "/go.mod"); err == nil {
			return dir
		}
		parent := dir[:max(0, len(dir)-1)]
		for parent != "" && parent[len(parent)-1] != '/' {
			parent = parent[:len(parent)-1]
		}
		if parent == "" || parent == "/" {
			break
		}
		dir = parent[:len(parent)-1]
	}
	return "."
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		if err := ensureTestDB(); err != nil {
			poolErr = err
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolCfg, err := pgxpool.ParseConfig(testDSN())
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
			return
		}

		if err := runMigrations(sharedPool); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			sharedPool.Close()
			sharedPool = nil
			return
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv wires the full dependency graph for both servers against the
// shared test database, mirroring cmd/wallet-server and cmd/admin-server.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	pool := getSharedPool(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	userRepo := repository.NewUserRepository()
	gameRepo := repository.NewGameRepository()
	walletRepo := repository.NewWalletRepository()
	sessionRepo := repository.NewSessionRepository()
	txRepo := repository.NewTransactionRepository()
	outboxRepo := repository.NewOutboxRepository()

	engine := ledger.NewEngine(walletRepo, txRepo, outboxRepo)
	registry := session.NewRegistry(userRepo, gameRepo, walletRepo, sessionRepo, pool, logger)
	commands := ledger.NewCommands(engine, registry, pool)

	breaker := guard.NewCircuitBreaker(5, 30*time.Second)
	launchClient := provider.NewLaunchClient("http://127.0.0.1:0", TestCasinoSecret, breaker, logger)

	walletRouter := walletserver.NewRouter(walletserver.Deps{
		Commands:       commands,
		Sessions:       registry,
		Launch:         launchClient,
		ProviderSecret: TestProviderSecret,
		Logger:         logger,
	})

	jwtMgr := auth.NewJWTManager(TestJWTSecret, 8*time.Hour)
	adminRouter := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		CORSAllowedOrigins: "*",
	})

	env := &TestEnv{
		WalletServer: httptest.NewServer(walletRouter),
		AdminServer:  httptest.NewServer(adminRouter),
		Pool:         pool,
		JWTMgr:       jwtMgr,
		Commands:     commands,
		t:            t,
	}

	t.Cleanup(func() {
		env.WalletServer.Close()
		env.AdminServer.Close()
		env.CleanAll()
	})

	env.CleanAll()
	return env
}
