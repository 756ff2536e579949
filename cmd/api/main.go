package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/common/handler"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/config"
	"github.com/Soul-Brews-Studio/shrimp-oracle/internal/identity"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/chainlink"
	pkgdb "github.com/Soul-Brews-Studio/shrimp-oracle/pkg/db"
	"github.com/Soul-Brews-Studio/shrimp-oracle/pkg/nonce"
	pkgredis "github.com/Soul-Brews-Studio/shrimp-oracle/pkg/redis"
)

// @title Shrimp Oracle Auth API
// @version 1.0
// @description Sign-In with Ethereum using Chainlink rounds as proof-of-time nonces

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// 1) Logger
	logger, err := initLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 2) Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	logger.Info("starting server",
		zap.String("environment", cfg.Server.Environment),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("store", cfg.Store.Backend),
		zap.String("feed", cfg.Chain.FeedName),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()

	// 3) Identity store
	store, closeStore, err := initStore(startCtx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize identity store", zap.Error(err))
	}
	defer closeStore()

	// 4) Chain RPC + feed reader
	eth, err := chainlink.Dial(startCtx, cfg.Chain.RPCURL)
	if err != nil {
		logger.Fatal("failed to connect to chain rpc", zap.Error(err))
	}
	defer eth.Close()

	reader, err := chainlink.NewReader(eth, chainlink.Config{
		FeedAddress: cfg.Chain.FeedAddress,
		Decimals:    cfg.Chain.Decimals,
		FeedName:    cfg.Chain.FeedName,
	})
	if err != nil {
		logger.Fatal("failed to create feed reader", zap.Error(err))
	}

	// 5) Redis (optional): nonce cache + rate limiting
	rdb, nonces := initNonceSource(startCtx, cfg, reader, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	// 6) Router
	checks := []handler.Check{
		{Name: "store", Probe: store.Ping},
		{Name: "rpc", Probe: func(ctx context.Context) error { return chainlink.Ping(ctx, eth) }},
	}
	if rdb != nil {
		checks = append(checks, handler.Check{Name: "redis", Probe: func(ctx context.Context) error { return pkgredis.Ping(ctx, rdb) }})
	}

	router, err := setupRouter(cfg, logger, dependencies{
		store:  store,
		oracle: reader,
		nonces: nonces,
		redis:  rdb,
		checks: checks,
	})
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	// 7) HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port)),
	)

	// 8) Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func initLogger() (*zap.Logger, error) {
	env := os.Getenv("ENVIRONMENT")
	if env == config.EnvProduction {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// initStore opens the configured backend and runs migrations when enabled
func initStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (identity.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory identity store; identities are lost on restart")
		return identity.NewMemoryStore(), func() {}, nil

	case config.BackendPostgres:
		pool, err := pkgdb.NewPostgres(ctx, pkgdb.PostgresConfig{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			return nil, nil, err
		}
		store := identity.NewPostgresStore(pool, logger)
		if err := migrate(ctx, cfg, store); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, closePool(pool), nil

	default:
		db, err := pkgdb.New(pkgdb.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Name:            cfg.Database.Name,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := pkgdb.Ping(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		store := identity.NewMySQLStore(pkgdb.NewTxRunner(db), logger)
		if err := migrate(ctx, cfg, store); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, closeDB(db), nil
	}
}

type migrator interface {
	Migrate(ctx context.Context) error
}

func migrate(ctx context.Context, cfg *config.Config, m migrator) error {
	if !cfg.Store.AutoMigrate {
		return nil
	}
	return m.Migrate(ctx)
}

func closePool(pool *pgxpool.Pool) func() { return pool.Close }

func closeDB(db *sql.DB) func() { return func() { _ = db.Close() } }

// initNonceSource caches rounds in Redis when it is reachable, otherwise reads the oracle directly
func initNonceSource(ctx context.Context, cfg *config.Config, reader chainlink.RoundReader, logger *zap.Logger) (*goredis.Client, nonce.Source) {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled; nonce cache and rate limiting are off")
		return nil, nonce.NewDirect(reader)
	}

	rdb, err := pkgredis.Connect(ctx, pkgredis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Warn("redis unavailable; continuing without nonce cache and rate limiting", zap.Error(err))
		return nil, nonce.NewDirect(reader)
	}

	return rdb, nonce.NewRedisSourceWithTTL(rdb, reader, cfg.Chain.FeedName, cfg.Auth.NonceCacheTTL, logger)
}
