// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Kassa access API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool) and apply migrations.
//  4. Connect to Redis when configured; it only backs the authorization cache.
//  5. Wire stores, the authorization engine and the domain services.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/access/role"
	"github.com/taibuivan/kassa/internal/api"
	"github.com/taibuivan/kassa/internal/platform/config"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/middleware"
	"github.com/taibuivan/kassa/internal/platform/migration"
	pgstore "github.com/taibuivan/kassa/internal/platform/postgres"
	redisstore "github.com/taibuivan/kassa/internal/platform/redis"
	"github.com/taibuivan/kassa/internal/platform/sec"
	"github.com/taibuivan/kassa/internal/users/account"
	"github.com/taibuivan/kassa/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	level := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String(constants.FieldApp, constants.AppName))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String(constants.FieldVersion, constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		level.Set(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("authz_cache", cfg.RedisURL != "" && cfg.AuthzCacheTTL > 0),
	)

	// Fail fast on misconfiguration instead of hanging on unreachable hosts.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.Options{
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		ApplicationName: constants.AppName,
	}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	must(log, migration.RunUp(cfg.DatabaseURL, migration.Files(cfg.MigrationPath), log), "run migrations")

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var (
		cache authz.Cache
		rdb   *goredis.Client
	)
	if cfg.RedisURL != "" && cfg.AuthzCacheTTL > 0 {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		cache = authz.NewRedisCache(rdb, cfg.AuthzCacheTTL)
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	must(log, err, "initialize token service")
	hasher := sec.NewHasher(cfg.BcryptCost)

	engine := authz.NewEngine(authz.NewPostgresSource(pool), cache, log)

	permissionService := permission.NewService(permission.NewPostgresRepository(pool), log)

	roleRepository := role.NewPostgresRepository(pool)
	roleService := role.NewService(roleRepository, roleRepository, permissionService, engine, log)

	authService := auth.NewService(auth.NewPostgresRepository(pool), tokens, hasher, engine, log)
	accountService := account.NewService(account.NewPostgresRepository(pool), authService, hasher, engine, log)

	middleware.RegisterMetrics(prometheus.DefaultRegisterer)

	// ── 6. Health handlers ────────────────────────────────────────────────
	dependencies := api.HealthDependencies{
		Database: func(context context.Context) error { return pgstore.Ping(context, pool) },
	}
	if rdb != nil {
		dependencies.Cache = func(context context.Context) error { return redisstore.Ping(context, rdb) }
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	credentialLimiter := middleware.RateLimit(constants.AuthRateLimitRPS, constants.AuthRateLimitBurst)

	server := api.NewServer(rootCtx, cfg, log, authService, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Auth:        auth.NewHandler(authService, credentialLimiter),
		Accounts:    account.NewHandler(accountService),
		Roles:       role.NewHandler(roleService),
		Assignments: role.NewAssignmentHandler(roleService),
		Permissions: permission.NewHandler(permissionService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// Only for startup wiring; request-time errors are always returned.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
