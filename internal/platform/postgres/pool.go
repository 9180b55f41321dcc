// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx connection pool shared by every store.
//
// Accounts, roles, permissions and assignments all live in the access schema
// of a single database; repositories receive the pool by constructor and
// never open connections of their own.
package postgres

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/kassa/internal/platform/constants"
)

const (
	maxConnLifetime   = time.Hour
	maxConnIdleTime   = 10 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// Options sizes the pool. Zero values fall back to pgxpool defaults.
type Options struct {
	MaxConns int32
	MinConns int32
	// ApplicationName tags server-side sessions (pg_stat_activity).
	ApplicationName string
}

/*
NewPool creates the pool and verifies connectivity.

Every physical connection gets a statement timeout equal to the request
deadline, so an abandoned query cannot outlive its request.

Parameters:
  - context: Deadline for the initial connection
  - dsn: postgres:// URL
  - options: Options
  - logger: *slog.Logger

Returns:
  - *pgxpool.Pool: Ready pool
  - error: Parse, connect or ping failures
*/
func NewPool(context stdctx.Context, dsn string, options Options, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	if options.MaxConns > 0 {
		poolConfig.MaxConns = options.MaxConns
	}
	if options.MinConns > 0 {
		poolConfig.MinConns = options.MinConns
	}
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout
	if options.ApplicationName != "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = options.ApplicationName
	}

	poolConfig.AfterConnect = func(connectContext stdctx.Context, connection *pgx.Conn) error {
		timeout := fmt.Sprintf("SET statement_timeout = '%dms'", constants.GlobalRequestTimeout.Milliseconds())
		_, err := connection.Exec(connectContext, timeout)
		return err
	}

	pool, err := pgxpool.NewWithConfig(context, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(context, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.Int("max_conns", int(poolConfig.MaxConns)),
		slog.String("database", poolConfig.ConnConfig.Database),
	)
	return pool, nil
}

// Ping checks the pool with a short deadline. Used by the readiness probe.
func Ping(context stdctx.Context, pool *pgxpool.Pool) error {
	pingContext, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingContext); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}
	return nil
}
