// Copyright (c) 2026 Kassa. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command seed applies migrations, the permission catalog and the default
// roles, and optionally provisions the first administrator.
//
// It is safe to run on every deploy: permissions are upserted by name, roles
// that exist are left as operators edited them, and the administrator is only
// created when no live account holds its email or username.
//
// # Usage
//
//	seed                         # embedded catalog, admin from SEED_ADMIN_* when set
//	seed -catalog ./catalog.yaml # custom catalog file
//	seed -skip-admin             # never provision an administrator
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/taibuivan/kassa/internal/access/authz"
	"github.com/taibuivan/kassa/internal/access/permission"
	"github.com/taibuivan/kassa/internal/access/role"
	"github.com/taibuivan/kassa/internal/access/seed"
	"github.com/taibuivan/kassa/internal/platform/config"
	"github.com/taibuivan/kassa/internal/platform/constants"
	"github.com/taibuivan/kassa/internal/platform/migration"
	pgstore "github.com/taibuivan/kassa/internal/platform/postgres"
	redisstore "github.com/taibuivan/kassa/internal/platform/redis"
	"github.com/taibuivan/kassa/internal/platform/sec"
	"github.com/taibuivan/kassa/internal/users/auth"
)

const seedTimeout = 2 * time.Minute

func main() {
	catalogPath := flag.String("catalog", "", "YAML catalog to apply instead of the embedded default")
	skipAdmin := flag.Bool("skip-admin", false, "do not provision the bootstrap administrator")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String(constants.FieldApp, "kassa-seed"))
	slog.SetDefault(log)

	cfg, err := config.Load()
	must(log, err, "load configuration")

	catalog, err := loadCatalog(*catalogPath)
	must(log, err, "load catalog")

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, pgstore.Options{MaxConns: 4, ApplicationName: "kassa-seed"}, log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	must(log, migration.RunUp(cfg.DatabaseURL, migration.Files(cfg.MigrationPath), log), "run migrations")

	// Role writes must bump the epoch the API server reads snapshots under
	var cache authz.Cache
	if cfg.RedisURL != "" && cfg.AuthzCacheTTL > 0 {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() { _ = rdb.Close() }()
		cache = authz.NewRedisCache(rdb, cfg.AuthzCacheTTL)
	}
	engine := authz.NewEngine(authz.NewPostgresSource(pool), cache, log)

	permissionService := permission.NewService(permission.NewPostgresRepository(pool), log)
	roleRepository := role.NewPostgresRepository(pool)
	roleService := role.NewService(roleRepository, roleRepository, permissionService, engine, log)

	var (
		provisioner seed.AccountProvisioner
		admin       *seed.Admin
	)
	if !*skipAdmin && cfg.SeedAdmin.Enabled() {
		tokens, err := sec.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
		must(log, err, "initialize token service")
		provisioner = auth.NewService(auth.NewPostgresRepository(pool), tokens, sec.NewHasher(cfg.BcryptCost), engine, log)
		admin = &seed.Admin{
			Email:    cfg.SeedAdmin.Email,
			Username: cfg.SeedAdmin.Username,
			Password: cfg.SeedAdmin.Password,
		}
	}

	report, err := seed.NewSeeder(permissionService, roleService, provisioner, log).Run(ctx, catalog, admin)
	must(log, err, "apply catalog")

	log.Info("seed_finished",
		slog.Int("permissions", report.Permissions),
		slog.Int("roles_created", len(report.RolesCreated)),
		slog.Bool("admin_created", report.AdminCreated),
	)
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.ParseCatalog(data)
}

func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("seed_failure", slog.String("step", step), slog.Any("error", err))
		os.Exit(1)
	}
}
