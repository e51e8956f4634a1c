package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bryanwahyu/cyber-assistant/internal/config"
	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
	"github.com/bryanwahyu/cyber-assistant/internal/domain/history"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/cache/rediscache"
	mysqlp "github.com/bryanwahyu/cyber-assistant/internal/infra/db/mysql"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/db/postgres"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/db/sqlite"
	filehistory "github.com/bryanwahyu/cyber-assistant/internal/infra/history/file"
	"github.com/bryanwahyu/cyber-assistant/internal/infra/history/memory"
	minioStore "github.com/bryanwahyu/cyber-assistant/internal/infra/storage"
	"github.com/bryanwahyu/cyber-assistant/internal/middleware"
)

// openHistory picks the history backend named in the config. SQL backends
// register a health check.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]middleware.HealthChecker) (history.Store, func(), error) {
	noop := func() {}

	switch cfg.History.Driver {
	case config.DriverFile:
		return filehistory.New(cfg.History.Path), noop, nil

	case config.DriverSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		checks[middleware.CheckHistory] = &middleware.SQLPing{DB: repo.DB()}
		return repo, func() { repo.Close() }, nil

	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		repo := mysqlp.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		checks[middleware.CheckHistory] = &middleware.SQLPing{DB: db}
		return repo, func() { db.Close() }, nil

	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		repo := postgres.NewHistoryRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		checks[middleware.CheckHistory] = &middleware.SQLPing{DB: db}
		return repo, func() { db.Close() }, nil

	default:
		logger.Info("history kept in memory only")
		return memory.New(), noop, nil
	}
}

// withFileCache puts the Redis cache in front of file reputation when REDIS_URL is set.
// An unreachable Redis at start leaves the adapter uncached.
func withFileCache(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]middleware.HealthChecker, inner domain.FileReputation) (domain.FileReputation, func()) {
	if cfg.Redis.URL == "" {
		return inner, func() {}
	}
	client, err := rediscache.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Warn("redis unavailable, file reputation not cached", slog.String("error", err.Error()))
		return inner, func() {}
	}
	checks[middleware.CheckRedis] = middleware.CheckFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return rediscache.NewFileReputationCache(inner, client, cfg.RedisTTL(), logger), func() { client.Close() }
}

// openArchive returns nil when object storage is not configured or not reachable.
func openArchive(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]middleware.HealthChecker) *minioStore.Store {
	if !cfg.MinioEnabled() {
		return nil
	}
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Warn("minio init failed, archiving disabled", slog.String("error", err.Error()))
		return nil
	}
	checks[middleware.CheckArchive] = middleware.CheckFunc(store.Ping)
	return store
}
