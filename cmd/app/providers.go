package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-astrology/internal/domain/history"
	"github.com/yanqian/ai-astrology/internal/infra/archivestore"
	"github.com/yanqian/ai-astrology/internal/infra/config"
	"github.com/yanqian/ai-astrology/internal/infra/runlog"
)

func provideHistoryConfig(cfg *config.Config) history.Config {
	return history.Config{
		ArchiveTTL: cfg.History.Archive.TTL,
	}
}

func provideArchive(cfg *config.Config, logger *slog.Logger) history.Archive {
	switch cfg.History.Archive.Backend {
	case config.ArchiveNone:
		logger.Info("report archive disabled")
		return nil
	case config.ArchiveValkey:
		if store := provideValkeyArchive(cfg, logger); store != nil {
			return store
		}
	case config.ArchiveS3:
		store, err := archivestore.NewS3Store(archivestore.S3Config{
			Endpoint:  cfg.History.S3.Endpoint,
			AccessKey: cfg.History.S3.AccessKey,
			SecretKey: cfg.History.S3.SecretKey,
			Bucket:    cfg.History.S3.Bucket,
			Region:    cfg.History.S3.Region,
			Prefix:    cfg.History.S3.Prefix,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize s3 archive, falling back to memory store", "error", err)
			break
		}
		logger.Info("report s3 archive enabled", "bucket", cfg.History.S3.Bucket)
		return store
	}
	return archivestore.NewMemoryStore()
}

func provideValkeyArchive(cfg *config.Config, logger *slog.Logger) history.Archive {
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return nil
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return nil
	}
	logger.Info("report valkey archive enabled", "addr", cfg.History.Valkey.Addr)
	return archivestore.NewValkeyStore(client, cfg.History.Valkey.Prefix)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	addr := strings.TrimSpace(cfg.History.Valkey.Addr)
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideRunLog(cfg *config.Config, logger *slog.Logger) history.RunLog {
	if !cfg.History.RunLog.Enabled {
		logger.Info("generation run log disabled")
		return nil
	}
	fallback := runlog.NewMemoryRepository(cfg.History.RunLog.MemoryCapacity)
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory run log")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory run log", "error", err)
		return fallback
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory run log", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory run log", "error", err)
		pool.Close()
		return fallback
	}
	repo := runlog.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("run log schema migration failed, using memory run log", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres run log enabled")
	return repo
}
