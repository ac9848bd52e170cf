package archivebuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-archive/internal/adapter/archivepresenter"
	"github.com/park285/chess-archive/internal/config"
	"github.com/park285/chess-archive/internal/msgcat"
	"github.com/park285/chess-archive/internal/progress"
	"github.com/park285/chess-archive/internal/service/archive"
)

type Deps struct {
	Repo      archive.Repository
	Importer  *archive.Importer
	Formatter *archivepresenter.Formatter
	// Redis and Jobs are nil when REDIS_URL is not set.
	Redis *redis.Client
	Jobs  *progress.Store
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	deps := &Deps{}

	// Repository: Postgres when configured, memory otherwise
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		repo, err := archive.NewPostgresRepository(cfg.DatabaseURL, cfg.DBMaxOpenConns)
		if err != nil {
			return nil, fmt.Errorf("init repository: %w", err)
		}
		deps.Repo = repo
	} else {
		logger.Warn("archive_memory_repository", zap.String("reason", "DATABASE_URL not set"))
		deps.Repo = archive.NewMemoryRepository()
	}

	importer, err := archive.NewImporter(deps.Repo, logger)
	if err != nil {
		_ = deps.Close()
		return nil, err
	}
	deps.Importer = importer

	cat, err := msgcat.New(cfg.ReportTemplateDir)
	if err != nil {
		_ = deps.Close()
		return nil, fmt.Errorf("init message catalog: %w", err)
	}
	deps.Formatter = archivepresenter.NewFormatter(cat)

	if strings.TrimSpace(cfg.RedisURL) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rdb, err := progress.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		deps.Redis = rdb
		deps.Jobs = progress.NewStore(rdb, time.Duration(cfg.ProgressTTLSec)*time.Second)
	}

	return deps, nil
}

func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var firstErr error
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if d.Repo != nil {
		if err := d.Repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
