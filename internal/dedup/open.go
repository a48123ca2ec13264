package dedup

import (
	"context"
	"fmt"

	"github.com/maltedev/shop-crawler/internal/config"
)

// Open builds the store selected by the configuration.
func Open(ctx context.Context, cfg config.DedupConfig) (Store, error) {
	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg.File), nil
	case "postgres":
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown dedup backend: %s", cfg.Backend)
	}
}
