package storage

import (
	"context"
	"fmt"

	"github.com/zerozero-0-0/portfolio/internal/config"
)

// Open builds the KV named by cfg.Backend.
func Open(ctx context.Context, cfg config.CacheConfig) (KV, error) {
	switch cfg.Backend {
	case config.BackendBolt:
		return NewBoltStore(cfg.BoltPath, cfg.BoltTimeout)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
