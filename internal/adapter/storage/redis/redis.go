package redis

import (
	"context"
	"fmt"

	"digital-wallet/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// keyPrefix namespaces every key the wallet writes.
const keyPrefix = "wallet:"

// NewClient dials Redis and fails fast when the server is unreachable.
// Redis is optional for the wallet, so callers may log the error and run without it.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	addr := cfg.Addr()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", addr, err)
	}

	log.Info().Str("addr", addr).Int("db", cfg.DB).Msg("redis ready")
	return rdb, nil
}
