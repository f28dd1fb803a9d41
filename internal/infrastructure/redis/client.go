// Package redis adapta go-redis y redislock a los puertos de caché y lock de la aplicación.
// Un cliente nil deja ambos en modo degradado: la caché siempre falla (miss) y el lock siempre se concede.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/bsv-mes/pkg/config"
)

// Connect abre el cliente y hace ping. Sin dirección configurada devuelve nil, nil.
func Connect(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
