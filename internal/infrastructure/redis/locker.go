package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/bsv-mes/internal/application/production"
	"github.com/jhoicas/bsv-mes/internal/domain"
)

var _ production.Locker = (*Locker)(nil)

// Reintentos al pedir un lock ocupado: 20 x 50ms.
const (
	lockRetryEvery = 50 * time.Millisecond
	lockRetries    = 20
)

// Locker locks distribuidos por clave con redislock.
type Locker struct {
	client *redislock.Client
}

// NewLocker construye el locker. Con rdb nil todos los Obtain se conceden sin Redis.
func NewLocker(rdb *goredis.Client) *Locker {
	if rdb == nil {
		return &Locker{}
	}
	return &Locker{client: redislock.New(rdb)}
}

func (l *Locker) Obtain(ctx context.Context, key string, ttl time.Duration) (production.Lock, error) {
	if l.client == nil {
		return noLock{}, nil
	}
	lock, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(lockRetryEvery), lockRetries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return lock, nil
}

type noLock struct{}

func (noLock) Release(context.Context) error { return nil }
