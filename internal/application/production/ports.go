package production

import (
	"context"
	"time"

	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

// Cache almacén clave/valor con expiración. Un miss no es error.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Lock lock distribuido obtenido con Locker.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker serializa escritores sobre una clave. Devuelve domain.ErrLockNotObtained si otro lo tiene.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// LotTxRunner ejecuta fn dentro de una transacción con el repositorio de lotes atado a ella.
type LotTxRunner interface {
	RunLots(ctx context.Context, fn func(lots repository.LotRepository) error) error
}
