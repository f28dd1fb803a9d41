package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// LineLockKey clave del lock distribuido por (línea, etapa).
func LineLockKey(lineNo string, stage entity.LineStage) string {
	return fmt.Sprintf("mes:lock:line:%s:%s", strings.ToLower(lineNo), stage)
}

// lineLocker serializa escritores de la misma (línea, etapa). Si el lock no se
// obtiene se continúa sin él; las actualizaciones siguen protegidas por la versión.
type lineLocker struct {
	locker Locker
	ttl    time.Duration
	log    *logger.Logger
}

func (l lineLocker) obtain(ctx context.Context, lineNo string, stage entity.LineStage) Lock {
	key := LineLockKey(lineNo, stage)
	lock, err := l.locker.Obtain(ctx, key, l.ttl)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("line lock not obtained, continuing without it")
		return nil
	}
	return lock
}

func (l lineLocker) release(ctx context.Context, lock Lock) {
	if lock == nil {
		return
	}
	if err := lock.Release(ctx); err != nil {
		l.log.Warn().Err(err).Msg("line lock release")
	}
}
