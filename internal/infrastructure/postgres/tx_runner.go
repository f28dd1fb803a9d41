package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/bsv-mes/internal/application/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

// Ensure TxRunner implements production.LotTxRunner.
var _ production.LotTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunLots inicia una transacción, ejecuta fn con el repo de lotes atado a la tx y hace Commit o Rollback.
// El advisory lock que toma LotRepository.LockDay se libera al terminar la tx.
func (r *TxRunner) RunLots(ctx context.Context, fn func(lots repository.LotRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewLotRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
