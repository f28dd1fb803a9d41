package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementa LotRepository sobre PostgreSQL.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el repositorio. Pasar pool o tx.
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// LockDay toma un advisory lock de transacción sobre el prefijo del día.
func (r *LotRepo) LockDay(ctx context.Context, prefix string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('lot:' || $1))`, prefix); err != nil {
		return fmt.Errorf("lock lot day: %w", err)
	}
	return nil
}

func (r *LotRepo) ListIssued(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT lot_code FROM production_lots WHERE lot_code LIKE $1`, prefix+"-%")
	if err != nil {
		return nil, fmt.Errorf("list production_lots: %w", err)
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan lot_code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *LotRepo) Create(ctx context.Context, lot *entity.ProductionLot) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO production_lots (id, lot_code, lot_date, sequence, grade, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		lot.ID, lot.LotCode, lot.LotDate, lot.Sequence, lot.Grade, lot.CreatedBy, lot.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production_lot: %w", err)
	}
	return nil
}
