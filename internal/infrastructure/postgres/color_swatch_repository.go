package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

var _ repository.ColorSwatchRepository = (*ColorSwatchRepo)(nil)

// ColorSwatchRepo implementa ColorSwatchRepository sobre PostgreSQL.
type ColorSwatchRepo struct {
	q Querier
}

// NewColorSwatchRepository construye el repositorio. Pasar pool o tx.
func NewColorSwatchRepository(q Querier) *ColorSwatchRepo {
	return &ColorSwatchRepo{q: q}
}

func (r *ColorSwatchRepo) GetByEPC(ctx context.Context, epc string) (*entity.ColorSwatch, error) {
	var s entity.ColorSwatch
	err := r.q.QueryRow(ctx, `
		SELECT id, epc, stt, type, customer, item, color, pattern, base_color, created_at, updated_at
		FROM color_swatches WHERE epc = $1`, epc,
	).Scan(&s.ID, &s.EPC, &s.STT, &s.Type, &s.Customer, &s.Item, &s.Color, &s.Pattern, &s.BaseColor, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get color_swatch: %w", err)
	}
	return &s, nil
}

func (r *ColorSwatchRepo) Upsert(ctx context.Context, s *entity.ColorSwatch) (bool, error) {
	const q = `
		INSERT INTO color_swatches (id, epc, stt, type, customer, item, color, pattern, base_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (epc) DO UPDATE SET
			stt = EXCLUDED.stt, type = EXCLUDED.type, customer = EXCLUDED.customer, item = EXCLUDED.item,
			color = EXCLUDED.color, pattern = EXCLUDED.pattern, base_color = EXCLUDED.base_color,
			updated_at = EXCLUDED.updated_at
		RETURNING id, (xmax = 0) AS inserted`
	var inserted bool
	err := r.q.QueryRow(ctx, q,
		s.ID, s.EPC, s.STT, s.Type, s.Customer, s.Item, s.Color, s.Pattern, s.BaseColor, s.UpdatedAt,
	).Scan(&s.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert color_swatch: %w", err)
	}
	return inserted, nil
}

func (r *ColorSwatchRepo) AddMovement(ctx context.Context, m *entity.ColorSwatchMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO color_swatch_movements (id, swatch_id, line_no, worker_code, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.SwatchID, m.LineNo, m.WorkerCode, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert swatch movement: %w", err)
	}
	return nil
}

func (r *ColorSwatchRepo) LatestMovement(ctx context.Context, swatchID string) (*entity.ColorSwatchMovement, error) {
	var m entity.ColorSwatchMovement
	err := r.q.QueryRow(ctx, `
		SELECT id, swatch_id, line_no, worker_code, created_at
		FROM color_swatch_movements WHERE swatch_id = $1
		ORDER BY created_at DESC LIMIT 1`, swatchID,
	).Scan(&m.ID, &m.SwatchID, &m.LineNo, &m.WorkerCode, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("latest swatch movement: %w", err)
	}
	return &m, nil
}

// PurgeMovements conserva siempre la lectura más reciente de cada muestra.
func (r *ColorSwatchRepo) PurgeMovements(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		DELETE FROM color_swatch_movements m
		WHERE m.created_at < $1
		  AND m.id <> (
			SELECT l.id FROM color_swatch_movements l
			WHERE l.swatch_id = m.swatch_id
			ORDER BY l.created_at DESC, l.id DESC
			LIMIT 1)`, before)
	if err != nil {
		return 0, fmt.Errorf("purge swatch movements: %w", err)
	}
	return cmd.RowsAffected(), nil
}
