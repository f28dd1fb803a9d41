package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

var _ repository.WaitlistRepository = (*WaitlistRepo)(nil)

// WaitlistRepo consultas crudas de las listas de espera. Solo lectura.
type WaitlistRepo struct {
	q Querier
}

// NewWaitlistRepository construye el repositorio.
func NewWaitlistRepository(q Querier) *WaitlistRepo {
	return &WaitlistRepo{q: q}
}

// AwaitingInspection: candidatas con línea seca o RP y sin inspección alguna. El filtro
// por líneas aplica a cualquier línea seca de la orden.
func (r *WaitlistRepo) AwaitingInspection(ctx context.Context, f repository.WaitlistFilter) ([]string, error) {
	query := `
		WITH reached AS (
			SELECT p.sales_order_id, MAX(d.created_at) AS at
			FROM dry_lines d
			JOIN production_plans p ON p.id = d.production_plan_id
			GROUP BY p.sales_order_id
			UNION ALL
			SELECT p.sales_order_id, MAX(x.created_at) AS at
			FROM delaminations x
			JOIN production_plans p ON p.id = x.production_plan_id
			GROUP BY p.sales_order_id
		),
		last_step AS (
			SELECT sales_order_id, MAX(at) AS at FROM reached GROUP BY sales_order_id
		)
		SELECT s.id
		FROM sales_orders s
		JOIN last_step l ON l.sales_order_id = s.id
		WHERE s.status IS NULL
		  AND NOT EXISTS (SELECT 1 FROM inspections i WHERE i.sales_order_id = s.id)`
	var args []any
	if q := production.NormalizeSearch(f.Query); q != "" {
		args = append(args, likePattern(q))
		query += fmt.Sprintf(" AND s.search_text LIKE $%d", len(args))
	}
	if len(f.Lines) > 0 {
		args = append(args, lowerAll(f.Lines))
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM dry_lines d JOIN production_plans p ON p.id = d.production_plan_id
			WHERE p.sales_order_id = s.id AND lower(d.line_no) = ANY($%d))`, len(args))
	}
	query += " ORDER BY l.at DESC, s.order_no"

	return r.ids(ctx, "awaiting inspection", query, args...)
}

// AwaitingPrinting: última inspección con cantidad a impresión y sin impresión posterior.
func (r *WaitlistRepo) AwaitingPrinting(ctx context.Context, f repository.WaitlistFilter) ([]string, error) {
	query := `
		WITH last_ins AS (
			SELECT DISTINCT ON (sales_order_id) sales_order_id, created_at, qty_to_printing
			FROM inspections
			ORDER BY sales_order_id, created_at DESC, id DESC
		),
		last_pr AS (
			SELECT sales_order_id, MAX(created_at) AS at FROM printings GROUP BY sales_order_id
		)
		SELECT s.id
		FROM sales_orders s
		JOIN last_ins i ON i.sales_order_id = s.id
		LEFT JOIN last_pr pr ON pr.sales_order_id = s.id
		WHERE s.status IS NULL
		  AND i.qty_to_printing > 0
		  AND (pr.at IS NULL OR pr.at < i.created_at)`
	var args []any
	if q := production.NormalizeSearch(f.Query); q != "" {
		args = append(args, likePattern(q))
		query += fmt.Sprintf(" AND s.search_text LIKE $%d", len(args))
	}
	query += " ORDER BY i.created_at DESC, s.order_no"

	return r.ids(ctx, "awaiting printing", query, args...)
}

func (r *WaitlistRepo) ids(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
