package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

var _ repository.ProductionPlanRepository = (*ProductionPlanRepo)(nil)

// ProductionPlanRepo implementa ProductionPlanRepository sobre PostgreSQL.
type ProductionPlanRepo struct {
	q Querier
}

// NewProductionPlanRepository construye el repositorio. Pasar pool o tx.
func NewProductionPlanRepository(q Querier) *ProductionPlanRepo {
	return &ProductionPlanRepo{q: q}
}

const planColumns = `id, sales_order_id, plan_date, plan_no, plan_qty, pd_line, item_group, pd_information, created_at, updated_at`

func scanPlan(row pgx.Row) (*entity.ProductionPlan, error) {
	var p entity.ProductionPlan
	if err := row.Scan(&p.ID, &p.SalesOrderID, &p.PlanDate, &p.PlanNo, &p.PlanQty, &p.PdLine,
		&p.ItemGroup, &p.PdInformation, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductionPlanRepo) Latest(ctx context.Context, salesOrderID string) (*entity.ProductionPlan, error) {
	p, err := scanPlan(r.q.QueryRow(ctx,
		`SELECT `+planColumns+` FROM production_plans WHERE sales_order_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		salesOrderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("latest production_plan: %w", err)
	}
	return p, nil
}

func (r *ProductionPlanRepo) ListByOrder(ctx context.Context, salesOrderID string) ([]entity.ProductionPlan, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+planColumns+` FROM production_plans WHERE sales_order_id = $1 ORDER BY created_at`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list production_plans: %w", err)
	}
	defer rows.Close()
	var list []entity.ProductionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan production_plan: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Upsert usa la restricción única (sales_order_id, plan_date); en conflicto conserva id y created_at.
func (r *ProductionPlanRepo) Upsert(ctx context.Context, p *entity.ProductionPlan) (bool, error) {
	const q = `
		INSERT INTO production_plans (id, sales_order_id, plan_date, plan_no, plan_qty, pd_line, item_group, pd_information, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sales_order_id, plan_date) DO UPDATE SET
			plan_no = EXCLUDED.plan_no,
			plan_qty = EXCLUDED.plan_qty,
			pd_line = EXCLUDED.pd_line,
			item_group = EXCLUDED.item_group,
			pd_information = EXCLUDED.pd_information,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0) AS inserted`
	var inserted bool
	err := r.q.QueryRow(ctx, q,
		p.ID, p.SalesOrderID, p.PlanDate, p.PlanNo, p.PlanQty, p.PdLine, p.ItemGroup,
		p.PdInformation, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID, &p.CreatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upsert production_plan: %w", err)
	}
	return inserted, nil
}
