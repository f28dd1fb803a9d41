package repository

import (
	"context"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// ProductionPlanRepository define el puerto de persistencia para ProductionPlan.
type ProductionPlanRepository interface {
	// Latest devuelve el plan más reciente de la orden o domain.ErrNotFound.
	Latest(ctx context.Context, salesOrderID string) (*entity.ProductionPlan, error)
	ListByOrder(ctx context.Context, salesOrderID string) ([]entity.ProductionPlan, error)
	// Upsert crea o actualiza por (sales_order_id, plan_date). Devuelve true si creó.
	Upsert(ctx context.Context, plan *entity.ProductionPlan) (bool, error)
}
