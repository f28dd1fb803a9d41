package production

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

const planDateLayout = "2006-01-02"

// PlanUseCase planificación de órdenes en línea seca.
type PlanUseCase struct {
	orders     repository.SalesOrderRepository
	plans      repository.ProductionPlanRepository
	status     *StatusUseCase
	loc        *time.Location
	invalidate bool
	now        func() time.Time
}

func NewPlanUseCase(
	orders repository.SalesOrderRepository,
	plans repository.ProductionPlanRepository,
	status *StatusUseCase,
	loc *time.Location,
	invalidate bool,
) *PlanUseCase {
	return &PlanUseCase{orders: orders, plans: plans, status: status, loc: loc, invalidate: invalidate, now: time.Now}
}

// UpsertPlan crea o reemplaza el plan de la orden para la fecha indicada.
func (uc *PlanUseCase) UpsertPlan(ctx context.Context, req dto.UpsertPlanRequest) (*dto.PlanResponse, error) {
	planDate, err := time.ParseInLocation(planDateLayout, strings.TrimSpace(req.PlanDate), uc.loc)
	if err != nil {
		return nil, fmt.Errorf("plan_date %q: %w", req.PlanDate, domain.ErrInvalidInput)
	}
	if req.PlanQty.IsNegative() {
		return nil, fmt.Errorf("plan_qty negativo: %w", domain.ErrInvalidInput)
	}
	if stage, ok := domprod.StageForLine(req.PdLine); !ok || stage != entity.LineStageDryLine {
		return nil, fmt.Errorf("pd_line %q: %w", req.PdLine, domain.ErrInvalidInput)
	}

	order, err := uc.orders.FindByOrderNo(ctx, strings.TrimSpace(req.OrderNo))
	if err != nil {
		return nil, err
	}
	if order.IsCancelled() {
		return nil, domain.ErrOrderCancelled
	}

	now := uc.now()
	plan := &entity.ProductionPlan{
		ID:            uuid.New().String(),
		SalesOrderID:  order.ID,
		PlanDate:      planDate,
		PlanNo:        strings.TrimSpace(req.PlanNo),
		PlanQty:       req.PlanQty,
		PdLine:        strings.ToLower(strings.TrimSpace(req.PdLine)),
		ItemGroup:     req.ItemGroup,
		PdInformation: req.PdInformation,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := uc.plans.Upsert(ctx, plan)
	if err != nil {
		return nil, err
	}
	if uc.invalidate {
		uc.status.Invalidate(ctx, order.ID)
	}
	resp := toPlanResponse(order.OrderNo, plan)
	resp.Created = created
	return resp, nil
}

// ListPlans planes de la orden, del más reciente al más antiguo según el repositorio.
func (uc *PlanUseCase) ListPlans(ctx context.Context, orderNo string) ([]dto.PlanResponse, error) {
	order, err := uc.orders.FindByOrderNo(ctx, strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	plans, err := uc.plans.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, *toPlanResponse(order.OrderNo, &plans[i]))
	}
	return out, nil
}

func toPlanResponse(orderNo string, p *entity.ProductionPlan) *dto.PlanResponse {
	return &dto.PlanResponse{
		ID:            p.ID,
		SalesOrderID:  p.SalesOrderID,
		OrderNo:       orderNo,
		PlanDate:      p.PlanDate.Format(planDateLayout),
		PlanNo:        p.PlanNo,
		PlanQty:       p.PlanQty,
		PdLine:        p.PdLine,
		ItemGroup:     p.ItemGroup,
		PdInformation: p.PdInformation,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
