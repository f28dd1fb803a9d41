// Package production casos de uso del seguimiento de producción: estado de órdenes,
// registros de kiosco, lotes, listas de espera, planes y tarjetas de orden.
package production

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// SnapshotKey clave de caché del estado calculado de una orden.
func SnapshotKey(orderID string) string {
	return "mes:snapshot:" + orderID
}

// StatusUseCase consulta órdenes y calcula su estado a partir de la línea de tiempo.
type StatusUseCase struct {
	orders repository.SalesOrderRepository
	phases repository.PhaseRepository
	cache  Cache
	loc    *time.Location
	ttl    time.Duration
	log    *logger.Logger
}

// NewStatusUseCase construye el caso de uso. loc es la zona horaria de la planta.
func NewStatusUseCase(
	orders repository.SalesOrderRepository,
	phases repository.PhaseRepository,
	cache Cache,
	loc *time.Location,
	ttl time.Duration,
	log *logger.Logger,
) *StatusUseCase {
	return &StatusUseCase{orders: orders, phases: phases, cache: cache, loc: loc, ttl: ttl, log: log}
}

// FindOrder busca una orden activa por número. Las canceladas devuelven ErrOrderCancelled.
func (uc *StatusUseCase) FindOrder(ctx context.Context, orderNo string) (*dto.SalesOrderResponse, error) {
	order, err := uc.orders.FindByOrderNo(ctx, strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	if order.IsCancelled() {
		return nil, domain.ErrOrderCancelled
	}
	return toSalesOrderResponse(order), nil
}

// Search busca órdenes por texto libre con paginación.
func (uc *StatusUseCase) Search(ctx context.Context, query string, activeOnly bool, page dto.PageRequest) (*dto.SalesOrderListResponse, error) {
	page.DefaultPage()
	list, total, err := uc.orders.Search(ctx, repository.SalesOrderFilter{
		Query:      query,
		ActiveOnly: activeOnly,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SalesOrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toSalesOrderResponse(o))
	}
	return &dto.SalesOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Timeline devuelve la línea de tiempo normalizada de la orden. No se cachea.
func (uc *StatusUseCase) Timeline(ctx context.Context, orderNo string) (*dto.TimelineResponse, error) {
	order, err := uc.orders.FindByOrderNo(ctx, strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	tl, err := uc.timelineFor(ctx, order)
	if err != nil {
		return nil, err
	}
	return toTimelineResponse(order.OrderNo, tl), nil
}

func (uc *StatusUseCase) timelineFor(ctx context.Context, order *entity.SalesOrder) (domprod.Timeline, error) {
	set, err := uc.phases.ListByOrder(ctx, order.ID)
	if err != nil {
		return domprod.Timeline{}, err
	}
	return domprod.BuildTimeline(set, uc.loc), nil
}

// Snapshot devuelve el estado calculado de la orden (caché primero).
func (uc *StatusUseCase) Snapshot(ctx context.Context, orderNo string) (*dto.StatusSnapshotResponse, error) {
	order, err := uc.orders.FindByOrderNo(ctx, strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	return uc.snapshotFor(ctx, order)
}

// snapshotFor: un fallo de caché nunca es error, se recalcula.
func (uc *StatusUseCase) snapshotFor(ctx context.Context, order *entity.SalesOrder) (*dto.StatusSnapshotResponse, error) {
	key := SnapshotKey(order.ID)
	var cached dto.StatusSnapshotResponse
	found, err := uc.cache.Get(ctx, key, &cached)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("snapshot cache get")
	}
	if found {
		return &cached, nil
	}

	tl, err := uc.timelineFor(ctx, order)
	if err != nil {
		return nil, err
	}
	snap := toSnapshotResponse(domprod.Aggregate(order, tl))
	if err := uc.cache.Set(ctx, key, snap, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("snapshot cache set")
	}
	return snap, nil
}

// Invalidate descarta el estado cacheado de las órdenes indicadas.
func (uc *StatusUseCase) Invalidate(ctx context.Context, orderIDs ...string) {
	if len(orderIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		keys = append(keys, SnapshotKey(id))
	}
	if err := uc.cache.Delete(ctx, keys...); err != nil {
		uc.log.Warn().Err(err).Strs("keys", keys).Msg("snapshot cache delete")
	}
}
