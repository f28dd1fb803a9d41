package production

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// Tipos de lista de espera; forman parte de la clave de caché.
const (
	waitlistInspection = "inspection"
	waitlistPrinting   = "printing"
)

// WaitlistKey clave de caché de la lista de ids para un filtro. Los filtros
// equivalentes (mayúsculas, orden de líneas) comparten clave.
func WaitlistKey(kind string, f repository.WaitlistFilter) string {
	lines := make([]string, 0, len(f.Lines))
	for _, l := range f.Lines {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			lines = append(lines, l)
		}
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(f.Query + "|" + strings.Join(lines, ",")))
	return "mes:waitlist:" + kind + ":" + hex.EncodeToString(sum[:8])
}

// WaitlistUseCase listas de espera de inspección e impresión para los tableros.
type WaitlistUseCase struct {
	waitlists repository.WaitlistRepository
	orders    repository.SalesOrderRepository
	status    *StatusUseCase
	cache     Cache
	ttl       time.Duration
	log       *logger.Logger
}

// NewWaitlistUseCase construye el caso de uso. ttl aplica a las listas de ids; expiran solas.
func NewWaitlistUseCase(
	waitlists repository.WaitlistRepository,
	orders repository.SalesOrderRepository,
	status *StatusUseCase,
	cache Cache,
	ttl time.Duration,
	log *logger.Logger,
) *WaitlistUseCase {
	return &WaitlistUseCase{waitlists: waitlists, orders: orders, status: status, cache: cache, ttl: ttl, log: log}
}

// InspectionWaitlist órdenes que llegaron a línea seca o RP y no tienen inspección.
// Las líneas bsvdl01/02 solo entran después de RP; la ruta la decide AwaitingInspection.
func (uc *WaitlistUseCase) InspectionWaitlist(ctx context.Context, req dto.WaitlistRequest) (*dto.WaitlistResponse, error) {
	filter := toWaitlistFilter(req)
	ids, err := uc.cachedIDs(ctx, WaitlistKey(waitlistInspection, filter), func() ([]string, error) {
		return uc.waitlists.AwaitingInspection(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return uc.page(ctx, ids, req.PageRequest, func(o *entity.SalesOrder, _ *dto.StatusSnapshotResponse) (bool, error) {
		tl, err := uc.status.timelineFor(ctx, o)
		if err != nil {
			return false, err
		}
		return domprod.AwaitingInspection(tl), nil
	})
}

// PrintingWaitlist órdenes cuya última inspección dejó cantidad para impresión y aún
// no tienen impresión posterior. El filtro final lo decide el agregador.
func (uc *WaitlistUseCase) PrintingWaitlist(ctx context.Context, req dto.WaitlistRequest) (*dto.WaitlistResponse, error) {
	filter := toWaitlistFilter(req)
	ids, err := uc.cachedIDs(ctx, WaitlistKey(waitlistPrinting, filter), func() ([]string, error) {
		return uc.waitlists.AwaitingPrinting(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return uc.page(ctx, ids, req.PageRequest, func(_ *entity.SalesOrder, s *dto.StatusSnapshotResponse) (bool, error) {
		return s.PendingPrintQty != nil, nil
	})
}

func toWaitlistFilter(req dto.WaitlistRequest) repository.WaitlistFilter {
	return repository.WaitlistFilter{
		Query: domprod.NormalizeSearch(req.Query),
		Lines: req.Lines,
	}
}

func (uc *WaitlistUseCase) cachedIDs(ctx context.Context, key string, load func() ([]string, error)) ([]string, error) {
	var ids []string
	found, err := uc.cache.Get(ctx, key, &ids)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("waitlist cache get")
	}
	if found {
		return ids, nil
	}
	ids, err = load()
	if err != nil {
		return nil, err
	}
	if err := uc.cache.Set(ctx, key, ids, uc.ttl); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("waitlist cache set")
	}
	return ids, nil
}

// keepFunc confirma una candidata de la lista de ids.
type keepFunc func(*entity.SalesOrder, *dto.StatusSnapshotResponse) (bool, error)

// page confirma cada candidata con keep y luego pagina, de modo que el total
// refleje solo las órdenes que pasan el filtro.
func (uc *WaitlistUseCase) page(ctx context.Context, ids []string, page dto.PageRequest, keep keepFunc) (*dto.WaitlistResponse, error) {
	page.DefaultPage()

	orders, err := uc.orders.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.WaitlistItem, 0, len(orders))
	for _, o := range orders {
		snap, err := uc.status.snapshotFor(ctx, o)
		if err != nil {
			return nil, err
		}
		ok, err := keep(o, snap)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		items = append(items, dto.WaitlistItem{
			Order:           *toSalesOrderResponse(o),
			LatestStage:     snap.LatestStage,
			LatestAt:        snap.LatestAt,
			LatestMachine:   snap.LatestMachine,
			BalanceQty:      snap.BalanceQty,
			LineShortage:    snap.LineShortage,
			PendingPrintQty: snap.PendingPrintQty,
		})
	}

	return &dto.WaitlistResponse{
		Items: sliceItems(items, page),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	}, nil
}

func sliceItems(items []dto.WaitlistItem, page dto.PageRequest) []dto.WaitlistItem {
	if page.Offset >= len(items) {
		return []dto.WaitlistItem{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
