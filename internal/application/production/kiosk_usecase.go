package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// Motivos de rechazo por orden que ve el operario.
const (
	reasonNotSalesOrder = "no es una orden de venta"
	reasonNotFound      = "orden no encontrada"
	reasonCancelled     = "orden cancelada"
	reasonInvalidQty    = "cantidad inválida"
	reasonNoPlan        = "orden sin plan de producción"
	reasonStoreFailure  = "error al guardar"
)

// maxCASRetries reintentos ante conflicto de versión al cerrar un registro de línea.
const maxCASRetries = 3

// KioskUseCase registra los eventos que envían los kioscos del piso de producción.
type KioskUseCase struct {
	orders     repository.SalesOrderRepository
	plans      repository.ProductionPlanRepository
	phases     repository.PhaseRepository
	lines      lineLocker
	status     *StatusUseCase
	invalidate bool
	log        *logger.Logger
	now        func() time.Time
}

// NewKioskUseCase construye el caso de uso. Si invalidate es true, cada escritura
// descarta el estado cacheado de las órdenes tocadas.
func NewKioskUseCase(
	orders repository.SalesOrderRepository,
	plans repository.ProductionPlanRepository,
	phases repository.PhaseRepository,
	locker Locker,
	status *StatusUseCase,
	lockTTL time.Duration,
	invalidate bool,
	log *logger.Logger,
) *KioskUseCase {
	return &KioskUseCase{
		orders:     orders,
		plans:      plans,
		phases:     phases,
		lines:      lineLocker{locker: locker, ttl: lockTTL, log: log},
		status:     status,
		invalidate: invalidate,
		log:        log,
		now:        time.Now,
	}
}

// Lookup resuelve el contenido de un QR a la orden activa que representa.
func (uc *KioskUseCase) Lookup(ctx context.Context, payload string) (*dto.LookupResponse, error) {
	orderNo, err := domprod.ParseOrderQR(payload)
	if err != nil {
		return nil, fmt.Errorf("qr %q: %w", payload, err)
	}
	order, err := uc.orders.FindByOrderNo(ctx, orderNo)
	if errors.Is(err, domain.ErrNotFound) {
		return &dto.LookupResponse{Status: "error", Message: reasonNotFound, OrderNumber: orderNo}, nil
	}
	if err != nil {
		return nil, err
	}
	if !order.IsActive() {
		return &dto.LookupResponse{Status: "error", Message: "la orden no está activa", OrderNumber: orderNo}, nil
	}
	return &dto.LookupResponse{
		Status:      "success",
		Message:     "orden encontrada",
		OrderNumber: orderNo,
		Order:       toSalesOrderResponse(order),
	}, nil
}

// scanTarget una orden leída ya resuelta, con su cantidad cruda.
type scanTarget struct {
	order *entity.SalesOrder
	qty   json.RawMessage
}

// recordFunc persiste el evento de una etapa para una orden.
type recordFunc func(ctx context.Context, t scanTarget) error

// scanError motivo de rechazo visible para el operario.
type scanError struct {
	reason string
	err    error
}

func (e *scanError) Error() string { return e.reason }
func (e *scanError) Unwrap() error { return e.err }

func reject(reason string, err error) error {
	return &scanError{reason: reason, err: err}
}

// RecordDryMix registra la mezcla en seco. quantityInput es la lista de químicos
// y se guarda igual en cada orden leída.
func (uc *KioskUseCase) RecordDryMix(ctx context.Context, req dto.ScanRequest) (*dto.ScanResponse, error) {
	if err := validateScan(req); err != nil {
		return nil, err
	}
	mixing := json.RawMessage(strings.TrimSpace(string(req.QuantityInput)))
	if len(mixing) == 0 || (mixing[0] != '[' && mixing[0] != '{') {
		return nil, fmt.Errorf("quantityInput: %w", domain.ErrInvalidInput)
	}
	return uc.record(ctx, domprod.StageDryMix, req, func(ctx context.Context, t scanTarget) error {
		plan, err := uc.latestPlan(ctx, t.order.ID)
		if err != nil {
			return err
		}
		return uc.phases.CreateDryMix(ctx, &entity.DryMix{
			ID:                uuid.New().String(),
			PlanID:            plan.ID,
			SalesOrderID:      t.order.ID,
			MixingInformation: mixing,
			WorkerCode:        req.StaffNumber,
			CreatedAt:         uc.now(),
		})
	})
}

// RecordDryLine registra producción en línea seca.
func (uc *KioskUseCase) RecordDryLine(ctx context.Context, req dto.ScanRequest) (*dto.ScanResponse, error) {
	in, err := uc.lineInput(req, entity.LineStageDryLine)
	if err != nil {
		return nil, err
	}
	return uc.withLineLock(ctx, req.Machine, entity.LineStageDryLine, func() (*dto.ScanResponse, error) {
		return uc.record(ctx, domprod.StageDryLine, req, func(ctx context.Context, t scanTarget) error {
			qty, err := targetQty(t, in.Qty)
			if err != nil {
				return err
			}
			plan, err := uc.latestPlan(ctx, t.order.ID)
			if err != nil {
				return err
			}
			return uc.phases.CreateDryLine(ctx, &entity.DryLine{
				ID:            uuid.New().String(),
				PlanID:        plan.ID,
				SalesOrderID:  t.order.ID,
				PdQty:         qty,
				PdInformation: in.Details,
				LineNo:        req.Machine,
				WorkerCode:    req.StaffNumber,
				CreatedAt:     uc.now(),
			})
		})
	})
}

// RecordDelamination registra el paso por RP / deslaminado.
func (uc *KioskUseCase) RecordDelamination(ctx context.Context, req dto.ScanRequest) (*dto.ScanResponse, error) {
	in, err := uc.lineInput(req, entity.LineStageDelamination)
	if err != nil {
		return nil, err
	}
	return uc.withLineLock(ctx, req.Machine, entity.LineStageDelamination, func() (*dto.ScanResponse, error) {
		return uc.record(ctx, domprod.StageRP, req, func(ctx context.Context, t scanTarget) error {
			qty, err := targetQty(t, in.Qty)
			if err != nil {
				return err
			}
			plan, err := uc.latestPlan(ctx, t.order.ID)
			if err != nil {
				return err
			}
			return uc.phases.CreateDelamination(ctx, &entity.Delamination{
				ID:               uuid.New().String(),
				PlanID:           plan.ID,
				SalesOrderID:     t.order.ID,
				DlamiQty:         qty,
				DlamiInformation: in.Details,
				LineNo:           req.Machine,
				WorkerCode:       req.StaffNumber,
				CreatedAt:        uc.now(),
			})
		})
	})
}

// RecordInspection registra una inspección. El plan es opcional.
func (uc *KioskUseCase) RecordInspection(ctx context.Context, req dto.ScanRequest) (*dto.ScanResponse, error) {
	in, err := decodePhaseInput(req)
	if err != nil {
		return nil, err
	}
	if in.QtyToPrinting != nil && in.QtyToPrinting.IsNegative() {
		return nil, fmt.Errorf("qtyToPrinting negativo: %w", domain.ErrInvalidInput)
	}
	return uc.record(ctx, domprod.StageInspection, req, func(ctx context.Context, t scanTarget) error {
		qty, err := targetQty(t, in.Qty)
		if err != nil {
			return err
		}
		planID, err := uc.optionalPlanID(ctx, t.order.ID)
		if err != nil {
			return err
		}
		return uc.phases.CreateInspection(ctx, &entity.Inspection{
			ID:             uuid.New().String(),
			SalesOrderID:   t.order.ID,
			PlanID:         planID,
			InsQty:         qty,
			InsInformation: in.Details,
			QtyToPrinting:  in.QtyToPrinting,
			LineNo:         req.Machine,
			Position:       in.Position,
			WorkerCode:     req.StaffNumber,
			CreatedAt:      uc.now(),
		})
	})
}

// RecordPrinting registra una impresión. El plan es opcional.
func (uc *KioskUseCase) RecordPrinting(ctx context.Context, req dto.ScanRequest) (*dto.ScanResponse, error) {
	in, err := decodePhaseInput(req)
	if err != nil {
		return nil, err
	}
	return uc.record(ctx, domprod.StagePrinting, req, func(ctx context.Context, t scanTarget) error {
		qty, err := targetQty(t, in.Qty)
		if err != nil {
			return err
		}
		planID, err := uc.optionalPlanID(ctx, t.order.ID)
		if err != nil {
			return err
		}
		return uc.phases.CreatePrinting(ctx, &entity.Printing{
			ID:               uuid.New().String(),
			SalesOrderID:     t.order.ID,
			PlanID:           planID,
			PrintQty:         qty,
			PrintInformation: in.Details,
			DefectCause:      in.DefectCause,
			LineNo:           req.Machine,
			WorkerCode:       req.StaffNumber,
			CreatedAt:        uc.now(),
		})
	})
}

// record procesa cada orden leída de forma independiente: un fallo se reporta
// en Failed y no detiene el resto.
func (uc *KioskUseCase) record(ctx context.Context, stage domprod.Stage, req dto.ScanRequest, fn recordFunc) (*dto.ScanResponse, error) {
	resp := &dto.ScanResponse{Status: "success", Saved: []string{}}
	touched := make([]string, 0, len(req.ScannedOrders))

	for _, scanned := range req.ScannedOrders {
		orderNo := strings.TrimSpace(scanned.OrderNumber)
		log := uc.log.With().
			Str("stage", string(stage)).
			Str("order_no", orderNo).
			Str("machine", req.Machine).
			Str("staff", req.StaffNumber).
			Logger()

		err := uc.recordOne(ctx, orderNo, scanned.Quantity, fn, &touched)
		if err != nil {
			reason := reasonStoreFailure
			var se *scanError
			if errors.As(err, &se) {
				reason = se.reason
				log.Warn().Err(err).Msg("kiosk scan rejected")
			} else {
				log.Error().Err(err).Msg("kiosk scan failed")
			}
			resp.Failed = append(resp.Failed, dto.ScanFailure{OrderNo: orderNo, Reason: reason})
			continue
		}
		log.Info().Msg("kiosk scan saved")
		resp.Saved = append(resp.Saved, orderNo)
	}

	if uc.invalidate {
		uc.status.Invalidate(ctx, touched...)
	}
	resp.Message = fmt.Sprintf("%d registradas, %d con error", len(resp.Saved), len(resp.Failed))
	return resp, nil
}

func (uc *KioskUseCase) recordOne(ctx context.Context, orderNo string, qty json.RawMessage, fn recordFunc, touched *[]string) error {
	if !domprod.IsSalesOrderNo(orderNo) {
		return reject(reasonNotSalesOrder, domain.ErrInvalidInput)
	}
	order, err := uc.orders.FindByOrderNo(ctx, orderNo)
	if errors.Is(err, domain.ErrNotFound) {
		return reject(reasonNotFound, err)
	}
	if err != nil {
		return err
	}
	if order.IsCancelled() {
		return reject(reasonCancelled, domain.ErrOrderCancelled)
	}
	if err := fn(ctx, scanTarget{order: order, qty: qty}); err != nil {
		return err
	}
	*touched = append(*touched, order.ID)
	return nil
}

func (uc *KioskUseCase) latestPlan(ctx context.Context, salesOrderID string) (*entity.ProductionPlan, error) {
	plan, err := uc.plans.Latest(ctx, salesOrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, reject(reasonNoPlan, err)
	}
	return plan, err
}

func (uc *KioskUseCase) optionalPlanID(ctx context.Context, salesOrderID string) (*string, error) {
	plan, err := uc.plans.Latest(ctx, salesOrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan.ID, nil
}

// lineInput valida que la máquina pertenezca a la etapa y decodifica las cantidades.
func (uc *KioskUseCase) lineInput(req dto.ScanRequest, stage entity.LineStage) (*dto.PhaseQuantityInput, error) {
	if got, ok := domprod.StageForLine(req.Machine); !ok || got != stage {
		return nil, fmt.Errorf("máquina %q no corresponde a %s: %w", req.Machine, stage, domain.ErrInvalidInput)
	}
	return decodePhaseInput(req)
}

func (uc *KioskUseCase) withLineLock(ctx context.Context, lineNo string, stage entity.LineStage, fn func() (*dto.ScanResponse, error)) (*dto.ScanResponse, error) {
	lock := uc.lines.obtain(ctx, lineNo, stage)
	defer uc.lines.release(ctx, lock)
	return fn()
}

// CloseOpenLineRecord asigna lote o posición de añejamiento al registro abierto más
// reciente de la línea. Sin registro abierto, crea uno nuevo ya cerrado si la petición
// trae número de orden.
func (uc *KioskUseCase) CloseOpenLineRecord(ctx context.Context, req dto.CloseLineRequest) (*dto.CloseLineResponse, error) {
	stage, ok := domprod.StageForLine(req.Machine)
	if !ok {
		return nil, fmt.Errorf("máquina %q: %w", req.Machine, domain.ErrInvalidInput)
	}
	if req.Lot == nil && req.AgingPosition == nil {
		return nil, fmt.Errorf("se requiere lote o posición: %w", domain.ErrInvalidInput)
	}
	if req.AgingPosition != nil && stage != entity.LineStageDryLine {
		return nil, fmt.Errorf("posición de añejamiento solo en línea seca: %w", domain.ErrInvalidInput)
	}
	if req.Qty != nil && req.Qty.IsNegative() {
		return nil, fmt.Errorf("cantidad negativa: %w", domain.ErrInvalidInput)
	}

	lock := uc.lines.obtain(ctx, req.Machine, stage)
	defer uc.lines.release(ctx, lock)

	for attempt := 1; attempt <= maxCASRetries; attempt++ {
		rec, err := uc.phases.LatestOpenOnLine(ctx, stage, req.Machine)
		if errors.Is(err, domain.ErrNotFound) {
			return uc.createClosed(ctx, stage, req)
		}
		if err != nil {
			return nil, err
		}
		applyClose(rec, req)
		err = uc.phases.UpdateLineRecord(ctx, rec)
		if errors.Is(err, domain.ErrConflict) {
			uc.log.Warn().Str("record_id", rec.ID).Int("attempt", attempt).Msg("line record version conflict")
			continue
		}
		if err != nil {
			return nil, err
		}
		if uc.invalidate {
			uc.status.Invalidate(ctx, rec.SalesOrderID)
		}
		return toCloseLineResponse(rec, false), nil
	}
	return nil, fmt.Errorf("cerrar registro de %s: %w", req.Machine, domain.ErrConflict)
}

func applyClose(rec *entity.LineRecord, req dto.CloseLineRequest) {
	if req.Qty != nil {
		rec.Qty = *req.Qty
	}
	if req.Lot != nil {
		lot := strings.TrimSpace(*req.Lot)
		rec.Lot = &lot
	}
	if req.AgingPosition != nil && rec.Stage == entity.LineStageDryLine {
		pos := strings.TrimSpace(*req.AgingPosition)
		rec.AgingPosition = &pos
	}
}

func (uc *KioskUseCase) createClosed(ctx context.Context, stage entity.LineStage, req dto.CloseLineRequest) (*dto.CloseLineResponse, error) {
	orderNo := strings.TrimSpace(req.OrderNumber)
	if orderNo == "" {
		return nil, fmt.Errorf("línea %s sin registro abierto: %w", req.Machine, domain.ErrNotFound)
	}
	order, err := uc.orders.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order.IsCancelled() {
		return nil, domain.ErrOrderCancelled
	}
	plan, err := uc.plans.Latest(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("plan de %s: %w", orderNo, err)
	}

	rec := &entity.LineRecord{
		ID:           uuid.New().String(),
		Stage:        stage,
		SalesOrderID: order.ID,
		OrderNo:      order.OrderNo,
		PlanID:       plan.ID,
		LineNo:       req.Machine,
		Qty:          decimal.Zero,
		CreatedAt:    uc.now(),
	}
	applyClose(rec, req)

	switch stage {
	case entity.LineStageDryLine:
		err = uc.phases.CreateDryLine(ctx, &entity.DryLine{
			ID: rec.ID, PlanID: rec.PlanID, SalesOrderID: rec.SalesOrderID, PdQty: rec.Qty,
			LineNo: rec.LineNo, AgPosition: rec.AgingPosition, PdLot: rec.Lot,
			WorkerCode: req.StaffNumber, CreatedAt: rec.CreatedAt,
		})
	default:
		err = uc.phases.CreateDelamination(ctx, &entity.Delamination{
			ID: rec.ID, PlanID: rec.PlanID, SalesOrderID: rec.SalesOrderID, DlamiQty: rec.Qty,
			LineNo: rec.LineNo, DlamiLot: rec.Lot, WorkerCode: req.StaffNumber, CreatedAt: rec.CreatedAt,
		})
	}
	if err != nil {
		return nil, err
	}
	if uc.invalidate {
		uc.status.Invalidate(ctx, order.ID)
	}
	return toCloseLineResponse(rec, true), nil
}

func toCloseLineResponse(rec *entity.LineRecord, created bool) *dto.CloseLineResponse {
	return &dto.CloseLineResponse{
		RecordID:      rec.ID,
		Stage:         string(rec.Stage),
		LineNo:        rec.LineNo,
		OrderNo:       rec.OrderNo,
		Qty:           rec.Qty,
		Lot:           rec.Lot,
		AgingPosition: rec.AgingPosition,
		Version:       rec.Version,
		Created:       created,
	}
}

func validateScan(req dto.ScanRequest) error {
	if len(req.ScannedOrders) == 0 {
		return fmt.Errorf("scannedOrders vacío: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Machine) == "" || strings.TrimSpace(req.StaffNumber) == "" {
		return fmt.Errorf("machine y staffNumber son obligatorios: %w", domain.ErrInvalidInput)
	}
	return nil
}

// decodePhaseInput decodifica quantityInput. La cantidad común se valida por orden.
func decodePhaseInput(req dto.ScanRequest) (*dto.PhaseQuantityInput, error) {
	if err := validateScan(req); err != nil {
		return nil, err
	}
	var in dto.PhaseQuantityInput
	if len(req.QuantityInput) > 0 {
		if err := json.Unmarshal(req.QuantityInput, &in); err != nil {
			return nil, fmt.Errorf("quantityInput: %w", domain.ErrInvalidInput)
		}
	}
	return &in, nil
}

// targetQty usa la cantidad propia de la orden leída si viene; si no, la común.
func targetQty(t scanTarget, common json.RawMessage) (decimal.Decimal, error) {
	raw := common
	if len(t.qty) > 0 {
		raw = t.qty
	}
	qty, err := ParseQty(raw)
	if err != nil {
		return decimal.Zero, reject(reasonInvalidQty, err)
	}
	return qty, nil
}

// ParseQty acepta un número JSON o un texto numérico no negativo.
func ParseQty(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" || s == `""` {
		return decimal.Zero, fmt.Errorf("cantidad vacía: %w", domain.ErrInvalidInput)
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON([]byte(s)); err != nil {
		return decimal.Zero, fmt.Errorf("cantidad %s: %w", s, domain.ErrInvalidInput)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("cantidad %s negativa: %w", s, domain.ErrInvalidInput)
	}
	return d, nil
}
