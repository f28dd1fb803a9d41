package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// maxLotRetries reintentos de emisión cuando otro proceso tomó el mismo código.
const maxLotRetries = 3

// LotUseCase numeración de lotes y asignación por rango de rollos.
type LotUseCase struct {
	lots       repository.LotRepository
	tx         LotTxRunner
	orders     repository.SalesOrderRepository
	phases     repository.PhaseRepository
	lines      lineLocker
	status     *StatusUseCase
	loc        *time.Location
	invalidate bool
	log        *logger.Logger
	now        func() time.Time
}

// NewLotUseCase construye el caso de uso. lots se usa para lecturas fuera de transacción.
func NewLotUseCase(
	lots repository.LotRepository,
	tx LotTxRunner,
	orders repository.SalesOrderRepository,
	phases repository.PhaseRepository,
	locker Locker,
	status *StatusUseCase,
	loc *time.Location,
	lockTTL time.Duration,
	invalidate bool,
	log *logger.Logger,
) *LotUseCase {
	return &LotUseCase{
		lots:       lots,
		tx:         tx,
		orders:     orders,
		phases:     phases,
		lines:      lineLocker{locker: locker, ttl: lockTTL, log: log},
		status:     status,
		loc:        loc,
		invalidate: invalidate,
		log:        log,
		now:        time.Now,
	}
}

func (uc *LotUseCase) today() time.Time {
	return uc.now().In(uc.loc)
}

// NextLot vista previa del siguiente código del día. No reserva nada.
func (uc *LotUseCase) NextLot(ctx context.Context) (*dto.NextLotResponse, error) {
	today := uc.today()
	issued, err := uc.lots.ListIssued(ctx, domprod.LotPrefix(today))
	if err != nil {
		return nil, err
	}
	return &dto.NextLotResponse{
		LotCode: domprod.NextLotNumber(today, issued),
		Date:    today.Format("2006-01-02"),
	}, nil
}

// IssueLot reserva el siguiente código del día dentro de una transacción serializada por día.
func (uc *LotUseCase) IssueLot(ctx context.Context, userID string, req dto.IssueLotRequest) (*dto.LotResponse, error) {
	grade := strings.ToUpper(strings.TrimSpace(req.Grade))
	if grade != "" && grade != domprod.GradeA && grade != domprod.GradeB {
		return nil, fmt.Errorf("grado %q: %w", req.Grade, domain.ErrInvalidInput)
	}

	var lot *entity.ProductionLot
	for attempt := 1; attempt <= maxLotRetries; attempt++ {
		today := uc.today()
		prefix := domprod.LotPrefix(today)
		err := uc.tx.RunLots(ctx, func(lots repository.LotRepository) error {
			if err := lots.LockDay(ctx, prefix); err != nil {
				return err
			}
			issued, err := lots.ListIssued(ctx, prefix)
			if err != nil {
				return err
			}
			seq := domprod.NextSequence(prefix, issued)
			lot = &entity.ProductionLot{
				ID:        uuid.New().String(),
				LotCode:   domprod.FormatLotCode(prefix, seq, grade),
				LotDate:   time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, uc.loc),
				Sequence:  seq,
				Grade:     grade,
				CreatedAt: uc.now(),
				CreatedBy: userID,
			}
			return lots.Create(ctx, lot)
		})
		if errors.Is(err, domain.ErrDuplicate) {
			uc.log.Warn().Str("prefix", prefix).Int("attempt", attempt).Msg("lot code taken, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		uc.log.Info().Str("lot_code", lot.LotCode).Str("user_id", userID).Msg("lot issued")
		return toLotResponse(lot), nil
	}
	return nil, fmt.Errorf("emitir lote: %w", domain.ErrConflict)
}

func toLotResponse(l *entity.ProductionLot) *dto.LotResponse {
	return &dto.LotResponse{
		ID:        l.ID,
		LotCode:   l.LotCode,
		LotDate:   l.LotDate.Format("2006-01-02"),
		Sequence:  l.Sequence,
		Grade:     l.Grade,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}

// AssignRange escribe lote y/o posición de añejamiento en los registros de la línea
// comprendidos entre las dos tarjetas límite. Cada registro se actualiza por separado.
// Si falta un límite o los límites están en líneas distintas, el resultado es vacío.
func (uc *LotUseCase) AssignRange(ctx context.Context, req dto.AssignRangeRequest) (*dto.AssignRangeResponse, error) {
	if req.LotCode == nil && req.AgingPosition == nil {
		return nil, fmt.Errorf("se requiere lote o posición: %w", domain.ErrInvalidInput)
	}
	if req.LotCode != nil {
		if _, _, _, ok := domprod.ParseLotCode(*req.LotCode); !ok {
			return nil, fmt.Errorf("lote %q: %w", *req.LotCode, domain.ErrInvalidInput)
		}
	}

	inside, err := uc.resolveOrder(ctx, req.InsideOrder)
	if err != nil {
		return nil, err
	}
	outside, err := uc.resolveOrder(ctx, req.OutsideOrder)
	if err != nil {
		return nil, err
	}

	stage, err := uc.rangeStage(ctx, req.Machine, inside.ID)
	if err != nil {
		return nil, err
	}
	empty := &dto.AssignRangeResponse{Stage: string(stage), Updated: []string{}, Skipped: []dto.ScanFailure{}}
	if stage == "" {
		return empty, nil
	}
	if req.AgingPosition != nil && stage != entity.LineStageDryLine {
		return nil, fmt.Errorf("posición de añejamiento solo en línea seca: %w", domain.ErrInvalidInput)
	}

	in, err := uc.boundary(ctx, stage, inside.ID)
	if err != nil {
		return nil, err
	}
	out, err := uc.boundary(ctx, stage, outside.ID)
	if err != nil {
		return nil, err
	}
	machine := strings.TrimSpace(req.Machine)
	if in == nil || out == nil || !strings.EqualFold(in.LineNo, out.LineNo) ||
		(machine != "" && !strings.EqualFold(machine, in.LineNo)) {
		uc.log.Info().Str("inside", inside.OrderNo).Str("outside", outside.OrderNo).Msg("range without selection")
		return empty, nil
	}

	lock := uc.lines.obtain(ctx, in.LineNo, stage)
	defer uc.lines.release(ctx, lock)

	from, to := in.CreatedAt, out.CreatedAt
	if from.After(to) {
		from, to = to, from
	}
	candidates, err := uc.phases.ListOnLineBetween(ctx, stage, in.LineNo, from, to)
	if err != nil {
		return nil, err
	}
	selected, ok := domprod.SelectRange(in, out, candidates)
	if !ok {
		return empty, nil
	}

	resp := &dto.AssignRangeResponse{
		Stage:    string(stage),
		LineNo:   in.LineNo,
		Selected: len(selected),
		Updated:  []string{},
		Skipped:  []dto.ScanFailure{},
	}
	touched := make(map[string]struct{})
	for i := range selected {
		rec := &selected[i]
		if req.LotCode != nil {
			lot := strings.TrimSpace(*req.LotCode)
			rec.Lot = &lot
		}
		if req.AgingPosition != nil {
			pos := strings.TrimSpace(*req.AgingPosition)
			rec.AgingPosition = &pos
		}
		if err := uc.phases.UpdateLineRecord(ctx, rec); err != nil {
			reason := reasonStoreFailure
			if errors.Is(err, domain.ErrConflict) {
				reason = "modificado por otro usuario"
			}
			uc.log.Warn().Err(err).Str("record_id", rec.ID).Msg("range record not updated")
			resp.Skipped = append(resp.Skipped, dto.ScanFailure{OrderNo: rec.OrderNo, Reason: reason})
			continue
		}
		resp.Updated = append(resp.Updated, rec.ID)
		touched[rec.SalesOrderID] = struct{}{}
	}

	if uc.invalidate && len(touched) > 0 {
		ids := make([]string, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		uc.status.Invalidate(ctx, ids...)
	}
	return resp, nil
}

// resolveOrder acepta el contenido del QR o el número de orden.
func (uc *LotUseCase) resolveOrder(ctx context.Context, scanned string) (*entity.SalesOrder, error) {
	orderNo := strings.TrimSpace(scanned)
	if strings.HasPrefix(orderNo, "!") {
		parsed, err := domprod.ParseOrderQR(orderNo)
		if err != nil {
			return nil, err
		}
		orderNo = parsed
	}
	if orderNo == "" {
		return nil, fmt.Errorf("orden límite vacía: %w", domain.ErrInvalidInput)
	}
	return uc.orders.FindByOrderNo(ctx, orderNo)
}

// rangeStage deduce la etapa por el prefijo de la máquina; sin máquina, por el registro
// más reciente de la orden interior entre línea seca y RP. "" si la orden no tiene ninguno.
func (uc *LotUseCase) rangeStage(ctx context.Context, machine, insideID string) (entity.LineStage, error) {
	if strings.TrimSpace(machine) != "" {
		stage, ok := domprod.StageForLine(machine)
		if !ok {
			return "", fmt.Errorf("máquina %q: %w", machine, domain.ErrInvalidInput)
		}
		return stage, nil
	}
	dl, err := uc.boundary(ctx, entity.LineStageDryLine, insideID)
	if err != nil {
		return "", err
	}
	rp, err := uc.boundary(ctx, entity.LineStageDelamination, insideID)
	if err != nil {
		return "", err
	}
	switch {
	case dl == nil && rp == nil:
		return "", nil
	case rp == nil:
		return entity.LineStageDryLine, nil
	case dl == nil || rp.CreatedAt.After(dl.CreatedAt):
		return entity.LineStageDelamination, nil
	}
	return entity.LineStageDryLine, nil
}

// boundary registro límite de la orden; nil si no existe.
func (uc *LotUseCase) boundary(ctx context.Context, stage entity.LineStage, salesOrderID string) (*entity.LineRecord, error) {
	rec, err := uc.phases.LatestForOrder(ctx, stage, salesOrderID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}
