// Package swatch seguimiento de muestras de color por etiqueta RFID.
package swatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

const maxErrorLogs = 100

// UseCase lecturas, ubicación, limpieza e importación de muestras.
type UseCase struct {
	swatches  repository.ColorSwatchRepository
	reader    SheetReader
	retention time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func NewUseCase(swatches repository.ColorSwatchRepository, reader SheetReader, retentionDays int, log *logger.Logger) *UseCase {
	return &UseCase{
		swatches:  swatches,
		reader:    reader,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		log:       log,
		now:       time.Now,
	}
}

// RecordMovement registra la lectura de una muestra en una línea.
func (uc *UseCase) RecordMovement(ctx context.Context, req dto.SwatchMovementRequest) (*dto.SwatchLocationResponse, error) {
	epc := strings.TrimSpace(req.EPC)
	line := strings.ToLower(strings.TrimSpace(req.LineNo))
	if epc == "" || line == "" {
		return nil, fmt.Errorf("epc y line_no son obligatorios: %w", domain.ErrInvalidInput)
	}
	s, err := uc.swatches.GetByEPC(ctx, epc)
	if err != nil {
		return nil, err
	}
	mov := &entity.ColorSwatchMovement{
		ID:         uuid.New().String(),
		SwatchID:   s.ID,
		LineNo:     line,
		WorkerCode: strings.TrimSpace(req.StaffNumber),
		CreatedAt:  uc.now(),
	}
	if err := uc.swatches.AddMovement(ctx, mov); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("epc", epc).Str("line", line).Str("staff", mov.WorkerCode).Msg("swatch movement")
	return toLocation(s, mov), nil
}

// Locate devuelve la muestra con su última lectura, si tiene alguna.
func (uc *UseCase) Locate(ctx context.Context, epc string) (*dto.SwatchLocationResponse, error) {
	s, err := uc.swatches.GetByEPC(ctx, strings.TrimSpace(epc))
	if err != nil {
		return nil, err
	}
	mov, err := uc.swatches.LatestMovement(ctx, s.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return toLocation(s, mov), nil
}

// PurgeOldMovements borra las lecturas fuera de la ventana de retención.
// La lectura más reciente de cada muestra se conserva aunque sea antigua.
func (uc *UseCase) PurgeOldMovements(ctx context.Context) (*dto.SwatchPurgeResult, error) {
	before := uc.now().Add(-uc.retention)
	n, err := uc.swatches.PurgeMovements(ctx, before)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Int64("deleted", n).Time("before", before).Msg("swatch movements purged")
	return &dto.SwatchPurgeResult{Deleted: n, Before: before}, nil
}

// Import carga el maestro de muestras. Si faltan columnas se rechaza el archivo;
// las filas incompletas o con error se cuentan y se omiten.
func (uc *UseCase) Import(ctx context.Context, data []byte) (*dto.SwatchImportResult, error) {
	sheet, err := uc.reader.ReadSwatchSheet(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(sheet.Columns); len(missing) > 0 {
		return nil, fmt.Errorf("faltan columnas obligatorias: %s: %w", strings.Join(missing, ", "), domain.ErrInvalidInput)
	}

	res := &dto.SwatchImportResult{TotalProcessed: len(sheet.Rows), ErrorLogs: []string{}}
	fail := func(line int, err error) {
		res.Errors++
		if len(res.ErrorLogs) < maxErrorLogs {
			res.ErrorLogs = append(res.ErrorLogs, fmt.Sprintf("fila %d: %v", line, err))
		}
	}

	for _, row := range sheet.Rows {
		s, err := uc.toSwatch(row)
		if err != nil {
			fail(row.Line, err)
			continue
		}
		created, err := uc.swatches.Upsert(ctx, s)
		if err != nil {
			fail(row.Line, err)
			continue
		}
		if created {
			res.NewRecords++
		} else {
			res.UpdatedRecords++
		}
	}

	uc.log.Info().
		Int("rows", res.TotalProcessed).
		Int("new", res.NewRecords).
		Int("updated", res.UpdatedRecords).
		Int("errors", res.Errors).
		Msg("swatch sheet imported")
	return res, nil
}

func (uc *UseCase) toSwatch(row Row) (*entity.ColorSwatch, error) {
	for _, col := range RequiredColumns {
		if strings.TrimSpace(row.Cells[col]) == "" {
			return nil, errors.New("faltan valores obligatorios")
		}
	}
	stt, err := parseSTT(row.Cells["STT"])
	if err != nil {
		return nil, fmt.Errorf("STT %q inválido", row.Cells["STT"])
	}
	now := uc.now()
	return &entity.ColorSwatch{
		ID:        uuid.New().String(),
		EPC:       strings.TrimSpace(row.Cells["EPC"]),
		STT:       stt,
		Type:      strings.TrimSpace(row.Cells["M/S"]),
		Customer:  strings.TrimSpace(row.Cells["CUSTOMER"]),
		Item:      strings.TrimSpace(row.Cells["ITEM"]),
		Color:     strings.TrimSpace(row.Cells["COLOR"]),
		Pattern:   strings.TrimSpace(row.Cells["TYPE"]),
		BaseColor: strings.TrimSpace(row.Cells["BASE"]),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func missingColumns(cols []string) []string {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[strings.TrimSpace(c)] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// parseSTT acepta "12" y "12.0".
func parseSTT(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, domain.ErrInvalidInput
	}
	return int(f), nil
}

func toLocation(s *entity.ColorSwatch, mov *entity.ColorSwatchMovement) *dto.SwatchLocationResponse {
	out := &dto.SwatchLocationResponse{
		EPC:       s.EPC,
		STT:       s.STT,
		Type:      s.Type,
		Customer:  s.Customer,
		Item:      s.Item,
		Color:     s.Color,
		Pattern:   s.Pattern,
		BaseColor: s.BaseColor,
	}
	if mov != nil {
		at := mov.CreatedAt
		out.LastLineNo = mov.LineNo
		out.LastWorker = mov.WorkerCode
		out.LastSeenAt = &at
	}
	return out
}
