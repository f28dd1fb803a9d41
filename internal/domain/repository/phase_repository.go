package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// PhaseRepository define el puerto de persistencia para los registros de fase
// (mezcla, línea seca, deslaminado, inspección, impresión).
type PhaseRepository interface {
	// ListByOrder reúne los registros de todas las tablas de fase ligados a la orden,
	// directamente o a través de cualquiera de sus planes.
	ListByOrder(ctx context.Context, salesOrderID string) (entity.PhaseSet, error)

	CreateDryMix(ctx context.Context, rec *entity.DryMix) error
	CreateDryLine(ctx context.Context, rec *entity.DryLine) error
	CreateDelamination(ctx context.Context, rec *entity.Delamination) error
	CreateInspection(ctx context.Context, rec *entity.Inspection) error
	CreatePrinting(ctx context.Context, rec *entity.Printing) error

	// LatestOpenOnLine devuelve el registro abierto más reciente de la línea o domain.ErrNotFound.
	LatestOpenOnLine(ctx context.Context, stage entity.LineStage, lineNo string) (*entity.LineRecord, error)
	// LatestForOrder devuelve el registro más reciente de la orden en la etapa o domain.ErrNotFound.
	LatestForOrder(ctx context.Context, stage entity.LineStage, salesOrderID string) (*entity.LineRecord, error)
	// ListOnLineBetween lista los registros de la línea con created_at en [from, to].
	ListOnLineBetween(ctx context.Context, stage entity.LineStage, lineNo string, from, to time.Time) ([]entity.LineRecord, error)
	// UpdateLineRecord escribe cantidad, lote y posición si la versión no cambió
	// y la incrementa. Devuelve domain.ErrConflict si otro escritor se adelantó.
	UpdateLineRecord(ctx context.Context, rec *entity.LineRecord) error
}
