// Package production contiene los servicios de dominio del seguimiento de producción:
// reconstrucción de la línea de tiempo de fases, agregación de estado, numeración de lotes
// y selección de rangos entre rollos límite. No depende de infraestructura.
package production

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage etapa del proceso productivo.
type Stage string

const (
	StageDryPlan    Stage = "DryPlan"
	StageDryMix     Stage = "DryMix"
	StageDryLine    Stage = "DryLine"
	StageRP         Stage = "RP"
	StageInspection Stage = "Inspection"
	StagePrinting   Stage = "Printing"
)

// Rank orden natural del flujo; desempata eventos con la misma marca de tiempo.
func (s Stage) Rank() int {
	switch s {
	case StageDryPlan:
		return 0
	case StageDryMix:
		return 1
	case StageDryLine:
		return 2
	case StageRP:
		return 3
	case StageInspection:
		return 4
	case StagePrinting:
		return 5
	}
	return 99
}

// Event es la unión etiquetada de los registros de fase normalizados.
// Solo las variantes de este paquete la implementan.
type Event interface {
	Stage() Stage
	At() time.Time
	Machine() string
	RecordID() string
	isEvent()
}

// base campos comunes a todas las variantes.
type base struct {
	ID        string
	Timestamp time.Time
	Line      string
}

func (b base) At() time.Time    { return b.Timestamp }
func (b base) Machine() string  { return b.Line }
func (b base) RecordID() string { return b.ID }
func (base) isEvent()           {}

// ChemicalUsage consumo de un químico en una mezcla.
type ChemicalUsage struct {
	Category string
	Item     string
	Quantity decimal.Decimal
}

// DefectEntry causa de defecto con su cantidad.
type DefectEntry struct {
	Cause    string
	Quantity decimal.Decimal
}

// PlanEvent planificación en línea seca.
type PlanEvent struct {
	base
	PlanNo  string
	PlanQty decimal.Decimal
}

func (PlanEvent) Stage() Stage { return StageDryPlan }

// MixEvent mezcla en seco.
type MixEvent struct {
	base
	Usage  []ChemicalUsage
	Worker string
}

func (MixEvent) Stage() Stage { return StageDryMix }

// LineEvent producción en línea seca.
type LineEvent struct {
	base
	Qty           decimal.Decimal
	Losses        []DefectEntry
	Lot           string
	AgingPosition string
}

func (LineEvent) Stage() Stage { return StageDryLine }

// RPEvent deslaminado / release paper.
type RPEvent struct {
	base
	Qty decimal.Decimal
	Lot string
}

func (RPEvent) Stage() Stage { return StageRP }

// InspectionEvent inspección; Qty es la cantidad grado A.
type InspectionEvent struct {
	base
	Qty           decimal.Decimal
	Defects       []DefectEntry
	QtyToPrinting *decimal.Decimal
	Position      string
}

func (InspectionEvent) Stage() Stage { return StageInspection }

// PrintingEvent impresión.
type PrintingEvent struct {
	base
	Qty         decimal.Decimal
	DefectCause string
}

func (PrintingEvent) Stage() Stage { return StagePrinting }
