package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DryMix registro de mezcla en seco (uso de químicos por ítem).
type DryMix struct {
	ID                string
	PlanID            string
	SalesOrderID      string // derivado del plan al leer
	MixingInformation json.RawMessage
	WorkerCode        string
	CreatedAt         time.Time
}

// DryLine registro de producción en línea seca. Se cierra al asignar lote o posición de añejamiento.
type DryLine struct {
	ID            string
	PlanID        string
	SalesOrderID  string
	PdQty         decimal.Decimal
	PdInformation json.RawMessage // pérdidas: [{"defectCause","quantity"}]
	LineNo        string
	AgPosition    *string
	PdLot         *string
	WorkerCode    string
	Version       int
	CreatedAt     time.Time
}

// IsOpen indica si el registro aún admite asignación de lote.
func (d *DryLine) IsOpen() bool {
	return d.PdLot == nil && d.AgPosition == nil
}

// Delamination registro de deslaminado / release paper (RP).
type Delamination struct {
	ID               string
	PlanID           string
	SalesOrderID     string
	DlamiQty         decimal.Decimal
	DlamiInformation json.RawMessage
	LineNo           string
	DlamiLot         *string
	WorkerCode       string
	Version          int
	CreatedAt        time.Time
}

// IsOpen indica si el registro aún admite asignación de lote.
func (d *Delamination) IsOpen() bool {
	return d.DlamiLot == nil
}

// Inspection registro de inspección. Apunta directo a la orden; el plan es opcional.
type Inspection struct {
	ID             string
	SalesOrderID   string
	PlanID         *string
	InsQty         decimal.Decimal // cantidad grado A
	InsInformation json.RawMessage // defectos: [{"defectCause","quantity"}]
	QtyToPrinting  *decimal.Decimal
	LineNo         string
	Position       string
	WorkerCode     string
	CreatedAt      time.Time
}

// Printing registro de impresión. Apunta directo a la orden.
type Printing struct {
	ID               string
	SalesOrderID     string
	PlanID           *string
	PrintQty         decimal.Decimal
	PrintInformation json.RawMessage
	DefectCause      string
	LineNo           string
	WorkerCode       string
	CreatedAt        time.Time
}

// PhaseSet agrupa todos los registros crudos de una orden, tabla por tabla.
type PhaseSet struct {
	Plans         []ProductionPlan
	DryMixes      []DryMix
	DryLines      []DryLine
	Delaminations []Delamination
	Inspections   []Inspection
	Printings     []Printing
}

// Len total de registros en el conjunto.
func (s *PhaseSet) Len() int {
	return len(s.Plans) + len(s.DryMixes) + len(s.DryLines) +
		len(s.Delaminations) + len(s.Inspections) + len(s.Printings)
}

// LineStage etapas ligadas a una línea física que reciben lote.
type LineStage string

const (
	LineStageDryLine      LineStage = "DryLine"
	LineStageDelamination LineStage = "Delamination"
)

// LineRecord proyección común de DryLine y Delamination para selección por rango
// y cierre del registro abierto de una línea.
type LineRecord struct {
	ID            string
	Stage         LineStage
	SalesOrderID  string
	OrderNo       string
	PlanID        string
	LineNo        string
	Qty           decimal.Decimal
	Lot           *string
	AgingPosition *string
	Version       int
	CreatedAt     time.Time
}

// IsOpen aplica la regla de cierre de cada etapa.
func (r *LineRecord) IsOpen() bool {
	if r.Stage == LineStageDryLine {
		return r.Lot == nil && r.AgingPosition == nil
	}
	return r.Lot == nil
}
