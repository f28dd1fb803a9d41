package production

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// ProcessStep una fila de la lista de proceso ordenada que ve el operador.
type ProcessStep struct {
	Stage    Stage
	RecordID string
	At       time.Time
	Machine  string
	Qty      *decimal.Decimal // nil para etapas sin cantidad (plan sin qty, mezcla)
	Lot      string
}

// StatusSnapshot resultado de reducir la línea de tiempo de una orden.
type StatusSnapshot struct {
	OrderID  string
	OrderNo  string
	OrderQty decimal.Decimal

	BalanceQty     decimal.Decimal // pedido - suma de grado A inspeccionado
	SubProducedQty decimal.Decimal // producido en la tanda de línea abierta; la siguiente tanda tras una inspección empieza de cero
	LineShortage   decimal.Decimal // SubProducedQty - BalanceQty
	ProducedQty    decimal.Decimal // total producido en línea, sin reinicios
	InspectedQty   decimal.Decimal
	PrintedQty     decimal.Decimal

	// Último valor por clave (compatibilidad con la vista del piso).
	ChemicalUsage map[string]decimal.Decimal
	Defects       map[string]decimal.Decimal
	// Suma por causa, para contrastar con Defects.
	DefectTotals map[string]decimal.Decimal

	LatestStage   Stage
	LatestAt      *time.Time
	LatestMachine string

	PendingPrintQty *decimal.Decimal
	Process         []ProcessStep
}

// Aggregate recorre la línea de tiempo una sola vez y calcula saldo, faltante de línea,
// defectos, etapa actual y la cantidad pendiente de pasar a impresión.
// El acumulado de línea se reinicia en el primer registro de línea posterior a una inspección.
// No muta la línea de tiempo: dos llamadas sobre la misma entrada producen el mismo resultado.
func Aggregate(order *entity.SalesOrder, tl Timeline) StatusSnapshot {
	snap := StatusSnapshot{
		OrderID:        order.ID,
		OrderNo:        order.OrderNo,
		OrderQty:       order.OrderQty,
		BalanceQty:     order.OrderQty,
		SubProducedQty: decimal.Zero,
		ProducedQty:    decimal.Zero,
		InspectedQty:   decimal.Zero,
		PrintedQty:     decimal.Zero,
		ChemicalUsage:  map[string]decimal.Decimal{},
		Defects:        map[string]decimal.Decimal{},
		DefectTotals:   map[string]decimal.Decimal{},
		Process:        make([]ProcessStep, 0, len(tl.Events)),
	}

	lastInspection, lastPrinting := -1, -1
	var handoff *decimal.Decimal
	inspectedSinceLine := false

	for idx, ev := range tl.Events {
		step := ProcessStep{Stage: ev.Stage(), RecordID: ev.RecordID(), At: ev.At(), Machine: ev.Machine()}

		switch e := ev.(type) {
		case PlanEvent:
			step.Qty = qtyPtr(e.PlanQty)
		case MixEvent:
			for _, u := range e.Usage {
				snap.ChemicalUsage[u.Item] = u.Quantity
			}
		case LineEvent:
			if inspectedSinceLine {
				snap.SubProducedQty = decimal.Zero
				inspectedSinceLine = false
			}
			snap.SubProducedQty = snap.SubProducedQty.Add(e.Qty)
			snap.ProducedQty = snap.ProducedQty.Add(e.Qty)
			step.Qty = qtyPtr(e.Qty)
			step.Lot = e.Lot
		case RPEvent:
			step.Qty = qtyPtr(e.Qty)
			step.Lot = e.Lot
		case InspectionEvent:
			agrade := e.Qty
			if agrade.IsNegative() {
				agrade = decimal.Zero
			}
			inspectedSinceLine = true
			snap.BalanceQty = snap.BalanceQty.Sub(agrade)
			snap.InspectedQty = snap.InspectedQty.Add(agrade)
			for _, d := range e.Defects {
				snap.Defects[d.Cause] = d.Quantity
				snap.DefectTotals[d.Cause] = snap.DefectTotals[d.Cause].Add(d.Quantity)
			}
			lastInspection = idx
			handoff = nil
			if e.QtyToPrinting != nil && e.QtyToPrinting.IsPositive() {
				handoff = qtyPtr(*e.QtyToPrinting)
			}
			step.Qty = qtyPtr(agrade)
		case PrintingEvent:
			snap.PrintedQty = snap.PrintedQty.Add(e.Qty)
			lastPrinting = idx
			step.Qty = qtyPtr(e.Qty)
		}
		snap.Process = append(snap.Process, step)
	}

	snap.LineShortage = snap.SubProducedQty.Sub(snap.BalanceQty)

	if lastInspection >= 0 && lastPrinting < lastInspection {
		snap.PendingPrintQty = handoff
	}

	if tl.Latest != nil {
		at := tl.Latest.At
		snap.LatestStage = tl.Latest.Stage
		snap.LatestAt = &at
		snap.LatestMachine = tl.Latest.Machine
	}
	return snap
}

func qtyPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
