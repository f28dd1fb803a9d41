package production

import (
	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
)

func toSalesOrderResponse(o *entity.SalesOrder) *dto.SalesOrderResponse {
	return &dto.SalesOrderResponse{
		ID:                 o.ID,
		OrderNo:            o.OrderNo,
		CustomerOrderNo:    o.CustomerOrderNo,
		CustomerName:       o.CustomerName,
		OrderType:          o.OrderType,
		OrderDate:          o.OrderDate,
		RTD:                o.RTD,
		ETD:                o.ETD,
		Brand:              o.Brand,
		ItemName:           o.ItemName,
		ColorCode:          o.ColorCode,
		ColorName:          o.ColorName,
		Pattern:            o.Pattern,
		BaseColor:          o.BaseColor,
		Spec:               o.Spec,
		OrderQty:           o.OrderQty,
		QtyUnit:            o.QtyUnit,
		ProductionLocation: o.ProductionLocation,
		ProductGroup:       o.ProductGroup,
		Status:             o.Status,
	}
}

func toSnapshotResponse(s domprod.StatusSnapshot) *dto.StatusSnapshotResponse {
	out := &dto.StatusSnapshotResponse{
		OrderID:         s.OrderID,
		OrderNo:         s.OrderNo,
		OrderQty:        s.OrderQty,
		BalanceQty:      s.BalanceQty,
		SubProducedQty:  s.SubProducedQty,
		LineShortage:    s.LineShortage,
		ProducedQty:     s.ProducedQty,
		InspectedQty:    s.InspectedQty,
		PrintedQty:      s.PrintedQty,
		ChemicalUsage:   s.ChemicalUsage,
		Defects:         s.Defects,
		DefectTotals:    s.DefectTotals,
		LatestStage:     string(s.LatestStage),
		LatestAt:        s.LatestAt,
		LatestMachine:   s.LatestMachine,
		PendingPrintQty: s.PendingPrintQty,
		Process:         make([]dto.ProcessStepResponse, 0, len(s.Process)),
	}
	for _, p := range s.Process {
		out.Process = append(out.Process, dto.ProcessStepResponse{
			Stage:    string(p.Stage),
			RecordID: p.RecordID,
			At:       p.At,
			Machine:  p.Machine,
			Qty:      p.Qty,
			Lot:      p.Lot,
		})
	}
	return out
}

func toTimelineResponse(orderNo string, tl domprod.Timeline) *dto.TimelineResponse {
	out := &dto.TimelineResponse{OrderNo: orderNo, Events: make([]dto.TimelineEventResponse, 0, len(tl.Events))}
	for _, ev := range tl.Events {
		out.Events = append(out.Events, dto.TimelineEventResponse{
			Stage:    string(ev.Stage()),
			RecordID: ev.RecordID(),
			At:       ev.At(),
			Machine:  ev.Machine(),
			Payload:  eventPayload(ev),
		})
	}
	if tl.Latest != nil {
		at := tl.Latest.At
		out.LatestStage = string(tl.Latest.Stage)
		out.LatestAt = &at
		out.LatestMachine = tl.Latest.Machine
	}
	return out
}

func eventPayload(ev domprod.Event) map[string]any {
	switch e := ev.(type) {
	case domprod.PlanEvent:
		return map[string]any{"plan_no": e.PlanNo, "plan_qty": e.PlanQty}
	case domprod.MixEvent:
		usage := make([]map[string]any, 0, len(e.Usage))
		for _, u := range e.Usage {
			usage = append(usage, map[string]any{"category": u.Category, "item": u.Item, "quantity": u.Quantity})
		}
		return map[string]any{"usage": usage, "worker": e.Worker}
	case domprod.LineEvent:
		return map[string]any{"qty": e.Qty, "losses": defectsPayload(e.Losses), "lot": e.Lot, "aging_position": e.AgingPosition}
	case domprod.RPEvent:
		return map[string]any{"qty": e.Qty, "lot": e.Lot}
	case domprod.InspectionEvent:
		return map[string]any{"qty": e.Qty, "defects": defectsPayload(e.Defects), "qty_to_printing": e.QtyToPrinting, "position": e.Position}
	case domprod.PrintingEvent:
		return map[string]any{"qty": e.Qty, "defect_cause": e.DefectCause}
	}
	return nil
}

func defectsPayload(in []domprod.DefectEntry) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, d := range in {
		out = append(out, map[string]any{"defectCause": d.Cause, "quantity": d.Quantity})
	}
	return out
}
