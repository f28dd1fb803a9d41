package production

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// Latest etapa más reciente de una orden según la marca de tiempo.
type Latest struct {
	Stage   Stage
	At      time.Time
	Machine string
}

// Timeline secuencia ordenada de eventos de una orden.
type Timeline struct {
	Events []Event
	Latest *Latest // nil si la orden no tiene registros
}

// BuildTimeline normaliza los registros de todas las tablas de fase a eventos,
// convierte las marcas de tiempo a la zona de la planta y ordena ascendente.
// Empates: rango de etapa y luego id de registro, para que el orden sea estable.
func BuildTimeline(set entity.PhaseSet, loc *time.Location) Timeline {
	if loc == nil {
		loc = time.UTC
	}
	events := make([]Event, 0, set.Len())

	for _, p := range set.Plans {
		events = append(events, PlanEvent{
			base:    base{ID: p.ID, Timestamp: p.CreatedAt.In(loc), Line: p.PdLine},
			PlanNo:  p.PlanNo,
			PlanQty: p.PlanQty,
		})
	}
	for _, m := range set.DryMixes {
		events = append(events, MixEvent{
			base:   base{ID: m.ID, Timestamp: m.CreatedAt.In(loc)},
			Usage:  parseUsage(m.MixingInformation),
			Worker: m.WorkerCode,
		})
	}
	for _, d := range set.DryLines {
		events = append(events, LineEvent{
			base:          base{ID: d.ID, Timestamp: d.CreatedAt.In(loc), Line: d.LineNo},
			Qty:           d.PdQty,
			Losses:        parseDefects(d.PdInformation),
			Lot:           deref(d.PdLot),
			AgingPosition: deref(d.AgPosition),
		})
	}
	for _, d := range set.Delaminations {
		events = append(events, RPEvent{
			base: base{ID: d.ID, Timestamp: d.CreatedAt.In(loc), Line: d.LineNo},
			Qty:  d.DlamiQty,
			Lot:  deref(d.DlamiLot),
		})
	}
	for _, i := range set.Inspections {
		events = append(events, InspectionEvent{
			base:          base{ID: i.ID, Timestamp: i.CreatedAt.In(loc), Line: i.LineNo},
			Qty:           i.InsQty,
			Defects:       parseDefects(i.InsInformation),
			QtyToPrinting: i.QtyToPrinting,
			Position:      i.Position,
		})
	}
	for _, p := range set.Printings {
		events = append(events, PrintingEvent{
			base:        base{ID: p.ID, Timestamp: p.CreatedAt.In(loc), Line: p.LineNo},
			Qty:         p.PrintQty,
			DefectCause: p.DefectCause,
		})
	}

	SortEvents(events)

	tl := Timeline{Events: events}
	if n := len(events); n > 0 {
		last := events[n-1]
		tl.Latest = &Latest{Stage: last.Stage(), At: last.At(), Machine: last.Machine()}
	}
	return tl
}

// SortEvents ordena por (timestamp, rango de etapa, id).
func SortEvents(events []Event) {
	sort.SliceStable(events, func(a, b int) bool {
		ea, eb := events[a], events[b]
		if !ea.At().Equal(eb.At()) {
			return ea.At().Before(eb.At())
		}
		if ra, rb := ea.Stage().Rank(), eb.Stage().Rank(); ra != rb {
			return ra < rb
		}
		return ea.RecordID() < eb.RecordID()
	})
}

// detailEntry forma laxa de una entrada de los blobs JSON de detalle.
type detailEntry struct {
	Category    string           `json:"category"`
	Item        *string          `json:"item"`
	DefectCause *string          `json:"defectCause"`
	Quantity    *decimal.Decimal `json:"quantity"`
}

// decodeEntries acepta una lista de objetos o un único objeto.
// Las entradas que no se pueden decodificar se descartan.
func decodeEntries(raw json.RawMessage) []detailEntry {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
	} else {
		items = []json.RawMessage{raw}
	}
	out := make([]detailEntry, 0, len(items))
	for _, it := range items {
		var e detailEntry
		if err := json.Unmarshal(it, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

func parseUsage(raw json.RawMessage) []ChemicalUsage {
	var usage []ChemicalUsage
	for _, e := range decodeEntries(raw) {
		if e.Item == nil || *e.Item == "" || e.Quantity == nil {
			continue
		}
		usage = append(usage, ChemicalUsage{Category: e.Category, Item: *e.Item, Quantity: *e.Quantity})
	}
	return usage
}

func parseDefects(raw json.RawMessage) []DefectEntry {
	var defects []DefectEntry
	for _, e := range decodeEntries(raw) {
		if e.DefectCause == nil || *e.DefectCause == "" || e.Quantity == nil {
			continue
		}
		defects = append(defects, DefectEntry{Cause: *e.DefectCause, Quantity: *e.Quantity})
	}
	return defects
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
