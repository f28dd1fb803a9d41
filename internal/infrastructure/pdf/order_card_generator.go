// Package pdf genera la tarjeta de orden que acompaña a cada rollo en planta.
//
// Layout de la página A5:
//
//	┌──────────────────────────────────────────────┐
//	│  N° Orden + Cliente           │      QR      │
//	│  ──────────────────────────────────────────  │
//	│  Ítem / Color / Patrón / Base / Spec          │
//	│  Cantidad pedida + RTD / ETD                  │
//	│  ──────────────────────────────────────────  │
//	│  Saldo / Faltante en línea / Pendiente impr.  │
//	│  ──────────────────────────────────────────  │
//	│  PROCESO: Etapa | Fecha | Máquina | Cant | Lote│
//	└──────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	appprod "github.com/jhoicas/bsv-mes/internal/application/production"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// maxProcessRows filas de proceso que caben en la tarjeta; se muestran las más recientes.
const maxProcessRows = 18

// OrderCardGenerator implementa production.OrderCardGenerator con Maroto v2.
type OrderCardGenerator struct {
	loc *time.Location
}

var _ appprod.OrderCardGenerator = (*OrderCardGenerator)(nil)

// NewOrderCardGenerator construye el generador. Las fechas se imprimen en loc.
func NewOrderCardGenerator(loc *time.Location) *OrderCardGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderCardGenerator{loc: loc}
}

// GenerateOrderCard genera el PDF y devuelve sus bytes.
func (g *OrderCardGenerator) GenerateOrderCard(_ context.Context, card appprod.OrderCard) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Tarjeta de orden "+card.Order.OrderNo, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(card))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(itemRow(card.Order))
	m.AddRows(quantityRow(card.Order, g.loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(balanceRow(card.Snapshot))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(processHeaderRow())
	for _, r := range processRows(card.Snapshot.Process, g.loc) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// headerRow: número de orden y cliente (izq), QR de la orden (der).
func headerRow(card appprod.OrderCard) core.Row {
	return row.New(34).Add(
		col.New(8).Add(
			text.New(card.Order.OrderNo, props.Text{
				Style: fontstyle.Bold, Size: 16, Color: colorPrimary, Top: 2,
			}),
			text.New(nonEmpty(card.Order.CustomerName, "—"), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 12,
			}),
			text.New("PO: "+nonEmpty(card.Order.CustomerOrderNo, "—"), props.Text{
				Size: 8, Top: 19, Color: colorGray,
			}),
			text.New("Marca: "+nonEmpty(card.Order.Brand, "—"), props.Text{
				Size: 8, Top: 24, Color: colorGray,
			}),
		),
		col.New(4).Add(code.NewQr(card.QRPayload, props.Rect{
			Percent: 95,
			Center:  true,
		})),
	)
}

func itemRow(o dto.SalesOrderResponse) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New(nonEmpty(o.ItemName, "—"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 1}),
			text.New(fmt.Sprintf("Color: %s %s   |   Patrón: %s   |   Base: %s",
				nonEmpty(o.ColorCode, "—"),
				o.ColorName,
				nonEmpty(o.Pattern, "—"),
				nonEmpty(o.BaseColor, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
			text.New("Spec: "+nonEmpty(o.Spec, "—"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func quantityRow(o dto.SalesOrderResponse, loc *time.Location) core.Row {
	return row.New(10).Add(
		col.New(6).Add(
			text.New(fmt.Sprintf("Pedido: %s %s", formatQty(o.OrderQty), o.QtyUnit), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2,
			}),
		),
		col.New(6).Add(
			text.New(fmt.Sprintf("RTD: %s   ETD: %s", formatDate(o.RTD, loc), formatDate(o.ETD, loc)), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
		),
	)
}

// balanceRow: saldo, faltante en línea y cantidad pendiente de impresión.
func balanceRow(s dto.StatusSnapshotResponse) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 7, Align: align.Center, Color: colorPrimary, Top: 1})
	}
	value := func(v string, c *props.Color) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Color: c, Top: 6})
	}

	shortageColor := colorPrimary
	if s.LineShortage.IsNegative() {
		shortageColor = colorAlert
	}
	pending := "—"
	if s.PendingPrintQty != nil {
		pending = formatQty(*s.PendingPrintQty)
	}
	stage := nonEmpty(s.LatestStage, "Sin registros")

	return row.New(14).Add(
		col.New(3).Add(label("SALDO"), value(formatQty(s.BalanceQty), colorPrimary)),
		col.New(3).Add(label("FALTANTE LÍNEA"), value(formatQty(s.LineShortage), shortageColor)),
		col.New(3).Add(label("PEND. IMPRESIÓN"), value(pending, colorPrimary)),
		col.New(3).Add(label("ETAPA ACTUAL"), value(stage, colorGray)),
	)
}

func processHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Etapa", 2, align.Left),
		h("Fecha", 3, align.Left),
		h("Máquina", 2, align.Left),
		h("Cant.", 2, align.Right),
		h("Lote", 3, align.Right),
	)
}

// processRows: una fila por evento, solo los más recientes si no caben.
func processRows(steps []dto.ProcessStepResponse, loc *time.Location) []core.Row {
	if len(steps) > maxProcessRows {
		steps = steps[len(steps)-maxProcessRows:]
	}
	out := make([]core.Row, 0, len(steps))
	for _, st := range steps {
		qty := "—"
		if st.Qty != nil {
			qty = formatQty(*st.Qty)
		}
		out = append(out, row.New(5).Add(
			col.New(2).Add(text.New(st.Stage, props.Text{Size: 7})),
			col.New(3).Add(text.New(st.At.In(loc).Format("02/01/2006 15:04"), props.Text{Size: 7})),
			col.New(2).Add(text.New(nonEmpty(st.Machine, "—"), props.Text{Size: 7})),
			col.New(2).Add(text.New(qty, props.Text{Size: 7, Align: align.Right})),
			col.New(3).Add(text.New(nonEmpty(st.Lot, "—"), props.Text{Size: 7, Align: align.Right})),
		))
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "—"
	}
	return t.In(loc).Format("02/01/2006")
}

// formatQty dos decimales con separador de miles: "12500.5" → "12,500.50".
func formatQty(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	out := groupThousands(intPart) + frac
	if d.IsNegative() {
		return "-" + out
	}
	return out
}

// groupThousands inserta comas de miles en un string numérico sin signo.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
