package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/bsv-mes/internal/application/ordersheet"
	"github.com/jhoicas/bsv-mes/internal/domain"
)

var _ ordersheet.Reader = (*OrderSheetReader)(nil)

// OrderSheetReader lee la hoja diaria de pedidos recibidos.
type OrderSheetReader struct{}

func NewOrderSheetReader() *OrderSheetReader { return &OrderSheetReader{} }

func (OrderSheetReader) ReadOrderSheet(r io.Reader) ([]ordersheet.Row, error) {
	t, err := readTable(r, ordersheet.SheetName)
	if err != nil {
		return nil, err
	}
	if miss := t.missing("Sales order", "Line number", "Quantity"); len(miss) > 0 {
		return nil, fmt.Errorf("faltan columnas: %s: %w", strings.Join(miss, ", "), domain.ErrInvalidInput)
	}

	out := make([]ordersheet.Row, 0, len(t.rows))
	for i, row := range t.rows {
		out = append(out, ordersheet.Row{
			Line:           t.lines[i],
			SalesOrder:     t.cell(row, "Sales order"),
			LineNumber:     t.cell(row, "Line number"),
			PONumber:       t.cell(row, "po number"),
			CustomerName:   t.cell(row, "Customer Name"),
			SalesOrigin:    t.cell(row, "Sales origin"),
			ReceiptDate:    dateCell(t.cell(row, "Receipt date")),
			RTD:            dateCell(t.cell(row, "RTD")),
			ETD:            dateCell(t.cell(row, "ETD")),
			BrandName:      t.cell(row, "Brand Name"),
			ItemName:       t.cell(row, "Item Name"),
			ColorCode:      t.cell(row, "Color Code"),
			ColorName:      t.cell(row, "Color Name"),
			Type:           t.cell(row, "TYPE"),
			SpecName:       t.cell(row, "Spec Name"),
			Quantity:       t.cell(row, "Quantity"),
			Unit:           t.cell(row, "Unit"),
			ShipUnitPrice:  t.cell(row, "Ship Unit price"),
			Currency:       t.cell(row, "Currency(Trade)"),
			ProdRemark:     t.cell(row, "Prod. remark"),
			ModelName:      t.cell(row, "Model name"),
			SampleStep:     t.cell(row, "Sample Step"),
			OrderToCompany: t.cell(row, "Order To Company"),
			ProdGroup:      t.cell(row, "Prod Group"),
			CustomNo:       t.cell(row, "Custom No"),
		})
	}
	return out, nil
}
