package ordersheet

import "io"

// SheetName hoja del libro diario de pedidos que se importa.
const SheetName = "Total received today"

// Row una fila de la hoja diaria, con los valores tal como vienen en la celda.
// Las fechas llegan normalizadas a 2006-01-02 cuando la celda es de tipo fecha.
type Row struct {
	Line           int // número de fila en la hoja, para los mensajes de error
	SalesOrder     string
	LineNumber     string
	PONumber       string
	CustomerName   string
	SalesOrigin    string
	ReceiptDate    string
	RTD            string
	ETD            string
	BrandName      string
	ItemName       string
	ColorCode      string
	ColorName      string
	Type           string
	SpecName       string
	Quantity       string
	Unit           string
	ShipUnitPrice  string
	Currency       string
	ProdRemark     string
	ModelName      string
	SampleStep     string
	OrderToCompany string
	ProdGroup      string
	CustomNo       string
}

// Reader puerto de lectura de la hoja diaria de pedidos.
type Reader interface {
	ReadOrderSheet(r io.Reader) ([]Row, error)
}
