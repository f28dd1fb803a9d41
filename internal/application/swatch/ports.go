package swatch

import "io"

// SheetName hoja del maestro de muestras.
const SheetName = "TOTAL SW"

// RequiredColumns encabezados que debe traer la hoja.
var RequiredColumns = []string{"EPC", "CUSTOMER", "M/S", "STT", "ITEM", "COLOR", "TYPE", "BASE"}

// Sheet contenido de la hoja: encabezados y filas indexadas por encabezado.
type Sheet struct {
	Columns []string
	Rows    []Row
}

// Row una fila de datos. Line es el número de fila en la hoja.
type Row struct {
	Line  int
	Cells map[string]string
}

// SheetReader puerto de lectura del maestro de muestras.
type SheetReader interface {
	ReadSwatchSheet(r io.Reader) (*Sheet, error)
}
