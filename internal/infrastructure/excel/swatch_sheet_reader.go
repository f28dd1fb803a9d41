package excel

import (
	"io"

	"github.com/jhoicas/bsv-mes/internal/application/swatch"
)

var _ swatch.SheetReader = (*SwatchSheetReader)(nil)

// SwatchSheetReader lee el maestro de muestras. La validación de columnas queda en el caso de uso.
type SwatchSheetReader struct{}

func NewSwatchSheetReader() *SwatchSheetReader { return &SwatchSheetReader{} }

func (SwatchSheetReader) ReadSwatchSheet(r io.Reader) (*swatch.Sheet, error) {
	t, err := readTable(r, swatch.SheetName)
	if err != nil {
		return nil, err
	}
	sheet := &swatch.Sheet{Columns: t.header, Rows: make([]swatch.Row, 0, len(t.rows))}
	for i, row := range t.rows {
		cells := make(map[string]string, len(t.index))
		for col := range t.index {
			cells[col] = t.cell(row, col)
		}
		sheet.Rows = append(sheet.Rows, swatch.Row{Line: t.lines[i], Cells: cells})
	}
	return sheet, nil
}
