// Package excel lectura de libros xlsx con excelize.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/bsv-mes/internal/domain"
)

// table hoja leída como encabezados más filas de datos con su número de fila.
type table struct {
	header []string
	index  map[string]int
	rows   [][]string
	lines  []int
}

// readTable abre el libro y lee la hoja con valores crudos (sin formato de número).
func readTable(r io.Reader, sheet string) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir libro: %w", domain.ErrInvalidInput)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("hoja %q no encontrada: %w", sheet, domain.ErrInvalidInput)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("leer hoja %q: %w", sheet, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("hoja %q vacía: %w", sheet, domain.ErrInvalidInput)
	}

	t := &table{index: map[string]int{}}
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		t.header = append(t.header, h)
		if _, dup := t.index[h]; !dup && h != "" {
			t.index[h] = i
		}
	}
	for i, row := range raw[1:] {
		if blank(row) {
			continue
		}
		t.rows = append(t.rows, row)
		t.lines = append(t.lines, i+2)
	}
	return t, nil
}

// cell valor de la columna col en la fila; "" si la columna no existe o la fila es corta.
func (t *table) cell(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) missing(cols ...string) []string {
	var out []string
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// dateCell convierte un número de serie de Excel a texto fecha. Otros valores pasan tal cual.
func dateCell(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}
