package http

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/domain"
)

// maxUploadBytes tope del libro subido.
const maxUploadBytes = 20 << 20

// readXLSX lee el campo multipart "file". Solo acepta .xlsx.
func readXLSX(c *fiber.Ctx) (name string, data []byte, err error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("campo file requerido: %w", domain.ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return "", nil, fmt.Errorf("solo se aceptan archivos .xlsx: %w", domain.ErrInvalidInput)
	}
	if fh.Size > maxUploadBytes {
		return "", nil, fmt.Errorf("archivo mayor a %d MB: %w", maxUploadBytes>>20, domain.ErrInvalidInput)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err = io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, data, nil
}
