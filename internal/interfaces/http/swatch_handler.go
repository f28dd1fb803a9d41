package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/swatch"
)

// SwatchHandler lecturas RFID y maestro de muestras de color.
type SwatchHandler struct {
	uc *swatch.UseCase
}

func NewSwatchHandler(uc *swatch.UseCase) *SwatchHandler {
	return &SwatchHandler{uc: uc}
}

// RecordMovement godoc
// @Summary      Registrar lectura de una muestra
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SwatchMovementRequest  true  "EPC, línea y operario"
// @Success      201   {object}  dto.SwatchLocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/kiosk/swatches/movements [post]
func (h *SwatchHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.SwatchMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RecordMovement(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Locate godoc
// @Summary      Ubicar una muestra por su EPC
// @Tags         swatches
// @Security     Bearer
// @Produce      json
// @Param        epc  path  string  true  "Etiqueta RFID"
// @Success      200  {object}  dto.SwatchLocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/swatches/{epc} [get]
func (h *SwatchHandler) Locate(c *fiber.Ctx) error {
	out, err := h.uc.Locate(c.UserContext(), c.Params("epc"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar el maestro de muestras
// @Tags         swatches
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Libro .xlsx con la hoja TOTAL SW"
// @Success      200   {object}  dto.SwatchImportResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/swatches/import [post]
func (h *SwatchHandler) Import(c *fiber.Ctx) error {
	_, data, err := readXLSX(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Import(c.UserContext(), data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
