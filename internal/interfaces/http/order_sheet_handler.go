package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/ordersheet"
)

// OrderSheetHandler carga de la hoja diaria de pedidos.
type OrderSheetHandler struct {
	uc *ordersheet.ImportUseCase
}

func NewOrderSheetHandler(uc *ordersheet.ImportUseCase) *OrderSheetHandler {
	return &OrderSheetHandler{uc: uc}
}

// Upload godoc
// @Summary      Importar la hoja diaria de pedidos
// @Description  Hoja "Total received today". Un archivo ya importado (mismo SHA-256) se rechaza.
// @Tags         order-sheets
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Libro .xlsx"
// @Success      200   {object}  dto.OrderSheetResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/order-sheets [post]
func (h *OrderSheetHandler) Upload(c *fiber.Ctx) error {
	name, data, err := readXLSX(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Import(c.UserContext(), GetUserID(c), name, data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
