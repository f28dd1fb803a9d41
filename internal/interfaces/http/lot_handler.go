package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/production"
)

// LotHandler emisión de lotes y asignación por rango.
type LotHandler struct {
	uc *production.LotUseCase
}

func NewLotHandler(uc *production.LotUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Next godoc
// @Summary      Vista previa del siguiente lote del día
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.NextLotResponse
// @Router       /api/lots/next [get]
func (h *LotHandler) Next(c *fiber.Ctx) error {
	out, err := h.uc.NextLot(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Issue godoc
// @Summary      Emitir lote
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueLotRequest  false  "Grado opcional (A/B)"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueLotRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	out, err := h.uc.IssueLot(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AssignRange godoc
// @Summary      Asignar lote o posición a un rango de rollos
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignRangeRequest  true  "Tarjetas límite y valor a asignar"
// @Success      200   {object}  dto.AssignRangeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/assign-range [post]
func (h *LotHandler) AssignRange(c *fiber.Ctx) error {
	var in dto.AssignRangeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AssignRange(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
