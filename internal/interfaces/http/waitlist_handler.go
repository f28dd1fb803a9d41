package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/production"
)

// WaitlistHandler listas de espera de inspección e impresión.
type WaitlistHandler struct {
	uc *production.WaitlistUseCase
}

func NewWaitlistHandler(uc *production.WaitlistUseCase) *WaitlistHandler {
	return &WaitlistHandler{uc: uc}
}

// Inspection godoc
// @Summary      Órdenes producidas pendientes de inspección
// @Tags         waitlists
// @Security     Bearer
// @Produce      json
// @Param        q       query  string    false  "Texto libre"
// @Param        line    query  []string  false  "Líneas (repetible)"
// @Param        limit   query  int       false  "Límite"  default(20)
// @Param        offset  query  int       false  "Offset"  default(0)
// @Success      200     {object}  dto.WaitlistResponse
// @Router       /api/waitlists/inspection [get]
func (h *WaitlistHandler) Inspection(c *fiber.Ctx) error {
	return h.list(c, h.uc.InspectionWaitlist)
}

// Printing godoc
// @Summary      Órdenes inspeccionadas con impresión pendiente
// @Tags         waitlists
// @Security     Bearer
// @Produce      json
// @Param        q       query  string    false  "Texto libre"
// @Param        line    query  []string  false  "Líneas (repetible)"
// @Param        limit   query  int       false  "Límite"  default(20)
// @Param        offset  query  int       false  "Offset"  default(0)
// @Success      200     {object}  dto.WaitlistResponse
// @Router       /api/waitlists/printing [get]
func (h *WaitlistHandler) Printing(c *fiber.Ctx) error {
	return h.list(c, h.uc.PrintingWaitlist)
}

func (h *WaitlistHandler) list(c *fiber.Ctx, fetch func(context.Context, dto.WaitlistRequest) (*dto.WaitlistResponse, error)) error {
	var in dto.WaitlistRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.DefaultPage()
	out, err := fetch(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
