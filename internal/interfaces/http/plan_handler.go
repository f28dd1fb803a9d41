package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/production"
)

// PlanHandler planes de producción en línea seca.
type PlanHandler struct {
	uc *production.PlanUseCase
}

func NewPlanHandler(uc *production.PlanUseCase) *PlanHandler {
	return &PlanHandler{uc: uc}
}

// Upsert godoc
// @Summary      Crear o reemplazar el plan de una orden para una fecha
// @Tags         plans
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpsertPlanRequest  true  "Plan"
// @Success      200   {object}  dto.PlanResponse
// @Success      201   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/plans [put]
func (h *PlanHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertPlanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpsertPlan(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	if out.Created {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Planes de una orden
// @Tags         plans
// @Security     Bearer
// @Produce      json
// @Param        order_no  query  string  true  "Número de orden"
// @Success      200       {array}   dto.PlanResponse
// @Failure      404       {object}  dto.ErrorResponse
// @Router       /api/plans [get]
func (h *PlanHandler) List(c *fiber.Ctx) error {
	orderNo := c.Query("order_no")
	if orderNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_no es requerido"})
	}
	out, err := h.uc.ListPlans(c.UserContext(), orderNo)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
