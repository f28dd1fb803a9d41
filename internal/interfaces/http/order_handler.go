package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/production"
)

// OrderHandler consulta de órdenes, su estado y la tarjeta impresa.
type OrderHandler struct {
	status *production.StatusUseCase
	cards  *production.OrderCardUseCase
}

func NewOrderHandler(status *production.StatusUseCase, cards *production.OrderCardUseCase) *OrderHandler {
	return &OrderHandler{status: status, cards: cards}
}

// Search godoc
// @Summary      Buscar órdenes de venta
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        q       query  string  false  "Texto libre (orden, cliente, artículo, color)"
// @Param        active  query  bool    false  "Solo activas"  default(true)
// @Param        limit   query  int     false  "Límite"        default(20)
// @Param        offset  query  int     false  "Offset"        default(0)
// @Success      200     {object}  dto.SalesOrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) Search(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	out, err := h.status.Search(c.UserContext(), c.Query("q"), c.QueryBool("active", true), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener orden activa por número
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        orderNo  path  string  true  "Número de orden ({order_id}-{seq_no})"
// @Success      200      {object}  dto.SalesOrderResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Failure      410      {object}  dto.ErrorResponse
// @Router       /api/orders/{orderNo} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	out, err := h.status.FindOrder(c.UserContext(), c.Params("orderNo"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Estado calculado de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        orderNo  path  string  true  "Número de orden"
// @Success      200      {object}  dto.StatusSnapshotResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/orders/{orderNo}/status [get]
func (h *OrderHandler) Status(c *fiber.Ctx) error {
	out, err := h.status.Snapshot(c.UserContext(), c.Params("orderNo"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Timeline godoc
// @Summary      Línea de tiempo de fases de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        orderNo  path  string  true  "Número de orden"
// @Success      200      {object}  dto.TimelineResponse
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/orders/{orderNo}/timeline [get]
func (h *OrderHandler) Timeline(c *fiber.Ctx) error {
	out, err := h.status.Timeline(c.UserContext(), c.Params("orderNo"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Card godoc
// @Summary      Descargar tarjeta de la orden en PDF
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        orderNo  path  string  true  "Número de orden"
// @Success      200      {file}  binary
// @Failure      404      {object}  dto.ErrorResponse
// @Router       /api/orders/{orderNo}/card [get]
func (h *OrderHandler) Card(c *fiber.Ctx) error {
	pdf, name, err := h.cards.DownloadOrderCard(c.UserContext(), c.Params("orderNo"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(pdf)
}
