package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/production"
)

// KioskHandler endpoints de los kioscos del piso (sin token).
type KioskHandler struct {
	uc *production.KioskUseCase
}

func NewKioskHandler(uc *production.KioskUseCase) *KioskHandler {
	return &KioskHandler{uc: uc}
}

// Lookup godoc
// @Summary      Resolver QR de una tarjeta de orden
// @Tags         kiosk
// @Produce      json
// @Param        qr   query  string  true  "Contenido del QR (!BSVPD!{order_id}!{seq_no}!)"
// @Success      200  {object}  dto.LookupResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/kiosk/lookup [get]
func (h *KioskHandler) Lookup(c *fiber.Ctx) error {
	qr := c.Query("qr")
	if qr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "qr es requerido"})
	}
	out, err := h.uc.Lookup(c.UserContext(), qr)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RecordDryMix godoc
// @Summary      Registrar mezcla seca
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Órdenes escaneadas y lista de químicos"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/kiosk/dry-mix [post]
func (h *KioskHandler) RecordDryMix(c *fiber.Ctx) error {
	return h.scan(c, h.uc.RecordDryMix)
}

// RecordDryLine godoc
// @Summary      Registrar producción en línea seca
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Órdenes escaneadas y cantidades"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/kiosk/dry-line [post]
func (h *KioskHandler) RecordDryLine(c *fiber.Ctx) error {
	return h.scan(c, h.uc.RecordDryLine)
}

// RecordDelamination godoc
// @Summary      Registrar deslaminado (RP)
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Órdenes escaneadas y cantidades"
// @Success      200   {object}  dto.ScanResponse
// @Router       /api/kiosk/delamination [post]
func (h *KioskHandler) RecordDelamination(c *fiber.Ctx) error {
	return h.scan(c, h.uc.RecordDelamination)
}

// RecordInspection godoc
// @Summary      Registrar inspección
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Órdenes escaneadas, cantidad A y defectos"
// @Success      200   {object}  dto.ScanResponse
// @Router       /api/kiosk/inspection [post]
func (h *KioskHandler) RecordInspection(c *fiber.Ctx) error {
	return h.scan(c, h.uc.RecordInspection)
}

// RecordPrinting godoc
// @Summary      Registrar impresión
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Órdenes escaneadas y cantidad impresa"
// @Success      200   {object}  dto.ScanResponse
// @Router       /api/kiosk/printing [post]
func (h *KioskHandler) RecordPrinting(c *fiber.Ctx) error {
	return h.scan(c, h.uc.RecordPrinting)
}

// CloseLine godoc
// @Summary      Cerrar el registro abierto de una línea
// @Description  Asigna lote o posición de añejamiento al último registro abierto de la máquina.
// @Tags         kiosk
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseLineRequest  true  "Máquina y valores de cierre"
// @Success      200   {object}  dto.CloseLineResponse
// @Success      201   {object}  dto.CloseLineResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/kiosk/close-line [post]
func (h *KioskHandler) CloseLine(c *fiber.Ctx) error {
	var in dto.CloseLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CloseOpenLineRecord(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	if out.Created {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}

type scanFunc func(ctx context.Context, req dto.ScanRequest) (*dto.ScanResponse, error)

func (h *KioskHandler) scan(c *fiber.Ctx, record scanFunc) error {
	var in dto.ScanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := record(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
