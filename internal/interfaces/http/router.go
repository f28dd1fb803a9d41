package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bsv-mes/internal/application/ordersheet"
	"github.com/jhoicas/bsv-mes/internal/application/production"
	"github.com/jhoicas/bsv-mes/internal/application/swatch"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	KioskUC      *production.KioskUseCase
	StatusUC     *production.StatusUseCase
	OrderCardUC  *production.OrderCardUseCase
	LotUC        *production.LotUseCase
	WaitlistUC   *production.WaitlistUseCase
	PlanUC       *production.PlanUseCase
	OrderSheetUC *ordersheet.ImportUseCase
	SwatchUC     *swatch.UseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Kioscos del piso (público, red interna de planta)
	kiosk := api.Group("/kiosk")
	kioskHandler := NewKioskHandler(deps.KioskUC)
	kiosk.Get("/lookup", kioskHandler.Lookup)
	kiosk.Post("/dry-mix", kioskHandler.RecordDryMix)
	kiosk.Post("/dry-line", kioskHandler.RecordDryLine)
	kiosk.Post("/delamination", kioskHandler.RecordDelamination)
	kiosk.Post("/inspection", kioskHandler.RecordInspection)
	kiosk.Post("/printing", kioskHandler.RecordPrinting)
	kiosk.Post("/close-line", kioskHandler.CloseLine)

	swatchHandler := NewSwatchHandler(deps.SwatchUC)
	kiosk.Post("/swatches/movements", swatchHandler.RecordMovement)

	// Rutas de oficina (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(RoleManager, RoleAdmin)

	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.StatusUC, deps.OrderCardUC)
	orders.Get("/", orderHandler.Search)
	orders.Get("/:orderNo", orderHandler.Get)
	orders.Get("/:orderNo/status", orderHandler.Status)
	orders.Get("/:orderNo/timeline", orderHandler.Timeline)
	orders.Get("/:orderNo/card", orderHandler.Card)

	lots := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.LotUC)
	lots.Get("/next", lotHandler.Next)
	lots.Post("/", lotHandler.Issue)
	lots.Post("/assign-range", managers, lotHandler.AssignRange)

	waitlists := protected.Group("/waitlists")
	waitlistHandler := NewWaitlistHandler(deps.WaitlistUC)
	waitlists.Get("/inspection", waitlistHandler.Inspection)
	waitlists.Get("/printing", waitlistHandler.Printing)

	plans := protected.Group("/plans")
	planHandler := NewPlanHandler(deps.PlanUC)
	plans.Get("/", planHandler.List)
	plans.Put("/", planHandler.Upsert)

	sheets := protected.Group("/order-sheets")
	sheetHandler := NewOrderSheetHandler(deps.OrderSheetUC)
	sheets.Post("/", managers, sheetHandler.Upload)

	swatches := protected.Group("/swatches")
	swatches.Post("/import", managers, swatchHandler.Import)
	swatches.Get("/:epc", swatchHandler.Locate)
}
