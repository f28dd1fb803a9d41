package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/bsv-mes/internal/application/ordersheet"
	"github.com/jhoicas/bsv-mes/internal/application/production"
	"github.com/jhoicas/bsv-mes/internal/application/swatch"
	"github.com/jhoicas/bsv-mes/internal/infrastructure/excel"
	infrapdf "github.com/jhoicas/bsv-mes/internal/infrastructure/pdf"
	"github.com/jhoicas/bsv-mes/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/bsv-mes/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/bsv-mes/internal/interfaces/http"
	"github.com/jhoicas/bsv-mes/pkg/config"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	loc := cfg.Plant.Location()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("tz", loc.String()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Redis es opcional: sin dirección la caché queda en miss y no se toman locks de línea.
	rdb, err := infraredis.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis no disponible, se continúa sin caché ni locks")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}
	cache := infraredis.NewCache(rdb)
	locker := infraredis.NewLocker(rdb)

	orderRepo := postgres.NewSalesOrderRepository(pool)
	planRepo := postgres.NewProductionPlanRepository(pool)
	phaseRepo := postgres.NewPhaseRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	waitlistRepo := postgres.NewWaitlistRepository(pool)
	swatchRepo := postgres.NewColorSwatchRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	plant := cfg.Plant
	statusUC := production.NewStatusUseCase(orderRepo, phaseRepo, cache, loc, plant.SnapshotTTL, log)
	kioskUC := production.NewKioskUseCase(orderRepo, planRepo, phaseRepo, locker, statusUC, plant.LockTTL, plant.InvalidateOnWrite, log)
	lotUC := production.NewLotUseCase(lotRepo, txRunner, orderRepo, phaseRepo, locker, statusUC, loc, plant.LockTTL, plant.InvalidateOnWrite, log)
	waitlistUC := production.NewWaitlistUseCase(waitlistRepo, orderRepo, statusUC, cache, plant.WaitlistTTL, log)
	planUC := production.NewPlanUseCase(orderRepo, planRepo, statusUC, loc, plant.InvalidateOnWrite)

	// Tarjeta de la orden con QR y estado
	cardGenerator := infrapdf.NewOrderCardGenerator(loc)
	orderCardUC := production.NewOrderCardUseCase(orderRepo, statusUC, cardGenerator)

	orderSheetUC := ordersheet.NewImportUseCase(orderRepo, excel.NewOrderSheetReader(), loc, log)
	swatchUC := swatch.NewUseCase(swatchRepo, excel.NewSwatchSheetReader(), plant.SwatchRetentionDays, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    25 << 20,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (generar con swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "BSV MES API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin especificación swagger, /docs deshabilitado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		KioskUC:      kioskUC,
		StatusUC:     statusUC,
		OrderCardUC:  orderCardUC,
		LotUC:        lotUC,
		WaitlistUC:   waitlistUC,
		PlanUC:       planUC,
		OrderSheetUC: orderSheetUC,
		SwatchUC:     swatchUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
