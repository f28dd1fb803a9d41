// Command swatch_cleanup borra las lecturas de muestras fuera de la ventana de retención.
// Pasada única; se programa con cron a medianoche (0 0 * * *).
package main

import (
	"context"
	"os"
	"time"

	"github.com/jhoicas/bsv-mes/internal/application/swatch"
	"github.com/jhoicas/bsv-mes/internal/infrastructure/postgres"
	"github.com/jhoicas/bsv-mes/pkg/config"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := swatch.NewUseCase(postgres.NewColorSwatchRepository(pool), nil, cfg.Plant.SwatchRetentionDays, log)
	res, err := uc.PurgeOldMovements(ctx)
	if err != nil {
		log.Error().Err(err).Msg("limpieza de lecturas de muestras")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Int64("deleted", res.Deleted).Int("retention_days", cfg.Plant.SwatchRetentionDays).Msg("limpieza terminada")
}
