package repository

import (
	"context"
	"time"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// ColorSwatchRepository define el puerto de persistencia para muestras de color y sus lecturas.
type ColorSwatchRepository interface {
	// GetByEPC devuelve domain.ErrNotFound si la etiqueta no está registrada.
	GetByEPC(ctx context.Context, epc string) (*entity.ColorSwatch, error)
	// Upsert crea o actualiza por EPC. Devuelve true si creó.
	Upsert(ctx context.Context, swatch *entity.ColorSwatch) (bool, error)

	AddMovement(ctx context.Context, mov *entity.ColorSwatchMovement) error
	LatestMovement(ctx context.Context, swatchID string) (*entity.ColorSwatchMovement, error)
	// PurgeMovements borra lecturas anteriores a before salvo la más reciente de cada muestra.
	PurgeMovements(ctx context.Context, before time.Time) (int64, error)
}
