package repository

import (
	"context"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para los lotes emitidos.
type LotRepository interface {
	// LockDay serializa la emisión de lotes del día hasta el fin de la transacción.
	// Solo tiene efecto cuando el repositorio está atado a una tx.
	LockDay(ctx context.Context, prefix string) error
	// ListIssued devuelve los códigos emitidos con el prefijo MMDD.
	ListIssued(ctx context.Context, prefix string) ([]string, error)
	// Create devuelve domain.ErrDuplicate si el código ya existe.
	Create(ctx context.Context, lot *entity.ProductionLot) error
}
