package repository

import (
	"context"
)

// WaitlistFilter filtros de las listas de espera.
type WaitlistFilter struct {
	Query string   // texto libre normalizado
	Lines []string // restringe a estas líneas secas; vacío = todas
}

// WaitlistRepository consultas de lectura (SQL a mano) para las listas de espera.
// Devuelven ids de sales_orders ordenados por la actividad más reciente.
type WaitlistRepository interface {
	// AwaitingInspection órdenes activas con línea seca o RP y sin ninguna inspección.
	// La ruta de cada línea la confirma el caso de uso.
	AwaitingInspection(ctx context.Context, filter WaitlistFilter) ([]string, error)
	// AwaitingPrinting órdenes cuya última inspección tiene qty_to_printing > 0.
	AwaitingPrinting(ctx context.Context, filter WaitlistFilter) ([]string, error)
}
