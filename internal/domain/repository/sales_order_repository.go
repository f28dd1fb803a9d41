package repository

import (
	"context"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// SalesOrderFilter filtros de búsqueda de órdenes. Query se compara contra order_no,
// customer_name, item_name y color_name ya normalizados.
type SalesOrderFilter struct {
	Query      string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// SalesOrderRepository define el puerto de persistencia para SalesOrder.
// GetByID y FindByOrderNo devuelven domain.ErrNotFound si no existe.
type SalesOrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	FindByOrderNo(ctx context.Context, orderNo string) (*entity.SalesOrder, error)
	Search(ctx context.Context, filter SalesOrderFilter) ([]*entity.SalesOrder, int, error)
	// ListByIDs conserva el orden de ids; los que no existen se omiten.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.SalesOrder, error)
	Create(ctx context.Context, order *entity.SalesOrder) error
	Update(ctx context.Context, order *entity.SalesOrder) error

	LogUpload(ctx context.Context, log *entity.SalesOrderUploadLog) error
	UploadExists(ctx context.Context, fileHash string) (bool, error)
}
