package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder representa una línea de pedido de cliente (order_id + seq_no).
// Status: nil = activa, true = despachada/cerrada, false = cancelada.
type SalesOrder struct {
	ID                 string
	OrderID            string // formato SOV0000000
	SeqNo              int
	OrderNo            string // {order_id}-{seq_no}, único
	CustomerOrderNo    string
	CustomerName       string
	OrderType          string
	OrderDate          *time.Time
	RTD                *time.Time // fecha de entrega solicitada
	ETD                *time.Time // fecha de entrega estimada
	Brand              string
	ItemName           string
	ColorCode          string
	ColorName          string
	Pattern            string
	BaseColor          string
	Spec               string
	OrderQty           decimal.Decimal
	QtyUnit            string
	UnitPrice          decimal.Decimal
	Currency           string
	OrderRemark        string
	ModelName          string
	SampleStep         string
	ProductionLocation string
	ProductGroup       string
	ProductType        string
	Status             *bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BuildOrderNo compone el número de orden a partir del id de pedido y la secuencia.
func BuildOrderNo(orderID string, seqNo int) string {
	return fmt.Sprintf("%s-%d", orderID, seqNo)
}

// IsCancelled indica si la orden fue dada de baja (status = false).
func (o *SalesOrder) IsCancelled() bool {
	return o.Status != nil && !*o.Status
}

// IsActive indica si la orden sigue abierta (status sin asignar).
func (o *SalesOrder) IsActive() bool {
	return o.Status == nil
}

// SalesOrderUploadLog registra cada importación de la hoja diaria de pedidos.
type SalesOrderUploadLog struct {
	ID         string
	UserID     string
	FileName   string
	FileHash   string // SHA-256 del archivo
	DataCount  int
	UploadedAt time.Time
}
