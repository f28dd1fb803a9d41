package production

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	domprod "github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

// OrderCard datos de la tarjeta que acompaña al rollo en el piso.
type OrderCard struct {
	QRPayload string
	Order     dto.SalesOrderResponse
	Snapshot  dto.StatusSnapshotResponse
}

// OrderCardGenerator puerto de salida para renderizar la tarjeta de orden.
type OrderCardGenerator interface {
	GenerateOrderCard(ctx context.Context, card OrderCard) ([]byte, error)
}

// OrderCardUseCase genera la tarjeta con QR y el estado actual de la orden.
type OrderCardUseCase struct {
	orders    repository.SalesOrderRepository
	status    *StatusUseCase
	generator OrderCardGenerator
}

func NewOrderCardUseCase(orders repository.SalesOrderRepository, status *StatusUseCase, generator OrderCardGenerator) *OrderCardUseCase {
	return &OrderCardUseCase{orders: orders, status: status, generator: generator}
}

// DownloadOrderCard devuelve el PDF y el nombre de archivo sugerido.
func (uc *OrderCardUseCase) DownloadOrderCard(ctx context.Context, orderNo string) ([]byte, string, error) {
	order, err := uc.orders.FindByOrderNo(ctx, strings.TrimSpace(orderNo))
	if err != nil {
		return nil, "", err
	}
	snap, err := uc.status.snapshotFor(ctx, order)
	if err != nil {
		return nil, "", err
	}
	card := OrderCard{
		QRPayload: domprod.OrderQR(order.OrderNo),
		Order:     *toSalesOrderResponse(order),
		Snapshot:  *snap,
	}
	pdf, err := uc.generator.GenerateOrderCard(ctx, card)
	if err != nil {
		return nil, "", fmt.Errorf("tarjeta de orden: %w", err)
	}
	return pdf, fmt.Sprintf("tarjeta_%s.pdf", order.OrderNo), nil
}
