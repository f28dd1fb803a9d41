package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// WaitlistRequest filtros de las listas de espera.
type WaitlistRequest struct {
	Query string   `query:"q"`
	Lines []string `query:"line"`
	PageRequest
}

// WaitlistItem orden en espera con el resumen de su estado.
type WaitlistItem struct {
	Order           SalesOrderResponse `json:"order"`
	LatestStage     string             `json:"latest_stage"`
	LatestAt        *time.Time         `json:"latest_timestamp"`
	LatestMachine   string             `json:"latest_machine"`
	BalanceQty      decimal.Decimal    `json:"balance_qty"`
	LineShortage    decimal.Decimal    `json:"line_shortage"`
	PendingPrintQty *decimal.Decimal   `json:"pending_print_qty,omitempty"`
}

// WaitlistResponse página de una lista de espera.
type WaitlistResponse struct {
	Items []WaitlistItem `json:"items"`
	Page  PageResponse   `json:"page"`
}
