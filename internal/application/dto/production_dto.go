package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ScannedOrder una tarjeta leída en el kiosco. Quantity, si viene, reemplaza la cantidad común.
type ScannedOrder struct {
	OrderNumber string          `json:"order_number"`
	Quantity    json.RawMessage `json:"quantity,omitempty"`
}

// ScanRequest cuerpo que envían los kioscos del piso.
// En mezcla QuantityInput es la lista de químicos; en las demás etapas un PhaseQuantityInput.
type ScanRequest struct {
	ScannedOrders []ScannedOrder  `json:"scannedOrders"`
	QuantityInput json.RawMessage `json:"quantityInput"`
	Machine       string          `json:"machine"`
	StaffNumber   string          `json:"staffNumber"`
}

// PhaseQuantityInput cantidades de una etapa con línea física, inspección o impresión.
// Qty acepta número o texto numérico.
type PhaseQuantityInput struct {
	Qty           json.RawMessage  `json:"qty"`
	Details       json.RawMessage  `json:"details"` // pérdidas o defectos: [{"defectCause","quantity"}]
	QtyToPrinting *decimal.Decimal `json:"qtyToPrinting"`
	Position      string           `json:"position"`
	DefectCause   string           `json:"defectCause"`
}

// ScanFailure orden que no se pudo registrar y por qué.
type ScanFailure struct {
	OrderNo string `json:"order_no"`
	Reason  string `json:"reason"`
}

// ScanResponse respuesta al kiosco. Status es "success" aunque algunas órdenes fallen.
type ScanResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Saved   []string      `json:"saved"`
	Failed  []ScanFailure `json:"failed,omitempty"`
}

// LookupResponse respuesta a la lectura de un QR en el kiosco.
type LookupResponse struct {
	Status      string              `json:"status"`
	Message     string              `json:"message"`
	OrderNumber string              `json:"order_number,omitempty"`
	Order       *SalesOrderResponse `json:"order_information,omitempty"`
}

// CloseLineRequest cierre del registro abierto de una línea (lote o posición de añejamiento).
// Si la línea no tiene registro abierto y viene OrderNumber, se crea uno nuevo ya cerrado.
type CloseLineRequest struct {
	Machine       string           `json:"machine"`
	OrderNumber   string           `json:"order_number"`
	StaffNumber   string           `json:"staffNumber"`
	Qty           *decimal.Decimal `json:"qty"`
	Lot           *string          `json:"lot"`
	AgingPosition *string          `json:"aging_position"`
}

// CloseLineResponse registro de línea tras el cierre.
type CloseLineResponse struct {
	RecordID      string          `json:"record_id"`
	Stage         string          `json:"stage"`
	LineNo        string          `json:"line_no"`
	OrderNo       string          `json:"order_no"`
	Qty           decimal.Decimal `json:"qty"`
	Lot           *string         `json:"lot"`
	AgingPosition *string         `json:"aging_position"`
	Version       int             `json:"version"`
	Created       bool            `json:"created"`
}

// SalesOrderResponse salida de una orden de venta.
type SalesOrderResponse struct {
	ID                 string          `json:"id"`
	OrderNo            string          `json:"order_no"`
	CustomerOrderNo    string          `json:"customer_order_no"`
	CustomerName       string          `json:"customer_name"`
	OrderType          string          `json:"order_type"`
	OrderDate          *time.Time      `json:"order_date"`
	RTD                *time.Time      `json:"rtd"`
	ETD                *time.Time      `json:"etd"`
	Brand              string          `json:"brand"`
	ItemName           string          `json:"item_name"`
	ColorCode          string          `json:"color_code"`
	ColorName          string          `json:"color_name"`
	Pattern            string          `json:"pattern"`
	BaseColor          string          `json:"base_color"`
	Spec               string          `json:"spec"`
	OrderQty           decimal.Decimal `json:"order_qty"`
	QtyUnit            string          `json:"qty_unit"`
	ProductionLocation string          `json:"production_location"`
	ProductGroup       string          `json:"product_group"`
	Status             *bool           `json:"status"`
}

// SalesOrderListResponse lista paginada de órdenes.
type SalesOrderListResponse struct {
	Items []SalesOrderResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// ProcessStepResponse una fila de la lista de proceso.
type ProcessStepResponse struct {
	Stage    string           `json:"stage"`
	RecordID string           `json:"record_id"`
	At       time.Time        `json:"at"`
	Machine  string           `json:"machine"`
	Qty      *decimal.Decimal `json:"qty"`
	Lot      string           `json:"lot,omitempty"`
}

// StatusSnapshotResponse estado calculado de una orden. Es lo que se guarda en caché.
type StatusSnapshotResponse struct {
	OrderID         string                     `json:"order_id"`
	OrderNo         string                     `json:"order_no"`
	OrderQty        decimal.Decimal            `json:"order_qty"`
	BalanceQty      decimal.Decimal            `json:"balance_qty"`
	SubProducedQty  decimal.Decimal            `json:"sub_produced_qty"`
	LineShortage    decimal.Decimal            `json:"line_shortage"`
	ProducedQty     decimal.Decimal            `json:"produced_qty"`
	InspectedQty    decimal.Decimal            `json:"inspected_qty"`
	PrintedQty      decimal.Decimal            `json:"printed_qty"`
	ChemicalUsage   map[string]decimal.Decimal `json:"chemical_usage"`
	Defects         map[string]decimal.Decimal `json:"defects"`
	DefectTotals    map[string]decimal.Decimal `json:"defect_totals"`
	LatestStage     string                     `json:"latest_stage,omitempty"`
	LatestAt        *time.Time                 `json:"latest_timestamp,omitempty"`
	LatestMachine   string                     `json:"latest_machine,omitempty"`
	PendingPrintQty *decimal.Decimal           `json:"pending_print_qty"`
	Process         []ProcessStepResponse      `json:"ordered_process_list"`
}

// TimelineEventResponse evento normalizado de la línea de tiempo, con su payload por etapa.
type TimelineEventResponse struct {
	Stage    string         `json:"stage"`
	RecordID string         `json:"record_id"`
	At       time.Time      `json:"timestamp"`
	Machine  string         `json:"machine"`
	Payload  map[string]any `json:"payload"`
}

// TimelineResponse línea de tiempo completa de una orden.
type TimelineResponse struct {
	OrderNo       string                  `json:"order_no"`
	Events        []TimelineEventResponse `json:"events"`
	LatestStage   string                  `json:"latest_stage,omitempty"`
	LatestAt      *time.Time              `json:"latest_timestamp,omitempty"`
	LatestMachine string                  `json:"latest_machine,omitempty"`
}
