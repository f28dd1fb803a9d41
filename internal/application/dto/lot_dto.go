package dto

import "time"

// NextLotResponse vista previa del siguiente lote del día, sin reservarlo.
type NextLotResponse struct {
	LotCode string `json:"lot_code"`
	Date    string `json:"date"`
}

// IssueLotRequest emisión de un lote. Grade opcional: "A" o "B".
type IssueLotRequest struct {
	Grade string `json:"grade"`
}

// LotResponse lote emitido.
type LotResponse struct {
	ID        string    `json:"id"`
	LotCode   string    `json:"lot_code"`
	LotDate   string    `json:"lot_date"`
	Sequence  int       `json:"sequence"`
	Grade     string    `json:"grade,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignRangeRequest asignación de lote o posición de añejamiento a los rollos entre dos tarjetas límite.
// Las órdenes se aceptan como número de orden o contenido del QR.
type AssignRangeRequest struct {
	InsideOrder   string  `json:"inside_order"`
	OutsideOrder  string  `json:"outside_order"`
	Machine       string  `json:"machine"`
	LotCode       *string `json:"lot_code"`
	AgingPosition *string `json:"aging_position"`
}

// AssignRangeResponse resultado de la asignación. Sin selección, Selected es 0 y las listas vienen vacías.
type AssignRangeResponse struct {
	Stage    string        `json:"stage,omitempty"`
	LineNo   string        `json:"line_no,omitempty"`
	Selected int           `json:"selected"`
	Updated  []string      `json:"updated"`
	Skipped  []ScanFailure `json:"skipped"`
}
