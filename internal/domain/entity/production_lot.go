package entity

import "time"

// ProductionLot lote emitido con formato MMDD-N (opcionalmente con sufijo de grado A/B).
type ProductionLot struct {
	ID        string
	LotCode   string
	LotDate   time.Time
	Sequence  int
	Grade     string
	CreatedAt time.Time
	CreatedBy string
}
