package entity

import "time"

// ColorSwatch muestra física de referencia identificada por su etiqueta RFID (EPC).
type ColorSwatch struct {
	ID        string
	EPC       string
	STT       int
	Type      string // M/S
	Customer  string
	Item      string
	Color     string
	Pattern   string
	BaseColor string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ColorSwatchMovement lectura de una muestra en una línea o ubicación.
type ColorSwatchMovement struct {
	ID         string
	SwatchID   string
	LineNo     string
	WorkerCode string
	CreatedAt  time.Time
}
