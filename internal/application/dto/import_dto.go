package dto

import "time"

// OrderSheetResult resumen de la importación de la hoja diaria de pedidos.
type OrderSheetResult struct {
	FileName    string   `json:"file_name"`
	FileHash    string   `json:"file_hash"`
	TotalRows   int      `json:"total_rows"`
	Created     int      `json:"created"`
	Reactivated int      `json:"reactivated"`
	Ignored     int      `json:"ignored"`
	Skipped     int      `json:"skipped"`
	Errors      int      `json:"errors"`
	ErrorLogs   []string `json:"error_logs"`
}

// SwatchImportResult resumen de la importación del maestro de muestras.
type SwatchImportResult struct {
	TotalProcessed int      `json:"total_processed"`
	NewRecords     int      `json:"new_records"`
	UpdatedRecords int      `json:"updated_records"`
	Errors         int      `json:"errors"`
	ErrorLogs      []string `json:"error_logs"`
}

// SwatchMovementRequest lectura de una muestra en una línea.
type SwatchMovementRequest struct {
	EPC         string `json:"epc"`
	LineNo      string `json:"line_no"`
	StaffNumber string `json:"staffNumber"`
}

// SwatchLocationResponse muestra con su última lectura.
type SwatchLocationResponse struct {
	EPC        string     `json:"epc"`
	STT        int        `json:"stt"`
	Type       string     `json:"type"`
	Customer   string     `json:"customer"`
	Item       string     `json:"item"`
	Color      string     `json:"color"`
	Pattern    string     `json:"pattern"`
	BaseColor  string     `json:"base_color"`
	LastLineNo string     `json:"last_line_no,omitempty"`
	LastWorker string     `json:"last_worker,omitempty"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// SwatchPurgeResult resultado de la limpieza de lecturas antiguas.
type SwatchPurgeResult struct {
	Deleted int64     `json:"deleted"`
	Before  time.Time `json:"before"`
}
