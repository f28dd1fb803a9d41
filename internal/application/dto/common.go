package dto

// Límites de paginación de los listados de oficina.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación de listados (query string).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la página: límite por defecto si no viene, tope MaxPageLimit
// y offset no negativo.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas. Total cuenta todas las filas
// que cumplen el filtro, no solo las de la página.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable y lo consumen los kioscos.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
