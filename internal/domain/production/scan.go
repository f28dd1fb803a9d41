package production

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// Marca del código QR impreso en las tarjetas de producción: !BSVPD!{order_id}!{seq_no}!
const qrTag = "BSVPD"

// SalesOrderPrefix prefijo de las órdenes de venta que aceptan los kioscos.
const SalesOrderPrefix = "SOV"

// ParseOrderQR convierte el contenido del QR en el número de orden {order_id}-{seq_no}.
func ParseOrderQR(payload string) (string, error) {
	parts := strings.Split(strings.TrimSpace(payload), "!")
	// "", "BSVPD", order_id, seq_no, ""
	if len(parts) < 4 || parts[1] != qrTag {
		return "", domain.ErrInvalidInput
	}
	orderID := strings.TrimSpace(parts[2])
	seq, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if orderID == "" || err != nil {
		return "", domain.ErrInvalidInput
	}
	return entity.BuildOrderNo(orderID, seq), nil
}

// OrderQR genera el contenido del QR a partir del número de orden.
func OrderQR(orderNo string) string {
	orderID, seq, _ := strings.Cut(orderNo, "-")
	return "!" + qrTag + "!" + orderID + "!" + seq + "!"
}

// IsSalesOrderNo indica si el número escaneado corresponde a una orden de venta.
func IsSalesOrderNo(orderNo string) bool {
	return strings.HasPrefix(orderNo, SalesOrderPrefix)
}

// NormalizeSearch normaliza texto libre para búsqueda: NFC, plegado de mayúsculas
// y espacios colapsados. Los nombres de cliente llegan con acentos vietnamitas.
func NormalizeSearch(s string) string {
	s = norm.NFC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
