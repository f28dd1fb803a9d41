package production

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Grados admitidos como sufijo del código de lote.
const (
	GradeA = "A"
	GradeB = "B"
)

// LotPrefix formatea el día como MMDD.
func LotPrefix(day time.Time) string {
	return day.Format("0102")
}

// ParseLotCode separa un código MMDD-N[A|B] en prefijo, secuencia y grado.
func ParseLotCode(code string) (prefix string, seq int, grade string, ok bool) {
	prefix, rest, found := strings.Cut(strings.TrimSpace(code), "-")
	if !found || len(prefix) != 4 || rest == "" {
		return "", 0, "", false
	}
	if last := rest[len(rest)-1:]; last == GradeA || last == GradeB {
		grade = last
		rest = rest[:len(rest)-1]
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return "", 0, "", false
	}
	return prefix, n, grade, true
}

// NextLotNumber devuelve el siguiente código MMDD-N del día rellenando el primer hueco
// de la secuencia emitida. No persiste nada.
func NextLotNumber(today time.Time, issued []string) string {
	prefix := LotPrefix(today)
	return fmt.Sprintf("%s-%d", prefix, NextSequence(prefix, issued))
}

// NextSequence primer entero >= 1 que no aparece entre los códigos del prefijo dado.
func NextSequence(prefix string, issued []string) int {
	seen := make(map[int]struct{}, len(issued))
	seqs := make([]int, 0, len(issued))
	for _, code := range issued {
		p, n, _, ok := ParseLotCode(code)
		if !ok || p != prefix {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		seqs = append(seqs, n)
	}
	sort.Ints(seqs)

	next := 1
	for _, n := range seqs {
		if n != next {
			break
		}
		next++
	}
	return next
}

// FormatLotCode compone el código con grado opcional.
func FormatLotCode(prefix string, seq int, grade string) string {
	return fmt.Sprintf("%s-%d%s", prefix, seq, grade)
}
