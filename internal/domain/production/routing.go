package production

import (
	"strings"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// Prefijos de identificador de línea.
const (
	DryLinePrefix = "bsvdl"
	RPLinePrefix  = "bsvrp"
)

// Líneas secas que exigen pasar por RP/deslaminado antes de inspección.
var (
	LinesRequiringRP = []string{"bsvdl01", "bsvdl02"}
	LinesDirectToIns = []string{"bsvdl03", "bsvdl04"}
)

// StageForLine deduce la etapa de un registro límite a partir del prefijo de su línea.
func StageForLine(line string) (entity.LineStage, bool) {
	l := strings.ToLower(strings.TrimSpace(line))
	switch {
	case strings.HasPrefix(l, DryLinePrefix):
		return entity.LineStageDryLine, true
	case strings.HasPrefix(l, RPLinePrefix):
		return entity.LineStageDelamination, true
	}
	return "", false
}

// RequiresRP indica si la línea seca enruta por RP antes de inspección.
func RequiresRP(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	for _, x := range LinesRequiringRP {
		if l == x {
			return true
		}
	}
	return false
}

// GoesDirectToInspection indica si la línea seca pasa a inspección sin RP.
func GoesDirectToInspection(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	for _, x := range LinesDirectToIns {
		if l == x {
			return true
		}
	}
	return false
}

// AwaitingInspection decide si la orden está en la lista de espera de inspección:
// llegó a línea seca o RP y todavía no tiene ninguna inspección. Si ya pasó por RP
// entra siempre; con solo línea seca, la última línea debe ir directo a inspección.
func AwaitingInspection(tl Timeline) bool {
	var lastLine *LineEvent
	hasRP := false
	for _, ev := range tl.Events {
		switch e := ev.(type) {
		case InspectionEvent:
			return false
		case RPEvent:
			hasRP = true
		case LineEvent:
			lastLine = &e
		}
	}
	if hasRP {
		return true
	}
	if lastLine == nil || RequiresRP(lastLine.Line) {
		return false
	}
	return GoesDirectToInspection(lastLine.Line)
}
