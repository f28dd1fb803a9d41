package production

import (
	"sort"
	"strings"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

// SelectRange devuelve los registros de la misma etapa y línea cuyo CreatedAt cae en
// [inside, outside] inclusive. ok=false si falta algún límite o los límites están en
// líneas o etapas distintas. Si los límites llegan invertidos se intercambian.
func SelectRange(inside, outside *entity.LineRecord, candidates []entity.LineRecord) ([]entity.LineRecord, bool) {
	if inside == nil || outside == nil {
		return nil, false
	}
	if inside.Stage != outside.Stage || !strings.EqualFold(inside.LineNo, outside.LineNo) {
		return nil, false
	}
	from, to := inside.CreatedAt, outside.CreatedAt
	if from.After(to) {
		from, to = to, from
	}

	selected := make([]entity.LineRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.Stage != inside.Stage || !strings.EqualFold(c.LineNo, inside.LineNo) {
			continue
		}
		if c.CreatedAt.Before(from) || c.CreatedAt.After(to) {
			continue
		}
		selected = append(selected, c)
	}
	sort.SliceStable(selected, func(a, b int) bool {
		return selected[a].CreatedAt.Before(selected[b].CreatedAt)
	})
	return selected, true
}
