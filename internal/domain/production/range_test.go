package production_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/production"
)

func lineRec(id, line string, minute int) entity.LineRecord {
	return entity.LineRecord{ID: id, Stage: entity.LineStageDryLine, LineNo: line, CreatedAt: at(minute)}
}

func ids(recs []entity.LineRecord) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestSelectRange_IncluyeSoloMismaLineaDentroDeLaVentana(t *testing.T) {
	inside := lineRec("in", "bsvdl01", 10)
	outside := lineRec("out", "bsvdl01", 50)
	candidates := []entity.LineRecord{
		lineRec("t60", "bsvdl01", 60),
		lineRec("t30", "bsvdl01", 30),
		lineRec("t30-otra", "bsvdl02", 30),
		outside,
		inside,
		lineRec("t5", "bsvdl01", 5),
	}

	got, ok := production.SelectRange(&inside, &outside, candidates)

	require.True(t, ok)
	assert.Equal(t, []string{"in", "t30", "out"}, ids(got))
}

func TestSelectRange_LimitesInvertidos(t *testing.T) {
	inside := lineRec("in", "bsvdl01", 50)
	outside := lineRec("out", "BSVDL01", 10)
	candidates := []entity.LineRecord{lineRec("t30", "bsvdl01", 30)}

	got, ok := production.SelectRange(&inside, &outside, candidates)

	require.True(t, ok)
	assert.Equal(t, []string{"t30"}, ids(got))
}

func TestSelectRange_SinResultado(t *testing.T) {
	inside := lineRec("in", "bsvdl01", 10)
	other := lineRec("out", "bsvdl02", 50)
	rp := entity.LineRecord{ID: "rp", Stage: entity.LineStageDelamination, LineNo: "bsvdl01", CreatedAt: at(50)}

	_, ok := production.SelectRange(&inside, &other, nil)
	assert.False(t, ok, "líneas distintas")

	_, ok = production.SelectRange(&inside, &rp, nil)
	assert.False(t, ok, "etapas distintas")

	_, ok = production.SelectRange(nil, &inside, nil)
	assert.False(t, ok, "falta un límite")
}

func TestStageForLine(t *testing.T) {
	s, ok := production.StageForLine("BSVDL03")
	assert.True(t, ok)
	assert.Equal(t, entity.LineStageDryLine, s)

	s, ok = production.StageForLine("bsvrp01")
	assert.True(t, ok)
	assert.Equal(t, entity.LineStageDelamination, s)

	_, ok = production.StageForLine("bsvins01")
	assert.False(t, ok)

	assert.True(t, production.RequiresRP("bsvdl02"))
	assert.False(t, production.RequiresRP("bsvdl04"))
}

func TestAwaitingInspection_RutaDeLinea(t *testing.T) {
	line := func(id, lineNo string, m int) entity.DryLine {
		return entity.DryLine{ID: id, PdQty: qty(10), LineNo: lineNo, CreatedAt: at(m)}
	}
	cases := []struct {
		name string
		set  entity.PhaseSet
		want bool
	}{
		{"línea directa sin inspección", entity.PhaseSet{DryLines: []entity.DryLine{line("d1", "bsvdl03", 1)}}, true},
		{"línea que exige RP sin RP", entity.PhaseSet{DryLines: []entity.DryLine{line("d1", "BSVDL01", 1)}}, false},
		{"línea que exige RP con RP", entity.PhaseSet{
			DryLines:      []entity.DryLine{line("d1", "bsvdl01", 1)},
			Delaminations: []entity.Delamination{{ID: "r1", DlamiQty: qty(10), LineNo: "bsvrp01", CreatedAt: at(2)}},
		}, true},
		{"solo RP", entity.PhaseSet{
			Delaminations: []entity.Delamination{{ID: "r1", DlamiQty: qty(10), LineNo: "bsvrp01", CreatedAt: at(2)}},
		}, true},
		{"ya inspeccionada aunque volvió a línea", entity.PhaseSet{
			DryLines:    []entity.DryLine{line("d1", "bsvdl03", 1), line("d2", "bsvdl03", 3)},
			Inspections: []entity.Inspection{{ID: "i1", InsQty: qty(10), CreatedAt: at(2)}},
		}, false},
		{"línea desconocida", entity.PhaseSet{DryLines: []entity.DryLine{line("d1", "bsvdl09", 1)}}, false},
		{"sin registros", entity.PhaseSet{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := production.AwaitingInspection(production.BuildTimeline(tc.set, time.UTC))
			assert.Equal(t, tc.want, got)
		})
	}
	assert.True(t, production.GoesDirectToInspection(" BSVDL04 "))
	assert.False(t, production.GoesDirectToInspection("bsvdl01"))
}
