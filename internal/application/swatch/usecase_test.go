package swatch

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

var t0 = time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

type fakeSwatches struct {
	byEPC     map[string]*entity.ColorSwatch
	movements []*entity.ColorSwatchMovement
	failEPC   string
}

func newFakeSwatches(list ...*entity.ColorSwatch) *fakeSwatches {
	f := &fakeSwatches{byEPC: map[string]*entity.ColorSwatch{}}
	for _, s := range list {
		f.byEPC[s.EPC] = s
	}
	return f
}

func (f *fakeSwatches) GetByEPC(_ context.Context, epc string) (*entity.ColorSwatch, error) {
	if s, ok := f.byEPC[epc]; ok {
		return s, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSwatches) Upsert(_ context.Context, s *entity.ColorSwatch) (bool, error) {
	if s.EPC == f.failEPC {
		return false, errors.New("db caída")
	}
	if old, ok := f.byEPC[s.EPC]; ok {
		s.ID = old.ID
		f.byEPC[s.EPC] = s
		return false, nil
	}
	f.byEPC[s.EPC] = s
	return true, nil
}

func (f *fakeSwatches) AddMovement(_ context.Context, m *entity.ColorSwatchMovement) error {
	f.movements = append(f.movements, m)
	return nil
}

func (f *fakeSwatches) LatestMovement(_ context.Context, swatchID string) (*entity.ColorSwatchMovement, error) {
	var latest *entity.ColorSwatchMovement
	for _, m := range f.movements {
		if m.SwatchID == swatchID && (latest == nil || !m.CreatedAt.Before(latest.CreatedAt)) {
			latest = m
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeSwatches) PurgeMovements(_ context.Context, before time.Time) (int64, error) {
	newest := map[string]*entity.ColorSwatchMovement{}
	for _, m := range f.movements {
		if cur, ok := newest[m.SwatchID]; !ok || m.CreatedAt.After(cur.CreatedAt) {
			newest[m.SwatchID] = m
		}
	}
	var kept []*entity.ColorSwatchMovement
	var n int64
	for _, m := range f.movements {
		if m.CreatedAt.Before(before) && newest[m.SwatchID] != m {
			n++
			continue
		}
		kept = append(kept, m)
	}
	f.movements = kept
	return n, nil
}

type fakeSheetReader struct {
	sheet *Sheet
	err   error
}

func (r fakeSheetReader) ReadSwatchSheet(io.Reader) (*Sheet, error) { return r.sheet, r.err }

func newUseCase(repo *fakeSwatches, reader SheetReader) *UseCase {
	uc := NewUseCase(repo, reader, 15, logger.Nop())
	uc.now = func() time.Time { return t0 }
	return uc
}

func swatch(id, epc string) *entity.ColorSwatch {
	return &entity.ColorSwatch{ID: id, EPC: epc, STT: 1, Customer: "ABC", Item: "PU", Color: "BLACK"}
}

func TestUseCase_RecordMovementAndLocate(t *testing.T) {
	repo := newFakeSwatches(swatch("s1", "E200001"))
	uc := newUseCase(repo, nil)
	ctx := context.Background()

	loc, err := uc.Locate(ctx, "E200001")
	require.NoError(t, err)
	assert.Nil(t, loc.LastSeenAt, "sin lecturas todavía")

	got, err := uc.RecordMovement(ctx, dto.SwatchMovementRequest{EPC: " E200001 ", LineNo: "BSVDL01", StaffNumber: "W01"})
	require.NoError(t, err)
	assert.Equal(t, "bsvdl01", got.LastLineNo)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, "s1", repo.movements[0].SwatchID)

	loc, err = uc.Locate(ctx, "E200001")
	require.NoError(t, err)
	require.NotNil(t, loc.LastSeenAt)
	assert.Equal(t, "W01", loc.LastWorker)
	assert.True(t, loc.LastSeenAt.Equal(t0))
}

func TestUseCase_RecordMovement_Errors(t *testing.T) {
	uc := newUseCase(newFakeSwatches(), nil)
	ctx := context.Background()

	_, err := uc.RecordMovement(ctx, dto.SwatchMovementRequest{EPC: "E9", LineNo: "bsvdl01"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.RecordMovement(ctx, dto.SwatchMovementRequest{EPC: "E9"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUseCase_PurgeOldMovements_KeepsNewestPerSwatch(t *testing.T) {
	repo := newFakeSwatches()
	day := 24 * time.Hour
	repo.movements = []*entity.ColorSwatchMovement{
		{ID: "a1", SwatchID: "a", CreatedAt: t0.Add(-40 * day)},
		{ID: "a2", SwatchID: "a", CreatedAt: t0.Add(-20 * day)},
		{ID: "b1", SwatchID: "b", CreatedAt: t0.Add(-30 * day)},
		{ID: "b2", SwatchID: "b", CreatedAt: t0.Add(-1 * day)},
	}
	res, err := newUseCase(repo, nil).PurgeOldMovements(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Deleted)
	assert.True(t, res.Before.Equal(t0.Add(-15*day)))

	var ids []string
	for _, m := range repo.movements {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"a2", "b2"}, ids)
}

func cells(epc, stt string) map[string]string {
	return map[string]string{
		"EPC": epc, "CUSTOMER": "ABC", "M/S": "M", "STT": stt,
		"ITEM": "PU LEATHER", "COLOR": "BLACK", "TYPE": "LITCHI", "BASE": "WHITE",
	}
}

func TestUseCase_Import(t *testing.T) {
	repo := newFakeSwatches(swatch("s1", "E1"))
	repo.failEPC = "E4"
	incomplete := cells("E3", "3")
	delete(incomplete, "COLOR")

	sheet := &Sheet{
		Columns: RequiredColumns,
		Rows: []Row{
			{Line: 2, Cells: cells("E1", "1")},
			{Line: 3, Cells: cells("E2", "2.0")},
			{Line: 4, Cells: incomplete},
			{Line: 5, Cells: cells("E4", "4")},
			{Line: 6, Cells: cells("E5", "x")},
		},
	}
	res, err := newUseCase(repo, fakeSheetReader{sheet: sheet}).Import(context.Background(), []byte("xlsx"))
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalProcessed)
	assert.Equal(t, 1, res.NewRecords)
	assert.Equal(t, 1, res.UpdatedRecords)
	assert.Equal(t, 3, res.Errors)
	require.Len(t, res.ErrorLogs, 3)
	assert.Contains(t, res.ErrorLogs[0], "fila 4")

	assert.Equal(t, "s1", repo.byEPC["E1"].ID)
	assert.Equal(t, "LITCHI", repo.byEPC["E2"].Pattern)
	assert.Equal(t, 2, repo.byEPC["E2"].STT)
}

func TestUseCase_Import_MissingColumns(t *testing.T) {
	sheet := &Sheet{Columns: []string{"EPC", "CUSTOMER", "STT"}}
	_, err := newUseCase(newFakeSwatches(), fakeSheetReader{sheet: sheet}).Import(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "M/S")
}
