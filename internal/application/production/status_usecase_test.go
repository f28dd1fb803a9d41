package production

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
)

var base0 = time.Date(2026, 3, 2, 8, 0, 0, 0, plantLoc)

// seedFullCycle pedido 100 → línea 100 → inspección 90 (+10 manchas, 20 a impresión).
func seedFullCycle(phases *fakePhases, order *entity.SalesOrder) {
	s := phases.set(order.ID)
	s.DryLines = append(s.DryLines, entity.DryLine{
		ID: "dl-1", SalesOrderID: order.ID, PdQty: decimal.NewFromInt(100), LineNo: "bsvdl03", CreatedAt: base0,
	})
	toPrint := decimal.NewFromInt(20)
	s.Inspections = append(s.Inspections, entity.Inspection{
		ID: "ins-1", SalesOrderID: order.ID, InsQty: decimal.NewFromInt(90),
		InsInformation: json.RawMessage(`[{"defectCause":"Stain","quantity":10}]`),
		QtyToPrinting:  &toPrint, LineNo: "bsvins01", CreatedAt: base0.Add(time.Hour),
	})
}

func TestStatusUseCase_FindOrder(t *testing.T) {
	active := newOrder("o1", "SOV0000001-1", 100)
	gone := cancelled(newOrder("o2", "SOV0000001-2", 50))
	uc := newStatus(newFakeOrders(active, gone), newFakePhases(), newFakeCache())

	t.Run("activa", func(t *testing.T) {
		got, err := uc.FindOrder(context.Background(), " SOV0000001-1 ")
		require.NoError(t, err)
		assert.Equal(t, "o1", got.ID)
	})
	t.Run("cancelada", func(t *testing.T) {
		_, err := uc.FindOrder(context.Background(), "SOV0000001-2")
		assert.ErrorIs(t, err, domain.ErrOrderCancelled)
	})
	t.Run("inexistente", func(t *testing.T) {
		_, err := uc.FindOrder(context.Background(), "SOV9999999-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestStatusUseCase_Snapshot_FullCycle(t *testing.T) {
	order := newOrder("o1", "SOV0000001-1", 100)
	phases := newFakePhases()
	seedFullCycle(phases, order)
	uc := newStatus(newFakeOrders(order), phases, newFakeCache())

	snap, err := uc.Snapshot(context.Background(), order.OrderNo)
	require.NoError(t, err)

	assert.True(t, snap.BalanceQty.Equal(decimal.NewFromInt(10)), "balance %s", snap.BalanceQty)
	assert.True(t, snap.LineShortage.Equal(decimal.NewFromInt(90)), "shortage %s", snap.LineShortage)
	require.NotNil(t, snap.PendingPrintQty)
	assert.True(t, snap.PendingPrintQty.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Inspection", snap.LatestStage)
	assert.Len(t, snap.Process, 2)
}

func TestStatusUseCase_Snapshot_CacheAside(t *testing.T) {
	order := newOrder("o1", "SOV0000001-1", 100)
	phases := newFakePhases()
	seedFullCycle(phases, order)
	cache := newFakeCache()
	uc := newStatus(newFakeOrders(order), phases, cache)
	ctx := context.Background()

	first, err := uc.Snapshot(ctx, order.OrderNo)
	require.NoError(t, err)
	second, err := uc.Snapshot(ctx, order.OrderNo)
	require.NoError(t, err)

	assert.Equal(t, 1, phases.listCalls, "la segunda lectura sale de caché")
	assert.True(t, first.BalanceQty.Equal(second.BalanceQty))
	assert.True(t, cache.has(SnapshotKey(order.ID)))

	uc.Invalidate(ctx, order.ID)
	assert.False(t, cache.has(SnapshotKey(order.ID)))

	_, err = uc.Snapshot(ctx, order.OrderNo)
	require.NoError(t, err)
	assert.Equal(t, 2, phases.listCalls)
}

func TestStatusUseCase_Timeline(t *testing.T) {
	order := newOrder("o1", "SOV0000001-1", 100)
	phases := newFakePhases()
	seedFullCycle(phases, order)
	uc := newStatus(newFakeOrders(order), phases, newFakeCache())

	tl, err := uc.Timeline(context.Background(), order.OrderNo)
	require.NoError(t, err)

	require.Len(t, tl.Events, 2)
	assert.Equal(t, "DryLine", tl.Events[0].Stage)
	assert.Equal(t, "Inspection", tl.Events[1].Stage)
	assert.Equal(t, "Inspection", tl.LatestStage)
	assert.Equal(t, "bsvins01", tl.LatestMachine)
	assert.Contains(t, tl.Events[1].Payload, "qty_to_printing")
}

func TestStatusUseCase_Search(t *testing.T) {
	uc := newStatus(newFakeOrders(
		newOrder("o1", "SOV0000001-1", 100),
		newOrder("o2", "SOV0000001-2", 100),
		cancelled(newOrder("o3", "SOV0000001-3", 100)),
	), newFakePhases(), newFakeCache())

	got, err := uc.Search(context.Background(), "", true, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 20, got.Page.Limit)
	assert.Equal(t, 2, got.Page.Total)
}
