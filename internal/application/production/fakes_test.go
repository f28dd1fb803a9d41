package production

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

var plantLoc = time.FixedZone("ICT", 7*3600)

// ── órdenes ──────────────────────────────────────────────────────────────────

type fakeOrders struct {
	byNo map[string]*entity.SalesOrder
}

func newFakeOrders(orders ...*entity.SalesOrder) *fakeOrders {
	f := &fakeOrders{byNo: map[string]*entity.SalesOrder{}}
	for _, o := range orders {
		f.byNo[o.OrderNo] = o
	}
	return f
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	for _, o := range f.byNo {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) FindByOrderNo(_ context.Context, orderNo string) (*entity.SalesOrder, error) {
	if o, ok := f.byNo[orderNo]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) Search(_ context.Context, filter repository.SalesOrderFilter) ([]*entity.SalesOrder, int, error) {
	var out []*entity.SalesOrder
	for _, o := range f.byNo {
		if filter.ActiveOnly && o.IsCancelled() {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(o.OrderNo+" "+o.CustomerName), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out, len(out), nil
}

func (f *fakeOrders) ListByIDs(ctx context.Context, ids []string) ([]*entity.SalesOrder, error) {
	out := make([]*entity.SalesOrder, 0, len(ids))
	for _, id := range ids {
		if o, err := f.GetByID(ctx, id); err == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Create(_ context.Context, o *entity.SalesOrder) error {
	f.byNo[o.OrderNo] = o
	return nil
}

func (f *fakeOrders) Update(_ context.Context, o *entity.SalesOrder) error {
	f.byNo[o.OrderNo] = o
	return nil
}

func (f *fakeOrders) LogUpload(context.Context, *entity.SalesOrderUploadLog) error { return nil }
func (f *fakeOrders) UploadExists(context.Context, string) (bool, error)           { return false, nil }

// ── planes ───────────────────────────────────────────────────────────────────

type fakePlans struct {
	latest   map[string]*entity.ProductionPlan
	upserted []*entity.ProductionPlan
}

func newFakePlans(plans ...*entity.ProductionPlan) *fakePlans {
	f := &fakePlans{latest: map[string]*entity.ProductionPlan{}}
	for _, p := range plans {
		f.latest[p.SalesOrderID] = p
	}
	return f
}

func (f *fakePlans) Latest(_ context.Context, salesOrderID string) (*entity.ProductionPlan, error) {
	if p, ok := f.latest[salesOrderID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePlans) ListByOrder(_ context.Context, salesOrderID string) ([]entity.ProductionPlan, error) {
	if p, ok := f.latest[salesOrderID]; ok {
		return []entity.ProductionPlan{*p}, nil
	}
	return nil, nil
}

func (f *fakePlans) Upsert(_ context.Context, p *entity.ProductionPlan) (bool, error) {
	_, existed := f.latest[p.SalesOrderID]
	f.latest[p.SalesOrderID] = p
	f.upserted = append(f.upserted, p)
	return !existed, nil
}

// ── fases ────────────────────────────────────────────────────────────────────

type fakePhases struct {
	sets        map[string]*entity.PhaseSet
	lines       []entity.LineRecord
	listCalls   int
	conflicts   int // UpdateLineRecord devuelve ErrConflict esta cantidad de veces
	failUpdates map[string]bool
	createErr   error
}

func newFakePhases() *fakePhases {
	return &fakePhases{sets: map[string]*entity.PhaseSet{}, failUpdates: map[string]bool{}}
}

func (f *fakePhases) set(orderID string) *entity.PhaseSet {
	s, ok := f.sets[orderID]
	if !ok {
		s = &entity.PhaseSet{}
		f.sets[orderID] = s
	}
	return s
}

func (f *fakePhases) ListByOrder(_ context.Context, salesOrderID string) (entity.PhaseSet, error) {
	f.listCalls++
	return *f.set(salesOrderID), nil
}

func (f *fakePhases) CreateDryMix(_ context.Context, rec *entity.DryMix) error {
	if f.createErr != nil {
		return f.createErr
	}
	s := f.set(rec.SalesOrderID)
	s.DryMixes = append(s.DryMixes, *rec)
	return nil
}

func (f *fakePhases) CreateDryLine(_ context.Context, rec *entity.DryLine) error {
	if f.createErr != nil {
		return f.createErr
	}
	s := f.set(rec.SalesOrderID)
	s.DryLines = append(s.DryLines, *rec)
	f.lines = append(f.lines, entity.LineRecord{
		ID: rec.ID, Stage: entity.LineStageDryLine, SalesOrderID: rec.SalesOrderID, PlanID: rec.PlanID,
		LineNo: rec.LineNo, Qty: rec.PdQty, Lot: rec.PdLot, AgingPosition: rec.AgPosition, CreatedAt: rec.CreatedAt,
	})
	return nil
}

func (f *fakePhases) CreateDelamination(_ context.Context, rec *entity.Delamination) error {
	if f.createErr != nil {
		return f.createErr
	}
	s := f.set(rec.SalesOrderID)
	s.Delaminations = append(s.Delaminations, *rec)
	f.lines = append(f.lines, entity.LineRecord{
		ID: rec.ID, Stage: entity.LineStageDelamination, SalesOrderID: rec.SalesOrderID, PlanID: rec.PlanID,
		LineNo: rec.LineNo, Qty: rec.DlamiQty, Lot: rec.DlamiLot, CreatedAt: rec.CreatedAt,
	})
	return nil
}

func (f *fakePhases) CreateInspection(_ context.Context, rec *entity.Inspection) error {
	if f.createErr != nil {
		return f.createErr
	}
	s := f.set(rec.SalesOrderID)
	s.Inspections = append(s.Inspections, *rec)
	return nil
}

func (f *fakePhases) CreatePrinting(_ context.Context, rec *entity.Printing) error {
	if f.createErr != nil {
		return f.createErr
	}
	s := f.set(rec.SalesOrderID)
	s.Printings = append(s.Printings, *rec)
	return nil
}

func (f *fakePhases) LatestOpenOnLine(_ context.Context, stage entity.LineStage, lineNo string) (*entity.LineRecord, error) {
	var best *entity.LineRecord
	for i := range f.lines {
		r := f.lines[i]
		if r.Stage != stage || r.LineNo != lineNo || !r.IsOpen() {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = &r
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

func (f *fakePhases) LatestForOrder(_ context.Context, stage entity.LineStage, salesOrderID string) (*entity.LineRecord, error) {
	var best *entity.LineRecord
	for i := range f.lines {
		r := f.lines[i]
		if r.Stage != stage || r.SalesOrderID != salesOrderID {
			continue
		}
		if best == nil || r.CreatedAt.After(best.CreatedAt) {
			best = &r
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

func (f *fakePhases) ListOnLineBetween(_ context.Context, stage entity.LineStage, lineNo string, from, to time.Time) ([]entity.LineRecord, error) {
	var out []entity.LineRecord
	for _, r := range f.lines {
		if r.Stage == stage && r.LineNo == lineNo && !r.CreatedAt.Before(from) && !r.CreatedAt.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePhases) UpdateLineRecord(_ context.Context, rec *entity.LineRecord) error {
	if f.conflicts > 0 {
		f.conflicts--
		return domain.ErrConflict
	}
	if f.failUpdates[rec.ID] {
		return domain.ErrConflict
	}
	for i := range f.lines {
		if f.lines[i].ID != rec.ID {
			continue
		}
		if f.lines[i].Version != rec.Version {
			return domain.ErrConflict
		}
		rec.Version++
		f.lines[i] = *rec
		return nil
	}
	return domain.ErrNotFound
}

// addLine siembra un registro de línea abierto.
func (f *fakePhases) addLine(id string, stage entity.LineStage, order *entity.SalesOrder, lineNo string, at time.Time) {
	f.lines = append(f.lines, entity.LineRecord{
		ID: id, Stage: stage, SalesOrderID: order.ID, OrderNo: order.OrderNo,
		LineNo: lineNo, Qty: decimal.NewFromInt(10), CreatedAt: at,
	})
}

func (f *fakePhases) line(id string) entity.LineRecord {
	for _, r := range f.lines {
		if r.ID == id {
			return r
		}
	}
	return entity.LineRecord{}
}

// ── caché y locks ────────────────────────────────────────────────────────────

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type fakeLock struct{ released *int }

func (l fakeLock) Release(context.Context) error {
	*l.released++
	return nil
}

type fakeLocker struct {
	keys     []string
	released int
	err      error
}

func (l *fakeLocker) Obtain(_ context.Context, key string, _ time.Duration) (Lock, error) {
	l.keys = append(l.keys, key)
	if l.err != nil {
		return nil, l.err
	}
	return fakeLock{released: &l.released}, nil
}

// ── lotes ────────────────────────────────────────────────────────────────────

type fakeLots struct {
	issued     []string
	created    []*entity.ProductionLot
	duplicates int // Create devuelve ErrDuplicate esta cantidad de veces
	lockedDays []string
}

func (f *fakeLots) LockDay(_ context.Context, prefix string) error {
	f.lockedDays = append(f.lockedDays, prefix)
	return nil
}

func (f *fakeLots) ListIssued(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, c := range f.issued {
		if strings.HasPrefix(c, prefix+"-") {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeLots) Create(_ context.Context, lot *entity.ProductionLot) error {
	if f.duplicates > 0 {
		f.duplicates--
		// otro proceso se quedó con el código
		f.issued = append(f.issued, lot.LotCode)
		return domain.ErrDuplicate
	}
	f.issued = append(f.issued, lot.LotCode)
	f.created = append(f.created, lot)
	return nil
}

type fakeLotTx struct {
	lots *fakeLots
	runs int
}

func (t *fakeLotTx) RunLots(_ context.Context, fn func(lots repository.LotRepository) error) error {
	t.runs++
	return fn(t.lots)
}

// ── listas de espera ─────────────────────────────────────────────────────────

type fakeWaitlists struct {
	inspection []string
	printing   []string
	calls      int
	lastFilter repository.WaitlistFilter
}

func (f *fakeWaitlists) AwaitingInspection(_ context.Context, filter repository.WaitlistFilter) ([]string, error) {
	f.calls++
	f.lastFilter = filter
	return f.inspection, nil
}

func (f *fakeWaitlists) AwaitingPrinting(_ context.Context, filter repository.WaitlistFilter) ([]string, error) {
	f.calls++
	f.lastFilter = filter
	return f.printing, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

func newOrder(id, orderNo string, qty int64) *entity.SalesOrder {
	return &entity.SalesOrder{ID: id, OrderNo: orderNo, CustomerName: "CÔNG TY ABC", OrderQty: decimal.NewFromInt(qty)}
}

func cancelled(o *entity.SalesOrder) *entity.SalesOrder {
	f := false
	o.Status = &f
	return o
}

func newPlan(id string, order *entity.SalesOrder) *entity.ProductionPlan {
	return &entity.ProductionPlan{ID: id, SalesOrderID: order.ID, PdLine: "bsvdl01"}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newStatus(orders repository.SalesOrderRepository, phases repository.PhaseRepository, cache Cache) *StatusUseCase {
	return NewStatusUseCase(orders, phases, cache, plantLoc, time.Minute, logger.Nop())
}
