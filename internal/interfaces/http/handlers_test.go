package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/application/ordersheet"
	"github.com/jhoicas/bsv-mes/internal/application/production"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/internal/infrastructure/excel"
	"github.com/jhoicas/bsv-mes/internal/infrastructure/redis"
	apphttp "github.com/jhoicas/bsv-mes/internal/interfaces/http"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// ── repositorios en memoria ──────────────────────────────────────────────────

type memOrders struct{ byNo map[string]*entity.SalesOrder }

func (m *memOrders) GetByID(_ context.Context, id string) (*entity.SalesOrder, error) {
	for _, o := range m.byNo {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrders) FindByOrderNo(_ context.Context, no string) (*entity.SalesOrder, error) {
	if o, ok := m.byNo[no]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memOrders) Search(context.Context, repository.SalesOrderFilter) ([]*entity.SalesOrder, int, error) {
	return nil, 0, nil
}
func (m *memOrders) ListByIDs(context.Context, []string) ([]*entity.SalesOrder, error) {
	return nil, nil
}
func (m *memOrders) Create(context.Context, *entity.SalesOrder) error             { return nil }
func (m *memOrders) Update(context.Context, *entity.SalesOrder) error             { return nil }
func (m *memOrders) LogUpload(context.Context, *entity.SalesOrderUploadLog) error { return nil }
func (m *memOrders) UploadExists(context.Context, string) (bool, error)           { return false, nil }

type memPlans struct {
	byOrder map[string]*entity.ProductionPlan
}

func (m *memPlans) Latest(_ context.Context, orderID string) (*entity.ProductionPlan, error) {
	if p, ok := m.byOrder[orderID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}
func (m *memPlans) ListByOrder(context.Context, string) ([]entity.ProductionPlan, error) {
	return nil, nil
}
func (m *memPlans) Upsert(context.Context, *entity.ProductionPlan) (bool, error) { return true, nil }

type memPhases struct{ dryLines []entity.DryLine }

func (m *memPhases) ListByOrder(_ context.Context, orderID string) (entity.PhaseSet, error) {
	var set entity.PhaseSet
	for _, d := range m.dryLines {
		if d.SalesOrderID == orderID {
			set.DryLines = append(set.DryLines, d)
		}
	}
	return set, nil
}
func (m *memPhases) CreateDryMix(context.Context, *entity.DryMix) error { return nil }
func (m *memPhases) CreateDryLine(_ context.Context, rec *entity.DryLine) error {
	m.dryLines = append(m.dryLines, *rec)
	return nil
}
func (m *memPhases) CreateDelamination(context.Context, *entity.Delamination) error { return nil }
func (m *memPhases) CreateInspection(context.Context, *entity.Inspection) error     { return nil }
func (m *memPhases) CreatePrinting(context.Context, *entity.Printing) error         { return nil }
func (m *memPhases) LatestOpenOnLine(context.Context, entity.LineStage, string) (*entity.LineRecord, error) {
	return nil, domain.ErrNotFound
}
func (m *memPhases) LatestForOrder(context.Context, entity.LineStage, string) (*entity.LineRecord, error) {
	return nil, domain.ErrNotFound
}
func (m *memPhases) ListOnLineBetween(context.Context, entity.LineStage, string, time.Time, time.Time) ([]entity.LineRecord, error) {
	return nil, nil
}
func (m *memPhases) UpdateLineRecord(context.Context, *entity.LineRecord) error { return nil }

// ── app de prueba ────────────────────────────────────────────────────────────

type testEnv struct {
	app    *fiber.App
	phases *memPhases
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	order := &entity.SalesOrder{ID: "o1", OrderID: "SOV0000001", SeqNo: 1, OrderNo: "SOV0000001-1", OrderQty: decimal.NewFromInt(100)}
	orders := &memOrders{byNo: map[string]*entity.SalesOrder{order.OrderNo: order}}
	plans := &memPlans{byOrder: map[string]*entity.ProductionPlan{"o1": {ID: "p1", SalesOrderID: "o1", PdLine: "bsvdl01"}}}
	phases := &memPhases{}
	loc := time.FixedZone("ICT", 7*3600)
	log := logger.Nop()

	// sin cliente Redis: caché siempre en miss y locks concedidos
	cache := redis.NewCache(nil)
	locker := redis.NewLocker(nil)

	status := production.NewStatusUseCase(orders, phases, cache, loc, time.Minute, log)
	kiosk := production.NewKioskUseCase(orders, plans, phases, locker, status, time.Second, true, log)
	sheets := ordersheet.NewImportUseCase(orders, excel.NewOrderSheetReader(), loc, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		KioskUC:      kiosk,
		StatusUC:     status,
		OrderSheetUC: sheets,
		JWTSecret:    testJWTSecret,
	})
	return &testEnv{app: app, phases: phases}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, auth string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ── kiosco ───────────────────────────────────────────────────────────────────

func TestKioskHandler_Lookup(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/kiosk/lookup?qr=!BSVPD!SOV0000001!1!", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.LookupResponse](t, resp)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "SOV0000001-1", got.OrderNumber)

	resp = env.do(t, http.MethodGet, "/api/kiosk/lookup?qr=basura", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestKioskHandler_RecordDryLine(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"scannedOrders": []map[string]any{{"order_number": "SOV0000001-1"}, {"order_number": "SOV0000009-1"}},
		"quantityInput": map[string]any{"qty": "50"},
		"machine":       "bsvdl01",
		"staffNumber":   "W001",
	}

	resp := env.do(t, http.MethodPost, "/api/kiosk/dry-line", body, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.ScanResponse](t, resp)
	assert.Equal(t, []string{"SOV0000001-1"}, got.Saved)
	require.Len(t, got.Failed, 1)
	assert.Equal(t, "SOV0000009-1", got.Failed[0].OrderNo)

	require.Len(t, env.phases.dryLines, 1)
	assert.True(t, env.phases.dryLines[0].PdQty.Equal(decimal.NewFromInt(50)))
}

func TestKioskHandler_RecordDryLine_WrongMachine(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]any{
		"scannedOrders": []map[string]any{{"order_number": "SOV0000001-1"}},
		"quantityInput": map[string]any{"qty": 50},
		"machine":       "bsvins01",
		"staffNumber":   "W001",
	}
	resp := env.do(t, http.MethodPost, "/api/kiosk/dry-line", body, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestKioskHandler_CloseLine_NothingOpen(t *testing.T) {
	env := newTestEnv(t)
	lot := "0302-1"
	resp := env.do(t, http.MethodPost, "/api/kiosk/close-line", map[string]any{"machine": "bsvdl01", "lot": lot}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ── oficina ──────────────────────────────────────────────────────────────────

func TestOrderHandler_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodGet, "/api/orders/SOV0000001-1/status", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOrderHandler_Status(t *testing.T) {
	env := newTestEnv(t)
	auth := tokenForRole(t, "operator")

	resp := env.do(t, http.MethodGet, "/api/orders/SOV0000001-1/status", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[dto.StatusSnapshotResponse](t, resp)
	assert.True(t, snap.BalanceQty.Equal(decimal.NewFromInt(100)))

	resp = env.do(t, http.MethodGet, "/api/orders/SOV0000009-1/status", nil, auth)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}

func TestLotHandler_AssignRange_RequiresManager(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(t, http.MethodPost, "/api/lots/assign-range", map[string]any{"inside_order": "SOV0000001-1"}, tokenForRole(t, "operator"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrderSheetHandler_Upload_RejectsNonXLSX(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "pedidos.csv")
	require.NoError(t, err)
	_, err = io.Copy(fw, strings.NewReader("Sales order,Line number\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/order-sheets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", tokenForRole(t, "manager"))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
