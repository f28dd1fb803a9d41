package ordersheet

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

var plantLoc = time.FixedZone("ICT", 7*3600)

type fakeOrders struct {
	byNo     map[string]*entity.SalesOrder
	created  []string
	updated  []string
	uploads  []*entity.SalesOrderUploadLog
	hashes   map[string]bool
	failCode string
}

func newFakeOrders(orders ...*entity.SalesOrder) *fakeOrders {
	f := &fakeOrders{byNo: map[string]*entity.SalesOrder{}, hashes: map[string]bool{}}
	for _, o := range orders {
		f.byNo[o.OrderNo] = o
	}
	return f
}

func (f *fakeOrders) GetByID(context.Context, string) (*entity.SalesOrder, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) FindByOrderNo(_ context.Context, orderNo string) (*entity.SalesOrder, error) {
	if o, ok := f.byNo[orderNo]; ok {
		return o, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeOrders) Search(context.Context, repository.SalesOrderFilter) ([]*entity.SalesOrder, int, error) {
	return nil, 0, nil
}

func (f *fakeOrders) ListByIDs(context.Context, []string) ([]*entity.SalesOrder, error) {
	return nil, nil
}

func (f *fakeOrders) Create(_ context.Context, o *entity.SalesOrder) error {
	if o.OrderNo == f.failCode {
		return errors.New("db caída")
	}
	f.byNo[o.OrderNo] = o
	f.created = append(f.created, o.OrderNo)
	return nil
}

func (f *fakeOrders) Update(_ context.Context, o *entity.SalesOrder) error {
	f.byNo[o.OrderNo] = o
	f.updated = append(f.updated, o.OrderNo)
	return nil
}

func (f *fakeOrders) LogUpload(_ context.Context, l *entity.SalesOrderUploadLog) error {
	f.uploads = append(f.uploads, l)
	f.hashes[l.FileHash] = true
	return nil
}

func (f *fakeOrders) UploadExists(_ context.Context, hash string) (bool, error) {
	return f.hashes[hash], nil
}

type fakeReader struct {
	rows []Row
	err  error
}

func (r *fakeReader) ReadOrderSheet(io.Reader) ([]Row, error) {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out, r.err
}

func row(line int, order, seq, qty, receipt string) Row {
	return Row{
		Line:         line,
		SalesOrder:   order,
		LineNumber:   seq,
		Quantity:     qty,
		ReceiptDate:  receipt,
		CustomerName: "Công ty ABC",
		ItemName:     "PU LEATHER",
		Unit:         "YD",
		Type:         "LITCHI",
	}
}

func newImport(orders *fakeOrders, rows ...Row) *ImportUseCase {
	uc := NewImportUseCase(orders, &fakeReader{rows: rows}, plantLoc, logger.Nop())
	uc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, plantLoc) }
	return uc
}

func TestImportUseCase_Import(t *testing.T) {
	no := false
	dormant := &entity.SalesOrder{ID: "o1", OrderID: "SOV0000001", SeqNo: 1, OrderNo: "SOV0000001-1", OrderQty: decimal.NewFromInt(10), Status: &no}
	orders := newFakeOrders(dormant)

	uc := newImport(orders,
		row(2, "SOV0000002", "1", "150", "2026-03-02"),
		row(3, "SOV0000001", "1", "120.5", "2026-03-01 08:30:00"),
		row(4, "", "", "", ""),
		row(5, "SOV0000003", "1", "-20", "2026-03-01"),
		row(6, "SOV0000004", "x", "10", "2026-03-01"),
		row(7, "SOV0000005", "2.0", "0", "2026-03-01"),
	)

	res, err := uc.Import(context.Background(), "u1", "pedidos.xlsx", []byte("contenido"))
	require.NoError(t, err)

	assert.Equal(t, 6, res.TotalRows)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Reactivated)
	assert.Equal(t, 2, res.Ignored)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Errors)
	require.Len(t, res.ErrorLogs, 1)
	assert.Contains(t, res.ErrorLogs[0], "fila 6")
	assert.Len(t, res.FileHash, 64)

	assert.Equal(t, []string{"SOV0000001-1"}, orders.updated)
	assert.Equal(t, []string{"SOV0000002-1"}, orders.created)

	re := orders.byNo["SOV0000001-1"]
	assert.Nil(t, re.Status, "la orden reaparecida vuelve a estar activa")
	assert.Equal(t, "o1", re.ID)
	assert.True(t, re.OrderQty.Equal(decimal.RequireFromString("120.5")))
	require.NotNil(t, re.OrderDate)
	assert.Equal(t, 8, re.OrderDate.Hour())
	assert.Equal(t, plantLoc, re.OrderDate.Location())

	created := orders.byNo["SOV0000002-1"]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "LITCHI", created.Pattern)
	assert.Equal(t, 1, created.SeqNo)

	require.Len(t, orders.uploads, 1)
	assert.Equal(t, 2, orders.uploads[0].DataCount)
	assert.Equal(t, "u1", orders.uploads[0].UserID)
}

func TestImportUseCase_Import_DuplicateFile(t *testing.T) {
	orders := newFakeOrders()
	uc := newImport(orders, row(2, "SOV0000002", "1", "150", "2026-03-02"))
	ctx := context.Background()

	_, err := uc.Import(ctx, "u1", "pedidos.xlsx", []byte("mismo archivo"))
	require.NoError(t, err)

	_, err = uc.Import(ctx, "u1", "copia.xlsx", []byte("mismo archivo"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, orders.uploads, 1)
}

func TestImportUseCase_Import_ReaderError(t *testing.T) {
	orders := newFakeOrders()
	uc := NewImportUseCase(orders, &fakeReader{err: domain.ErrInvalidInput}, plantLoc, logger.Nop())

	_, err := uc.Import(context.Background(), "u1", "roto.xlsx", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, orders.uploads, "no se registra la carga si no se pudo leer")
}

func TestImportUseCase_Import_StoreErrorContinues(t *testing.T) {
	orders := newFakeOrders()
	orders.failCode = "SOV0000002-1"
	uc := newImport(orders,
		row(2, "SOV0000002", "1", "150", "2026-03-01"),
		row(3, "SOV0000002", "2", "80", "2026-03-02"),
	)

	res, err := uc.Import(context.Background(), "u1", "pedidos.xlsx", []byte("y"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 1, res.Created)
	assert.Contains(t, res.ErrorLogs[0], "db caída")
}

func TestImportUseCase_Import_CapsErrorLogs(t *testing.T) {
	var rows []Row
	for i := 0; i < maxErrorLogs+5; i++ {
		rows = append(rows, row(i+2, "SOV0000002", "?", "1", ""))
	}
	res, err := newImport(newFakeOrders(), rows...).Import(context.Background(), "u1", "malo.xlsx", []byte("z"))
	require.NoError(t, err)
	assert.Equal(t, maxErrorLogs+5, res.Errors)
	assert.Len(t, res.ErrorLogs, maxErrorLogs)
}

func TestParseInt(t *testing.T) {
	n, err := parseInt("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = parseInt("4.0")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = parseInt("4.5")
	assert.Error(t, err)
}
