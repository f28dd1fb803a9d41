package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/production"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*SalesOrderRepo)(nil)

// SalesOrderRepo implementación del puerto SalesOrderRepository sobre PostgreSQL (usable con pool o tx).
type SalesOrderRepo struct {
	q Querier
}

// NewSalesOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesOrderRepository(q Querier) *SalesOrderRepo {
	return &SalesOrderRepo{q: q}
}

const salesOrderColumns = `
	id, order_id, seq_no, order_no, customer_order_no, customer_name, order_type,
	order_date, rtd, etd, brand, item_name, color_code, color_name, pattern, base_color, spec,
	order_qty, qty_unit, unit_price, currency, order_remark, model_name, sample_step,
	production_location, product_group, product_type, status, created_at, updated_at`

func scanSalesOrder(row pgx.Row) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	err := row.Scan(
		&o.ID, &o.OrderID, &o.SeqNo, &o.OrderNo, &o.CustomerOrderNo, &o.CustomerName, &o.OrderType,
		&o.OrderDate, &o.RTD, &o.ETD, &o.Brand, &o.ItemName, &o.ColorCode, &o.ColorName, &o.Pattern,
		&o.BaseColor, &o.Spec, &o.OrderQty, &o.QtyUnit, &o.UnitPrice, &o.Currency, &o.OrderRemark,
		&o.ModelName, &o.SampleStep, &o.ProductionLocation, &o.ProductGroup, &o.ProductType,
		&o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// searchText texto normalizado que alimenta la búsqueda libre.
func searchText(o *entity.SalesOrder) string {
	return production.NormalizeSearch(strings.Join([]string{
		o.OrderNo, o.CustomerName, o.CustomerOrderNo, o.ItemName, o.ColorName, o.ColorCode,
	}, " "))
}

func (r *SalesOrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	o, err := scanSalesOrder(r.q.QueryRow(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get sales_order: %w", err)
	}
	return o, nil
}

func (r *SalesOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*entity.SalesOrder, error) {
	o, err := scanSalesOrder(r.q.QueryRow(ctx, `SELECT `+salesOrderColumns+` FROM sales_orders WHERE order_no = $1`, orderNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find sales_order by order_no: %w", err)
	}
	return o, nil
}

// Search pagina por created_at descendente y devuelve además el total filtrado.
func (r *SalesOrderRepo) Search(ctx context.Context, f repository.SalesOrderFilter) ([]*entity.SalesOrder, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.ActiveOnly {
		where = append(where, "status IS NULL")
	}
	if q := production.NormalizeSearch(f.Query); q != "" {
		args = append(args, likePattern(q))
		where = append(where, fmt.Sprintf("search_text LIKE $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sales_orders WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales_orders: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM sales_orders WHERE %s ORDER BY created_at DESC, order_no LIMIT $%d OFFSET $%d`,
		salesOrderColumns, cond, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search sales_orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.SalesOrder
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sales_order: %w", err)
		}
		list = append(list, o)
	}
	return list, total, rows.Err()
}

func (r *SalesOrderRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.SalesOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx,
		`SELECT `+salesOrderColumns+` FROM sales_orders WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, fmt.Errorf("list sales_orders by ids: %w", err)
	}
	defer rows.Close()
	byID := make(map[string]*entity.SalesOrder, len(ids))
	for rows.Next() {
		o, err := scanSalesOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sales_order: %w", err)
		}
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	list := make([]*entity.SalesOrder, 0, len(byID))
	for _, id := range ids {
		if o, ok := byID[id]; ok {
			list = append(list, o)
		}
	}
	return list, nil
}

func (r *SalesOrderRepo) Create(ctx context.Context, o *entity.SalesOrder) error {
	const q = `
		INSERT INTO sales_orders (
			id, order_id, seq_no, order_no, customer_order_no, customer_name, order_type,
			order_date, rtd, etd, brand, item_name, color_code, color_name, pattern, base_color, spec,
			order_qty, qty_unit, unit_price, currency, order_remark, model_name, sample_step,
			production_location, product_group, product_type, status, search_text, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)`
	_, err := r.q.Exec(ctx, q,
		o.ID, o.OrderID, o.SeqNo, o.OrderNo, o.CustomerOrderNo, o.CustomerName, o.OrderType,
		o.OrderDate, o.RTD, o.ETD, o.Brand, o.ItemName, o.ColorCode, o.ColorName, o.Pattern, o.BaseColor, o.Spec,
		o.OrderQty, o.QtyUnit, o.UnitPrice, o.Currency, o.OrderRemark, o.ModelName, o.SampleStep,
		o.ProductionLocation, o.ProductGroup, o.ProductType, o.Status, searchText(o), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales_order: %w", err)
	}
	return nil
}

// Update sobrescribe todos los campos editables, incluido status (reactivación con NULL).
func (r *SalesOrderRepo) Update(ctx context.Context, o *entity.SalesOrder) error {
	const q = `
		UPDATE sales_orders SET
			customer_order_no = $2, customer_name = $3, order_type = $4, order_date = $5, rtd = $6, etd = $7,
			brand = $8, item_name = $9, color_code = $10, color_name = $11, pattern = $12, base_color = $13,
			spec = $14, order_qty = $15, qty_unit = $16, unit_price = $17, currency = $18, order_remark = $19,
			model_name = $20, sample_step = $21, production_location = $22, product_group = $23,
			product_type = $24, status = $25, search_text = $26, updated_at = $27
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, q,
		o.ID, o.CustomerOrderNo, o.CustomerName, o.OrderType, o.OrderDate, o.RTD, o.ETD,
		o.Brand, o.ItemName, o.ColorCode, o.ColorName, o.Pattern, o.BaseColor,
		o.Spec, o.OrderQty, o.QtyUnit, o.UnitPrice, o.Currency, o.OrderRemark,
		o.ModelName, o.SampleStep, o.ProductionLocation, o.ProductGroup,
		o.ProductType, o.Status, searchText(o), o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sales_order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SalesOrderRepo) LogUpload(ctx context.Context, l *entity.SalesOrderUploadLog) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_order_upload_logs (id, user_id, file_name, file_hash, data_count, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, nullIfEmpty(l.UserID), l.FileName, l.FileHash, l.DataCount, l.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert upload log: %w", err)
	}
	return nil
}

func (r *SalesOrderRepo) UploadExists(ctx context.Context, fileHash string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sales_order_upload_logs WHERE file_hash = $1)`, fileHash,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check upload hash: %w", err)
	}
	return exists, nil
}
