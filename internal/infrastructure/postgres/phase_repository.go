package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
)

var _ repository.PhaseRepository = (*PhaseRepo)(nil)

// PhaseRepo implementa PhaseRepository sobre las tablas de fase.
type PhaseRepo struct {
	q Querier
}

// NewPhaseRepository construye el repositorio. Pasar pool o tx.
func NewPhaseRepository(q Querier) *PhaseRepo {
	return &PhaseRepo{q: q}
}

// ListByOrder: mezcla, línea y RP cuelgan del plan; inspección e impresión de la orden.
func (r *PhaseRepo) ListByOrder(ctx context.Context, salesOrderID string) (entity.PhaseSet, error) {
	var set entity.PhaseSet
	var err error

	if set.Plans, err = NewProductionPlanRepository(r.q).ListByOrder(ctx, salesOrderID); err != nil {
		return set, err
	}
	if set.DryMixes, err = r.listDryMixes(ctx, salesOrderID); err != nil {
		return set, err
	}
	if set.DryLines, err = r.listDryLines(ctx, salesOrderID); err != nil {
		return set, err
	}
	if set.Delaminations, err = r.listDelaminations(ctx, salesOrderID); err != nil {
		return set, err
	}
	if set.Inspections, err = r.listInspections(ctx, salesOrderID); err != nil {
		return set, err
	}
	if set.Printings, err = r.listPrintings(ctx, salesOrderID); err != nil {
		return set, err
	}
	return set, nil
}

func (r *PhaseRepo) listDryMixes(ctx context.Context, salesOrderID string) ([]entity.DryMix, error) {
	rows, err := r.q.Query(ctx, `
		SELECT m.id, m.production_plan_id, p.sales_order_id, m.mixing_information, m.worker_code, m.created_at
		FROM dry_mixes m
		JOIN production_plans p ON p.id = m.production_plan_id
		WHERE p.sales_order_id = $1`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list dry_mixes: %w", err)
	}
	defer rows.Close()
	var list []entity.DryMix
	for rows.Next() {
		var m entity.DryMix
		if err := rows.Scan(&m.ID, &m.PlanID, &m.SalesOrderID, &m.MixingInformation, &m.WorkerCode, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dry_mix: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *PhaseRepo) listDryLines(ctx context.Context, salesOrderID string) ([]entity.DryLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.production_plan_id, p.sales_order_id, d.pd_qty, d.pd_information, d.line_no,
		       d.ag_position, d.pd_lot, d.worker_code, d.version, d.created_at
		FROM dry_lines d
		JOIN production_plans p ON p.id = d.production_plan_id
		WHERE p.sales_order_id = $1`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list dry_lines: %w", err)
	}
	defer rows.Close()
	var list []entity.DryLine
	for rows.Next() {
		var d entity.DryLine
		if err := rows.Scan(&d.ID, &d.PlanID, &d.SalesOrderID, &d.PdQty, &d.PdInformation, &d.LineNo,
			&d.AgPosition, &d.PdLot, &d.WorkerCode, &d.Version, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dry_line: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *PhaseRepo) listDelaminations(ctx context.Context, salesOrderID string) ([]entity.Delamination, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.production_plan_id, p.sales_order_id, d.dlami_qty, d.dlami_information, d.line_no,
		       d.dlami_lot, d.worker_code, d.version, d.created_at
		FROM delaminations d
		JOIN production_plans p ON p.id = d.production_plan_id
		WHERE p.sales_order_id = $1`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list delaminations: %w", err)
	}
	defer rows.Close()
	var list []entity.Delamination
	for rows.Next() {
		var d entity.Delamination
		if err := rows.Scan(&d.ID, &d.PlanID, &d.SalesOrderID, &d.DlamiQty, &d.DlamiInformation, &d.LineNo,
			&d.DlamiLot, &d.WorkerCode, &d.Version, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delamination: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *PhaseRepo) listInspections(ctx context.Context, salesOrderID string) ([]entity.Inspection, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sales_order_id, production_plan_id, ins_qty, ins_information, qty_to_printing,
		       line_no, position, worker_code, created_at
		FROM inspections WHERE sales_order_id = $1`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list inspections: %w", err)
	}
	defer rows.Close()
	var list []entity.Inspection
	for rows.Next() {
		var i entity.Inspection
		if err := rows.Scan(&i.ID, &i.SalesOrderID, &i.PlanID, &i.InsQty, &i.InsInformation, &i.QtyToPrinting,
			&i.LineNo, &i.Position, &i.WorkerCode, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		list = append(list, i)
	}
	return list, rows.Err()
}

func (r *PhaseRepo) listPrintings(ctx context.Context, salesOrderID string) ([]entity.Printing, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, sales_order_id, production_plan_id, print_qty, print_information, defect_cause,
		       line_no, worker_code, created_at
		FROM printings WHERE sales_order_id = $1`, salesOrderID)
	if err != nil {
		return nil, fmt.Errorf("list printings: %w", err)
	}
	defer rows.Close()
	var list []entity.Printing
	for rows.Next() {
		var p entity.Printing
		if err := rows.Scan(&p.ID, &p.SalesOrderID, &p.PlanID, &p.PrintQty, &p.PrintInformation, &p.DefectCause,
			&p.LineNo, &p.WorkerCode, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan printing: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PhaseRepo) CreateDryMix(ctx context.Context, m *entity.DryMix) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dry_mixes (id, production_plan_id, mixing_information, worker_code, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.PlanID, m.MixingInformation, m.WorkerCode, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dry_mix: %w", err)
	}
	return nil
}

func (r *PhaseRepo) CreateDryLine(ctx context.Context, d *entity.DryLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO dry_lines (id, production_plan_id, pd_qty, pd_information, line_no, ag_position, pd_lot, worker_code, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $9)`,
		d.ID, d.PlanID, d.PdQty, d.PdInformation, d.LineNo, d.AgPosition, d.PdLot, d.WorkerCode, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dry_line: %w", err)
	}
	return nil
}

func (r *PhaseRepo) CreateDelamination(ctx context.Context, d *entity.Delamination) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delaminations (id, production_plan_id, dlami_qty, dlami_information, line_no, dlami_lot, worker_code, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $8)`,
		d.ID, d.PlanID, d.DlamiQty, d.DlamiInformation, d.LineNo, d.DlamiLot, d.WorkerCode, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delamination: %w", err)
	}
	return nil
}

func (r *PhaseRepo) CreateInspection(ctx context.Context, i *entity.Inspection) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inspections (id, sales_order_id, production_plan_id, ins_qty, ins_information, qty_to_printing, line_no, position, worker_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		i.ID, i.SalesOrderID, i.PlanID, i.InsQty, i.InsInformation, i.QtyToPrinting, i.LineNo, i.Position, i.WorkerCode, i.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert inspection: %w", err)
	}
	return nil
}

func (r *PhaseRepo) CreatePrinting(ctx context.Context, p *entity.Printing) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO printings (id, sales_order_id, production_plan_id, print_qty, print_information, defect_cause, line_no, worker_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.SalesOrderID, p.PlanID, p.PrintQty, p.PrintInformation, p.DefectCause, p.LineNo, p.WorkerCode, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert printing: %w", err)
	}
	return nil
}

// lineTable columnas de cada tabla de etapa con línea física.
type lineTable struct {
	table string
	qty   string
	lot   string
	aging string // expresión; NULL en deslaminado
	open  string
}

func lineTableFor(stage entity.LineStage) (lineTable, error) {
	switch stage {
	case entity.LineStageDryLine:
		return lineTable{"dry_lines", "pd_qty", "pd_lot", "t.ag_position", "t.pd_lot IS NULL AND t.ag_position IS NULL"}, nil
	case entity.LineStageDelamination:
		return lineTable{"delaminations", "dlami_qty", "dlami_lot", "NULL::varchar", "t.dlami_lot IS NULL"}, nil
	}
	return lineTable{}, fmt.Errorf("etapa %q: %w", stage, domain.ErrInvalidInput)
}

func (lt lineTable) selectSQL() string {
	return fmt.Sprintf(`
		SELECT t.id, p.sales_order_id, s.order_no, t.production_plan_id, t.line_no,
		       t.%s, t.%s, %s, t.version, t.created_at
		FROM %s t
		JOIN production_plans p ON p.id = t.production_plan_id
		JOIN sales_orders s ON s.id = p.sales_order_id`, lt.qty, lt.lot, lt.aging, lt.table)
}

func scanLineRecord(row pgx.Row, stage entity.LineStage) (*entity.LineRecord, error) {
	rec := entity.LineRecord{Stage: stage}
	if err := row.Scan(&rec.ID, &rec.SalesOrderID, &rec.OrderNo, &rec.PlanID, &rec.LineNo,
		&rec.Qty, &rec.Lot, &rec.AgingPosition, &rec.Version, &rec.CreatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PhaseRepo) LatestOpenOnLine(ctx context.Context, stage entity.LineStage, lineNo string) (*entity.LineRecord, error) {
	lt, err := lineTableFor(stage)
	if err != nil {
		return nil, err
	}
	q := lt.selectSQL() + ` WHERE lower(t.line_no) = lower($1) AND ` + lt.open + ` ORDER BY t.created_at DESC, t.id DESC LIMIT 1`
	rec, err := scanLineRecord(r.q.QueryRow(ctx, q, lineNo), stage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("latest open %s: %w", lt.table, err)
	}
	return rec, nil
}

func (r *PhaseRepo) LatestForOrder(ctx context.Context, stage entity.LineStage, salesOrderID string) (*entity.LineRecord, error) {
	lt, err := lineTableFor(stage)
	if err != nil {
		return nil, err
	}
	q := lt.selectSQL() + ` WHERE p.sales_order_id = $1 ORDER BY t.created_at DESC, t.id DESC LIMIT 1`
	rec, err := scanLineRecord(r.q.QueryRow(ctx, q, salesOrderID), stage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("latest %s for order: %w", lt.table, err)
	}
	return rec, nil
}

func (r *PhaseRepo) ListOnLineBetween(ctx context.Context, stage entity.LineStage, lineNo string, from, to time.Time) ([]entity.LineRecord, error) {
	lt, err := lineTableFor(stage)
	if err != nil {
		return nil, err
	}
	q := lt.selectSQL() + ` WHERE lower(t.line_no) = lower($1) AND t.created_at BETWEEN $2 AND $3 ORDER BY t.created_at`
	rows, err := r.q.Query(ctx, q, lineNo, from, to)
	if err != nil {
		return nil, fmt.Errorf("list %s between: %w", lt.table, err)
	}
	defer rows.Close()
	var list []entity.LineRecord
	for rows.Next() {
		rec, err := scanLineRecord(rows, stage)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", lt.table, err)
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

// UpdateLineRecord es un compare-and-swap sobre version.
func (r *PhaseRepo) UpdateLineRecord(ctx context.Context, rec *entity.LineRecord) error {
	var (
		cmd pgconn.CommandTag
		err error
	)
	switch rec.Stage {
	case entity.LineStageDryLine:
		cmd, err = r.q.Exec(ctx, `
			UPDATE dry_lines SET pd_qty = $2, pd_lot = $3, ag_position = $4, version = version + 1, updated_at = now()
			WHERE id = $1 AND version = $5`,
			rec.ID, rec.Qty, rec.Lot, rec.AgingPosition, rec.Version)
	case entity.LineStageDelamination:
		cmd, err = r.q.Exec(ctx, `
			UPDATE delaminations SET dlami_qty = $2, dlami_lot = $3, version = version + 1, updated_at = now()
			WHERE id = $1 AND version = $4`,
			rec.ID, rec.Qty, rec.Lot, rec.Version)
	default:
		return fmt.Errorf("etapa %q: %w", rec.Stage, domain.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("update %s record: %w", rec.Stage, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	rec.Version++
	return nil
}
