// Package ordersheet importa la hoja diaria de pedidos recibidos hacia las órdenes de venta.
package ordersheet

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/bsv-mes/internal/application/dto"
	"github.com/jhoicas/bsv-mes/internal/domain"
	"github.com/jhoicas/bsv-mes/internal/domain/entity"
	"github.com/jhoicas/bsv-mes/internal/domain/repository"
	"github.com/jhoicas/bsv-mes/pkg/logger"
)

// maxErrorLogs cantidad de errores por fila que se devuelven al usuario.
const maxErrorLogs = 100

var dateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02", "01/02/2006", "1/2/06"}

// ImportUseCase importa la hoja diaria de pedidos.
type ImportUseCase struct {
	orders repository.SalesOrderRepository
	reader Reader
	loc    *time.Location
	log    *logger.Logger
	now    func() time.Time
}

func NewImportUseCase(orders repository.SalesOrderRepository, reader Reader, loc *time.Location, log *logger.Logger) *ImportUseCase {
	return &ImportUseCase{orders: orders, reader: reader, loc: loc, log: log, now: time.Now}
}

// Import procesa el archivo fila por fila. Un archivo ya importado (mismo SHA-256)
// se rechaza con domain.ErrDuplicate. Los errores de fila no abortan la importación.
func (uc *ImportUseCase) Import(ctx context.Context, userID, fileName string, data []byte) (*dto.OrderSheetResult, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	exists, err := uc.orders.UploadExists(ctx, hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("archivo %s ya importado: %w", fileName, domain.ErrDuplicate)
	}

	rows, err := uc.reader.ReadOrderSheet(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	uc.sortByReceiptDate(rows)

	res := &dto.OrderSheetResult{FileName: fileName, FileHash: hash, TotalRows: len(rows), ErrorLogs: []string{}}
	for _, row := range rows {
		outcome, err := uc.importRow(ctx, row)
		if err != nil {
			res.Errors++
			if len(res.ErrorLogs) < maxErrorLogs {
				res.ErrorLogs = append(res.ErrorLogs, fmt.Sprintf("fila %d: %v", row.Line, err))
			}
			continue
		}
		switch outcome {
		case outcomeCreated:
			res.Created++
		case outcomeReactivated:
			res.Reactivated++
		case outcomeIgnored:
			res.Ignored++
		case outcomeSkipped:
			res.Skipped++
		}
	}

	if err := uc.orders.LogUpload(ctx, &entity.SalesOrderUploadLog{
		ID:         uuid.New().String(),
		UserID:     userID,
		FileName:   fileName,
		FileHash:   hash,
		DataCount:  res.Created + res.Reactivated,
		UploadedAt: uc.now(),
	}); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("file", fileName).
		Int("rows", res.TotalRows).
		Int("created", res.Created).
		Int("reactivated", res.Reactivated).
		Int("errors", res.Errors).
		Msg("order sheet imported")
	return res, nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeReactivated
	outcomeIgnored
)

func (uc *ImportUseCase) importRow(ctx context.Context, row Row) (outcome, error) {
	orderID := strings.TrimSpace(row.SalesOrder)
	lineNo := strings.TrimSpace(row.LineNumber)
	if orderID == "" && lineNo == "" {
		return outcomeSkipped, nil
	}
	seq, err := parseInt(lineNo)
	if err != nil {
		return 0, fmt.Errorf("número de línea %q inválido", row.LineNumber)
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(row.Quantity))
	if err != nil {
		return 0, fmt.Errorf("cantidad %q inválida", row.Quantity)
	}

	orderNo := entity.BuildOrderNo(orderID, seq)
	existing, err := uc.orders.FindByOrderNo(ctx, orderNo)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}

	// cantidad cero o negativa: ajuste del sistema origen, no se aplica
	if qty.IsNegative() || qty.IsZero() {
		return outcomeIgnored, nil
	}

	order := existing
	if order == nil {
		order = &entity.SalesOrder{ID: uuid.New().String(), CreatedAt: uc.now()}
	}
	if err := uc.fill(order, row, orderID, seq, qty); err != nil {
		return 0, err
	}
	order.Status = nil
	order.UpdatedAt = uc.now()

	if existing != nil {
		if err := uc.orders.Update(ctx, order); err != nil {
			return 0, err
		}
		return outcomeReactivated, nil
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return 0, err
	}
	return outcomeCreated, nil
}

func (uc *ImportUseCase) fill(o *entity.SalesOrder, row Row, orderID string, seq int, qty decimal.Decimal) error {
	price := decimal.Zero
	if s := strings.TrimSpace(row.ShipUnitPrice); s != "" {
		p, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("precio %q inválido", row.ShipUnitPrice)
		}
		price = p
	}

	o.OrderID = orderID
	o.SeqNo = seq
	o.OrderNo = entity.BuildOrderNo(orderID, seq)
	o.CustomerOrderNo = strings.TrimSpace(row.PONumber)
	o.CustomerName = strings.TrimSpace(row.CustomerName)
	o.OrderType = strings.TrimSpace(row.SalesOrigin)
	o.OrderDate = uc.parseDate(row.ReceiptDate)
	o.RTD = uc.parseDate(row.RTD)
	o.ETD = uc.parseDate(row.ETD)
	o.Brand = strings.TrimSpace(row.BrandName)
	o.ItemName = strings.TrimSpace(row.ItemName)
	o.ColorCode = strings.TrimSpace(row.ColorCode)
	o.ColorName = strings.TrimSpace(row.ColorName)
	o.Pattern = strings.TrimSpace(row.Type)
	o.Spec = strings.TrimSpace(row.SpecName)
	o.OrderQty = qty
	o.QtyUnit = strings.TrimSpace(row.Unit)
	o.UnitPrice = price
	o.Currency = strings.TrimSpace(row.Currency)
	o.OrderRemark = strings.TrimSpace(row.ProdRemark)
	o.ModelName = strings.TrimSpace(row.ModelName)
	o.SampleStep = strings.TrimSpace(row.SampleStep)
	o.ProductionLocation = strings.TrimSpace(row.OrderToCompany)
	o.ProductGroup = strings.TrimSpace(row.ProdGroup)
	o.ProductType = strings.TrimSpace(row.CustomNo)
	return nil
}

// parseDate nil si la celda está vacía o no tiene un formato conocido.
func (uc *ImportUseCase) parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, uc.loc); err == nil {
			return &t
		}
	}
	return nil
}

// sortByReceiptDate orden estable ascendente; las filas sin fecha van al final.
func (uc *ImportUseCase) sortByReceiptDate(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := uc.parseDate(rows[i].ReceiptDate), uc.parseDate(rows[j].ReceiptDate)
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
}

// parseInt acepta "3" y "3.0" (celdas numéricas exportadas como texto).
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return 0, domain.ErrInvalidInput
	}
	return int(d.IntPart()), nil
}
