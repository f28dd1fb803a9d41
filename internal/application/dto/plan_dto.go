package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// UpsertPlanRequest planificación de una orden para una fecha. PlanDate en formato 2006-01-02.
type UpsertPlanRequest struct {
	OrderNo       string          `json:"order_no"`
	PlanDate      string          `json:"plan_date"`
	PlanNo        string          `json:"plan_no"`
	PlanQty       decimal.Decimal `json:"plan_qty"`
	PdLine        string          `json:"pd_line"`
	ItemGroup     string          `json:"item_group"`
	PdInformation json.RawMessage `json:"pd_information"`
}

// PlanResponse plan guardado.
type PlanResponse struct {
	ID            string          `json:"id"`
	SalesOrderID  string          `json:"sales_order_id"`
	OrderNo       string          `json:"order_no"`
	PlanDate      string          `json:"plan_date"`
	PlanNo        string          `json:"plan_no"`
	PlanQty       decimal.Decimal `json:"plan_qty"`
	PdLine        string          `json:"pd_line"`
	ItemGroup     string          `json:"item_group"`
	PdInformation json.RawMessage `json:"pd_information,omitempty"`
	Created       bool            `json:"created"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
