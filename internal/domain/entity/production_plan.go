package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ProductionPlan es la planificación de una orden para una fecha y línea.
// Una orden puede tener varios planes (re-planificaciones); el vigente es el de CreatedAt más reciente.
type ProductionPlan struct {
	ID            string
	SalesOrderID  string
	PlanDate      time.Time
	PlanNo        string
	PlanQty       decimal.Decimal
	PdLine        string
	ItemGroup     string
	PdInformation json.RawMessage // base, skin_resin, binder_resin, rp_qty, plan_remark
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
