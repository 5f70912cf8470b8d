package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderpost/backend/internal/domain/shared"
)

// CashbackType determines how loyalty cashback is computed for a nomenclature
type CashbackType string

const (
	// CashbackNone disables cashback for the nomenclature
	CashbackNone CashbackType = "no_cashback"
	// CashbackPercent accrues a percentage of the line amount, scaled by the cash share
	CashbackPercent CashbackType = "percent"
	// CashbackConst accrues a fixed amount per unit sold, regardless of payment split
	CashbackConst CashbackType = "const"
	// CashbackCard accrues the loyalty card's own percentage, scaled by the cash share.
	// This is also the fallback for unknown values.
	CashbackCard CashbackType = "lcard_cashback"
)

// String returns the string representation of CashbackType
func (c CashbackType) String() string {
	return string(c)
}

// PhysicalType classifies a nomenclature by what it physically is
type PhysicalType string

const (
	PhysicalTypeProduct  PhysicalType = "product"
	PhysicalTypeProperty PhysicalType = "property"
	PhysicalTypeService  PhysicalType = "service"
)

// Tracked reports whether stock balances are maintained for this type.
// Intangible types never touch the warehouse ledger.
func (p PhysicalType) Tracked() bool {
	return p == PhysicalTypeProduct || p == PhysicalTypeProperty
}

// Nomenclature is the catalog entry a sales order line refers to.
// The posting engine only reads it; catalog management lives elsewhere.
type Nomenclature struct {
	shared.BaseEntity
	Name          string          `gorm:"type:varchar(255);not null"`
	Code          string          `gorm:"type:varchar(50)"`
	PhysicalType  PhysicalType    `gorm:"type:varchar(20);not null;default:'product'"`
	CashbackType  CashbackType    `gorm:"type:varchar(20);not null;default:'no_cashback'"`
	CashbackValue decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Nomenclature) TableName() string {
	return "nomenclatures"
}

// NomenclatureReader provides read access to nomenclatures for posting
type NomenclatureReader interface {
	// Get returns a single nomenclature by ID
	Get(ctx context.Context, id uuid.UUID) (*Nomenclature, error)
	// GetBatch returns nomenclatures for the given IDs keyed by ID
	GetBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Nomenclature, error)
}
