package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/sales"
)

// refTables maps each reference kind to the table holding it
var refTables = map[sales.RefKind]string{
	sales.RefOrganization: "organizations",
	sales.RefContragent:   "contragents",
	sales.RefContract:     "contracts",
	sales.RefWarehouse:    "warehouses",
	sales.RefSalesManager: "sales_managers",
	sales.RefLoyaltyCard:  "loyalty_cards",
	sales.RefNomenclature: "nomenclatures",
	sales.RefUnit:         "units",
	sales.RefPriceType:    "price_types",
}

// GormReferenceChecker implements ReferenceChecker using GORM.
// One bulk existence query per kind.
type GormReferenceChecker struct {
	db *gorm.DB
}

var _ sales.ReferenceChecker = (*GormReferenceChecker)(nil)

// NewGormReferenceChecker creates a new GormReferenceChecker
func NewGormReferenceChecker(db *gorm.DB) *GormReferenceChecker {
	return &GormReferenceChecker{db: db}
}

// MissingIDs returns the subset of ids that do not exist for the kind
func (r *GormReferenceChecker) MissingIDs(ctx context.Context, kind sales.RefKind, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	table, ok := refTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}

	var found []uuid.UUID
	if err := r.db.WithContext(ctx).
		Table(table).
		Where("id IN ?", ids).
		Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	existing := make(map[uuid.UUID]struct{}, len(found))
	for _, id := range found {
		existing[id] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
