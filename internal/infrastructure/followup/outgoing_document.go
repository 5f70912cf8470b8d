package followup

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	appsales "github.com/orderpost/backend/internal/application/sales"
)

// OutgoingDocument is the warehouse goods-issue document generated for a
// posted order. The warehouse service fills in picker assignments and
// shipment details later; posting only creates the stub row.
type OutgoingDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status      string    `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (OutgoingDocument) TableName() string {
	return "warehouse_outgoing_documents"
}

// GormOutgoingDocumentCreator implements OutgoingDocumentCreator using GORM
type GormOutgoingDocumentCreator struct {
	db *gorm.DB
}

var _ appsales.OutgoingDocumentCreator = (*GormOutgoingDocumentCreator)(nil)

// NewGormOutgoingDocumentCreator creates a new GormOutgoingDocumentCreator
func NewGormOutgoingDocumentCreator(db *gorm.DB) *GormOutgoingDocumentCreator {
	return &GormOutgoingDocumentCreator{db: db}
}

// CreateOutgoingDocument creates the goods-issue stub for the order. The
// unique index on order_id makes redelivered events harmless.
func (c *GormOutgoingDocumentCreator) CreateOutgoingDocument(ctx context.Context, orderID, warehouseID uuid.UUID) error {
	now := time.Now()
	doc := &OutgoingDocument{
		ID:          uuid.New(),
		OrderID:     orderID,
		WarehouseID: warehouseID,
		Status:      "draft",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := c.db.WithContext(ctx).Create(doc).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil
	}
	return err
}
