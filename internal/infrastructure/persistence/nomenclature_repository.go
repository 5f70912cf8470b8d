package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderpost/backend/internal/domain/catalog"
	"github.com/orderpost/backend/internal/domain/shared"
)

// GormNomenclatureReader implements NomenclatureReader using GORM
type GormNomenclatureReader struct {
	db *gorm.DB
}

var _ catalog.NomenclatureReader = (*GormNomenclatureReader)(nil)

// NewGormNomenclatureReader creates a new GormNomenclatureReader
func NewGormNomenclatureReader(db *gorm.DB) *GormNomenclatureReader {
	return &GormNomenclatureReader{db: db}
}

// Get returns a single nomenclature by ID
func (r *GormNomenclatureReader) Get(ctx context.Context, id uuid.UUID) (*catalog.Nomenclature, error) {
	var nom catalog.Nomenclature
	if err := r.db.WithContext(ctx).First(&nom, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &nom, nil
}

// GetBatch returns nomenclatures for the given IDs keyed by ID
func (r *GormNomenclatureReader) GetBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Nomenclature, error) {
	result := make(map[uuid.UUID]*catalog.Nomenclature, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var noms []catalog.Nomenclature
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&noms).Error; err != nil {
		return nil, err
	}
	for i := range noms {
		result[noms[i].ID] = &noms[i]
	}
	return result, nil
}
