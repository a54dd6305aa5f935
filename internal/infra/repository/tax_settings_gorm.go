package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"

	"gorm.io/gorm"
)

type TaxSettingsGormRepository struct {
	db *gorm.DB
}

// DI
func NewTaxSettingsGormRepository(db *gorm.DB) *TaxSettingsGormRepository {
	return &TaxSettingsGormRepository{db: db}
}

func (r *TaxSettingsGormRepository) Get(ctx context.Context) (model.TaxSettings, error) {
	var s model.TaxSettings
	err := r.db.WithContext(ctx).First(&s, model.TaxSettingsRowID).Error
	if isNotFound(err) {
		return model.TaxSettings{ID: model.TaxSettingsRowID}, nil
	}
	if err != nil {
		return model.TaxSettings{}, err
	}
	return s, nil
}

func (r *TaxSettingsGormRepository) Save(ctx context.Context, s model.TaxSettings) error {
	s.ID = model.TaxSettingsRowID
	return r.db.WithContext(ctx).Save(&s).Error
}
