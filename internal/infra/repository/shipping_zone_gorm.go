package repository

import (
	"context"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShippingZoneGormRepository struct {
	db *gorm.DB
}

// DI
func NewShippingZoneGormRepository(db *gorm.DB) *ShippingZoneGormRepository {
	return &ShippingZoneGormRepository{db: db}
}

func (r *ShippingZoneGormRepository) activeAreas(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.ShippingZoneArea{}).
		Joins("JOIN shipping_zones ON shipping_zones.id = shipping_zone_areas.zone_id AND shipping_zones.is_active = ?", true).
		Preload("Zone")
}

func (r *ShippingZoneGormRepository) FindAreasByCounty(ctx context.Context, county string) ([]model.ShippingZoneArea, error) {
	var areas []model.ShippingZoneArea
	err := r.activeAreas(ctx).
		Where("LOWER(shipping_zone_areas.county) = ?", strings.ToLower(county)).
		Order("shipping_zone_areas.id asc").
		Find(&areas).Error
	if err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *ShippingZoneGormRepository) FindAreasByTownArea(ctx context.Context, townArea string) ([]model.ShippingZoneArea, error) {
	var areas []model.ShippingZoneArea
	err := r.activeAreas(ctx).
		Where("LOWER(shipping_zone_areas.town_area) = ?", strings.ToLower(townArea)).
		Order("shipping_zone_areas.id asc").
		Find(&areas).Error
	if err != nil {
		return nil, err
	}
	return areas, nil
}

func (r *ShippingZoneGormRepository) FindByID(ctx context.Context, zoneID int64) (model.ShippingZone, error) {
	var z model.ShippingZone
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", zoneID, true).
		First(&z).Error
	if err != nil {
		return model.ShippingZone{}, translate(err)
	}
	return z, nil
}

func (r *ShippingZoneGormRepository) FindDefault(ctx context.Context) (model.ShippingZone, error) {
	var z model.ShippingZone
	err := r.db.WithContext(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		Order("id asc").
		First(&z).Error
	if err != nil {
		return model.ShippingZone{}, translate(err)
	}
	return z, nil
}

func (r *ShippingZoneGormRepository) ListActive(ctx context.Context) ([]model.ShippingZone, error) {
	var zones []model.ShippingZone
	err := r.db.WithContext(ctx).
		Preload("Areas", func(db *gorm.DB) *gorm.DB {
			return db.Order("county asc, town_area asc")
		}).
		Where("is_active = ?", true).
		Order("cost asc, name asc").
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}

// 名前で突き合わせ、既存ゾーンは料金と有効フラグを上書きする
var zoneUpsert = clause.OnConflict{
	Columns:   []clause.Column{{Name: "name"}},
	DoUpdates: clause.AssignmentColumns([]string{"cost", "min_order_amount", "delivery_days", "is_active", "is_default", "updated_at"}),
}

func insertZone(tx *gorm.DB, zone *model.ShippingZone) *gorm.DB {
	return tx.Clauses(zoneUpsert).Create(zone)
}

func (r *ShippingZoneGormRepository) UpsertZone(ctx context.Context, zone model.ShippingZone) (model.ShippingZone, error) {
	areas := zone.Areas
	zone.Areas = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insertZone(tx, &zone).Error; err != nil {
			return err
		}

		// 競合時はupsertがidを返さないことがあるので取り直す
		if err := tx.Where("name = ?", zone.Name).First(&zone).Error; err != nil {
			return err
		}

		if err := tx.Where("zone_id = ?", zone.ID).Delete(&model.ShippingZoneArea{}).Error; err != nil {
			return err
		}
		for i := range areas {
			areas[i].ID = 0
			areas[i].ZoneID = zone.ID
		}
		if len(areas) > 0 {
			if err := tx.Omit("Zone").Create(&areas).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.ShippingZone{}, err
	}
	zone.Areas = areas
	return zone, nil
}
