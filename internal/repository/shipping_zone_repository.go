package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
)

// 配送ゾーンの取得・保存の約束。検索は有効なゾーンだけで、大文字小文字は区別しない
type ShippingZoneRepository interface {
	FindAreasByCounty(ctx context.Context, county string) ([]model.ShippingZoneArea, error)
	FindAreasByTownArea(ctx context.Context, townArea string) ([]model.ShippingZoneArea, error)
	FindByID(ctx context.Context, zoneID int64) (model.ShippingZone, error)
	FindDefault(ctx context.Context) (model.ShippingZone, error)
	ListActive(ctx context.Context) ([]model.ShippingZone, error)
	// 同名のゾーンを上書きし、エリアを入れ替える
	UpsertZone(ctx context.Context, zone model.ShippingZone) (model.ShippingZone, error)
}
