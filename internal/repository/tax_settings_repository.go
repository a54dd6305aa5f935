package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
)

type TaxSettingsRepository interface {
	// 行が無ければエラーではなく無効の設定を返す
	Get(ctx context.Context) (model.TaxSettings, error)
	Save(ctx context.Context, s model.TaxSettings) error
}
