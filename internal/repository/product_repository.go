package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (model.Product, error)
	// 有効なバリアント付きで商品を取得
	FindWithVariants(ctx context.Context, id int64) (model.Product, error)
	FindVariant(ctx context.Context, productID, variantID int64) (model.ProductVariant, error)
	ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)
}
