package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
)

// variantIDがnilなら商品単位の在庫が対象
type InventoryRepository interface {
	SetStock(ctx context.Context, productID int64, variantID *int64, newStock int64) error

	// 在庫が足りるときだけ減算し、sold_countを増やす。
	// falseは在庫不足で更新されなかったこと
	DecreaseStockIfEnough(ctx context.Context, productID int64, variantID *int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, variantID *int64, qty int64) error

	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
