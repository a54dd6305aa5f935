package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	// 指定カートの明細を全削除
	Clear(ctx context.Context, cartID int64) error
}

type CartLineRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartLine, error)
	// 同一キーは数量加算、無ければ新規作成。
	// 結果がmaxQtyを超えるならErrStockLimitで、何も変えない
	UpsertLine(ctx context.Context, cartID int64, line model.CartLine, maxQty int64) (model.CartLine, error)
	UpdateQuantity(ctx context.Context, lineID int64, qty int64) error
	DeleteByID(ctx context.Context, lineID int64) error
	FindByID(ctx context.Context, lineID int64) (model.CartLine, error)
	IsOwnedByUser(ctx context.Context, lineID int64, userID int64) (bool, error)
}
