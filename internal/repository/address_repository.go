package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, address model.Address) (model.Address, error)
	//ユーザーが持つ住所一覧を返す（デフォルトが先頭）
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	//持ち主に絞って1件取得。他人の住所はErrNotFound
	FindByIDAndUser(ctx context.Context, addressID, userID int64) (model.Address, error)
	FindDefault(ctx context.Context, userID int64) (model.Address, error)
	Update(ctx context.Context, address model.Address) error
	Delete(ctx context.Context, addressID int64) error
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)
	//デフォルト住所の切り替え。ユーザーごとに必ず1件
	SetDefault(ctx context.Context, userID, addressID int64) error
}
