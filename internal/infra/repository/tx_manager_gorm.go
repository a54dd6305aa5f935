package repository

import (
	"context"

	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"gorm.io/gorm"
)

// 開いているトランザクションに紐づいたrepositoryを渡す
type txRepos struct {
	tx *gorm.DB
}

func (r txRepos) Orders() repo.OrderRepository         { return NewOrderGormRepository(r.tx) }
func (r txRepos) OrderItems() repo.OrderItemRepository { return NewOrderItemGormRepository(r.tx) }
func (r txRepos) Inventory() repo.InventoryRepository  { return NewInventoryGormRepository(r.tx) }
func (r txRepos) Products() repo.ProductRepository     { return NewProductGormRepository(r.tx) }
func (r txRepos) Addresses() repo.AddressRepository    { return NewAddressGormRepository(r.tx) }

// Usecaseからcommit/rollbackを隠す
type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがnilを返せばcommit、エラーかpanicならrollback
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(txRepos{tx: tx})
	})
}
