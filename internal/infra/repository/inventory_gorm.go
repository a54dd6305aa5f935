package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

func (r *InventoryGormRepository) SetStock(ctx context.Context, productID int64, variantID *int64, newStock int64) error {
	q := r.db.WithContext(ctx)
	if variantID != nil {
		q = q.Model(&model.ProductVariant{}).Where("id = ? AND product_id = ?", *variantID, productID)
	} else {
		q = q.Model(&model.Product{}).Where("id = ?", productID)
	}

	res := q.Update("stock", newStock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減算。判定と更新をWHERE付きの1文で行うので、
// 同時のチェックアウトでも売り越さない
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, productID int64, variantID *int64, qty int64) (bool, error) {
	if variantID != nil {
		res := r.db.WithContext(ctx).
			Model(&model.ProductVariant{}).
			Where("id = ? AND product_id = ? AND stock >= ?", *variantID, productID, qty).
			Updates(map[string]interface{}{
				"stock":      gorm.Expr("stock - ?", qty),
				"sold_count": gorm.Expr("sold_count + ?", qty),
			})
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected == 0 {
			return false, nil
		}

		// 商品側のsold_countはバリアント分も数える
		if err := r.db.WithContext(ctx).
			Model(&model.Product{}).
			Where("id = ?", productID).
			Update("sold_count", gorm.Expr("sold_count + ?", qty)).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"sold_count": gorm.Expr("sold_count + ?", qty),
		})

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, productID int64, variantID *int64, qty int64) error {
	back := map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", qty),
		"sold_count": gorm.Expr("GREATEST(sold_count - ?, 0)", qty),
	}

	if variantID != nil {
		res := r.db.WithContext(ctx).
			Model(&model.ProductVariant{}).
			Where("id = ? AND product_id = ?", *variantID, productID).
			Updates(back)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return r.db.WithContext(ctx).
			Model(&model.Product{}).
			Where("id = ?", productID).
			Update("sold_count", gorm.Expr("GREATEST(sold_count - ?, 0)", qty)).Error
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(back)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.db.WithContext(ctx).Create(&adj).Error
}
