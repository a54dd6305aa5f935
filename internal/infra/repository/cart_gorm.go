package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func activeCartOf(userID int64) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND status = ?", userID, model.CartStatusActive).Order("id desc")
	}
}

// ユーザーのACTIVEカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(activeCartOf(userID)).First(&cart).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		cart = model.Cart{UserID: userID, Status: model.CartStatusActive}
		if createErr := tx.Create(&cart).Error; createErr != nil {
			// 同時リクエストが先に作っている場合がある
			if tx.Scopes(activeCartOf(userID)).First(&cart).Error == nil {
				return nil
			}
			return createErr
		}
		return nil
	})
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart
	if err := r.db.WithContext(ctx).Scopes(activeCartOf(userID)).First(&cart).Error; err != nil {
		return model.Cart{}, translate(err)
	}
	return cart, nil
}

func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	return affected(r.db.WithContext(ctx).Model(&model.Cart{ID: cartID}).Update("status", status))
}

func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart model.Cart
		if err := tx.Where("id = ?", cartID).First(&cart).Error; err != nil {
			return translate(err)
		}
		return tx.Where("cart_id = ?", cartID).Delete(&model.CartLine{}).Error
	})
}

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// カート明細を一覧取得
func (r *CartLineGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}
	return lines, nil
}

// 同一キーは数量加算。上限は行ロック中に加算後の数量で判定するので、
// 弾かれた追加は明細を変えない
func (r *CartLineGormRepository) UpsertLine(ctx context.Context, cartID int64, line model.CartLine, maxQty int64) (model.CartLine, error) {
	if line.Quantity <= 0 {
		return model.CartLine{}, errors.New("invalid quantity")
	}

	var out model.CartLine
	err := retryOnDuplicate(func() error {
		var err error
		out, err = r.upsertOnce(ctx, cartID, line, maxQty)
		return err
	})
	return out, err
}

// retryOnDuplicate は一意制約違反のときだけ fn をもう一度だけ実行する。
// 同じ行への初回追加が競合した場合、2回目はロック付きの加算経路に入る。
func retryOnDuplicate(fn func() error) error {
	err := fn()
	if errors.Is(err, repo.ErrDuplicate) {
		err = fn()
	}
	return err
}

func (r *CartLineGormRepository) upsertOnce(ctx context.Context, cartID int64, line model.CartLine, maxQty int64) (model.CartLine, error) {
	var out model.CartLine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND line_key = ?", cartID, line.LineKey).
			First(&existing).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			newQty := existing.Quantity + line.Quantity
			if newQty > maxQty {
				return repo.ErrStockLimit
			}

			res := tx.Model(&model.CartLine{}).
				Where("id = ?", existing.ID).
				Updates(map[string]interface{}{
					"quantity":   newQty,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			existing.Quantity = newQty
			out = existing
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if line.Quantity > maxQty {
			return repo.ErrStockLimit
		}

		//無い場合は新規作成
		now := time.Now()
		line.ID = 0
		line.CartID = cartID
		line.AddedAt = now
		line.UpdatedAt = now
		if err := tx.Create(&line).Error; err != nil {
			return translate(err)
		}
		out = line
		return nil
	})
	if err != nil {
		return model.CartLine{}, err
	}
	return out, nil
}

// 明細の数量を更新
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	return affected(r.db.WithContext(ctx).Model(&model.CartLine{ID: lineID}).Updates(map[string]interface{}{
		"quantity":   qty,
		"updated_at": time.Now(),
	}))
}

// 明細を削除
func (r *CartLineGormRepository) DeleteByID(ctx context.Context, lineID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.CartLine{}, lineID))
}

// 明細を取得
func (r *CartLineGormRepository) FindByID(ctx context.Context, lineID int64) (model.CartLine, error) {
	var line model.CartLine
	if err := r.db.WithContext(ctx).First(&line, lineID).Error; err != nil {
		return model.CartLine{}, translate(err)
	}
	return line, nil
}

// 明細が、そのuserのカートに属しているかを判定（カートの状態は問わない）
func (r *CartLineGormRepository) IsOwnedByUser(ctx context.Context, lineID int64, userID int64) (bool, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Joins("JOIN carts ON carts.id = cart_lines.cart_id").
		Where("cart_lines.id = ? AND carts.user_id = ?", lineID, userID).
		Limit(1).
		Pluck("cart_lines.id", &ids).Error
	return len(ids) > 0, err
}
