package repository

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 100
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// id降順でページング。pageは1始まり
func newestFirst(page, limit int) func(*gorm.DB) *gorm.DB {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxOrderPageSize {
		limit = defaultOrderPageSize
	}
	return func(q *gorm.DB) *gorm.DB {
		return q.Order("id desc").Limit(limit).Offset((page - 1) * limit)
	}
}

func adminFilter(f repo.AdminOrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.Status != "" {
			q = q.Where("status = ?", f.Status)
		}
		if f.UserID != nil {
			q = q.Where("user_id = ?", *f.UserID)
		}
		if f.From != nil {
			q = q.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			q = q.Where("created_at <= ?", *f.To)
		}
		return q
	}
}

// 同じ条件で total（件数）とページ分の取得を行う
func (r *OrderGormRepository) countAndPage(ctx context.Context, filter, page func(*gorm.DB) *gorm.DB) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(filter).Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}
	if total == 0 {
		return []model.Order{}, 0, nil
	}

	var orders []model.Order
	if err := r.db.WithContext(ctx).Scopes(filter, page).Find(&orders).Error; err != nil {
		return []model.Order{}, 0, err
	}
	return orders, total, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, orderID).Error; err != nil {
		return model.Order{}, translate(err)
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	byUser := func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) }
	return r.countAndPage(ctx, byUser, newestFirst(page, limit))
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	return r.countAndPage(ctx, adminFilter(f), newestFirst(f.Page, f.Limit))
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{ID: orderID}).Update("status", status)
	switch {
	case res.Error != nil:
		return res.Error
	case res.RowsAffected == 0:
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var hit []int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_number = ?", orderNumber).
		Limit(1).
		Pluck("id", &hit).Error
	return len(hit) > 0, err
}

// 検索（同じキーなら同じ注文を返す）
func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		Limit(1).
		Find(&orders).Error
	if err != nil || len(orders) == 0 {
		return model.Order{}, false, err
	}
	return orders[0], true, nil
}
