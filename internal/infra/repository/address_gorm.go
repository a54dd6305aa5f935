package repository

import (
	"context"
	"errors"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"gorm.io/gorm"
)

// 利用者が編集できる列。user_id と is_default は入力から受け取らない
var addressEditable = []string{
	"full_name", "phone", "email",
	"address_line1", "address_line2", "city", "state", "postal_code", "country", "county",
	"updated_at",
}

type addressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) repo.AddressRepository {
	return &addressGormRepository{db: db}
}

func ownedBy(userID int64) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) }
}

// 0件更新は「対象がない」としてErrNotFoundにする
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *addressGormRepository) first(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).Scopes(scopes...).Order("id").First(&a).Error; err != nil {
		return model.Address{}, translate(err)
	}
	return a, nil
}

func byAddressID(id int64) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) }
}

// 住所を作成
func (r *addressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	if err := r.db.WithContext(ctx).Create(&address).Error; err != nil {
		return model.Address{}, translate(err)
	}
	return address, nil
}

// ユーザーの住所一覧を返す（デフォルトが先頭）
func (r *addressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var list []model.Address
	err := r.db.WithContext(ctx).Scopes(ownedBy(userID)).Order("is_default DESC, id ASC").Find(&list).Error
	return list, err
}

func (r *addressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	return r.first(ctx, byAddressID(addressID))
}

// 住所IDで1件取得。他人の住所はErrNotFound
func (r *addressGormRepository) FindByIDAndUser(ctx context.Context, addressID, userID int64) (model.Address, error) {
	return r.first(ctx, byAddressID(addressID), ownedBy(userID))
}

func (r *addressGormRepository) FindDefault(ctx context.Context, userID int64) (model.Address, error) {
	isDefault := func(q *gorm.DB) *gorm.DB { return q.Where("is_default = TRUE") }
	return r.first(ctx, ownedBy(userID), isDefault)
}

// 住所を更新
func (r *addressGormRepository) Update(ctx context.Context, address model.Address) error {
	return affected(r.db.WithContext(ctx).
		Model(&model.Address{ID: address.ID}).
		Select(addressEditable).
		Updates(address))
}

// 住所を削除
func (r *addressGormRepository) Delete(ctx context.Context, addressID int64) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Address{}, addressID))
}

// その住所がそのユーザーのものか
func (r *addressGormRepository) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	_, err := r.FindByIDAndUser(ctx, addressID, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// デフォルト住所を切り替える。1文で全件を更新するので、デフォルトは必ず1件になる
func (r *addressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//指定住所がこのユーザーのものか確認
		if err := tx.Scopes(byAddressID(addressID), ownedBy(userID)).First(&model.Address{}).Error; err != nil {
			return translate(err)
		}
		//指定住所だけ true、それ以外は false
		return tx.Model(&model.Address{}).
			Scopes(ownedBy(userID)).
			Update("is_default", gorm.Expr("id = ?", addressID)).Error
	})
}
