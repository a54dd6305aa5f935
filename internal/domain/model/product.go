package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	SKU         string           `gorm:"type:varchar(64);index" json:"sku"`
	Description string           `gorm:"type:text" json:"description"`
	Price       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int64            `gorm:"not null" json:"stock"`
	SoldCount   int64            `gorm:"not null;default:0" json:"sold_count"`
	IsActive    bool             `gorm:"not null;default:false" json:"is_active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// 商品のサイズ/色/素材の組み合わせ。在庫はバリアントごと
type ProductVariant struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	SKU       string          `gorm:"type:varchar(64);index" json:"sku"`
	Size      string          `gorm:"type:varchar(50)" json:"size"`
	Color     string          `gorm:"type:varchar(50)" json:"color"`
	Material  string          `gorm:"type:varchar(100)" json:"material"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Stock     int64           `gorm:"not null" json:"stock"`
	SoldCount int64           `gorm:"not null;default:0" json:"sold_count"`
	IsActive  bool            `gorm:"not null" json:"is_active"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// バリアント価格があればそれを、無ければ商品価格を返す
func (p Product) UnitPrice(v *ProductVariant) decimal.Decimal {
	if v != nil && v.Price.GreaterThan(decimal.Zero) {
		return v.Price
	}
	return p.Price
}

// 空でない属性がすべてバリアントと一致するか（大文字小文字は区別しない）
func (v ProductVariant) Matches(size, color, material string) bool {
	return attrEqual(v.Size, size) && attrEqual(v.Color, color) && attrEqual(v.Material, material)
}
