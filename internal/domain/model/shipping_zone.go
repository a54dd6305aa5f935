package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 同じ送料を共有するcounty/townのまとまり。
// MinOrderAmountが0ならそのゾーンは送料無料なし
type ShippingZone struct {
	ID             int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string             `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Cost           decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"cost"`
	MinOrderAmount decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"min_order_amount"`
	DeliveryDays   string             `gorm:"type:varchar(20)" json:"delivery_days"`
	IsActive       bool               `gorm:"not null" json:"is_active"`
	IsDefault      bool               `gorm:"not null;default:false" json:"is_default"`
	Areas          []ShippingZoneArea `gorm:"foreignKey:ZoneID" json:"areas,omitempty"`
	CreatedAt      time.Time          `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// TownAreaが空ならcounty全体
type ShippingZoneArea struct {
	ID       int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ZoneID   int64        `gorm:"not null;index" json:"zone_id"`
	County   string       `gorm:"type:varchar(100);not null;index" json:"county"`
	TownArea string       `gorm:"type:varchar(150);index" json:"town_area"`
	Zone     ShippingZone `gorm:"foreignKey:ZoneID" json:"-"`
}

// 小計が送料無料の基準に届いているか
func (z ShippingZone) FreeFor(subtotal decimal.Decimal) bool {
	return z.MinOrderAmount.GreaterThan(decimal.Zero) && subtotal.GreaterThanOrEqual(z.MinOrderAmount)
}
