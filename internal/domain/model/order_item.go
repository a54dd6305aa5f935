package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID     int64           `gorm:"not null;index" json:"order_id"`
	ProductID   int64           `gorm:"not null;index" json:"product_id"`
	VariantID   *int64          `gorm:"index" json:"variant_id,omitempty"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	SKU         string          `gorm:"type:varchar(64)" json:"sku"`
	Quantity    int64           `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
	Size        string          `gorm:"type:varchar(50)" json:"size,omitempty"`
	Color       string          `gorm:"type:varchar(50)" json:"color,omitempty"`
	Material    string          `gorm:"type:varchar(100)" json:"material,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
