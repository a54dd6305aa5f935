package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "mpesa"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodCash  PaymentMethod = "cash"
)

// ストアが扱う支払い方法だけを受け付ける
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodMpesa, PaymentMethodCard, PaymentMethodCash:
		return m, true
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// 注文は金額確定時のスナップショット。後でゾーン・税・住所が変わっても影響しない
type Order struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber       string          `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	UserID            int64           `gorm:"not null;index" json:"user_id"`
	ShippingAddressID *int64          `json:"shipping_address_id,omitempty"`
	ShippingAddress   string          `gorm:"type:text;not null" json:"shipping_address"`
	BillingAddress    string          `gorm:"type:text;not null" json:"billing_address"`
	CustomerName      string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerEmail     string          `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone     string          `gorm:"type:varchar(30)" json:"customer_phone"`
	ShippingCounty    string          `gorm:"type:varchar(100)" json:"shipping_county"`
	ShippingTownArea  string          `gorm:"type:varchar(150)" json:"shipping_town_area"`
	ShippingZoneID    *int64          `json:"shipping_zone_id,omitempty"`
	ShippingCost      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_cost"`
	ShippingMessage   string          `gorm:"type:varchar(255)" json:"shipping_message"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxEnabled        bool            `gorm:"not null;default:false" json:"tax_enabled"`
	TaxRate           decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax_amount"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(20);not null" json:"payment_status"`
	IdempotencyKey    *string         `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
