package usecase

import (
	"context"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"

	"github.com/shopspring/decimal"
)

// アプリ内通知を記録する。失敗しても注文は止めない
type NotificationSink interface {
	CreatePaymentNotification(ctx context.Context, orderID int64, orderNumber string, status model.PaymentStatus, method model.PaymentMethod, amount decimal.Decimal) error
	CreateOrderNotification(ctx context.Context, orderID int64, orderNumber string, customerName string) error
	Create(ctx context.Context, userID int64, typ model.NotificationType, title, message, link string) error
}

// 注文確認メールを送る。エラーなしのfalseは受け付けられなかったこと
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order OrderEmail, email string, name string) (bool, error)
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

type OrderEmailItem struct {
	Name      string
	SKU       string
	Options   string
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

type OrderEmail struct {
	OrderID         int64
	OrderNumber     string
	PlacedAt        time.Time
	CustomerName    string
	ShippingAddress string
	PaymentMethod   string
	Items           []OrderEmailItem
	Subtotal        decimal.Decimal
	ShippingCost    decimal.Decimal
	ShippingMessage string
	TaxEnabled      bool
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	OrderURL        string
}

const EventOrderCreated = "order.created"

type OrderEvent struct {
	Type        string          `json:"type"`
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	UserID      int64           `json:"user_id"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int64           `json:"item_count"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
