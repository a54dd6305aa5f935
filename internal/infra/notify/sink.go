package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// アプリ内通知を保存する。スタッフ宛てはuser_idなし
type Sink struct {
	repo     repo.NotificationRepository
	currency string
}

var _ usecase.NotificationSink = (*Sink)(nil)

func NewSink(r repo.NotificationRepository, currency string) *Sink {
	if currency == "" {
		currency = "KES"
	}
	return &Sink{repo: r, currency: currency}
}

func (s *Sink) CreatePaymentNotification(ctx context.Context, orderID int64, orderNumber string, status model.PaymentStatus, method model.PaymentMethod, amount decimal.Decimal) error {
	title := cases.Title(language.English).String("payment " + string(status))
	msg := fmt.Sprintf("Order %s: %s payment of %s is %s.",
		orderNumber, methodName(method), usecase.FormatAmount(s.currency, amount), status)
	return s.create(ctx, nil, model.NotificationTypePayment, title, msg, adminOrderLink(orderID))
}

func (s *Sink) CreateOrderNotification(ctx context.Context, orderID int64, orderNumber string, customerName string) error {
	if customerName == "" {
		customerName = "a customer"
	}
	msg := fmt.Sprintf("New order %s placed by %s.", orderNumber, customerName)
	return s.create(ctx, nil, model.NotificationTypeOrder, "New order", msg, adminOrderLink(orderID))
}

func (s *Sink) Create(ctx context.Context, userID int64, typ model.NotificationType, title, message, link string) error {
	if userID <= 0 {
		return fmt.Errorf("notification for invalid user %d", userID)
	}
	return s.create(ctx, &userID, typ, title, message, link)
}

func (s *Sink) create(ctx context.Context, userID *int64, typ model.NotificationType, title, message, link string) error {
	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store %s notification: %w", typ, err)
	}
	return nil
}

func adminOrderLink(orderID int64) string {
	return "/admin/orders/" + strconv.FormatInt(orderID, 10)
}

func methodName(m model.PaymentMethod) string {
	switch m {
	case model.PaymentMethodMpesa:
		return "M-Pesa"
	case model.PaymentMethodCard:
		return "card"
	case model.PaymentMethodCash:
		return "cash on delivery"
	}
	return string(m)
}
