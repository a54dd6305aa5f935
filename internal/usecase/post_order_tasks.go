package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/observability"

	"go.uber.org/zap"
)

var (
	errMailRejected = errors.New("confirmation email was not accepted")
	errNoRecipient  = errors.New("order has no customer email")
)

// 注文のcommit後に実行する処理。失敗しても顧客には返さない
type postOrderTask struct {
	name string
	run  func(ctx context.Context) error
}

func (u *CheckoutUsecase) postOrderTasks(user *model.User, o model.Order, items []model.OrderItem) []postOrderTask {
	link := "/orders/" + strconv.FormatInt(o.ID, 10)
	return []postOrderTask{
		{
			name: "payment_notification",
			run: func(ctx context.Context) error {
				return u.notifications.CreatePaymentNotification(ctx, o.ID, o.OrderNumber, o.PaymentStatus, o.PaymentMethod, o.TotalAmount)
			},
		},
		{
			name: "order_notification",
			run: func(ctx context.Context) error {
				return u.notifications.CreateOrderNotification(ctx, o.ID, o.OrderNumber, o.CustomerName)
			},
		},
		{
			name: "customer_notification",
			run: func(ctx context.Context) error {
				msg := fmt.Sprintf("Your order %s for %s has been received and is being processed.",
					o.OrderNumber, FormatAmount(u.currency, o.TotalAmount))
				return u.notifications.Create(ctx, user.ID, model.NotificationTypeOrder, "Order placed", msg, link)
			},
		},
		{
			name: "confirmation_email",
			run: func(ctx context.Context) error {
				if o.CustomerEmail == "" {
					return errNoRecipient
				}
				ok, err := u.mailer.SendOrderConfirmation(ctx, u.orderEmail(o, items), o.CustomerEmail, o.CustomerName)
				if err != nil {
					return err
				}
				if !ok {
					return errMailRejected
				}
				return nil
			},
		},
		{
			name: "order_event",
			run: func(ctx context.Context) error {
				var qty int64
				for _, it := range items {
					qty += it.Quantity
				}
				return u.events.PublishOrderEvent(ctx, OrderEvent{
					Type:        EventOrderCreated,
					OrderID:     o.ID,
					OrderNumber: o.OrderNumber,
					UserID:      o.UserID,
					Total:       o.TotalAmount,
					ItemCount:   qty,
					OccurredAt:  u.now(),
				})
			},
		},
	}
}

// 失敗した処理の名前を返す。
// リクエストが終わっていることがあるので、キャンセルされないcontextで実行する
func (u *CheckoutUsecase) runPostOrderTasks(ctx context.Context, orderNumber string, tasks []postOrderTask) []string {
	ctx = context.WithoutCancel(ctx)
	var failed []string
	for _, t := range tasks {
		if err := runIsolated(ctx, t); err != nil {
			u.logger.Warn("post-order task failed",
				zap.String("task", t.name), zap.String("order_number", orderNumber), zap.Error(err))
			observability.RecordPostOrderTaskFailure(t.name)
			failed = append(failed, t.name)
		}
	}
	return failed
}

func runIsolated(ctx context.Context, t postOrderTask) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.run(ctx)
}

func (u *CheckoutUsecase) orderEmail(o model.Order, items []model.OrderItem) OrderEmail {
	out := OrderEmail{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		PlacedAt:        o.CreatedAt,
		CustomerName:    o.CustomerName,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   paymentMethodLabel(o.PaymentMethod),
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		ShippingMessage: o.ShippingMessage,
		TaxEnabled:      o.TaxEnabled,
		TaxRate:         o.TaxRate,
		TaxAmount:       o.TaxAmount,
		Total:           o.TotalAmount,
		OrderURL:        u.storeURL + "/orders/" + strconv.FormatInt(o.ID, 10),
	}
	for _, it := range items {
		out.Items = append(out.Items, OrderEmailItem{
			Name:      it.ProductName,
			SKU:       it.SKU,
			Options:   itemOptions(it),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return out
}

func itemOptions(it model.OrderItem) string {
	var s string
	for _, v := range []string{it.Size, it.Color, it.Material} {
		if v == "" {
			continue
		}
		if s != "" {
			s += " / "
		}
		s += v
	}
	return s
}

func paymentMethodLabel(m model.PaymentMethod) string {
	switch m {
	case model.PaymentMethodMpesa:
		return "M-Pesa"
	case model.PaymentMethodCard:
		return "Card"
	case model.PaymentMethodCash:
		return "Cash on delivery"
	}
	return string(m)
}
