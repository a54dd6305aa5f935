package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/observability"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"go.uber.org/zap"
)

type AdminOrderUsecase struct {
	tx            repo.TransactionManager
	auditRepo     repo.AuditLogRepository
	notifications NotificationSink
	logger        *zap.Logger
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository, notifications NotificationSink, logger *zap.Logger) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo, notifications: notifications, logger: observability.OrNop(logger)}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

type AdminOrderList struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (AdminOrderList, error) {
	if f.Page < 1 {
		return AdminOrderList{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return AdminOrderList{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Status != "" && !validOrderStatus(model.OrderStatus(f.Status)) {
		return AdminOrderList{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	out := AdminOrderList{Page: f.Page, Limit: f.Limit}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Total = total
		out.Orders = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out.Orders = append(out.Orders, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return AdminOrderList{}, err
	}
	return out, nil
}

// 注文ステータスを進める。未発送の注文をキャンセルしたら、
// 同じトランザクションで在庫を戻す
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if !validOrderStatus(newStatus) {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var (
		changed bool
		order   model.Order
	)
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 同じステータスなら何もしない
		if o.Status == newStatus {
			return nil
		}
		switch o.Status {
		case model.OrderStatusCancelled:
			return NewHTTPError(http.StatusBadRequest, "cannot change cancelled order")
		case model.OrderStatusDelivered:
			return NewHTTPError(http.StatusBadRequest, "cannot change delivered order")
		case model.OrderStatusShipped:
			if newStatus == model.OrderStatusCancelled {
				return NewHTTPError(http.StatusBadRequest, "cannot cancel shipped order")
			}
		}

		if newStatus == model.OrderStatusCancelled {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.VariantID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   `{"status":"` + string(o.Status) + `"}`,
			AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		changed = true
		order = o
		return nil
	})
	if err != nil {
		return err
	}

	if changed && u.notifications != nil {
		msg := fmt.Sprintf("Your order %s is now %s.", order.OrderNumber, newStatus)
		link := "/orders/" + strconv.FormatInt(order.ID, 10)
		if err := u.notifications.Create(ctx, order.UserID, model.NotificationTypeOrder, "Order update", msg, link); err != nil {
			u.logger.Warn("order status notification failed", zap.Int64("order_id", orderID), zap.Error(err))
			observability.RecordPostOrderTaskFailure("status_notification")
		}
	}
	return nil
}

func validOrderStatus(s model.OrderStatus) bool {
	switch s {
	case model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
		return true
	}
	return false
}

// 絞り込みの日時を解析する。空や不正な値ならokはfalse
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// 注文1件の監査ログを新しい順で返す
func (u *AdminOrderUsecase) History(ctx context.Context, orderID int64, limit int) ([]model.AuditLog, error) {
	if orderID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	resource := model.AuditResourceOrder
	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ResourceType: &resource,
		ResourceID:   &orderID,
		Limit:        limit,
	})
	if err != nil {
		u.logger.Error("list order history", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}
