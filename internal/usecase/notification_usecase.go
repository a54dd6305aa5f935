package usecase

import (
	"context"
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
)

type NotificationUsecase struct {
	repo repo.NotificationRepository
}

func NewNotificationUsecase(r repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{repo: r}
}

// ユーザー宛ての通知を新しい順で返す
func (u *NotificationUsecase) ListMine(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	list, err := u.repo.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if list == nil {
		list = []model.Notification{}
	}
	return list, nil
}
