package handler

import (
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc            *usecase.OrderUsecase
	notifications *usecase.NotificationUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase, notifications *usecase.NotificationUsecase) *OrderHandler {
	return &OrderHandler{uc: uc, notifications: notifications}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

// 認証済みの /me グループに登録
func (h *OrderHandler) RegisterMeRoutes(me *echo.Group) {
	me.GET("/notifications", h.listNotifications)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetMyOrderDetail(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /me/notifications?limit=
func (h *OrderHandler) listNotifications(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	limit := int(parseInt64(c.QueryParam("limit")))
	out, err := h.notifications.ListMine(c.Request().Context(), userID, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
