package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

// /admin 配下は「JWT必須 + token_version一致 + ADMIN限定」のグループで登録
func (h *AdminOrderHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/orders", h.list)
	admin.PUT("/orders/:id/status", h.updateStatus)
	admin.GET("/orders/:id/history", h.history)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	f := repository.AdminOrderListFilter{Page: 1, Limit: 50, Status: c.QueryParam("status")}

	var userID int64
	err := echo.QueryParamsBinder(c).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		Int64("user_id", &userID).
		BindError()
	if err != nil {
		var be *echo.BindingError
		if errors.As(err, &be) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + be.Field})
		}
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
	}
	if c.QueryParam("user_id") != "" {
		f.UserID = &userID
	}

	for name, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		v := c.QueryParam(name)
		if v == "" {
			continue
		}
		t, ok := usecase.ParseDateTimeRFC3339(v)
		if !ok {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + name})
		}
		*dst = t
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateStatus(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in := usecase.AdminUpdateOrderStatusInput{Status: req.Status}
	if err := h.uc.UpdateStatus(c.Request().Context(), adminID, orderID, in); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) history(c echo.Context) error {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	logs, err := h.uc.History(c.Request().Context(), orderID, int(parseInt64(c.QueryParam("limit"))))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": logs})
}
