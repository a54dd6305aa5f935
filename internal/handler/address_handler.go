package handler

import (
	"context"
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

// 認証済みのグループに /addresses を登録
func (h *AddressHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/addresses", h.List)
	g.POST("/addresses", h.Create)
	g.PATCH("/addresses/:id", h.onAddress("updated", func(ctx context.Context, c echo.Context, userID, id int64) error {
		req, err := bindAddress(c)
		if err != nil {
			return err
		}
		return h.uc.Update(ctx, userID, id, req)
	}))
	g.DELETE("/addresses/:id", h.onAddress("deleted", func(ctx context.Context, _ echo.Context, userID, id int64) error {
		return h.uc.Delete(ctx, userID, id)
	}))
	g.POST("/addresses/:id/default", h.onAddress("default set", func(ctx context.Context, _ echo.Context, userID, id int64) error {
		return h.uc.SetDefault(ctx, userID, id)
	}))
}

func (h *AddressHandler) List(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeError(c, usecase.ErrUnauthorized)
	}

	list, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *AddressHandler) Create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return writeError(c, usecase.ErrUnauthorized)
	}

	req, err := bindAddress(c)
	if err != nil {
		return writeError(c, err)
	}

	created, err := h.uc.Create(c.Request().Context(), userID, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

type addressAction func(ctx context.Context, c echo.Context, userID, addressID int64) error

// 呼び出し元と :id を取り出してactを実行し、Success は {message:string} に寄せる
func (h *AddressHandler) onAddress(msg string, act addressAction) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, ok := getUserIDFromContext(c)
		if !ok {
			return writeError(c, usecase.ErrUnauthorized)
		}
		id, ok := parseIDParam(c, "id")
		if !ok {
			return writeError(c, usecase.ErrValidation)
		}
		if err := act(c.Request().Context(), c, userID, id); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, SuccessResponse{Message: msg})
	}
}

func bindAddress(c echo.Context) (usecase.AddressRequest, error) {
	var req usecase.AddressRequest
	if err := c.Bind(&req); err != nil {
		return req, usecase.ErrValidation
	}

	for _, f := range []*string{
		&req.FullName, &req.Phone, &req.Email,
		&req.Line1, &req.Line2, &req.City, &req.State, &req.PostalCode, &req.Country, &req.County,
	} {
		*f = sanitizeText(*f)
	}
	return req, nil
}
