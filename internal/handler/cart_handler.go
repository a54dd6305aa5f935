package handler

import (
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// Priceはストアのスクリプト互換のため受け取るが使わない
type AddCartRequest struct {
	ProductID int64            `json:"product_id"`
	VariantID *int64           `json:"variant_id"`
	Quantity  int64            `json:"quantity"`
	Size      string           `json:"size"`
	Color     string           `json:"color"`
	Material  string           `json:"material"`
	Price     *decimal.Decimal `json:"price"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

type cartEnvelope struct {
	Success   bool                       `json:"success"`
	Message   string                     `json:"message"`
	CartCount int64                      `json:"cart_count"`
	Subtotal  decimal.Decimal            `json:"subtotal"`
	CartItems []usecase.CartItemResponse `json:"cart_items"`
}

type cartFailure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg.JWTSecret))
	g.Use(middleware.TokenVersionGuard(userRepo))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PATCH("/:id", h.patchItem)
	g.DELETE("/:id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeCartError(c, err)
	}
	return c.JSON(http.StatusOK, envelope("", out))
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, cartFailure{Message: "Invalid request"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
		Size:      sanitizeText(req.Size),
		Color:     sanitizeText(req.Color),
		Material:  sanitizeText(req.Material),
	})
	if err != nil {
		return writeCartError(c, err)
	}
	return c.JSON(http.StatusOK, envelope("Item added to cart", out))
}

func (h *CartHandler) patchItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, cartFailure{Message: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, cartFailure{Message: "Invalid request"})
	}

	out, err := h.uc.UpdateCartItem(c.Request().Context(), userID, id, usecase.UpdateCartItemInput{Quantity: req.Quantity})
	if err != nil {
		return writeCartError(c, err)
	}
	return c.JSON(http.StatusOK, envelope("Cart updated", out))
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, cartFailure{Message: "invalid id"})
	}

	out, err := h.uc.DeleteCartItem(c.Request().Context(), userID, id)
	if err != nil {
		return writeCartError(c, err)
	}
	return c.JSON(http.StatusOK, envelope("Item removed from cart", out))
}

func envelope(msg string, cart usecase.CartResponse) cartEnvelope {
	items := cart.Items
	if items == nil {
		items = []usecase.CartItemResponse{}
	}
	return cartEnvelope{
		Success:   true,
		Message:   msg,
		CartCount: cart.ItemCount,
		Subtotal:  cart.Subtotal,
		CartItems: items,
	}
}

func writeCartError(c echo.Context, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, cartFailure{Message: he.Message})
	}
	return c.JSON(http.StatusInternalServerError, cartFailure{Message: "internal error"})
}
