package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/middleware"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const lastOrderCookie = "last_order_number"

type CheckoutHandler struct {
	checkout *usecase.CheckoutUsecase
	carts    *usecase.CartUsecase
	orders   *usecase.OrderUsecase
	logger   *zap.Logger
}

func NewCheckoutHandler(
	checkout *usecase.CheckoutUsecase,
	carts *usecase.CartUsecase,
	orders *usecase.OrderUsecase,
	logger *zap.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, carts: carts, orders: orders, logger: logger}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	guard := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg.JWTSecret),
		middleware.TokenVersionGuard(userRepo),
	}

	e.GET("/checkout", h.Summary, guard...)
	e.POST("/checkout", h.PlaceOrder, guard...)
	e.GET("/order-confirmation", h.Confirmation, guard...)
}

type checkoutFailureResponse struct {
	Success bool                    `json:"success"`
	State   usecase.CheckoutState   `json:"state"`
	Errors  []usecase.CheckoutError `json:"errors"`
	Cart    *usecase.CartResponse   `json:"cart,omitempty"`
}

type checkoutSuccessResponse struct {
	Success     bool                   `json:"success"`
	RedirectURL string                 `json:"redirect_url"`
	Order       usecase.CheckoutResult `json:"order"`
}

// GET /checkout
func (h *CheckoutHandler) Summary(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	ctx := c.Request().Context()
	store, err := h.carts.StoreFor(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}

	out, err := h.checkout.Summary(ctx, userID, store)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /checkout
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	in, err := parseCheckoutForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid form"})
	}

	ctx := c.Request().Context()
	store, err := h.carts.StoreFor(ctx, userID)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.checkout.PlaceOrder(ctx, userID, store, in)
	if err != nil {
		if f, ok := usecase.AsCheckoutFailure(err); ok {
			return h.writeFailure(c, userID, f)
		}
		return writeError(c, err)
	}

	setLastOrderCookie(c, res.OrderNumber)
	target := confirmationURL(res.OrderID, res.OrderNumber)
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, checkoutSuccessResponse{Success: true, RedirectURL: target, Order: res})
	}
	return c.Redirect(http.StatusFound, target)
}

// GET /order-confirmation?order_id=..&order_number=..
func (h *CheckoutHandler) Confirmation(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.QueryParam("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order_id"})
	}

	number := strings.TrimSpace(c.QueryParam("order_number"))
	if number == "" {
		if ck, err := c.Cookie(lastOrderCookie); err == nil {
			number = ck.Value
		}
	}
	if number == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "order_number is required"})
	}

	out, err := h.orders.GetConfirmation(c.Request().Context(), userID, orderID, number)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// フォームを描き直せるように、エラーと現在のカートを返す
func (h *CheckoutHandler) writeFailure(c echo.Context, userID int64, f *usecase.CheckoutFailure) error {
	resp := checkoutFailureResponse{State: f.State, Errors: f.Errors}

	cart, err := h.carts.GetCart(c.Request().Context(), userID)
	if err != nil {
		h.logger.Warn("load cart for checkout failure", zap.Int64("user_id", userID), zap.Error(err))
	} else {
		resp.Cart = &cart
	}

	return c.JSON(f.Status, resp)
}

func parseCheckoutForm(c echo.Context) (usecase.CheckoutInput, error) {
	form, err := c.FormParams()
	if err != nil {
		return usecase.CheckoutInput{}, err
	}

	field := func(name string) string { return sanitizeText(form.Get(name)) }
	addr := func(name string) string { return field("new_shipping_address[" + name + "]") }

	in := usecase.CheckoutInput{
		ShippingAddressID: parseInt64(field("shipping_address_id")),
		NewAddress: usecase.InlineAddress{
			FullName:   addr("full_name"),
			Phone:      addr("phone"),
			Email:      addr("email"),
			Line1:      addr("address_line1"),
			Line2:      addr("address_line2"),
			City:       addr("city"),
			State:      addr("state"),
			PostalCode: addr("postal_code"),
			Country:    addr("country"),
			County:     addr("county"),
		},
		SaveNewAddress:   parseCheckbox(field("save_new_address")),
		ShippingCounty:   field("shipping_county"),
		ShippingTownArea: field("shipping_town_area"),
		ShippingZoneID:   parseInt64(field("shipping_zone_id")),
		ShippingCost:     parseAmount(field("shipping_cost")),
		ShippingMessage:  field("shipping_message"),
		PaymentMethod:    strings.ToLower(field("payment_method")),
		ClientTotal:      parseAmount(field("order_total")),
		CheckoutToken:    field("checkout_token"),
	}
	if in.CheckoutToken == "" {
		in.CheckoutToken = strings.TrimSpace(c.Request().Header.Get("X-Idempotency-Key"))
	}
	return in, nil
}

func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// 空・解析できない・範囲外の金額はnil
func parseAmount(s string) *decimal.Decimal {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !model.AmountInRange(d) {
		return nil
	}
	return &d
}

func parseCheckbox(s string) bool {
	switch strings.ToLower(s) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

func confirmationURL(orderID int64, orderNumber string) string {
	q := url.Values{}
	q.Set("order_id", strconv.FormatInt(orderID, 10))
	q.Set("order_number", orderNumber)
	return "/order-confirmation?" + q.Encode()
}

func setLastOrderCookie(c echo.Context, orderNumber string) {
	c.SetCookie(&http.Cookie{
		Name:     lastOrderCookie,
		Value:    orderNumber,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
