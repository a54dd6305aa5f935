package handler

import (
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ShippingHandler struct {
	resolver *usecase.ShippingResolver
}

func NewShippingHandler(resolver *usecase.ShippingResolver) *ShippingHandler {
	return &ShippingHandler{resolver: resolver}
}

type ShippingLookupRequest struct {
	County   string          `json:"county"`
	TownArea string          `json:"town_area"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ShippingLookupResponse struct {
	Success      bool            `json:"success"`
	Cost         decimal.Decimal `json:"cost"`
	ZoneID       *int64          `json:"zone_id"`
	ZoneName     string          `json:"zone_name"`
	Message      string          `json:"message"`
	DeliveryDays string          `json:"delivery_days"`
	IsFree       bool            `json:"is_free"`
}

func (h *ShippingHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/shipping/lookup", h.lookup)
	e.GET("/shipping/zones", h.zones)
}

func (h *ShippingHandler) lookup(c echo.Context) error {
	var req ShippingLookupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Subtotal.IsNegative() || !model.AmountInRange(req.Subtotal) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid subtotal"})
	}

	q, err := h.resolver.Resolve(c.Request().Context(), usecase.ShippingQuery{
		County:   sanitizeText(req.County),
		TownArea: sanitizeText(req.TownArea),
		Subtotal: req.Subtotal,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ShippingLookupResponse{
		Success:      true,
		Cost:         q.Cost,
		ZoneID:       q.ZoneID,
		ZoneName:     q.ZoneName,
		Message:      q.Message,
		DeliveryDays: q.DeliveryDays,
		IsFree:       q.IsFree,
	})
}

func (h *ShippingHandler) zones(c echo.Context) error {
	zones, err := h.resolver.ListZones(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, zones)
}
