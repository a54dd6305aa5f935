package handler

import (
	"net/http"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// InventoryUpdateRequest は在庫更新の入力です。variant_idでバリアントを指定
type InventoryUpdateRequest struct {
	VariantID *int64 `json:"variant_id"`
	Stock     int64  `json:"stock"`
	Reason    string `json:"reason"`
}

type TaxSettingsRequest struct {
	Enabled            bool            `json:"enabled"`
	Rate               decimal.Decimal `json:"rate"`
	RegistrationNumber string          `json:"registration_number"`
}

// /admin/inventory と /admin/settings/tax をまとめる
type AdminProductHandler struct {
	uc  *usecase.ProductUsecase
	tax *usecase.TaxCalculator
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, tax *usecase.TaxCalculator) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, tax: tax}
}

func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.PUT("/inventory/:product_id", h.updateInventory)
	admin.GET("/settings/tax", h.getTax)
	admin.PUT("/settings/tax", h.updateTax)
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid product_id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdateInventory(
		c.Request().Context(),
		adminID,
		productID,
		usecase.AdminUpdateInventoryInput{
			VariantID: req.VariantID,
			Stock:     req.Stock,
			Reason:    sanitizeText(req.Reason),
		},
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

func (h *AdminProductHandler) getTax(c echo.Context) error {
	s, err := h.tax.Settings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminProductHandler) updateTax(c echo.Context) error {
	var req TaxSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	s, err := h.tax.UpdateSettings(c.Request().Context(), usecase.UpdateTaxSettingsInput{
		Enabled:            req.Enabled,
		Rate:               req.Rate,
		RegistrationNumber: sanitizeText(req.RegistrationNumber),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
