package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	repo "github.com/DoughlasMuthoni/linen-store-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

type TaxQuote struct {
	Enabled            bool            `json:"enabled"`
	Rate               decimal.Decimal `json:"rate"`
	Amount             decimal.Decimal `json:"amount"`
	RegistrationNumber string          `json:"registration_number,omitempty"`
}

// 全体の税設定を商品小計だけに適用する
type TaxCalculator struct {
	settings repo.TaxSettingsRepository
}

func NewTaxCalculator(settings repo.TaxSettingsRepository) *TaxCalculator {
	return &TaxCalculator{settings: settings}
}

// 毎回設定を読むので、管理者の変更は次のチェックアウトから効く
func (c *TaxCalculator) Calculate(ctx context.Context, subtotal decimal.Decimal) (TaxQuote, error) {
	s, err := c.settings.Get(ctx)
	if err != nil {
		return TaxQuote{}, fmt.Errorf("load tax settings: %w", err)
	}
	return ComputeTax(s, subtotal), nil
}

func ComputeTax(s model.TaxSettings, subtotal decimal.Decimal) TaxQuote {
	if !s.Enabled {
		return TaxQuote{Enabled: false, Rate: decimal.Zero, Amount: decimal.Zero}
	}
	amount := model.Round2(subtotal.Mul(s.Rate).Div(decimal.NewFromInt(100)))
	return TaxQuote{
		Enabled:            true,
		Rate:               s.Rate,
		Amount:             amount,
		RegistrationNumber: s.RegistrationNumber,
	}
}

type UpdateTaxSettingsInput struct {
	Enabled            bool
	Rate               decimal.Decimal
	RegistrationNumber string
}

var maxTaxRate = decimal.NewFromInt(100)

func (c *TaxCalculator) Settings(ctx context.Context) (model.TaxSettings, error) {
	s, err := c.settings.Get(ctx)
	if err != nil {
		return model.TaxSettings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// 全体の税設定を更新する
func (c *TaxCalculator) UpdateSettings(ctx context.Context, in UpdateTaxSettingsInput) (model.TaxSettings, error) {
	if in.Rate.IsNegative() || in.Rate.GreaterThan(maxTaxRate) {
		return model.TaxSettings{}, NewHTTPError(http.StatusBadRequest, "rate must be between 0 and 100")
	}
	s := model.TaxSettings{
		ID:                 model.TaxSettingsRowID,
		Enabled:            in.Enabled,
		Rate:               in.Rate.Round(2),
		RegistrationNumber: strings.TrimSpace(in.RegistrationNumber),
	}
	if err := c.settings.Save(ctx, s); err != nil {
		return model.TaxSettings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}
