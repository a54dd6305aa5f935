package validator

import (
	"strings"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"
)

const warnBothAddresses = "A saved address and a new address were both submitted; the saved address was used"

type checkoutValidator struct{}

func NewCheckoutValidator() usecase.CheckoutValidator {
	return checkoutValidator{}
}

// 最初のエラーで止めず、問題をすべて集める
func (checkoutValidator) ValidateCheckout(in usecase.CheckoutInput, lines []model.CartLine) usecase.ValidationResult {
	var res usecase.ValidationResult
	add := func(code usecase.CheckoutErrorCode, field, msg string) {
		res.Errors = append(res.Errors, usecase.CheckoutError{Code: code, Field: field, Message: msg})
	}

	if len(lines) == 0 {
		add(usecase.CodeEmptyCart, "cart", "Your cart is empty")
	}

	switch {
	case in.ShippingAddressID > 0:
		if !in.NewAddress.IsBlank() {
			res.Warnings = append(res.Warnings, warnBothAddresses)
		}
	case !in.NewAddress.IsPopulated():
		add(usecase.CodeMissingAddress, "shipping_address", "Please select a saved address or enter a new shipping address")
	}

	if strings.TrimSpace(in.ShippingTownArea) == "" {
		add(usecase.CodeMissingShippingLocation, "shipping_town_area", "Please select your delivery town or area")
	}

	pm := strings.ToLower(strings.TrimSpace(in.PaymentMethod))
	if pm == "" {
		add(usecase.CodeMissingPaymentMethod, "payment_method", "Please select a payment method")
	} else if _, ok := model.ParsePaymentMethod(pm); !ok {
		add(usecase.CodeInvalidPaymentMethod, "payment_method", "Please select M-Pesa, card or cash on delivery")
	}

	if in.ShippingCost == nil || in.ShippingCost.IsNegative() || !model.AmountInRange(*in.ShippingCost) {
		add(usecase.CodeShippingNotCalculated, "shipping_cost", "Shipping cost has not been calculated. Please choose your delivery location again")
	}

	return res
}
