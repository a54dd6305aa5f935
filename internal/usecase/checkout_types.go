package usecase

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// 注文組み立てがどこまで進んだか
type CheckoutState string

const (
	CheckoutStateDraft            CheckoutState = "DRAFT"
	CheckoutStateValidating       CheckoutState = "VALIDATING"
	CheckoutStateAddressResolving CheckoutState = "ADDRESS_RESOLVING"
	CheckoutStatePricing          CheckoutState = "PRICING"
	CheckoutStatePersisting       CheckoutState = "PERSISTING"
	CheckoutStateNotifying        CheckoutState = "NOTIFYING"
	CheckoutStateComplete         CheckoutState = "COMPLETE"
	CheckoutStateFailed           CheckoutState = "FAILED"
)

type CheckoutErrorCode string

const (
	CodeEmptyCart               CheckoutErrorCode = "EMPTY_CART"
	CodeMissingAddress          CheckoutErrorCode = "MISSING_ADDRESS"
	CodeMissingShippingLocation CheckoutErrorCode = "MISSING_SHIPPING_LOCATION"
	CodeMissingPaymentMethod    CheckoutErrorCode = "MISSING_PAYMENT_METHOD"
	CodeInvalidPaymentMethod    CheckoutErrorCode = "INVALID_PAYMENT_METHOD"
	CodeShippingNotCalculated   CheckoutErrorCode = "SHIPPING_NOT_CALCULATED"
	CodeAddressNotFound         CheckoutErrorCode = "ADDRESS_NOT_FOUND"
	CodeInsufficientStock       CheckoutErrorCode = "INSUFFICIENT_STOCK"
	CodeOrderCreationFailed     CheckoutErrorCode = "ORDER_CREATION_FAILED"
)

const msgOrderCreationFailed = "Failed to create order. Please try again."

type CheckoutError struct {
	Code    CheckoutErrorCode `json:"code"`
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message"`
}

// 注文組み立ての失敗。Stateは止まった段階で、
// PERSISTINGより前なら何もcommitされていない
type CheckoutFailure struct {
	State  CheckoutState
	Status int
	Errors []CheckoutError
}

func (f *CheckoutFailure) Error() string {
	codes := make([]string, 0, len(f.Errors))
	for _, e := range f.Errors {
		codes = append(codes, string(e.Code))
	}
	return "checkout failed at " + string(f.State) + ": " + strings.Join(codes, ",")
}

func (f *CheckoutFailure) Has(code CheckoutErrorCode) bool {
	for _, e := range f.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func AsCheckoutFailure(err error) (*CheckoutFailure, bool) {
	var f *CheckoutFailure
	ok := errors.As(err, &f)
	return f, ok
}

// チェックアウトフォームに入力された配送先
type InlineAddress struct {
	FullName   string
	Phone      string
	Email      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	County     string
}

// 配送できるだけの入力があるか
func (a InlineAddress) IsPopulated() bool {
	return strings.TrimSpace(a.FullName) != "" &&
		strings.TrimSpace(a.Line1) != "" &&
		(strings.TrimSpace(a.City) != "" || strings.TrimSpace(a.County) != "")
}

func (a InlineAddress) IsBlank() bool {
	return strings.TrimSpace(a.FullName+a.Phone+a.Email+a.Line1+a.Line2+a.City+a.State+a.PostalCode+a.County) == ""
}

// 送信されたチェックアウトフォーム。金額はブラウザの表示値で、
// サーバーで計算し直す
type CheckoutInput struct {
	ShippingAddressID int64 // 0 = 未選択
	NewAddress        InlineAddress
	SaveNewAddress    bool

	ShippingCounty   string
	ShippingTownArea string
	ShippingZoneID   int64
	ShippingCost     *decimal.Decimal // nil = 送料の計算をしていない
	ShippingMessage  string

	PaymentMethod string
	ClientTotal   *decimal.Decimal
	CheckoutToken string // 二重送信防止キー
}

type ValidationResult struct {
	Errors   []CheckoutError
	Warnings []string
}

type PricingSummary struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingCost    decimal.Decimal `json:"shipping_cost"`
	ShippingZoneID  *int64          `json:"shipping_zone_id,omitempty"`
	ShippingMessage string          `json:"shipping_message"`
	FreeShipping    bool            `json:"free_shipping"`
	TaxEnabled      bool            `json:"tax_enabled"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
}

type CheckoutResult struct {
	OrderID     int64          `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	State       CheckoutState  `json:"state"`
	Pricing     PricingSummary `json:"pricing"`
	Warnings    []string       `json:"warnings,omitempty"`
	// 既存の注文とトークンが一致したらtrue
	Replayed    bool     `json:"replayed"`
	FailedTasks []string `json:"-"`
}
