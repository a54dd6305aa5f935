package model_test

import (
	"testing"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineKey(t *testing.T) {
	v := int64(5)

	assert.Equal(t, "p1", model.LineKey(1, nil, "", " ", ""))
	assert.Equal(t, "p1:v5", model.LineKey(1, &v, "King", "Sand", ""))

	// 属性のキーは大文字小文字と前後の空白を無視する
	a := model.LineKey(1, nil, "King", "Sand", "")
	b := model.LineKey(1, nil, " king", "SAND ", "")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, model.LineKey(1, nil, "Queen", "Sand", ""))
	assert.NotEqual(t, a, model.LineKey(2, nil, "King", "Sand", ""))

	zero := int64(0)
	assert.Equal(t, "p1", model.LineKey(1, &zero, "", "", ""))
}

func TestAddressDisplayString(t *testing.T) {
	a := model.Address{
		FullName: "Wanjiru Kamau",
		Line1:    "Kilimani Rd 4",
		Line2:    "  ",
		City:     "Nairobi",
		Country:  "Kenya",
	}
	assert.Equal(t, "Wanjiru Kamau, Kilimani Rd 4, Nairobi, Kenya", a.DisplayString())
	assert.Equal(t, "", model.Address{}.DisplayString())
}

func TestShippingZoneFreeFor(t *testing.T) {
	z := model.ShippingZone{MinOrderAmount: decimal.NewFromInt(5000)}
	assert.True(t, z.FreeFor(decimal.NewFromInt(5000)))
	assert.False(t, z.FreeFor(decimal.RequireFromString("4999.99")))

	assert.False(t, model.ShippingZone{}.FreeFor(decimal.NewFromInt(1000000)))
}

func TestProductUnitPrice(t *testing.T) {
	p := model.Product{Price: decimal.NewFromInt(9000)}
	assert.True(t, p.UnitPrice(nil).Equal(decimal.NewFromInt(9000)))
	assert.True(t, p.UnitPrice(&model.ProductVariant{Price: decimal.NewFromInt(9500)}).Equal(decimal.NewFromInt(9500)))
	// バリアント価格が0なら商品価格
	assert.True(t, p.UnitPrice(&model.ProductVariant{}).Equal(decimal.NewFromInt(9000)))
}

func TestVariantMatches(t *testing.T) {
	v := model.ProductVariant{Size: "King", Color: "Sand", Material: "Linen"}
	assert.True(t, v.Matches("king", "", ""))
	assert.True(t, v.Matches(" KING ", "sand", "linen"))
	assert.False(t, v.Matches("Queen", "", ""))
}

func TestParsePaymentMethod(t *testing.T) {
	m, ok := model.ParsePaymentMethod("mpesa")
	assert.True(t, ok)
	assert.Equal(t, model.PaymentMethodMpesa, m)

	_, ok = model.ParsePaymentMethod("MPESA")
	assert.False(t, ok)
}

func TestAmountInRange(t *testing.T) {
	ok := []string{"0", "1500", "1500.50", "0.0001", "-20", "1e12", "999999999999.99"}
	for _, s := range ok {
		assert.True(t, model.AmountInRange(decimal.RequireFromString(s)), s)
	}

	bad := []string{"1e20000000", "1e-20000000", "0.00001", "1e13", "1000000000000.01", "-1e13"}
	for _, s := range bad {
		assert.False(t, model.AmountInRange(decimal.RequireFromString(s)), s)
	}
}
