package usecase

import (
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/domain/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var defaultEpsilon = decimal.RequireFromString("0.01")

// 5000 を "KES 5,000.00" にする
func FormatAmount(currency string, d decimal.Decimal) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("%s %.2f", currency, d.Round(2).InexactFloat64())
}

// クライアントの金額aとサーバーの金額bを比べる。
// 範囲外の値は桁合わせ前に不一致として扱う。
func differs(a, b, epsilon decimal.Decimal) bool {
	if !model.AmountInRange(a) {
		return true
	}
	return a.Sub(b).Abs().GreaterThan(epsilon)
}

// ログ用の表記。巨大な指数は桁合わせせずに済ませる
func clientAmount(d decimal.Decimal) string {
	if !model.AmountInRange(d) {
		return "out of range"
	}
	return d.StringFixed(2)
}
