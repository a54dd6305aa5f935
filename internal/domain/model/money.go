package model

import "github.com/shopspring/decimal"

// 受け付ける金額の上限（絶対値）
var maxAmount = decimal.New(1, 12)

// 小数第2位で四捨五入（0から遠い方へ）
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// 比較・丸めに使っても安全な金額か。
// 指数を先に見ないと Cmp/Round の桁合わせが巨大な整数を作ってしまう。
func AmountInRange(d decimal.Decimal) bool {
	if exp := d.Exponent(); exp < -4 || exp > 12 {
		return false
	}
	return d.Abs().LessThanOrEqual(maxAmount)
}
