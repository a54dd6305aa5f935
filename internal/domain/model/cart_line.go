package model

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// カート明細。UnitPriceは追加時点のサーバー側の価格
type CartLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64           `gorm:"not null;uniqueIndex:idx_cart_line_key,priority:1" json:"cart_id"`
	LineKey   string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_cart_line_key,priority:2" json:"line_key"`
	ProductID int64           `gorm:"not null;index" json:"product_id"`
	VariantID *int64          `gorm:"index" json:"variant_id,omitempty"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Size      string          `gorm:"type:varchar(50)" json:"size,omitempty"`
	Color     string          `gorm:"type:varchar(50)" json:"color,omitempty"`
	Material  string          `gorm:"type:varchar(100)" json:"material,omitempty"`
	AddedAt   time.Time       `gorm:"not null;autoCreateTime" json:"added_at"`
	UpdatedAt time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// 明細のキー。商品+バリアント、バリアントIDが無ければ属性の組み合わせで決める
func LineKey(productID int64, variantID *int64, size, color, material string) string {
	if variantID != nil && *variantID > 0 {
		return fmt.Sprintf("p%d:v%d", productID, *variantID)
	}
	attrs := []string{normAttr(size), normAttr(color), normAttr(material)}
	if attrs[0] == "" && attrs[1] == "" && attrs[2] == "" {
		return fmt.Sprintf("p%d", productID)
	}
	sum := sha1.Sum([]byte(strings.Join(attrs, "|")))
	return fmt.Sprintf("p%d:a%s", productID, hex.EncodeToString(sum[:])[:12])
}

func normAttr(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func attrEqual(have, want string) bool {
	w := normAttr(want)
	return w == "" || normAttr(have) == w
}
