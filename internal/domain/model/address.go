package model

import (
	"strings"
	"time"
)

// 保存済みの配送先住所
type Address struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"not null;index" json:"user_id"`
	FullName   string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Line1      string    `gorm:"column:address_line1;type:varchar(255);not null" json:"address_line1"`
	Line2      string    `gorm:"column:address_line2;type:varchar(255)" json:"address_line2"`
	City       string    `gorm:"type:varchar(255)" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string    `gorm:"type:varchar(100);not null;default:'Kenya'" json:"country"`
	County     string    `gorm:"type:varchar(100);index" json:"county"`
	IsDefault  bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// 注文スナップショット用に1行へまとめる。
// 氏名, line1, line2, city, state, 郵便番号, 国の順で、空の項目は飛ばす
func (a Address) DisplayString() string {
	parts := []string{a.FullName, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
