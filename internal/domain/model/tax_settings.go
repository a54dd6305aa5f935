package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 全体で1行だけ。Rateは百分率（16なら16%）
type TaxSettings struct {
	ID                 int64           `gorm:"primaryKey" json:"id"`
	Enabled            bool            `gorm:"not null;default:false" json:"enabled"`
	Rate               decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"rate"`
	RegistrationNumber string          `gorm:"type:varchar(50)" json:"registration_number"`
	UpdatedAt          time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

const TaxSettingsRowID int64 = 1
