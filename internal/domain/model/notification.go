package model

import "time"

type NotificationType string

const (
	NotificationTypeOrder   NotificationType = "order"
	NotificationTypePayment NotificationType = "payment"
)

// UserIDがnilならスタッフ宛て
type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *int64           `gorm:"index" json:"user_id,omitempty"`
	Type      NotificationType `gorm:"type:varchar(30);not null;index" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Link      string           `gorm:"type:varchar(255)" json:"link"`
	IsRead    bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}
